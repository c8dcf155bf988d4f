package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"quiz-bot/internal/quiz"
)

const (
	vkAPIBase    = "https://api.vk.com/method"
	vkAPIVersion = "5.131"

	// user long-poll update layout: [code, msg_id, flags, peer_id, ts, text, ...]
	vkCodeNewMessage = 4
	vkFlagOutbox     = 2
)

// ErrVKLongPollExpired means the long-poll key or server is no longer
// valid and a fresh one must be requested.
var ErrVKLongPollExpired = errors.New("vk long poll session expired")

type VKMessage struct {
	UserID int64
	Text   string
}

type VKClientInterface interface {
	GetLongPollServer(ctx context.Context) (server, key, ts string, err error)
	Poll(ctx context.Context, server, key, ts string) (newTS string, msgs []VKMessage, err error)
	SendMessage(ctx context.Context, userID int64, text string, buttons []string) error
}

// VKClient talks to the VK API over plain HTTP; there is no VK SDK in use,
// the surface needed here is three methods.
type VKClient struct {
	token string
	base  string
	http  *http.Client
}

func NewVKClient(token string) *VKClient {
	// the poll request itself holds the connection open for up to 25s
	return &VKClient{token: token, base: vkAPIBase, http: &http.Client{Timeout: 90 * time.Second}}
}

func (c *VKClient) call(ctx context.Context, method string, params url.Values, out any) error {
	params.Set("access_token", c.token)
	params.Set("v", vkAPIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/"+method, strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("vk %s: %d %s", method, resp.StatusCode, string(body))
	}

	var envelope struct {
		Response json.RawMessage `json:"response"`
		Error    *struct {
			Code    int    `json:"error_code"`
			Message string `json:"error_msg"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("vk %s: decode: %w", method, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("vk %s: api error %d: %s", method, envelope.Error.Code, envelope.Error.Message)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Response, out); err != nil {
			return fmt.Errorf("vk %s: decode response: %w", method, err)
		}
	}
	return nil
}

func (c *VKClient) GetLongPollServer(ctx context.Context) (string, string, string, error) {
	var resp struct {
		Key    string `json:"key"`
		Server string `json:"server"`
		TS     int64  `json:"ts"`
	}
	if err := c.call(ctx, "messages.getLongPollServer", url.Values{}, &resp); err != nil {
		return "", "", "", err
	}
	return resp.Server, resp.Key, strconv.FormatInt(resp.TS, 10), nil
}

func (c *VKClient) Poll(ctx context.Context, server, key, ts string) (string, []VKMessage, error) {
	endpoint := server
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	u := fmt.Sprintf("%s?act=a_check&key=%s&ts=%s&wait=25&mode=2&version=3",
		endpoint, url.QueryEscape(key), url.QueryEscape(ts))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	var res struct {
		Failed  int         `json:"failed"`
		TS      json.Number `json:"ts"`
		Updates [][]any     `json:"updates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", nil, fmt.Errorf("vk long poll: decode: %w", err)
	}
	switch res.Failed {
	case 0:
	case 1:
		// history is stale, resume from the ts the server handed back
		return res.TS.String(), nil, nil
	default:
		return "", nil, ErrVKLongPollExpired
	}

	var msgs []VKMessage
	for _, upd := range res.Updates {
		if len(upd) < 6 {
			continue
		}
		code, ok := upd[0].(float64)
		if !ok || int(code) != vkCodeNewMessage {
			continue
		}
		flags, _ := upd[2].(float64)
		if int(flags)&vkFlagOutbox != 0 {
			continue
		}
		peer, _ := upd[3].(float64)
		text, _ := upd[5].(string)
		msgs = append(msgs, VKMessage{UserID: int64(peer), Text: text})
	}
	return res.TS.String(), msgs, nil
}

func (c *VKClient) SendMessage(ctx context.Context, userID int64, text string, buttons []string) error {
	params := url.Values{}
	params.Set("user_id", strconv.FormatInt(userID, 10))
	params.Set("message", text)
	params.Set("random_id", strconv.FormatInt(int64(rand.Int31()), 10))
	if len(buttons) > 0 {
		kb, err := vkKeyboardJSON(buttons)
		if err != nil {
			return err
		}
		params.Set("keyboard", kb)
	}
	return c.call(ctx, "messages.send", params, nil)
}

type vkButtonAction struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

type vkKeyboardButton struct {
	Action vkButtonAction `json:"action"`
	Color  string         `json:"color"`
}

type vkKeyboard struct {
	OneTime bool                 `json:"one_time"`
	Buttons [][]vkKeyboardButton `json:"buttons"`
}

func vkKeyboardJSON(labels []string) (string, error) {
	kb := vkKeyboard{OneTime: true}
	for i := 0; i < len(labels); i += 2 {
		row := []vkKeyboardButton{{Action: vkButtonAction{Type: "text", Label: labels[i]}, Color: vkButtonColor(labels[i])}}
		if i+1 < len(labels) {
			row = append(row, vkKeyboardButton{Action: vkButtonAction{Type: "text", Label: labels[i+1]}, Color: vkButtonColor(labels[i+1])})
		}
		kb.Buttons = append(kb.Buttons, row)
	}
	b, err := json.Marshal(kb)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func vkButtonColor(label string) string {
	switch label {
	case quiz.ButtonNewQuestion:
		return "primary"
	case quiz.ButtonGiveUp:
		return "negative"
	default:
		return "secondary"
	}
}
