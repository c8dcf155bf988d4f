package bot

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"quiz-bot/internal/quiz"
)

var newVKClient = func(token string) VKClientInterface {
	return NewVKClient(token)
}

// VKBot drives the user long-poll loop and maps VK messages onto engine
// events. Session keys carry a "vk-" prefix so a store shared with the
// Telegram bot never collides on numeric user IDs.
type VKBot struct {
	vk     VKClientInterface
	engine *quiz.Engine
	sleep  func(time.Duration)
}

func NewVKBot(cfg *Config, engine *quiz.Engine) *VKBot {
	return &VKBot{vk: newVKClient(cfg.VKToken), engine: engine, sleep: time.Sleep}
}

func (b *VKBot) StartPolling(ctx context.Context) error {
	server, key, ts, err := b.vk.GetLongPollServer(ctx)
	if err != nil {
		return err
	}
	for {
		newTS, msgs, err := b.vk.Poll(ctx, server, key, ts)
		if errors.Is(err, ErrVKLongPollExpired) {
			server, key, ts, err = b.vk.GetLongPollServer(ctx)
			if err != nil {
				return err
			}
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("vk long poll error: %v", err)
			b.sleep(3 * time.Second)
			continue
		}
		ts = newTS
		for _, m := range msgs {
			// one worker per event; same-user ordering is the engine's job
			go b.handleMessage(ctx, m)
		}
	}
}

func (b *VKBot) handleMessage(ctx context.Context, m VKMessage) {
	ev := quiz.Event{UserID: "vk-" + strconv.FormatInt(m.UserID, 10), Text: m.Text}
	switch {
	case m.Text == quiz.ButtonNewQuestion:
		ev.Intent = quiz.IntentNewQuestion
	case m.Text == quiz.ButtonGiveUp:
		ev.Intent = quiz.IntentGiveUp
	case isGreeting(m.Text):
		ev.Intent = quiz.IntentStart
	default:
		ev.Intent = quiz.IntentFreeText
	}

	replies, _, err := b.engine.Handle(ctx, ev)
	if err != nil {
		replies = []quiz.Reply{errorReply(err)}
	}
	for _, r := range replies {
		if err := b.vk.SendMessage(ctx, m.UserID, r.Text, r.SuggestedReplies); err != nil {
			log.Printf("vk send failed for user %d: %v", m.UserID, err)
		}
	}
}

// VK has no /start command; a plain greeting opens the conversation.
func isGreeting(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "start", "hi", "hello":
		return true
	}
	return false
}
