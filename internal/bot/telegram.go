package bot

import (
	"context"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"quiz-bot/internal/quiz"
)

type TelegramBotInterface interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

var newTelegramBot = func(token string) (TelegramBotInterface, error) {
	return tgbotapi.NewBotAPI(token)
}

// TelegramBot translates Telegram updates into engine events and renders
// replies back, quick-reply keyboard included. Telegram chat IDs are used
// as the session key unprefixed; the VK adapter prefixes its keys, so the
// two can share one store.
type TelegramBot struct {
	tg     TelegramBotInterface
	engine *quiz.Engine
}

func NewTelegramBot(cfg *Config, engine *quiz.Engine) (*TelegramBot, error) {
	tg, err := newTelegramBot(cfg.TelegramToken)
	if err != nil {
		return nil, err
	}
	return &TelegramBot{tg: tg, engine: engine}, nil
}

func (b *TelegramBot) StartPolling() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.tg.GetUpdatesChan(u)
	for upd := range updates {
		if upd.Message == nil {
			continue
		}
		// one worker per event; same-user ordering is the engine's job
		go b.handleMessage(upd.Message)
	}
	return nil
}

func (b *TelegramBot) handleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	ev := quiz.Event{UserID: strconv.FormatInt(chatID, 10), Text: msg.Text}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			ev.Intent = quiz.IntentStart
		case "help":
			b.send(chatID, quiz.Reply{Text: "Send /start to begin the quiz."})
			return
		default:
			b.send(chatID, quiz.Reply{Text: "Unknown command. Send /start to begin the quiz."})
			return
		}
	} else {
		switch msg.Text {
		case quiz.ButtonNewQuestion:
			ev.Intent = quiz.IntentNewQuestion
		case quiz.ButtonGiveUp:
			ev.Intent = quiz.IntentGiveUp
		default:
			ev.Intent = quiz.IntentFreeText
		}
	}

	replies, _, err := b.engine.Handle(context.Background(), ev)
	if err != nil {
		replies = []quiz.Reply{errorReply(err)}
	}
	for _, r := range replies {
		b.send(chatID, r)
	}
}

func (b *TelegramBot) send(chatID int64, r quiz.Reply) {
	msg := tgbotapi.NewMessage(chatID, r.Text)
	if len(r.SuggestedReplies) > 0 {
		msg.ReplyMarkup = replyKeyboard(r.SuggestedReplies)
	}
	if _, err := b.tg.Send(msg); err != nil {
		log.Printf("telegram send failed for chat %d: %v", chatID, err)
	}
}

// replyKeyboard lays suggestions out two buttons per row, matching the
// original bot's keyboard shape.
func replyKeyboard(suggestions []string) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for i := 0; i < len(suggestions); i += 2 {
		row := []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(suggestions[i])}
		if i+1 < len(suggestions) {
			row = append(row, tgbotapi.NewKeyboardButton(suggestions[i+1]))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewReplyKeyboard(rows...)
}
