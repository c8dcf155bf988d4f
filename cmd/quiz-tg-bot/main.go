package main

import (
	"log"

	"quiz-bot/internal/bot"
	"quiz-bot/internal/quiz"
)

func main() {
	cfg := bot.LoadConfig()
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}

	st, err := bot.OpenStore(cfg)
	if err != nil {
		log.Fatalf("session store init error: %v", err)
	}

	corpus, err := quiz.LoadCorpus(cfg.QuizFile)
	if err != nil {
		log.Fatalf("corpus load error: %v", err)
	}

	engine, err := quiz.NewEngine(corpus, st)
	if err != nil {
		log.Fatalf("engine init error: %v", err)
	}

	app, err := bot.NewTelegramBot(cfg, engine)
	if err != nil {
		log.Fatalf("telegram bot init error: %v", err)
	}

	log.Printf("starting telegram quiz bot with %d questions", corpus.Len())
	if err := app.StartPolling(); err != nil {
		log.Fatalf("polling error: %v", err)
	}
}
