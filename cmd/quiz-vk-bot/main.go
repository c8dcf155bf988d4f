package main

import (
	"context"
	"log"

	"quiz-bot/internal/bot"
	"quiz-bot/internal/quiz"
)

func main() {
	cfg := bot.LoadConfig()
	if cfg.VKToken == "" {
		log.Fatal("VK_GROUP_TOKEN is required")
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

	app := bot.NewVKBot(cfg, engine)

	log.Printf("starting vk quiz bot with %d questions", corpus.Len())
	if err := app.StartPolling(context.Background()); err != nil {
		log.Fatalf("polling error: %v", err)
	}
}
