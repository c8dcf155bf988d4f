// quiz-parse converts a directory of KOI8-R quiz archives into the
// question-answer.json corpus the bots load at startup.
package main

import (
	"log"

	"quiz-bot/internal/bot"
	"quiz-bot/internal/quiz"
)

func main() {
	cfg := bot.LoadConfig()

	pairs, err := quiz.LoadQuizDir(cfg.QuizDir)
	if err != nil {
		log.Fatalf("quiz archive parse error: %v", err)
	}
	if len(pairs) == 0 {
		log.Fatalf("no questions found in %s", cfg.QuizDir)
	}

	if err := quiz.WriteCorpusFile(cfg.QuizFile, pairs); err != nil {
		log.Fatalf("corpus write error: %v", err)
	}
	log.Printf("wrote %d questions to %s", len(pairs), cfg.QuizFile)
}
