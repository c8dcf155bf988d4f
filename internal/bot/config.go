package bot

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"quiz-bot/pkg/store"
)

type Config struct {
	TelegramToken string
	VKToken       string
	RedisURL      string
	PostgresDSN   string
	QuizFile      string
	QuizDir       string
}

func LoadConfig() *Config {
	// best-effort: a missing .env just means plain process env
	_ = godotenv.Load()

	c := &Config{}
	c.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	c.VKToken = os.Getenv("VK_GROUP_TOKEN")
	c.RedisURL = os.Getenv("REDIS_URL")
	c.PostgresDSN = os.Getenv("DATABASE_URL")
	c.QuizFile = getenvOr("QUIZ_FILE", "question-answer.json")
	c.QuizDir = getenvOr("QUIZ_QUESTIONS_DIRECTORY", "quiz-questions")
	return c
}

// OpenStore picks the session backend from the config: Redis when
// REDIS_URL is set, otherwise Postgres when DATABASE_URL is set,
// otherwise in-memory.
func OpenStore(cfg *Config) (store.Store, error) {
	switch {
	case cfg.RedisURL != "":
		return store.NewRedisStore(cfg.RedisURL)
	case cfg.PostgresDSN != "":
		return store.NewPostgresStore(cfg.PostgresDSN)
	default:
		log.Printf("no REDIS_URL or DATABASE_URL set; sessions are in-memory and lost on restart")
		return store.NewMemoryStore(), nil
	}
}

func getenvOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
