package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds everything the process reads from the environment.
type Config struct {
	Port        string
	MongoURI    string
	MongoDBName string

	JWTSecret   string
	TokenExpiry time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPPassword string
	SMTPTimeout  time.Duration

	AllowedOrigin string

	// WorkerInterval is how long the recurring worker sleeps between
	// cycles; ReminderLeadDays is the advance-reminder lead time.
	WorkerInterval   time.Duration
	ReminderLeadDays int
}

// LoadConfig reads configuration from the environment, loading a .env
// file first when present.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, relying on environment variables")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGO_DB", "fintrack"),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		TokenExpiry: getDuration("TOKEN_EXPIRY", 24*time.Hour),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPSender:   getEnv("SMTP_SENDER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPTimeout:  getDuration("SMTP_TIMEOUT", 10*time.Second),

		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),

		WorkerInterval:   getDuration("WORKER_INTERVAL", time.Minute),
		ReminderLeadDays: getInt("REMINDER_LEAD_DAYS", 7),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Warnf("Invalid value for %s, using default", key)
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Warnf("Invalid duration for %s, using default", key)
	}
	return fallback
}
