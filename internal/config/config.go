package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port                   string
	DatabaseURL            string
	JWTSecret              string
	TokenTTL               time.Duration
	SweepInterval          time.Duration
	SweepBatchSize         int
	RateLimitPerMinute     int
	RateLimitBurst         int
	UserRateLimitPerMinute int
	UserRateLimitBurst     int
	RedisURL               string
	CORSOrigins            []string
	BcryptCost             int
	ChatbotLiveEnabled     bool
	NotifyProvider         string
	NotifyWebhookToken     string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	return Config{
		Port:                   port,
		DatabaseURL:            os.Getenv("DB_DSN"),
		JWTSecret:              os.Getenv("JWT_SECRET"),
		TokenTTL:               readDurationMinutes("TOKEN_TTL_MINUTES", 30),
		SweepInterval:          readDurationSeconds("SLA_SWEEP_INTERVAL_SECONDS", 300),
		SweepBatchSize:         readInt("SLA_SWEEP_BATCH_SIZE", 200),
		RateLimitPerMinute:     readInt("RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:         readInt("RATE_LIMIT_BURST", 30),
		UserRateLimitPerMinute: readInt("USER_RATE_LIMIT_PER_MIN", 600),
		UserRateLimitBurst:     readInt("USER_RATE_LIMIT_BURST", 120),
		RedisURL:               os.Getenv("REDIS_URL"),
		CORSOrigins:            readList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		BcryptCost:             readInt("BCRYPT_COST", 10),
		ChatbotLiveEnabled:     readBool("CHATBOT_LIVE_ENABLED", true),
		NotifyProvider:         os.Getenv("NOTIFY_PROVIDER"),
		NotifyWebhookToken:     os.Getenv("NOTIFY_WEBHOOK_TOKEN"),
	}
}

func readDurationMinutes(key string, fallback int) time.Duration {
	value := readInt(key, fallback)
	if value <= 0 {
		return time.Duration(fallback) * time.Minute
	}
	return time.Duration(value) * time.Minute
}

func readDurationSeconds(key string, fallback int) time.Duration {
	value := readInt(key, fallback)
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
