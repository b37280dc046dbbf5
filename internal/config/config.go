package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// NATS Config; empty URL disables cross-instance broadcast
	NATSURL string `env:"NATS_URL"`

	// Notification webhook
	WebhookURL     string        `env:"WEBHOOK_URL"`
	WebhookSecret  string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`

	// Outbox delivery worker
	OutboxMaxRetries int           `env:"OUTBOX_MAX_RETRIES" envDefault:"3"`
	OutboxBaseDelay  time.Duration `env:"OUTBOX_BASE_DELAY" envDefault:"1s"`

	// Agency counter snapshot
	CounterSnapshotTTL time.Duration `env:"COUNTER_SNAPSHOT_TTL" envDefault:"60s"`
	CounterRefreshSpec string        `env:"COUNTER_REFRESH_SPEC" envDefault:"@every 30s"`

	// Assignment lifecycle: forward, strict or permissive
	TransitionPolicy string `env:"ASSIGNMENT_TRANSITION_POLICY" envDefault:"forward"`

	// Analytics Config
	AnalyticsWindowDays int `env:"ANALYTICS_WINDOW_DAYS" envDefault:"30"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:             getEnvAsInt("REDIS_DB", 0),
		NATSURL:             os.Getenv("NATS_URL"),
		WebhookURL:          os.Getenv("WEBHOOK_URL"),
		WebhookSecret:       os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:      getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		OutboxMaxRetries:    getEnvAsInt("OUTBOX_MAX_RETRIES", 3),
		OutboxBaseDelay:     getEnvAsDuration("OUTBOX_BASE_DELAY", time.Second),
		CounterSnapshotTTL:  getEnvAsDuration("COUNTER_SNAPSHOT_TTL", 60*time.Second),
		CounterRefreshSpec:  getEnv("COUNTER_REFRESH_SPEC", "@every 30s"),
		TransitionPolicy:    getEnv("ASSIGNMENT_TRANSITION_POLICY", "forward"),
		AnalyticsWindowDays: getEnvAsInt("ANALYTICS_WINDOW_DAYS", 30),
	}

	apiKeysStr := os.Getenv("API_KEYS")
	if apiKeysStr != "" {
		cfg.APIKeys = strings.Split(apiKeysStr, ",")
		for i, key := range cfg.APIKeys {
			cfg.APIKeys[i] = strings.TrimSpace(key)
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.OutboxMaxRetries < 1 {
		cfg.OutboxMaxRetries = 1
	}

	return cfg, nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
