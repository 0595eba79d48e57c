package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string

	// Gemini model-backed understanding tier. Empty API key disables the
	// model tier; the deterministic pipeline handles every turn.
	GeminiAPIKey  string
	GeminiModelID string
	ModelTimeout  time.Duration

	// Booking behaviour
	DefaultVisitMinutes  int
	BookingBufferMinutes int
	SessionTTL           time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:                 getEnv("PORT", "8080"),
		Env:                  getEnv("ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:        getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		ModelTimeout:         getEnvAsDuration("MODEL_TIMEOUT", 8*time.Second),
		DefaultVisitMinutes:  getEnvAsInt("DEFAULT_VISIT_MINUTES", 30),
		BookingBufferMinutes: getEnvAsInt("BOOKING_BUFFER_MINUTES", 5),
		SessionTTL:           getEnvAsDuration("SESSION_TTL", 24*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
