package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer       string // Issuer claim minted into session tokens
	TokenSecret  string // Required in prod: HMAC secret for session tokens
	SecretFile   string // Path to the credential cipher secret file (default: ./secret)
	LegacySecret string // Optional: previous cipher secret, tried on decrypt only

	DatabaseFile         string        // Path to SQLite database file (default: ./standardauth.db)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Orphan sweep interval (default: 1h)
	SessionTTL           time.Duration // Session token lifetime (default: 1h)
	RememberTTL          time.Duration // Remember-me token lifetime (default: 30 days)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:               getEnvOrDefault("AUTH_ISSUER", "standardauth"),
		TokenSecret:          os.Getenv("AUTH_TOKEN_SECRET"),
		SecretFile:           getEnvOrDefault("AUTH_SECRET_FILE", "secret"),
		LegacySecret:         os.Getenv("AUTH_LEGACY_SECRET"),
		DatabaseFile:         getEnvOrDefault("AUTH_DATABASE_FILE", "standardauth.db"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		SessionTTL:           getEnvDurationOrDefault("AUTH_SESSION_TTL", 1*time.Hour),
		RememberTTL:          getEnvDurationOrDefault("AUTH_REMEMBER_TTL", 30*24*time.Hour),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Durations first ("1h", "30m", "90s"), bare integers mean minutes.
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
