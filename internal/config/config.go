package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the server
type Config struct {
	// HTTP
	ListenAddr string

	// Remote gift-code service
	APIBaseURL         string
	SignSalt           string
	HTTPTimeoutSeconds int

	// Batch engines: delay between consecutive remote calls
	RequestDelayMs int

	// Database
	DatabasePath string

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:   getEnvOrDefault("LISTEN_ADDR", ":8080"),
		APIBaseURL:   getEnvOrDefault("API_BASE_URL", "https://kingshot-giftcode.centurygame.com"),
		SignSalt:     os.Getenv("SIGN_SALT"),
		DatabasePath: getEnvOrDefault("DATABASE_PATH", "./data/giftcode.db"),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
	}

	// Parse request delay
	delayStr := getEnvOrDefault("REQUEST_DELAY_MS", "2000")
	delay, err := strconv.Atoi(delayStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_DELAY_MS: %w", err)
	}
	if delay < 0 {
		return nil, fmt.Errorf("REQUEST_DELAY_MS must not be negative")
	}
	cfg.RequestDelayMs = delay

	// Parse HTTP timeout
	timeoutStr := getEnvOrDefault("HTTP_TIMEOUT_SECONDS", "10")
	timeout, err := strconv.Atoi(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT_SECONDS: %w", err)
	}
	cfg.HTTPTimeoutSeconds = timeout

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
