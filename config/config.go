package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the provenance service
type Config struct {
	// Server configuration
	Port           string
	AllowedOrigins string

	// OpenRouter configuration
	OpenRouterAPIKey string
	OpenRouterModel  string
	SiteURL          string
	SiteName         string

	// Upstream call configuration
	UpstreamTimeout time.Duration

	// Response validation configuration
	ParserStrict bool

	// Scan history configuration
	HistoryFile  string
	HistoryLimit int
}

// Load loads configuration from environment variables
func Load() *Config {
	config := &Config{
		// Server defaults
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),

		// OpenRouter defaults
		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel:  getEnv("OPENROUTER_MODEL", "openai/gpt-4o"),
		SiteURL:          getEnv("SITE_URL", "http://localhost:3000"),
		SiteName:         getEnv("SITE_NAME", "Provenance"),

		// Upstream defaults
		UpstreamTimeout: getDurationEnv("UPSTREAM_TIMEOUT", 60*time.Second),

		// Validation defaults: presence checks only, like the original client
		ParserStrict: getBoolEnv("PARSER_STRICT", false),

		// History defaults
		HistoryFile:  getEnv("HISTORY_FILE", "./provenance_scans.json"),
		HistoryLimit: getIntEnv("HISTORY_LIMIT", 6),
	}

	return config
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnv gets a boolean environment variable or returns a default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
