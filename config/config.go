package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	LLM        LLMConfig
	MarketData MarketDataConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Password string
	Port     string
}

// AuthConfig holds session parameters
type AuthConfig struct {
	SessionTTL time.Duration
}

// LLMConfig holds generative model configuration, including the retry
// policy applied by the feedback invoker.
type LLMConfig struct {
	Endpoint       string
	APIKey         string
	Model          string
	MaxRetries     int
	RetryDelay     time.Duration
	Timeout        time.Duration
	StrictTaxonomy bool
}

// MarketDataConfig holds market context provider configuration
type MarketDataConfig struct {
	URL         string
	Timeout     time.Duration
	MarketIndex string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("SERVER_PORT", 8000),
		},

		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			Name:     getEnvOrDefault("DB_NAME", "invest_retro"),
			User:     getEnvOrDefault("DB_USER", "invest_retro"),
			Password: getEnvOrDefault("DB_PASSWORD", "invest_retro123"),
		},

		Redis: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
		},

		Auth: AuthConfig{
			SessionTTL: time.Duration(getEnvInt("SESSION_TTL_MINUTES", 30)) * time.Minute,
		},

		LLM: LLMConfig{
			Endpoint:       getEnvOrDefault("LLM_ENDPOINT", "https://api.openai.com/v1"),
			APIKey:         os.Getenv("LLM_API_KEY"),
			Model:          getEnvOrDefault("LLM_MODEL", "gpt-4o"),
			MaxRetries:     getEnvInt("LLM_MAX_RETRIES", 3),
			RetryDelay:     getEnvDuration("LLM_RETRY_DELAY", time.Second),
			Timeout:        getEnvDuration("LLM_TIMEOUT", 30*time.Second),
			StrictTaxonomy: getEnvOrDefault("LLM_STRICT_TAXONOMY", "false") == "true",
		},

		MarketData: MarketDataConfig{
			URL:         getEnvOrDefault("MARKET_DATA_URL", "http://data_processor:5001"),
			Timeout:     getEnvDuration("MARKET_DATA_TIMEOUT", 10*time.Second),
			MarketIndex: getEnvOrDefault("MARKET_INDEX", "^KS11"),
		},
	}
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvDuration gets environment variable as a Go duration string
// (e.g. "30s", "500ms") or returns default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
