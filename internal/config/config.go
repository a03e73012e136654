package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	Postgres PostgresConfig
	Gemini   GeminiConfig
	OpenAI   OpenAIConfig
	History  HistoryConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Addr string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// PostgresConfig is optional; the history archive is skipped when Host is empty.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type GeminiConfig struct {
	APIKey string
	// Model is the fast low-latency variant used by default.
	Model string
	// ProModel is the deeper-reasoning variant, selected with UsePro.
	ProModel string
	UsePro   bool
	// ThinkingBudget caps reasoning tokens when the pro variant is active.
	ThinkingBudget int
}

type OpenAIConfig struct {
	APIKey         string
	Model          string
	EnableFallback bool
}

type HistoryConfig struct {
	Limit int
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr: getEnv("SERVER_ADDR", ":8487"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", ""),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "warmtalk"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "warmtalk"),
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
			ProModel:       getEnv("GEMINI_PRO_MODEL", "gemini-3-pro-preview"),
			UsePro:         getEnvBool("GEMINI_USE_PRO", false),
			ThinkingBudget: getEnvInt("GEMINI_THINKING_BUDGET", 0),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-5-mini"),
			EnableFallback: getEnvBool("OPENAI_ENABLE_FALLBACK", true),
		},
		History: HistoryConfig{
			Limit: getEnvInt("HISTORY_LIMIT", 10),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	// GEMINI_API_KEY is deliberately not checked at startup: a missing
	// credential surfaces as a ConfigError on the first translate call so the
	// user gets an actionable message instead of a boot crash.
	if c.History.Limit <= 0 {
		return fmt.Errorf("HISTORY_LIMIT must be positive")
	}
	if c.Gemini.ThinkingBudget < 0 {
		return fmt.Errorf("GEMINI_THINKING_BUDGET must not be negative")
	}
	return nil
}

// ActiveModel resolves the deployment-time fast/pro choice.
func (c *GeminiConfig) ActiveModel() string {
	if c.UsePro && c.ProModel != "" {
		return c.ProModel
	}
	return c.Model
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
