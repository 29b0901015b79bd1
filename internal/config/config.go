package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for every binary in this repository.
type Config struct {
	ServerPort string
	LogLevel   string
	LogJSON    bool

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// LLM provider used for mapping suggestions and email drafting.
	LLMProvider string
	LLMModel    string
	LLMAPIKey   string
	LLMBaseURL  string
	LLMTimeout  time.Duration

	// Response cache. An empty RedisURL selects the in-process cache.
	RedisURL string
	CacheTTL time.Duration

	NATSURL           string
	EmailSubject      string
	EmailQueueGroup   string
	SMTPHost          string
	SMTPPort          string
	SMTPUser          string
	SMTPPass          string
	DefaultFromEmail  string
	CronSecret        string
	FollowUpCron      string
	FollowUpTargetURL string
	FollowUpBatchSize int

	ImportMaxRows int
}

// Load reads a .env file when present and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogJSON:    getEnvBool("LOG_JSON", false),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "admin"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "outreach_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		LLMProvider: strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		LLMModel:    getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMAPIKey:   getEnv("LLM_API_KEY", ""),
		LLMBaseURL:  getEnv("LLM_BASE_URL", ""),

		RedisURL: getEnv("REDIS_URL", ""),

		NATSURL:           getEnv("NATS_URL", "nats://localhost:4222"),
		EmailSubject:      getEnv("EMAIL_SUBJECT", "outreach.email.send"),
		EmailQueueGroup:   getEnv("EMAIL_QUEUE_GROUP", "outreach-mailer"),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getEnv("SMTP_PORT", ""),
		SMTPUser:          getEnv("SMTP_USER", ""),
		SMTPPass:          getEnv("SMTP_PASS", ""),
		DefaultFromEmail:  getEnv("DEFAULT_FROM_EMAIL", "noreply@example.com"),
		CronSecret:        getEnv("CRON_SECRET", ""),
		FollowUpCron:      getEnv("FOLLOWUP_CRON", "0 */15 * * * *"),
		FollowUpTargetURL: getEnv("FOLLOWUP_TARGET_URL", "http://localhost:8080/api/v1/followups/run"),
	}

	var err error
	if cfg.LLMTimeout, err = getEnvDuration("LLM_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getEnvDuration("CACHE_TTL", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.FollowUpBatchSize, err = getEnvInt("FOLLOWUP_BATCH_SIZE", 50); err != nil {
		return nil, err
	}
	if cfg.ImportMaxRows, err = getEnvInt("IMPORT_MAX_ROWS", 10000); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DSN builds the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// LLMConfigured reports whether an LLM provider can be constructed.
// Ollama runs locally and needs no key.
func (c *Config) LLMConfigured() bool {
	return c.LLMProvider == "ollama" || c.LLMAPIKey != ""
}

// getEnv reads an environment variable with a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}
