// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// State backends understood by STATE_BACKEND.
const (
	StateBackendMemory   = "memory"
	StateBackendPostgres = "postgres"
	StateBackendRedis    = "redis"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetRateLimitPerSecond() float64
	GetRateLimitBurst() int
}

// StateConfig selects and addresses the persisted pipeline state.
type StateConfig interface {
	GetStateBackend() string
	GetWorkspace() string
	GetRedisURL() string
	GetRedisStateKeyPrefix() string
	GetMaxWorkspaces() int
}

// SchedulerConfig provides settings for asynq follow-up reminders.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// SMTPConfig provides settings for follow-up reminder emails.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetReminderRecipient() string
	IsReminderEmailEnabled() bool
}

// EnrichmentConfig controls how enrichment results are fetched and merged.
type EnrichmentConfig interface {
	GetEnrichmentURL() string
	GetEnrichmentBatchSize() int
	GetEnrichmentTimeout() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                 string
	HTTPAddr            string
	DatabaseURL         string
	CORSAllowAll        bool
	CORSOrigins         []string
	CORSAllowCreds      bool
	RateLimitPerSecond  float64
	RateLimitBurst      int
	StateBackend        string
	Workspace           string
	MaxWorkspaces       int
	RedisURL            string
	RedisTLSInsecure    bool
	RedisStateKeyPrefix string
	AsynqQueueName      string
	AsynqConcurrency    int
	SMTPHost            string
	SMTPPort            int
	SMTPUsername        string
	SMTPPassword        string
	EmailFromName       string
	EmailFromAddress    string
	ReminderRecipient   string
	EnrichmentURL       string
	EnrichmentBatchSize int
	EnrichmentTimeout   time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string            { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool          { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string       { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool        { return c.CORSAllowCreds }
func (c *Config) GetRateLimitPerSecond() float64 { return c.RateLimitPerSecond }
func (c *Config) GetRateLimitBurst() int         { return c.RateLimitBurst }

// StateConfig implementation
func (c *Config) GetStateBackend() string        { return c.StateBackend }
func (c *Config) GetWorkspace() string           { return c.Workspace }
func (c *Config) GetRedisURL() string            { return c.RedisURL }
func (c *Config) GetRedisStateKeyPrefix() string { return c.RedisStateKeyPrefix }
func (c *Config) GetMaxWorkspaces() int          { return c.MaxWorkspaces }

// SchedulerConfig implementation
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string          { return c.SMTPHost }
func (c *Config) GetSMTPPort() int             { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string      { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string      { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string     { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string  { return c.EmailFromAddress }
func (c *Config) GetReminderRecipient() string { return c.ReminderRecipient }
func (c *Config) IsReminderEmailEnabled() bool {
	return c.SMTPHost != "" && c.ReminderRecipient != ""
}

// EnrichmentConfig implementation
func (c *Config) GetEnrichmentURL() string            { return c.EnrichmentURL }
func (c *Config) GetEnrichmentBatchSize() int         { return c.EnrichmentBatchSize }
func (c *Config) GetEnrichmentTimeout() time.Duration { return c.EnrichmentTimeout }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                 getEnv("APP_ENV", "development"),
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		CORSAllowAll:        corsAllowAll,
		CORSOrigins:         corsOrigins,
		CORSAllowCreds:      strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		RateLimitPerSecond:  mustFloat64(getEnv("RATE_LIMIT_PER_SECOND", "20")),
		RateLimitBurst:      mustInt(getEnv("RATE_LIMIT_BURST", "40")),
		StateBackend:        strings.ToLower(getEnv("STATE_BACKEND", StateBackendMemory)),
		Workspace:           getEnv("PIPELINE_WORKSPACE", "default"),
		MaxWorkspaces:       mustInt(getEnv("PIPELINE_MAX_WORKSPACES", "100")),
		RedisURL:            getEnv("REDIS_URL", ""),
		RedisTLSInsecure:    strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		RedisStateKeyPrefix: getEnv("REDIS_STATE_KEY_PREFIX", "leadflow:pipeline:"),
		AsynqQueueName:      getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:    mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:        getEnv("SMTP_USERNAME", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		EmailFromName:       getEnv("EMAIL_FROM_NAME", "LeadFlow"),
		EmailFromAddress:    getEnv("EMAIL_FROM_ADDRESS", ""),
		ReminderRecipient:   getEnv("REMINDER_RECIPIENT", ""),
		EnrichmentURL:       getEnv("ENRICHMENT_URL", ""),
		EnrichmentBatchSize: mustInt(getEnv("ENRICHMENT_BATCH_SIZE", "3")),
		EnrichmentTimeout:   mustDuration(getEnv("ENRICHMENT_TIMEOUT", "30s")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StateBackend {
	case StateBackendMemory:
	case StateBackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STATE_BACKEND is postgres")
		}
	case StateBackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when STATE_BACKEND is redis")
		}
	default:
		return fmt.Errorf("unknown STATE_BACKEND %q", c.StateBackend)
	}
	if c.IsReminderEmailEnabled() && c.EmailFromAddress == "" {
		return fmt.Errorf("EMAIL_FROM_ADDRESS is required when reminder email is enabled")
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if c.EnrichmentBatchSize < 1 {
		c.EnrichmentBatchSize = 1
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat64(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
