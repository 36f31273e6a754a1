package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported generative-AI providers
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds all configuration for the application
type Config struct {
	// Server settings
	Port           string `json:"port"`
	Host           string `json:"host"`
	RequestTimeout int    `json:"request_timeout_seconds"`

	// Generation settings
	LLMProvider   string `json:"llm_provider"`
	GeminiAPIKey  string `json:"-"` // Don't expose in JSON
	GeminiModel   string `json:"gemini_model"`
	GeminiBaseURL string `json:"gemini_base_url,omitempty"`
	OpenAIAPIKey  string `json:"-"` // Don't expose in JSON
	OpenAIModel   string `json:"openai_model"`
	OpenAIBaseURL string `json:"openai_base_url,omitempty"`

	// Context store settings
	AlchemystAPIKey  string `json:"-"` // Don't expose in JSON
	AlchemystBaseURL string `json:"alchemyst_base_url"`

	// Context archive settings
	ContextBucket         string `json:"context_bucket"` // empty means in-memory
	ArchiveRetentionHours int    `json:"archive_retention_hours"`
	ArchivePruneSchedule  string `json:"archive_prune_schedule"`

	// Request handling
	RequireContextFile bool `json:"require_context_file"`

	// Logging
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	config := &Config{
		Port:                  getEnvOrDefault("PORT", "8080"),
		Host:                  getEnvOrDefault("HOST", "0.0.0.0"),
		RequestTimeout:        getEnvOrDefaultInt("REQUEST_TIMEOUT_SECONDS", 60),
		LLMProvider:           strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderGemini)),
		GeminiAPIKey:          getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:           getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash-lite"),
		GeminiBaseURL:         getEnvOrDefault("GEMINI_BASE_URL", ""),
		OpenAIAPIKey:          getEnvOrDefault("OPENAI_API_KEY", ""),
		OpenAIModel:           getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:         getEnvOrDefault("OPENAI_BASE_URL", ""),
		AlchemystAPIKey:       getEnvOrDefault("ALCHEMYST_AI_API_KEY", ""),
		AlchemystBaseURL:      getEnvOrDefault("ALCHEMYST_BASE_URL", "https://platform-backend.getalchemystai.com"),
		ContextBucket:         getEnvOrDefault("CONTEXT_BUCKET", ""),
		ArchiveRetentionHours: getEnvOrDefaultInt("ARCHIVE_RETENTION_HOURS", 168),
		ArchivePruneSchedule:  getEnvOrDefault("ARCHIVE_PRUNE_SCHEDULE", "@hourly"),
		RequireContextFile:    getEnvOrDefaultBool("REQUIRE_CONTEXT_FILE", true),
		LogLevel:              strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:             strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json")),
	}

	return config, config.validate()
}

// validate checks that configured values are usable. No credential is
// required: a missing key switches the matching step to its degraded path.
func (c *Config) validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return &ConfigError{Field: "PORT", Message: "must be a number"}
	}
	if c.LLMProvider != ProviderGemini && c.LLMProvider != ProviderOpenAI {
		return &ConfigError{Field: "LLM_PROVIDER", Message: "must be gemini or openai"}
	}
	if c.RequestTimeout <= 0 {
		return &ConfigError{Field: "REQUEST_TIMEOUT_SECONDS", Message: "must be positive"}
	}
	if c.ArchiveRetentionHours <= 0 {
		return &ConfigError{Field: "ARCHIVE_RETENTION_HOURS", Message: "must be positive"}
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return &ConfigError{Field: "LOG_FORMAT", Message: "must be json or console"}
	}
	return nil
}

// HasGenerationCredentials reports whether the selected provider has an API key
func (c *Config) HasGenerationCredentials() bool {
	switch c.LLMProvider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey != ""
	default:
		return c.GeminiAPIKey != ""
	}
}

// HasContextStore reports whether the context store is configured
func (c *Config) HasContextStore() bool {
	return c.AlchemystAPIKey != ""
}

// RequestTimeoutDuration returns the per-request deadline
func (c *Config) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// ArchiveRetention returns how long archived context is kept
func (c *Config) ArchiveRetention() time.Duration {
	return time.Duration(c.ArchiveRetentionHours) * time.Hour
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default if not set
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvOrDefaultBool returns environment variable value as bool or default if not set
func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
