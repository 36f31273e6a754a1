package config

import (
	"os"
	"testing"
	"time"
)

// clearEnv unsets every variable Load reads so host settings don't leak into tests
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "HOST", "REQUEST_TIMEOUT_SECONDS", "LLM_PROVIDER",
		"GEMINI_API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL",
		"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
		"ALCHEMYST_AI_API_KEY", "ALCHEMYST_BASE_URL",
		"CONTEXT_BUCKET", "ARCHIVE_RETENTION_HOURS", "ARCHIVE_PRUNE_SCHEDULE",
		"REQUIRE_CONTEXT_FILE", "LOG_LEVEL", "LOG_FORMAT",
	} {
		if value, ok := os.LookupEnv(key); ok {
			os.Unsetenv(key)
			t.Cleanup(func() { os.Setenv(key, value) })
		}
	}
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("ALCHEMYST_AI_API_KEY", "alch-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GeminiAPIKey != "test-key" {
		t.Errorf("Expected GeminiAPIKey to be 'test-key', got '%s'", cfg.GeminiAPIKey)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected Port to be '8080', got '%s'", cfg.Port)
	}

	if cfg.GeminiModel != "gemini-2.5-flash-lite" {
		t.Errorf("Expected GeminiModel to be 'gemini-2.5-flash-lite', got '%s'", cfg.GeminiModel)
	}

	if cfg.LLMProvider != ProviderGemini {
		t.Errorf("Expected LLMProvider to be '%s', got '%s'", ProviderGemini, cfg.LLMProvider)
	}

	if !cfg.RequireContextFile {
		t.Error("Expected RequireContextFile to default to true")
	}

	if !cfg.HasGenerationCredentials() {
		t.Error("Expected generation credentials to be detected")
	}

	if !cfg.HasContextStore() {
		t.Error("Expected context store to be detected")
	}

	if cfg.RequestTimeoutDuration() != 60*time.Second {
		t.Errorf("Expected 60s request timeout, got %v", cfg.RequestTimeoutDuration())
	}

	if cfg.ArchiveRetention() != 168*time.Hour {
		t.Errorf("Expected 168h retention, got %v", cfg.ArchiveRetention())
	}
}

func TestLoadWithoutCredentials(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected config without credentials to load, got %v", err)
	}

	if cfg.HasGenerationCredentials() {
		t.Error("Expected no generation credentials")
	}

	if cfg.HasContextStore() {
		t.Error("Expected no context store")
	}
}

func TestOpenAIProviderCredentials(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.LLMProvider != ProviderOpenAI {
		t.Errorf("Expected provider 'openai', got '%s'", cfg.LLMProvider)
	}

	if cfg.HasGenerationCredentials() {
		t.Error("A Gemini key must not count as OpenAI credentials")
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		expectError bool
		errorField  string
	}{
		{
			name:        "invalid provider",
			env:         map[string]string{"LLM_PROVIDER": "claude"},
			expectError: true,
			errorField:  "LLM_PROVIDER",
		},
		{
			name:        "non numeric port",
			env:         map[string]string{"PORT": "http"},
			expectError: true,
			errorField:  "PORT",
		},
		{
			name:        "zero request timeout",
			env:         map[string]string{"REQUEST_TIMEOUT_SECONDS": "0"},
			expectError: true,
			errorField:  "REQUEST_TIMEOUT_SECONDS",
		},
		{
			name:        "negative retention",
			env:         map[string]string{"ARCHIVE_RETENTION_HOURS": "-1"},
			expectError: true,
			errorField:  "ARCHIVE_RETENTION_HOURS",
		},
		{
			name:        "unknown log format",
			env:         map[string]string{"LOG_FORMAT": "xml"},
			expectError: true,
			errorField:  "LOG_FORMAT",
		},
		{
			name:        "valid configuration",
			env:         map[string]string{"LLM_PROVIDER": "openai", "LOG_FORMAT": "console"},
			expectError: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range test.env {
				t.Setenv(key, value)
			}

			_, err := Load()
			if test.expectError && err == nil {
				t.Errorf("Expected validation error for %s", test.errorField)
			}
			if !test.expectError && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
			if test.expectError && err != nil {
				configErr, ok := err.(*ConfigError)
				if !ok {
					t.Errorf("Expected ConfigError, got %T", err)
				} else if configErr.Field != test.errorField {
					t.Errorf("Expected error field '%s', got '%s'", test.errorField, configErr.Field)
				}
			}
		})
	}
}

func TestGetEnvOrDefaultBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		expected     bool
	}{
		{"true value", "true", false, true},
		{"false value", "0", true, false},
		{"invalid value", "maybe", true, true},
		{"missing value", "", false, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL_KEY", test.envValue)

			if result := getEnvOrDefaultBool("TEST_BOOL_KEY", test.defaultValue); result != test.expected {
				t.Errorf("Expected %v, got %v", test.expected, result)
			}
		})
	}
}

func TestGetEnvOrDefaultInt(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue int
		expected     int
	}{
		{"valid integer environment variable", "50", 100, 50},
		{"invalid integer environment variable", "invalid", 100, 100},
		{"missing environment variable", "", 100, 100},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Setenv("TEST_INT_KEY", test.envValue)

			if result := getEnvOrDefaultInt("TEST_INT_KEY", test.defaultValue); result != test.expected {
				t.Errorf("Expected %d, got %d", test.expected, result)
			}
		})
	}
}
