// Package config provides configuration loading and validation for the interview agent.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config represents the service configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values come from the environment or Defaults.
type Config struct {
	// Server
	Port        int      `json:"port,omitempty" yaml:"port,omitempty"`
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`

	// Storage
	DatabaseDriver string `json:"database_driver,omitempty" yaml:"database_driver,omitempty"` // "postgres" or "sqlite"
	DatabaseURL    string `json:"database_url,omitempty" yaml:"database_url,omitempty"`       // PostgreSQL connection URL
	SQLitePath     string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`         // SQLite database file

	// Model provider
	LLMProvider string `json:"llm_provider,omitempty" yaml:"llm_provider,omitempty"` // gemini, openai or anthropic
	APIKey      string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	// Model overrides every tier when set
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
	// LLMBaseURL points at a proxy or a compatible endpoint
	LLMBaseURL             string `json:"llm_base_url,omitempty" yaml:"llm_base_url,omitempty"`
	ProviderTimeoutSeconds int    `json:"provider_timeout_seconds,omitempty" yaml:"provider_timeout_seconds,omitempty"`

	// Interview limits
	DefaultQuestionCount int `json:"default_question_count,omitempty" yaml:"default_question_count,omitempty"`
	MaxQuestionCount     int `json:"max_question_count,omitempty" yaml:"max_question_count,omitempty"`
	MaxResumeChars       int `json:"max_resume_chars,omitempty" yaml:"max_resume_chars,omitempty"`
	HistoryLimit         int `json:"history_limit,omitempty" yaml:"history_limit,omitempty"`

	// Logging
	LogLevel  string `json:"log_level,omitempty" yaml:"log_level,omitempty"`   // debug, info, warn, error
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty"` // text or json
}

// Defaults returns the values used when neither the file nor the environment sets a field.
func Defaults() Config {
	return Config{
		Port:                   8080,
		CORSOrigins:            []string{"http://localhost:3000"},
		DatabaseDriver:         DriverPostgres,
		SQLitePath:             "interview_coach.db",
		LLMProvider:            "gemini",
		ProviderTimeoutSeconds: 30,
		DefaultQuestionCount:   5,
		MaxQuestionCount:       20,
		MaxResumeChars:         3000,
		HistoryLimit:           50,
		LogLevel:               "info",
		LogFormat:              "text",
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// ApplyEnv overlays environment variables onto c. Set variables win over file values.
func (c *Config) ApplyEnv() error {
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.DatabaseDriver, "DATABASE_DRIVER")
	setString(&c.SQLitePath, "SQLITE_PATH")
	setString(&c.LLMProvider, "LLM_PROVIDER")
	setString(&c.Model, "LLM_MODEL")
	setString(&c.LLMBaseURL, "LLM_BASE_URL")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.CORSOrigins = append(c.CORSOrigins, origin)
			}
		}
	}

	for name, dst := range map[string]*int{
		"PORT":                     &c.Port,
		"PROVIDER_TIMEOUT_SECONDS": &c.ProviderTimeoutSeconds,
		"DEFAULT_QUESTION_COUNT":   &c.DefaultQuestionCount,
		"MAX_QUESTION_COUNT":       &c.MaxQuestionCount,
	} {
		if err := setInt(dst, name); err != nil {
			return err
		}
	}

	if c.APIKey == "" {
		c.APIKey = apiKeyFromEnv(c.LLMProvider)
	}
	return nil
}

// apiKeyFromEnv picks the key variable for the provider, falling back to LLM_API_KEY.
func apiKeyFromEnv(provider string) string {
	var name string
	switch strings.ToLower(provider) {
	case "openai":
		name = "OPENAI_API_KEY"
	case "anthropic":
		name = "ANTHROPIC_API_KEY"
	default:
		name = "GEMINI_API_KEY"
	}
	if key := os.Getenv(name); key != "" {
		return key
	}
	return os.Getenv("LLM_API_KEY")
}

func setString(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func setInt(dst *int, name string) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %v", name, err)
	}
	*dst = n
	return nil
}

// Validate checks that the configuration has valid values.
// Missing values are not errors; MergeWithDefaults fills them.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535, got %d", c.Port)
	}

	switch c.DatabaseDriver {
	case "", DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("config error: unknown database_driver %q (expected postgres or sqlite)", c.DatabaseDriver)
	}

	switch strings.ToLower(c.LLMProvider) {
	case "", "gemini", "openai", "anthropic":
	default:
		return fmt.Errorf("config error: unknown llm_provider %q", c.LLMProvider)
	}

	// Validate numeric ranges
	if c.ProviderTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'provider_timeout_seconds' must be non-negative")
	}
	if c.DefaultQuestionCount < 0 || c.MaxQuestionCount < 0 {
		return fmt.Errorf("config error: question counts must be non-negative")
	}
	if c.DefaultQuestionCount > 0 && c.MaxQuestionCount > 0 && c.DefaultQuestionCount > c.MaxQuestionCount {
		return fmt.Errorf("config error: 'default_question_count' (%d) exceeds 'max_question_count' (%d)",
			c.DefaultQuestionCount, c.MaxQuestionCount)
	}
	if c.MaxResumeChars < 0 {
		return fmt.Errorf("config error: 'max_resume_chars' must be non-negative")
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("config error: 'history_limit' must be non-negative")
	}

	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("config error: unknown log_format %q (expected text or json)", c.LogFormat)
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseDriver == "" {
		result.DatabaseDriver = defaults.DatabaseDriver
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SQLitePath == "" {
		result.SQLitePath = defaults.SQLitePath
	}
	if result.LLMProvider == "" {
		result.LLMProvider = defaults.LLMProvider
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.LLMBaseURL == "" {
		result.LLMBaseURL = defaults.LLMBaseURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if len(result.CORSOrigins) == 0 {
		result.CORSOrigins = defaults.CORSOrigins
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.ProviderTimeoutSeconds == 0 {
		result.ProviderTimeoutSeconds = defaults.ProviderTimeoutSeconds
	}
	if result.DefaultQuestionCount == 0 {
		result.DefaultQuestionCount = defaults.DefaultQuestionCount
	}
	if result.MaxQuestionCount == 0 {
		result.MaxQuestionCount = defaults.MaxQuestionCount
	}
	if result.MaxResumeChars == 0 {
		result.MaxResumeChars = defaults.MaxResumeChars
	}
	if result.HistoryLimit == 0 {
		result.HistoryLimit = defaults.HistoryLimit
	}

	return result
}

// ProviderTimeout is the per-call bound on model requests.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSeconds) * time.Second
}

// Load reads the optional config file, overlays the environment, validates and fills defaults.
func Load(path string) (Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg.MergeWithDefaults(Defaults()), nil
}
