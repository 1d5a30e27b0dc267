package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/db"
	"github.com/jonathan/interview-coach/internal/db/sqlite"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/observability"
	"github.com/jonathan/interview-coach/internal/server"
)

// appStore is what every command needs from storage. Both the PostgreSQL and
// the SQLite stores implement it.
type appStore interface {
	server.DBClient
	interview.Store
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close()
}

var (
	_ appStore = (*db.DB)(nil)
	_ appStore = (*sqlite.DB)(nil)
)

// loadConfig reads --config, the environment and the defaults.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger and installs it as the slog default.
func newLogger(cfg config.Config) (*slog.Logger, error) {
	logger, err := observability.NewLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}

// openStore connects to the configured database.
func openStore(ctx context.Context, cfg config.Config) (appStore, error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
		store, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

// newLLMClient builds the model client for the configured provider.
func newLLMClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	provider, err := llm.ParseProvider(cfg.LLMProvider)
	if err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("an API key for %s is required (set %s_API_KEY or LLM_API_KEY)", provider, envPrefix(provider))
	}

	llmCfg := llm.DefaultConfigFor(provider)
	if cfg.Model != "" {
		llmCfg = llmCfg.WithAllModels(cfg.Model)
	}
	llmCfg.BaseURL = cfg.LLMBaseURL

	return llm.NewClient(ctx, llmCfg, cfg.APIKey)
}

func envPrefix(p llm.Provider) string {
	switch p {
	case llm.ProviderOpenAI:
		return "OPENAI"
	case llm.ProviderAnthropic:
		return "ANTHROPIC"
	default:
		return "GEMINI"
	}
}

// engineOptions maps the config onto the engine knobs.
func engineOptions(cfg config.Config, logger *slog.Logger, observer interview.Observer) interview.Options {
	return interview.Options{
		ProviderTimeout:      cfg.ProviderTimeout(),
		DefaultQuestionCount: cfg.DefaultQuestionCount,
		MaxQuestionCount:     cfg.MaxQuestionCount,
		MaxResumeChars:       cfg.MaxResumeChars,
		DefaultHistoryLimit:  cfg.HistoryLimit,
		Logger:               logger,
		Observer:             observer,
	}
}
