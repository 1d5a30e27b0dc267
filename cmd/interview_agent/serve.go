package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/observability"
	"github.com/jonathan/interview-coach/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the interview, résumé and account endpoints plus /metrics.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config and PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "Apply the schema before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(background(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if serveMigrate {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	}

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}
	defer func() { _ = client.Close() }()

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return fmt.Errorf("failed to create password config: %w", err)
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}

	metrics := observability.NewMetrics()
	engine := interview.NewService(client, store, engineOptions(cfg, logger, metrics))

	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		CORSOrigins: cfg.CORSOrigins,
	}, server.Dependencies{
		Users:      store,
		Interviews: engine,
		Passwords:  passwordConfig,
		JWT:        server.NewJWTService(jwtConfig),
		Health:     store,
		Metrics:    metrics,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("configuration loaded",
		"driver", cfg.DatabaseDriver,
		"llm_provider", cfg.LLMProvider,
		"model", client.GetModel(interview.DefaultOptions().GenerationTier),
		"provider_timeout", cfg.ProviderTimeout())

	return srv.Start(ctx)
}

// background is the context used by commands that do not serve.
func background(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
