package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/observability"
	"github.com/spf13/cobra"
)

var (
	statsUserID  string
	statsJSON    bool
	historyLimit int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print interview statistics for a user",
	Long:  "Aggregates every session the user has: average, best and worst session scores, role and difficulty breakdowns, and recent progress.",
	RunE:  runStats,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List a user's interview sessions, newest first",
	RunE:  runHistory,
}

func init() {
	for _, c := range []*cobra.Command{statsCmd, historyCmd} {
		c.Flags().StringVarP(&statsUserID, "user", "u", "", "User ID (required)")
		c.Flags().BoolVar(&statsJSON, "json", false, "Print JSON instead of a formatted box")
		if err := c.MarkFlagRequired("user"); err != nil {
			panic(fmt.Sprintf("failed to mark user flag as required: %v", err))
		}
		rootCmd.AddCommand(c)
	}
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Maximum sessions to list (0 uses the configured default)")
}

func runStats(cmd *cobra.Command, _ []string) error {
	ownerID, err := uuid.Parse(statsUserID)
	if err != nil {
		return fmt.Errorf("invalid user ID %q: %w", statsUserID, err)
	}

	engine, closeStore, err := offlineEngine(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	stats, err := engine.Statistics(background(cmd), ownerID)
	if err != nil {
		return err
	}

	if statsJSON {
		return writeJSON(cmd.OutOrStdout(), stats)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintStatistics(stats)
	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ownerID, err := uuid.Parse(statsUserID)
	if err != nil {
		return fmt.Errorf("invalid user ID %q: %w", statsUserID, err)
	}

	engine, closeStore, err := offlineEngine(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	sessions, err := engine.ListHistory(background(cmd), ownerID, historyLimit)
	if err != nil {
		return err
	}

	if statsJSON {
		return writeJSON(cmd.OutOrStdout(), sessions)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintHistory(sessions)
	return nil
}

// offlineEngine builds an engine for read-only commands. It has no model
// client, so only history and statistics may be called on it.
func offlineEngine(cmd *cobra.Command) (*interview.Service, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	store, err := openStore(background(cmd), cfg)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return interview.NewService(nil, store, engineOptions(cfg, logger, nil)), store.Close, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
