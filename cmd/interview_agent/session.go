package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/observability"
	"github.com/jonathan/interview-coach/internal/types"
	"github.com/spf13/cobra"
)

var (
	sessionID   string
	sessionJSON bool
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Print one interview session with its answers",
	Long:  "Prints every question of a session, the stored answer score and feedback, and the derived state. Ownership is not checked; this is an operator command.",
	RunE:  runSession,
}

func init() {
	sessionCmd.Flags().StringVar(&sessionID, "id", "", "Session ID (required)")
	sessionCmd.Flags().BoolVar(&sessionJSON, "json", false, "Print JSON instead of a formatted box")
	if err := sessionCmd.MarkFlagRequired("id"); err != nil {
		panic(fmt.Sprintf("failed to mark id flag as required: %v", err))
	}
	rootCmd.AddCommand(sessionCmd)
}

func runSession(cmd *cobra.Command, _ []string) error {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return fmt.Errorf("invalid session ID %q: %w", sessionID, err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := background(cmd)
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	session, err := store.GetSession(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return fmt.Errorf("session not found: %s", id)
	}

	if sessionJSON {
		return writeJSON(cmd.OutOrStdout(), types.NewSessionView(session))
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintSession(session)
	return nil
}
