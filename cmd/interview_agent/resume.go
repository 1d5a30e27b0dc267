package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/ingestion"
	"github.com/spf13/cobra"
)

var (
	resumeUserID string
	resumeFile   string
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Store a plain-text résumé for a user",
	Long:  "Reads a plain-text résumé, normalizes it the same way POST /resume does, stores it on the user and prints its metadata.",
	RunE:  runResume,
}

func init() {
	resumeCmd.Flags().StringVarP(&resumeUserID, "user", "u", "", "User ID (required)")
	resumeCmd.Flags().StringVarP(&resumeFile, "file", "f", "", "Path to the résumé text file (required)")
	for _, name := range []string{"user", "file"} {
		if err := resumeCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, _ []string) error {
	userID, err := uuid.Parse(resumeUserID)
	if err != nil {
		return fmt.Errorf("invalid user ID %q: %w", resumeUserID, err)
	}

	text, meta, err := ingestion.IngestFromFile(resumeFile)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
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

	if err := store.UpdateResumeText(ctx, userID, text); err != nil {
		return err
	}

	metaJSON, err := meta.ToJSON()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stored resume for %s\n%s\n", userID, metaJSON)
	return nil
}
