package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded scans",
		Long:  `List scans recorded in the history database, newest first.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of scans to list (0 for all)")

	return cmd
}

func runHistory(cmd *cobra.Command, limit int) error {
	s, err := mustSession(cmd)
	if err != nil {
		return err
	}

	db, err := s.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	scans, err := db.ListScans(limit)
	if err != nil {
		return fmt.Errorf("failed to list scans: %w", err)
	}

	if s.cfg.Output == "json" {
		return writeJSON(cmd.OutOrStdout(), scans)
	}

	if len(scans) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No recorded scans")
		return nil
	}
	renderScans(cmd.OutOrStdout(), scans)
	return nil
}
