package cli

import (
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every query file and the tables it reads",
		Long: `Scan the configured directory and print each file with its tables,
in directory order. Files without tables are listed with an empty cell.`,
		Example: `  # List as a table
  tablemap list

  # List as JSON
  tablemap list --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}
}

func runList(cmd *cobra.Command) error {
	s, err := mustSession(cmd)
	if err != nil {
		return err
	}

	scan, err := s.scan()
	if err != nil {
		return err
	}

	if s.cfg.Output == "json" {
		return writeJSON(cmd.OutOrStdout(), scan.Items)
	}
	renderItems(cmd.OutOrStdout(), scan.Items)
	return nil
}
