package cli

import (
	"fmt"

	"github.com/nikbrunner/tablemap/internal/exporter"
	"github.com/nikbrunner/tablemap/internal/storage"
	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Write the scan to an HTML report or JSON file",
		Long: `Scan the configured directory and write the result to a file.
Without a path the file goes to ~/Downloads/tablemap-export-<date>.<format>.`,
		Example: `  # HTML report in ~/Downloads
  tablemap export

  # JSON to a chosen path
  tablemap export scan.json --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return runExport(cmd, path, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", storage.FormatHTML, "Export format (html|json)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{storage.FormatHTML, storage.FormatJSON}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runExport(cmd *cobra.Command, path, format string) error {
	s, err := mustSession(cmd)
	if err != nil {
		return err
	}

	if path == "" {
		path, err = exporter.DefaultExportPath(format)
		if err != nil {
			return fmt.Errorf("failed to determine export path: %w", err)
		}
	}

	store, err := storage.Open(path, format)
	if err != nil {
		return fmt.Errorf("unknown export format %q (want html or json)", format)
	}

	scan, err := s.scan()
	if err != nil {
		return err
	}

	if err := store.Save(scan); err != nil {
		return fmt.Errorf("failed to write %s: %w", store.Path(), err)
	}

	s.logger.Info("scan exported", "path", store.Path(), "format", format)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d files to %s\n", len(scan.Items), store.Path())
	return nil
}
