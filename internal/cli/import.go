package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/nikbrunner/tablemap/internal/storage"
	"github.com/spf13/cobra"
)

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <report>",
		Short: "Record an exported report in the scan history",
		Long: `Read a file written by "tablemap export" and add it to the scan history
as a new scan. Files ending in .json are read as JSON, anything else as an
HTML report. Reports without a directory are recorded under the configured one.`,
		Example: `  tablemap import ~/Downloads/tablemap-export-2026-01-05.html
  tablemap import scan.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0])
		},
	}
}

func runImport(cmd *cobra.Command, path string) error {
	s, err := mustSession(cmd)
	if err != nil {
		return err
	}

	src, err := storage.Open(path, storage.FormatFromPath(path))
	if err != nil {
		return err
	}

	scan, err := src.Load()
	if err != nil {
		return fmt.Errorf("failed to read report %s: %w", path, err)
	}
	// The exported scan may itself be in the history already.
	scan.ID = uuid.NewString()
	if scan.Dir == "" {
		scan.Dir = s.cfg.ScanDir()
	}

	db, err := s.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Save(scan); err != nil {
		return fmt.Errorf("failed to record scan: %w", err)
	}

	s.logger.Info("report imported", "path", path, "id", scan.ID, "files", len(scan.Items))
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d files from %s as scan %s\n", len(scan.Items), path, shortID(scan.ID))
	return nil
}
