package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nikbrunner/tablemap/internal/storage"
	"github.com/spf13/cobra"
)

// NewLookupCommand creates the lookup command.
func NewLookupCommand() *cobra.Command {
	var fresh bool

	cmd := &cobra.Command{
		Use:   "lookup <table>",
		Short: "List the files that read a table",
		Long: `Print the files of the configured directory that read the given table.
The latest recorded scan is used; when there is none, or with --fresh, the
directory is scanned first.`,
		Example: `  tablemap lookup orders
  tablemap lookup orders --fresh -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, args[0], fresh)
		},
	}

	cmd.Flags().BoolVar(&fresh, "fresh", false, "Scan the directory instead of using the history")

	return cmd
}

func runLookup(cmd *cobra.Command, table string, fresh bool) error {
	s, err := mustSession(cmd)
	if err != nil {
		return err
	}

	// Extracted table names are lower-case.
	table = strings.ToLower(table)

	var files []string
	if fresh || !s.cfg.History.Enabled {
		files, err = lookupFresh(s, table)
	} else {
		files, err = lookupRecorded(s, table)
		if errors.Is(err, storage.ErrNoScan) {
			s.logger.Info("no recorded scan, scanning", "dir", s.cfg.ScanDir())
			files, err = lookupFresh(s, table)
		}
	}
	if err != nil {
		return err
	}

	if s.cfg.Output == "json" {
		if files == nil {
			files = []string{}
		}
		return writeJSON(cmd.OutOrStdout(), files)
	}

	if len(files) == 0 {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No files read %s\n", table)
		return nil
	}
	for _, f := range files {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), f)
	}
	return nil
}

func lookupFresh(s *session, table string) ([]string, error) {
	scan, err := s.scan()
	if err != nil {
		return nil, err
	}
	return scan.FilesReferencing(table), nil
}

func lookupRecorded(s *session, table string) ([]string, error) {
	db, err := s.openHistory()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	scan, err := db.LatestScan(s.cfg.ScanDir())
	if err != nil {
		return nil, err
	}
	s.logger.Debug("using recorded scan", "id", scan.ID, "scannedAt", scan.ScannedAt)
	return scan.FilesReferencing(table), nil
}
