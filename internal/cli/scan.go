package cli

import (
	"errors"
	"fmt"

	"github.com/nikbrunner/tablemap/internal/browser"
	"github.com/nikbrunner/tablemap/internal/model"
	"github.com/nikbrunner/tablemap/internal/storage"
)

// scan reads the configured directory and records the result in the history.
func (s *session) scan() (*model.Scan, error) {
	scanner := browser.NewScanner(browser.ScannerParams{
		Logger:         s.logger,
		SkipUnreadable: s.cfg.Scan.SkipUnreadable,
		Extensions:     s.cfg.Scan.Extensions,
	})

	scan, err := scanner.Scan(s.cfg.ScanDir())
	if err != nil {
		return nil, err
	}

	s.record(scan)
	return scan, nil
}

// record saves scan in the history database. Failures are logged, never returned.
func (s *session) record(scan *model.Scan) {
	if !s.cfg.History.Enabled {
		return
	}

	db, err := storage.NewSQLiteStorage(s.cfg.History.Path)
	if err != nil {
		s.logger.Warn("failed to open history", "path", s.cfg.History.Path, "error", err)
		return
	}
	defer db.Close()

	if err := db.Save(scan); err != nil {
		s.logger.Warn("failed to record scan", "id", scan.ID, "path", db.Path(), "error", err)
		return
	}
	s.logger.Debug("scan recorded", "id", scan.ID, "path", db.Path())
}

// openHistory opens the history database for commands that read it.
func (s *session) openHistory() (*storage.SQLiteStorage, error) {
	if !s.cfg.History.Enabled {
		return nil, errors.New("scan history is disabled (history.enabled)")
	}
	db, err := storage.NewSQLiteStorage(s.cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history %s: %w", s.cfg.History.Path, err)
	}
	return db, nil
}
