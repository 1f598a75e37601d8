package browser

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikbrunner/tablemap/internal/extract"
	"github.com/nikbrunner/tablemap/internal/model"
)

// DirectoryNotFoundError reports a scan directory that could not be listed.
type DirectoryNotFoundError struct {
	Dir string
	Err error
}

func (e *DirectoryNotFoundError) Error() string {
	return fmt.Sprintf("unable to list directory %q: %v", e.Dir, e.Err)
}

func (e *DirectoryNotFoundError) Unwrap() error {
	return e.Err
}

// Scanner reads every query file in a directory and extracts its tables.
type Scanner struct {
	logger *slog.Logger

	// skipUnreadable logs and skips files that fail to load instead of
	// aborting the scan.
	skipUnreadable bool

	// extensions restricts the scan to files with these extensions
	// (lower-case, with leading dot). Empty means every file.
	extensions map[string]bool
}

// ScannerParams holds parameters for creating a new Scanner.
type ScannerParams struct {
	Logger         *slog.Logger // optional, discards if nil
	SkipUnreadable bool
	Extensions     []string // e.g. "sql" or ".sql"
}

// NewScanner creates a Scanner with the given parameters.
func NewScanner(params ScannerParams) *Scanner {
	logger := params.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var extensions map[string]bool
	for _, ext := range params.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if extensions == nil {
			extensions = make(map[string]bool)
		}
		extensions[ext] = true
	}

	return &Scanner{
		logger:         logger,
		skipUnreadable: params.SkipUnreadable,
		extensions:     extensions,
	}
}

// Scan lists the immediate entries of dir and extracts the tables of each
// regular file. Entries come in the order os.ReadDir returns them, which is
// sorted by file name. Subdirectories and other non-regular entries are
// skipped.
func (s *Scanner) Scan(dir string) (*model.Scan, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &DirectoryNotFoundError{Dir: dir, Err: err}
	}

	items := []model.QueryItem{}
	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)

		if !s.isQueryFile(path, entry) {
			continue
		}

		text, err := extract.LoadFile(path, s.logger)
		if err != nil {
			if s.skipUnreadable {
				s.logger.Warn("skipping unreadable file", "path", path, "error", err)
				continue
			}
			return nil, err
		}

		tables := extract.ExtractTables(text)
		s.logger.Debug("extracted tables", "file", name, "tables", tables, "count", len(tables))

		items = append(items, model.NewQueryItem(name, tables))
	}

	s.logger.Info("scan complete", "dir", dir, "files", len(items))

	return model.NewScan(model.NewScanParams{Dir: dir, Items: items}), nil
}

// isQueryFile reports whether the entry should be read as a query file.
func (s *Scanner) isQueryFile(path string, entry os.DirEntry) bool {
	mode := entry.Type()
	if mode&os.ModeSymlink != 0 {
		info, err := os.Stat(path)
		if err != nil {
			// Dangling links are left to LoadFile so the read policy applies.
			return s.matchesExtension(entry.Name())
		}
		mode = info.Mode().Type()
	}

	if !mode.IsRegular() {
		s.logger.Debug("skipping non-file entry", "path", path)
		return false
	}
	return s.matchesExtension(entry.Name())
}

func (s *Scanner) matchesExtension(name string) bool {
	if len(s.extensions) == 0 {
		return true
	}
	if s.extensions[strings.ToLower(filepath.Ext(name))] {
		return true
	}
	s.logger.Debug("skipping file with unmatched extension", "file", name)
	return false
}
