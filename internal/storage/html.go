package storage

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/nikbrunner/tablemap/internal/exporter"
	"github.com/nikbrunner/tablemap/internal/importer"
	"github.com/nikbrunner/tablemap/internal/model"
)

// HTMLStorage implements Storage using an HTML report file.
// Load reads back a report written by Save, with a fresh scan ID.
type HTMLStorage struct {
	path string
}

// NewHTMLStorage creates a new HTMLStorage with the given file path.
func NewHTMLStorage(path string) *HTMLStorage {
	return &HTMLStorage{path: path}
}

// Path returns the report file path.
func (s *HTMLStorage) Path() string {
	return s.path
}

// Load parses the report file.
// Returns ErrNoScan if the file doesn't exist.
func (s *HTMLStorage) Load() (*model.Scan, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoScan
		}
		return nil, err
	}
	defer f.Close()

	return importer.ParseHTMLReport(f)
}

// Save renders the scan as a report and writes it.
// Creates the directory if it doesn't exist.
func (s *HTMLStorage) Save(scan *model.Scan) error {
	report, err := exporter.ExportHTML(scan)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(report), 0644)
}
