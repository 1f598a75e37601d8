package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikbrunner/tablemap/internal/model"
)

// Scan file formats.
const (
	FormatHTML = "html"
	FormatJSON = "json"
)

// ErrNoScan is returned when no scan has been stored.
var ErrNoScan = errors.New("no recorded scan")

// Storage defines the interface for scan files.
type Storage interface {
	Path() string
	Load() (*model.Scan, error)
	Save(scan *model.Scan) error
}

// Open returns the Storage for a scan file in the given format, html or json.
func Open(path, format string) (Storage, error) {
	switch format {
	case FormatHTML:
		return NewHTMLStorage(path), nil
	case FormatJSON:
		return NewJSONStorage(path), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want html or json)", format)
	}
}

// FormatFromPath guesses a file's format from its extension: json for
// .json, html otherwise.
func FormatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatHTML
}

// JSONStorage implements Storage using a JSON file holding a single scan.
type JSONStorage struct {
	path string
}

// NewJSONStorage creates a new JSONStorage with the given file path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Path returns the storage file path.
func (s *JSONStorage) Path() string {
	return s.path
}

// Load reads the scan from the JSON file.
// Returns ErrNoScan if the file doesn't exist.
func (s *JSONStorage) Load() (*model.Scan, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoScan
		}
		return nil, err
	}

	var scan model.Scan
	if err := json.Unmarshal(data, &scan); err != nil {
		return nil, err
	}

	// Ensure slices are not nil
	if scan.Items == nil {
		scan.Items = []model.QueryItem{}
	}
	for i := range scan.Items {
		if scan.Items[i].Tables == nil {
			scan.Items[i].Tables = []string{}
		}
	}

	return &scan, nil
}

// Save writes the scan to the JSON file.
// Creates the directory if it doesn't exist.
func (s *JSONStorage) Save(scan *model.Scan) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(scan, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}
