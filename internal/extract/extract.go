// Package extract finds table references in query text.
//
// Extraction is lexical: any identifier following the keyword "from" is a
// candidate, including occurrences inside comments or string literals.
package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

// fromRegex matches "from" followed by optional whitespace and a run of
// letters or underscores. Input is lower-cased before matching.
var fromRegex = regexp.MustCompile(`from\s*([a-z_]*)`)

// FileReadError reports a query file that could not be read as text.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("unable to read %q: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error {
	return e.Err
}

// errNotText is wrapped by FileReadError for files that are not valid UTF-8.
var errNotText = errors.New("not valid UTF-8 text")

// ExtractTables returns the table names referenced in text, lower-cased,
// each once, in order of first reference.
func ExtractTables(text string) []string {
	matches := fromRegex.FindAllStringSubmatch(strings.ToLower(text), -1)

	tables := []string{}
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		name := m[1]
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		tables = append(tables, name)
	}
	return tables
}

// LoadFile reads the whole file at path as text.
func LoadFile(path string, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Debug("parsing file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &FileReadError{Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return "", &FileReadError{Path: path, Err: errNotText}
	}
	return string(data), nil
}
