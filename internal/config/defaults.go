package config

import (
	"os"
	"path/filepath"
)

// Default configuration values.
const (
	DefaultLogLevel = "info"
	DefaultOutput   = "text"
	EnvPrefix       = "TABLEMAP_"
)

// configFileNames are searched in the working directory when no explicit
// config file is given.
var configFileNames = []string{"tablemap.yaml", "tablemap.yml"}

// DefaultHistoryPath returns the default history database path:
// <user config dir>/tablemap/history.db
func DefaultHistoryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".tablemap", "history.db")
	}
	return filepath.Join(dir, "tablemap", "history.db")
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"log.level":            DefaultLogLevel,
		"log.file":             "",
		"scan.skip_unreadable": false,
		"history.enabled":      true,
		"history.path":         DefaultHistoryPath(),
		"output":               DefaultOutput,
	}
}
