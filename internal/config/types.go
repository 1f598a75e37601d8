// Package config loads tablemap configuration from defaults, a YAML file,
// environment variables and command-line flags.
package config

import (
	"fmt"
	"path/filepath"
)

// Config holds the complete tablemap configuration.
type Config struct {
	DAG     DAGConfig     `koanf:"dag"`
	Log     LogConfig     `koanf:"log"`
	Scan    ScanConfig    `koanf:"scan"`
	History HistoryConfig `koanf:"history"`
	Output  string        `koanf:"output"` // text or json, for non-interactive commands
}

// DAGConfig locates the directory of query files.
type DAGConfig struct {
	Folder string `koanf:"folder"`
	Name   string `koanf:"name"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level string `koanf:"level"` // trace, debug, info, warn, error or off
	File  string `koanf:"file"`  // empty logs to stderr
}

// ScanConfig controls how the query directory is read.
type ScanConfig struct {
	SkipUnreadable bool     `koanf:"skip_unreadable"`
	Extensions     []string `koanf:"extensions"`
}

// HistoryConfig controls recording of scans in the history database.
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// ConfigError reports configuration that is missing or malformed.
type ConfigError struct {
	Path string // config file involved, if any
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("config: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ScanDir returns the directory holding the DAG's query files.
func (c *Config) ScanDir() string {
	return filepath.Join(c.DAG.Folder, c.DAG.Name) + string(filepath.Separator)
}
