package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"dag-folder":      "dag.folder",
	"dag-name":        "dag.name",
	"log-level":       "log.level",
	"log-file":        "log.file",
	"skip-unreadable": "scan.skip_unreadable",
	"extension":       "scan.extensions",
	"history":         "history.enabled",
	"history-path":    "history.path",
	"output":          "output",
}

// listKeys are config keys whose environment values are comma-separated lists.
var listKeys = map[string]bool{
	"scan.extensions": true,
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(value string) []string {
	parts := []string{}
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// Loaded is the result of Load.
type Loaded struct {
	Config   *Config
	FileUsed string // empty when no config file was read
}

// Load reads configuration with precedence flags > env vars > file > defaults.
// cfgFile may be empty, in which case tablemap.yaml or tablemap.yml in the
// working directory is used if present. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Loaded, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("failed to load defaults: %w", err)}
	}

	path, err := findConfigFile(cfgFile)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, &ConfigError{Path: path, Err: err}
		}
	}

	// TABLEMAP_DAG__FOLDER -> dag.folder
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(name, value string) (string, interface{}) {
		key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	}), nil); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("failed to load env vars: %w", err)}
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, &ConfigError{Err: fmt.Errorf("failed to load flags: %w", err)}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("unable to decode config: %w", err)}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	return &Loaded{Config: &cfg, FileUsed: path}, nil
}

// findConfigFile returns the config file to read.
// Priority: explicit path > tablemap.yaml > tablemap.yml.
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", &ConfigError{Path: explicit, Err: err}
		}
		return explicit, nil
	}
	for _, name := range configFileNames {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	return "", nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.DAG.Folder == "" {
		errs = append(errs, errors.New("dag.folder is required"))
	}
	if c.DAG.Name == "" {
		errs = append(errs, errors.New("dag.name is required"))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Output {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown output format %q (want text or json)", c.Output))
	}
	if c.History.Enabled && c.History.Path == "" {
		errs = append(errs, errors.New("history.path is required when history is enabled"))
	}
	return errors.Join(errs...)
}
