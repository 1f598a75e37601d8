package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

// newTestFlags returns a flag set with the flags the CLI registers.
func newTestFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("dag-folder", "", "")
	fs.String("dag-name", "", "")
	fs.String("log-level", "", "")
	fs.String("log-file", "", "")
	fs.Bool("skip-unreadable", false, "")
	fs.StringSlice("extension", nil, "")
	fs.Bool("history", true, "")
	fs.String("history-path", "", "")
	fs.StringP("output", "o", "", "")
	return fs
}

func writeConfig(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "custom.yaml", `
dag:
  folder: /srv/airflow/dags
  name: etl
log:
  level: debug
scan:
  skip_unreadable: true
  extensions: [sql, hql]
history:
  enabled: false
`)

	loaded, err := Load(path, nil)
	assert.NilError(t, err)

	cfg := loaded.Config
	assert.Equal(t, loaded.FileUsed, path)
	assert.Equal(t, cfg.DAG.Folder, "/srv/airflow/dags")
	assert.Equal(t, cfg.DAG.Name, "etl")
	assert.Equal(t, cfg.Log.Level, "debug")
	assert.Equal(t, cfg.Scan.SkipUnreadable, true)
	assert.DeepEqual(t, cfg.Scan.Extensions, []string{"sql", "hql"})
	assert.Equal(t, cfg.History.Enabled, false)
	assert.Equal(t, cfg.Output, DefaultOutput)
	assert.Equal(t, cfg.ScanDir(), filepath.Join("/srv/airflow/dags", "etl")+string(filepath.Separator))
}

func TestLoad_DefaultFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "tablemap.yaml", "dag:\n  folder: dags\n  name: daily\n")
	t.Chdir(dir)

	loaded, err := Load("", nil)
	assert.NilError(t, err)
	assert.Equal(t, loaded.FileUsed, "tablemap.yaml")
	assert.Equal(t, loaded.Config.DAG.Name, "daily")
	assert.Equal(t, loaded.Config.Log.Level, DefaultLogLevel)
	assert.Equal(t, loaded.Config.History.Enabled, true)
	assert.Assert(t, loaded.Config.History.Path != "")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "tablemap.yaml", "dag:\n  folder: dags\n  name: daily\nlog:\n  level: info\n")

	t.Setenv("TABLEMAP_DAG__NAME", "hourly")
	t.Setenv("TABLEMAP_LOG__LEVEL", "warn")

	loaded, err := Load(path, nil)
	assert.NilError(t, err)
	assert.Equal(t, loaded.Config.DAG.Folder, "dags")
	assert.Equal(t, loaded.Config.DAG.Name, "hourly")
	assert.Equal(t, loaded.Config.Log.Level, "warn")
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "tablemap.yaml", "dag:\n  folder: dags\n  name: daily\n")
	t.Setenv("TABLEMAP_DAG__NAME", "hourly")

	flags := newTestFlags()
	assert.NilError(t, flags.Parse([]string{
		"--dag-name", "weekly",
		"--skip-unreadable",
		"--extension", "sql",
		"--history=false",
		"-o", "json",
	}))

	loaded, err := Load(path, flags)
	assert.NilError(t, err)

	cfg := loaded.Config
	assert.Equal(t, cfg.DAG.Name, "weekly")
	assert.Equal(t, cfg.DAG.Folder, "dags")
	assert.Equal(t, cfg.Scan.SkipUnreadable, true)
	assert.DeepEqual(t, cfg.Scan.Extensions, []string{"sql"})
	assert.Equal(t, cfg.History.Enabled, false)
	assert.Equal(t, cfg.Output, "json")
}

func TestLoad_UnchangedFlagsDoNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "tablemap.yaml", "dag:\n  folder: dags\n  name: daily\nlog:\n  level: error\n")

	flags := newTestFlags()
	assert.NilError(t, flags.Parse(nil))

	loaded, err := Load(path, flags)
	assert.NilError(t, err)
	assert.Equal(t, loaded.Config.Log.Level, "error")
	assert.Equal(t, loaded.Config.History.Enabled, true)
}

func TestLoad_OnlyFlags(t *testing.T) {
	t.Chdir(t.TempDir())

	flags := newTestFlags()
	assert.NilError(t, flags.Parse([]string{"--dag-folder", "dags", "--dag-name", "adhoc"}))

	loaded, err := Load("", flags)
	assert.NilError(t, err)
	assert.Equal(t, loaded.FileUsed, "")
	assert.Equal(t, loaded.Config.ScanDir(), filepath.Join("dags", "adhoc")+string(filepath.Separator))
}

func TestLoad_EnvExtensionsList(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"single", "sql", []string{"sql"}},
		{"comma separated", "sql,hql", []string{"sql", "hql"}},
		{"spaces and empties", " sql , ,hql,", []string{"sql", "hql"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TABLEMAP_DAG__FOLDER", "dags")
			t.Setenv("TABLEMAP_DAG__NAME", "daily")
			t.Setenv("TABLEMAP_SCAN__EXTENSIONS", tt.value)

			loaded, err := Load("", nil)
			assert.NilError(t, err)
			assert.DeepEqual(t, loaded.Config.Scan.Extensions, tt.want)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		contents  string
		explicit  string
		errSubstr string
	}{
		{
			name:      "missing explicit file",
			explicit:  filepath.Join(dir, "nope.yaml"),
			errSubstr: "nope.yaml",
		},
		{
			name:      "malformed yaml",
			contents:  "dag: [unclosed\n",
			errSubstr: "config",
		},
		{
			name:      "missing dag folder",
			contents:  "dag:\n  name: daily\n",
			errSubstr: "dag.folder is required",
		},
		{
			name:      "missing dag name",
			contents:  "dag:\n  folder: dags\n",
			errSubstr: "dag.name is required",
		},
		{
			name:      "unknown log level",
			contents:  "dag:\n  folder: dags\n  name: daily\nlog:\n  level: chatty\n",
			errSubstr: "unknown log level",
		},
		{
			name:      "unknown output",
			contents:  "dag:\n  folder: dags\n  name: daily\noutput: xml\n",
			errSubstr: "unknown output format",
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.explicit
			if path == "" {
				path = writeConfig(t, dir, "case"+string(rune('a'+i))+".yaml", tt.contents)
			}

			_, err := Load(path, nil)
			assert.ErrorContains(t, err, tt.errSubstr)

			var cfgErr *ConfigError
			assert.Assert(t, errors.As(err, &cfgErr), "expected *ConfigError, got %T", err)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    slog.Level
		wantErr bool
	}{
		{"trace", LevelTrace, false},
		{"DEBUG", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"off", levelOff, false},
		{"verbose", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.name)
			if tt.wantErr {
				assert.Assert(t, err != nil)
				return
			}
			assert.NilError(t, err)
			assert.Equal(t, got, tt.want)
		})
	}
}

func TestNewLogger_Stderr(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := NewLogger(LogConfig{Level: "warn"}, &buf)
	assert.NilError(t, err)
	defer closeFn()

	logger.Info("hidden")
	logger.Warn("shown", "file", "a.sql")

	out := buf.String()
	assert.Assert(t, !strings.Contains(out, "hidden"))
	assert.Assert(t, is.Contains(out, "shown"))
	assert.Assert(t, is.Contains(out, "file=a.sql"))
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tablemap.log")

	var stderr bytes.Buffer
	logger, closeFn, err := NewLogger(LogConfig{Level: "debug", File: path}, &stderr)
	assert.NilError(t, err)

	logger.Debug("parsing file", "path", "a.sql")
	assert.NilError(t, closeFn())

	data, err := os.ReadFile(path)
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(string(data), "parsing file"))
	assert.Equal(t, stderr.Len(), 0)
}

func TestNewLogger_Off(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := NewLogger(LogConfig{Level: "off"}, &buf)
	assert.NilError(t, err)
	defer closeFn()

	logger.Error("never")
	assert.Equal(t, buf.Len(), 0)
}

func TestNewLogger_BadLevel(t *testing.T) {
	_, closeFn, err := NewLogger(LogConfig{Level: "loud"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown log level")
	assert.NilError(t, closeFn())
}
