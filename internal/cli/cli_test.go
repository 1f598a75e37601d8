package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/tablemap/internal/browser"
	"github.com/nikbrunner/tablemap/internal/config"
	"github.com/nikbrunner/tablemap/internal/extract"
	"github.com/nikbrunner/tablemap/internal/model"
	"github.com/nikbrunner/tablemap/internal/storage"
	"github.com/nikbrunner/tablemap/internal/testutil"
	"github.com/nikbrunner/tablemap/internal/tui"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

// testProject is a temporary DAG folder with one DAG named etl.
type testProject struct {
	folder  string
	dagDir  string
	history string
}

func setupTestProject(t *testing.T) testProject {
	t.Helper()

	tmpDir := t.TempDir()
	folder := filepath.Join(tmpDir, "dags")
	dagDir := filepath.Join(folder, "etl")
	if err := os.MkdirAll(dagDir, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", dagDir, err)
	}

	testutil.WriteFiles(t, dagDir, map[string]string{
		"daily.sql":  "SELECT * FROM orders o, (select id from users) u",
		"weekly.sql": "select sum(amount) from payments",
		"empty.sql":  "select 1",
	})

	return testProject{
		folder:  folder,
		dagDir:  dagDir,
		history: filepath.Join(tmpDir, "state", "history.db"),
	}
}

func (p testProject) args(args ...string) []string {
	base := []string{
		"--dag-folder", p.folder,
		"--dag-name", "etl",
		"--log-level", "off",
		"--history-path", p.history,
	}
	return append(args, base...)
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	_, err := run(cmd)
	if errOut.Len() > 0 {
		t.Logf("stderr: %s", errOut.String())
	}
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	// No DAG configuration is needed for version
	out, err := execute(t, "version")

	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "tablemap v"+Version))
}

func TestListCommand_Text(t *testing.T) {
	p := setupTestProject(t)

	out, err := execute(t, p.args("list")...)

	assert.NilError(t, err)
	for _, want := range []string{"FILE_NAME", "TABLES", "daily.sql", "orders", "users", "weekly.sql", "payments", "empty.sql"} {
		assert.Assert(t, is.Contains(out, want))
	}
}

func TestListCommand_JSON(t *testing.T) {
	p := setupTestProject(t)

	out, err := execute(t, p.args("list", "-o", "json")...)
	assert.NilError(t, err)

	var items []model.QueryItem
	assert.NilError(t, json.Unmarshal([]byte(out), &items))

	assert.DeepEqual(t, items, []model.QueryItem{
		model.NewQueryItem("daily.sql", []string{"orders", "users"}),
		model.NewQueryItem("empty.sql", []string{}),
		model.NewQueryItem("weekly.sql", []string{"payments"}),
	})
}

func TestListCommand_MissingDAGConfig(t *testing.T) {
	_, err := execute(t, "list", "--log-level", "off")

	var cfgErr *config.ConfigError
	assert.Assert(t, errors.As(err, &cfgErr), "expected ConfigError, got %v", err)
}

func TestListCommand_MissingDirectory(t *testing.T) {
	p := setupTestProject(t)

	_, err := execute(t, "list",
		"--dag-folder", p.folder,
		"--dag-name", "missing",
		"--log-level", "off",
		"--history=false",
	)

	var dirErr *browser.DirectoryNotFoundError
	assert.Assert(t, errors.As(err, &dirErr), "expected DirectoryNotFoundError, got %v", err)
}

func TestListCommand_UnreadableFile(t *testing.T) {
	p := setupTestProject(t)
	if err := os.WriteFile(filepath.Join(p.dagDir, "binary.sql"), []byte{0xff, 0xfe, 0x00}, 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	_, err := execute(t, p.args("list")...)
	var readErr *extract.FileReadError
	assert.Assert(t, errors.As(err, &readErr), "expected FileReadError, got %v", err)

	out, err := execute(t, p.args("list", "--skip-unreadable")...)
	assert.NilError(t, err)
	assert.Assert(t, !strings.Contains(out, "binary.sql"))
	assert.Assert(t, is.Contains(out, "daily.sql"))
}

func TestListCommand_ExtensionFilter(t *testing.T) {
	p := setupTestProject(t)
	testutil.WriteFiles(t, p.dagDir, map[string]string{
		"notes.txt": "copied from somewhere",
	})

	out, err := execute(t, p.args("list", "--extension", "sql", "-o", "json")...)
	assert.NilError(t, err)

	var items []model.QueryItem
	assert.NilError(t, json.Unmarshal([]byte(out), &items))
	assert.Equal(t, len(items), 3)
}

func TestListCommand_HistoryDisabled(t *testing.T) {
	p := setupTestProject(t)

	_, err := execute(t, p.args("list", "--history=false")...)
	assert.NilError(t, err)

	if _, err := os.Stat(p.history); !os.IsNotExist(err) {
		t.Errorf("expected no history database, stat returned %v", err)
	}
}

func TestSearchCommand_SingleMatch(t *testing.T) {
	p := setupTestProject(t)

	out, err := execute(t, p.args("search", "payments")...)

	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "weekly.sql"))
	assert.Assert(t, !strings.Contains(out, "daily.sql"))
}

func TestSearchCommand_All(t *testing.T) {
	p := setupTestProject(t)

	out, err := execute(t, p.args("search", "sql", "--all", "-o", "json")...)
	assert.NilError(t, err)

	var items []model.QueryItem
	assert.NilError(t, json.Unmarshal([]byte(out), &items))
	assert.Equal(t, len(items), 3)
}

func TestSearchCommand_NoMatch(t *testing.T) {
	p := setupTestProject(t)

	out, err := execute(t, p.args("search", "xyz123")...)

	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, `No matches for "xyz123"`))
}

func TestExportCommand_HTML(t *testing.T) {
	p := setupTestProject(t)
	path := filepath.Join(t.TempDir(), "out", "report.html")

	out, err := execute(t, p.args("export", path)...)
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "Exported 3 files to "+path))

	data, err := os.ReadFile(path)
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(string(data), "<th>FILE_NAME</th>"))
	assert.Assert(t, is.Contains(string(data), "orders<br/>users"))
}

func TestExportCommand_JSON(t *testing.T) {
	p := setupTestProject(t)
	path := filepath.Join(t.TempDir(), "scan.json")

	_, err := execute(t, p.args("export", path, "--format", "json")...)
	assert.NilError(t, err)

	scan, err := storage.NewJSONStorage(path).Load()
	assert.NilError(t, err)
	assert.Equal(t, len(scan.Items), 3)
	assert.Equal(t, scan.Dir, filepath.Join(p.folder, "etl")+string(filepath.Separator))
}

func TestExportCommand_BadFormat(t *testing.T) {
	p := setupTestProject(t)

	_, err := execute(t, p.args("export", "x.csv", "--format", "csv")...)

	assert.ErrorContains(t, err, "unknown export format")
}

func TestHistoryCommand(t *testing.T) {
	p := setupTestProject(t)

	// Every scan is recorded
	for i := 0; i < 2; i++ {
		_, err := execute(t, p.args("list")...)
		assert.NilError(t, err)
	}

	out, err := execute(t, p.args("history", "-o", "json")...)
	assert.NilError(t, err)

	var scans []storage.ScanSummary
	assert.NilError(t, json.Unmarshal([]byte(out), &scans))
	assert.Equal(t, len(scans), 2)
	assert.Equal(t, scans[0].FileCount, 3)
	assert.Equal(t, scans[0].TableCount, 3)

	out, err = execute(t, p.args("history")...)
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "SCANNED AT"))
}

func TestHistoryCommand_Empty(t *testing.T) {
	p := setupTestProject(t)

	out, err := execute(t, p.args("history")...)

	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "No recorded scans"))
}

func TestHistoryCommand_Disabled(t *testing.T) {
	p := setupTestProject(t)

	_, err := execute(t, p.args("history", "--history=false")...)

	assert.ErrorContains(t, err, "scan history is disabled")
}

func TestLookupCommand(t *testing.T) {
	p := setupTestProject(t)

	_, err := execute(t, p.args("list")...)
	assert.NilError(t, err)

	// Files added after the recorded scan are not seen without --fresh
	testutil.WriteFiles(t, p.dagDir, map[string]string{
		"late.sql": "select * from users",
	})

	out, err := execute(t, p.args("lookup", "users", "-o", "json")...)
	assert.NilError(t, err)
	var files []string
	assert.NilError(t, json.Unmarshal([]byte(out), &files))
	assert.DeepEqual(t, files, []string{"daily.sql"})

	out, err = execute(t, p.args("lookup", "users", "--fresh", "-o", "json")...)
	assert.NilError(t, err)
	assert.NilError(t, json.Unmarshal([]byte(out), &files))
	assert.DeepEqual(t, files, []string{"daily.sql", "late.sql"})
}

func TestLookupCommand_CaseInsensitive(t *testing.T) {
	p := setupTestProject(t)

	_, err := execute(t, p.args("list")...)
	assert.NilError(t, err)

	out, err := execute(t, p.args("lookup", "ORDERS")...)

	assert.NilError(t, err)
	assert.Equal(t, strings.TrimSpace(out), "daily.sql")
}

func TestLookupCommand_NoRecordedScan(t *testing.T) {
	p := setupTestProject(t)

	out, err := execute(t, p.args("lookup", "payments")...)

	assert.NilError(t, err)
	assert.Equal(t, strings.TrimSpace(out), "weekly.sql")
}

func TestLookupCommand_NoFiles(t *testing.T) {
	p := setupTestProject(t)

	out, err := execute(t, p.args("lookup", "missing", "--history=false")...)

	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "No files read missing"))
}

func TestImportCommand(t *testing.T) {
	p := setupTestProject(t)
	path := filepath.Join(t.TempDir(), "report.html")

	_, err := execute(t, p.args("export", path, "--history=false")...)
	assert.NilError(t, err)

	out, err := execute(t, p.args("import", path)...)
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "Imported 3 files from "+path))

	db, err := storage.NewSQLiteStorage(p.history)
	assert.NilError(t, err)
	defer db.Close()

	scan, err := db.LatestScan(p.dagDir + string(filepath.Separator))
	assert.NilError(t, err)
	assert.Equal(t, len(scan.Items), 3)
	assert.DeepEqual(t, scan.Items[0], model.NewQueryItem("daily.sql", []string{"orders", "users"}))
}

func TestImportCommand_JSON(t *testing.T) {
	p := setupTestProject(t)
	path := filepath.Join(t.TempDir(), "scan.json")

	// Export records the scan, so the import must not reuse its ID
	_, err := execute(t, p.args("export", path, "--format", "json")...)
	assert.NilError(t, err)

	_, err = execute(t, p.args("import", path)...)
	assert.NilError(t, err)

	out, err := execute(t, p.args("history", "-o", "json")...)
	assert.NilError(t, err)

	var scans []storage.ScanSummary
	assert.NilError(t, json.Unmarshal([]byte(out), &scans))
	assert.Equal(t, len(scans), 2)
	assert.Assert(t, scans[0].ID != scans[1].ID)
	assert.Equal(t, scans[0].FileCount, 3)
}

func TestImportCommand_MissingFile(t *testing.T) {
	p := setupTestProject(t)

	_, err := execute(t, p.args("import", filepath.Join(t.TempDir(), "nope.html"))...)

	assert.ErrorContains(t, err, "failed to read report")
	assert.Assert(t, errors.Is(err, storage.ErrNoScan))
}

func TestRun_ClosesLogFileOnError(t *testing.T) {
	p := setupTestProject(t)
	logPath := filepath.Join(t.TempDir(), "tablemap.log")

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"list",
		"--dag-folder", p.folder,
		"--dag-name", "missing",
		"--log-level", "debug",
		"--log-file", logPath,
		"--history=false",
	})

	ran, err := run(cmd)
	var dirErr *browser.DirectoryNotFoundError
	assert.Assert(t, errors.As(err, &dirErr), "expected DirectoryNotFoundError, got %v", err)

	s := getSession(ran.Context())
	assert.Assert(t, s != nil)
	assert.Assert(t, errors.Is(s.closeLog(), os.ErrClosed), "log file was left open")

	data, err := os.ReadFile(logPath)
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(string(data), "configuration loaded"))
}

// newBrowseSession returns a session for p logging at info level to w.
func newBrowseSession(p testProject, logFile string, w io.Writer) (*session, error) {
	cfg := &config.Config{
		DAG: config.DAGConfig{Folder: p.folder, Name: "etl"},
		Log: config.LogConfig{Level: "info", File: logFile},
	}
	logger, closeLog, err := config.NewLogger(cfg.Log, w)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, closeLog: closeLog}, nil
}

func reload(app tui.App) tui.App {
	m, _ := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	return m.(tui.App)
}

func TestBrowser_ReloadKeepsTerminalClean(t *testing.T) {
	p := setupTestProject(t)
	terminal := new(bytes.Buffer)

	s, err := newBrowseSession(p, "", terminal)
	assert.NilError(t, err)

	scan, err := s.scan()
	assert.NilError(t, err)
	// Before the browser starts, records still reach stderr
	assert.Assert(t, is.Contains(terminal.String(), "scan complete"))
	terminal.Reset()

	app := s.newBrowser(scan)
	testutil.WriteFiles(t, p.dagDir, map[string]string{
		"late.sql": "select * from audit",
	})
	app = reload(app)

	assert.Equal(t, len(app.Items()), 4)
	assert.Equal(t, terminal.String(), "")
}

func TestBrowser_ReloadLogsToFile(t *testing.T) {
	p := setupTestProject(t)
	terminal := new(bytes.Buffer)
	logPath := filepath.Join(t.TempDir(), "tablemap.log")

	s, err := newBrowseSession(p, logPath, terminal)
	assert.NilError(t, err)
	defer s.closeLog()

	scan, err := s.scan()
	assert.NilError(t, err)

	app := reload(s.newBrowser(scan))
	assert.Equal(t, len(app.Items()), 3)

	data, err := os.ReadFile(logPath)
	assert.NilError(t, err)
	assert.Equal(t, strings.Count(string(data), "scan complete"), 2)
	assert.Equal(t, terminal.String(), "")
}
