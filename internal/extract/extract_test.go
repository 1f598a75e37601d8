package extract

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/nikbrunner/tablemap/internal/testutil"
	"gotest.tools/v3/assert"
)

func TestExtractTables(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"single table", "select * from orders", []string{"orders"}},
		{"join without from", "SELECT * FROM users JOIN orders ON x", []string{"users"}},
		{"case folded and deduplicated", "select a from Foo; select b from foo", []string{"foo"}},
		{"keyword without identifier", "from ", []string{}},
		{"keyword at end", "select 1 from", []string{}},
		{"followed by digit", "select * from 1table", []string{}},
		{"followed by punctuation", "select * from (select 1)", []string{}},
		{"no whitespace", "select * fromusers", []string{"users"}},
		{"underscores", "select * from raw_events_v", []string{"raw_events_v"}},
		{"stops at digit", "select * from events2024", []string{"events"}},
		{"newline and tabs", "select *\nfrom\n\t  Accounts", []string{"accounts"}},
		{
			"first occurrence order",
			"select * from b; select * from a; select * from b; select * from c",
			[]string{"b", "a", "c"},
		},
		{"inside comment", "-- copied from legacy\nselect * from orders", []string{"legacy", "orders"}},
		{"schema qualified keeps schema", "select * from analytics.orders", []string{"analytics"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTables(tt.text)
			assert.DeepEqual(t, got, tt.want)
		})
	}
}

func TestExtractTables_NoDuplicates(t *testing.T) {
	inputs := []string{
		"from a from A from a from b",
		"SELECT x FROM t1 UNION SELECT y FROM T1 UNION SELECT z FROM t_1",
		strings.Repeat("select * from orders;\n", 50),
	}

	for _, input := range inputs {
		got := ExtractTables(input)
		seen := make(map[string]bool)
		for _, table := range got {
			if seen[table] {
				t.Errorf("duplicate %q in %v for input %q", table, got, input)
			}
			seen[table] = true
		}
	}
}

func TestExtractTables_EntriesFollowFrom(t *testing.T) {
	inputs := []string{
		"SELECT * FROM Users u JOIN orders o ON u.id = o.user_id",
		"insert into archive select * from staging_events where x in (select id from Blocked)",
		"from\nfrom users",
		"delete from sessions; -- from the old days",
	}

	for _, input := range inputs {
		lower := strings.ToLower(input)
		for _, table := range ExtractTables(input) {
			if table == "" {
				t.Errorf("empty table name for input %q", input)
				continue
			}
			pattern := regexp.MustCompile(`from\s*` + regexp.QuoteMeta(table))
			if !pattern.MatchString(lower) {
				t.Errorf("table %q does not follow 'from' in %q", table, input)
			}
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orders.sql")
	if err := os.WriteFile(path, []byte("select * from orders"), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	got, err := LoadFile(path, testutil.NewTestLogger(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "select * from orders" {
		t.Errorf("expected file contents, got %q", got)
	}
}

func TestLoadFile_NilLogger(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.sql")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	got, err := LoadFile(path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty contents, got %q", got)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	binary := filepath.Join(dir, "blob.bin")
	if err := os.WriteFile(binary, []byte{0xff, 0xfe, 0xfd}, 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "missing.sql")},
		{"directory", dir},
		{"invalid utf8", binary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(tt.path, testutil.NewTestLogger(t))
			if err == nil {
				t.Fatal("expected error")
			}

			var readErr *FileReadError
			if !errors.As(err, &readErr) {
				t.Fatalf("expected *FileReadError, got %T", err)
			}
			if readErr.Path != tt.path {
				t.Errorf("expected path %q, got %q", tt.path, readErr.Path)
			}
			if !strings.Contains(err.Error(), tt.path) {
				t.Errorf("error message should mention path, got %q", err.Error())
			}
		})
	}
}

func TestLoadFile_MissingWrapsNotExist(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.sql"), nil)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected error to wrap os.ErrNotExist, got %v", err)
	}
}
