package cli

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nikbrunner/tablemap/internal/model"
	"github.com/nikbrunner/tablemap/internal/storage"
)

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderItems writes the file to tables mapping as a table, one table name
// per line within a row.
func renderItems(w io.Writer, items []model.QueryItem) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"FILE_NAME", "TABLES"})
	for _, item := range items {
		t.AppendRow(table.Row{item.SourceName, strings.Join(item.Tables, "\n")})
	}
	t.Render()
}

// renderScans writes scan summaries as a table.
func renderScans(w io.Writer, scans []storage.ScanSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "DIR", "SCANNED AT", "FILES", "TABLES"})
	for _, s := range scans {
		t.AppendRow(table.Row{
			shortID(s.ID),
			s.Dir,
			s.ScannedAt.Format("2006-01-02 15:04:05"),
			s.FileCount,
			s.TableCount,
		})
	}
	t.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
