package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nikbrunner/tablemap/internal/model"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Report table attributes, read back by the importer.
const (
	AttrDir       = "data-dir"
	AttrScannedAt = "data-scanned-at"
)

// Column headers of the report table.
const (
	HeaderFileName = "FILE_NAME"
	HeaderTables   = "TABLES"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/tablemap-export-YYYY-MM-DD.<format>
func DefaultExportPath(format string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("tablemap-export-%s.%s", time.Now().Format("2006-01-02"), format)
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders the scan as a standalone HTML report.
func ExportHTML(scan *model.Scan) (string, error) {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html)
	doc.AppendChild(root)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, html.Attribute{Key: "charset", Val: "utf-8"}))
	head.AppendChild(withText(element(atom.Title), "tablemap: "+scan.Dir))
	root.AppendChild(head)

	body := element(atom.Body)
	root.AppendChild(body)

	body.AppendChild(withText(element(atom.H1), scan.Dir))
	body.AppendChild(withText(element(atom.P), summary(scan)))

	table := element(atom.Table,
		html.Attribute{Key: AttrDir, Val: scan.Dir},
		html.Attribute{Key: AttrScannedAt, Val: scan.ScannedAt.Format(time.RFC3339Nano)},
	)
	body.AppendChild(table)

	thead := element(atom.Thead)
	headRow := element(atom.Tr)
	headRow.AppendChild(withText(element(atom.Th), HeaderFileName))
	headRow.AppendChild(withText(element(atom.Th), HeaderTables))
	thead.AppendChild(headRow)
	table.AppendChild(thead)

	tbody := element(atom.Tbody)
	for _, item := range scan.Items {
		tr := element(atom.Tr)
		tr.AppendChild(withText(element(atom.Td), item.SourceName))

		td := element(atom.Td)
		for i, name := range item.Tables {
			if i > 0 {
				td.AppendChild(element(atom.Br))
			}
			td.AppendChild(text(name))
		}
		tr.AppendChild(td)
		tbody.AppendChild(tr)
	}
	table.AppendChild(tbody)

	var b strings.Builder
	if err := html.Render(&b, doc); err != nil {
		return "", err
	}
	b.WriteString("\n")
	return b.String(), nil
}

func summary(scan *model.Scan) string {
	return strconv.Itoa(len(scan.Items)) + " files, " +
		strconv.Itoa(len(scan.TableNames())) + " tables, scanned " +
		scan.ScannedAt.Format("2006-01-02 15:04:05")
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func withText(n *html.Node, s string) *html.Node {
	n.AppendChild(text(s))
	return n
}
