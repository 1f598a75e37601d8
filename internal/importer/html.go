package importer

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/nikbrunner/tablemap/internal/exporter"
	"github.com/nikbrunner/tablemap/internal/model"
	"golang.org/x/net/html"
)

// ErrNoReportTable is returned when a document has no report table.
var ErrNoReportTable = errors.New("no report table found")

// ParseHTMLReport parses an HTML report written by exporter.ExportHTML and
// returns it as a new scan. The scan keeps the report's directory and
// timestamp but gets a fresh ID.
func ParseHTMLReport(r io.Reader) (*model.Scan, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	table := findReportTable(doc)
	if table == nil {
		return nil, ErrNoReportTable
	}

	var items []model.QueryItem

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.ToLower(n.Data) == "tr" {
			if item, ok := parseRow(n); ok {
				items = append(items, item)
			}
			return // Don't recurse into rows
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}
	parse(table)

	scan := model.NewScan(model.NewScanParams{
		Dir:   getAttr(table, exporter.AttrDir),
		Items: items,
	})
	if ts := getAttr(table, exporter.AttrScannedAt); ts != "" {
		if scannedAt, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			scan.ScannedAt = scannedAt
		}
	}

	return scan, nil
}

// findReportTable returns the first table carrying the report directory
// attribute, falling back to the first table in the document.
func findReportTable(doc *html.Node) *html.Node {
	var first, marked *html.Node

	var find func(*html.Node)
	find = func(n *html.Node) {
		if marked != nil {
			return
		}
		if n.Type == html.ElementNode && strings.ToLower(n.Data) == "table" {
			if first == nil {
				first = n
			}
			if hasAttr(n, exporter.AttrDir) {
				marked = n
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)

	if marked != nil {
		return marked
	}
	return first
}

// parseRow reads a body row: the file name cell then the tables cell.
// Header rows and rows without a file name are skipped.
func parseRow(tr *html.Node) (model.QueryItem, bool) {
	var cells []*html.Node
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch strings.ToLower(c.Data) {
		case "th":
			return model.QueryItem{}, false
		case "td":
			cells = append(cells, c)
		}
	}
	if len(cells) == 0 {
		return model.QueryItem{}, false
	}

	name := getTextContent(cells[0])
	if name == "" {
		return model.QueryItem{}, false
	}

	var tables []string
	if len(cells) > 1 {
		tables = getTextLines(cells[1])
	}
	return model.NewQueryItem(name, tables), true
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getTextLines returns the non-empty text runs of a node split on <br>.
func getTextLines(n *html.Node) []string {
	var lines []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			lines = append(lines, s)
		}
		current.Reset()
	}

	var extract func(*html.Node)
	extract = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			current.WriteString(n.Data)
		case n.Type == html.ElementNode && strings.ToLower(n.Data) == "br":
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	flush()

	return lines
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return true
		}
	}
	return false
}
