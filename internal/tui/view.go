package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nikbrunner/tablemap/internal/model"
	"github.com/nikbrunner/tablemap/internal/tui/layout"
)

// Column headers of the item table.
const (
	headerFileName = "FILE_NAME"
	headerTables   = "TABLES"
)

// renderView creates the complete table view.
func (a App) renderView() string {
	if a.mode == ModeHelp {
		return a.renderHelpOverlay()
	}

	content := a.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			a.renderTitle(),
			a.renderTable(),
			a.renderHelpBar(),
		),
	)

	// Use Place to ensure exact terminal dimensions and prevent overflow
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

// renderTitle renders the directory, counts and filter above the table.
func (a App) renderTitle() string {
	if a.mode == ModeFilter {
		return a.filter.Input.View()
	}

	files := len(a.scan.Items)
	tables := len(a.scan.TableNames())
	title := a.styles.Title.Render("tablemap") + " " +
		a.styles.Subtitle.Render(fmt.Sprintf("%s  %d files, %d tables", a.scan.Dir, files, tables))

	if a.filter.Active() {
		title += a.styles.Subtitle.Render(fmt.Sprintf("  [/%s: %d/%d]", a.filter.Query, a.state.Len(), files))
	}
	return title
}

// renderTable renders the header and the visible rows.
func (a App) renderTable() string {
	cfg := a.layoutConfig.Table
	widths := layout.CalculateColumnWidths(a.width, cfg)
	gap := strings.Repeat(" ", cfg.ColumnGap)
	blankSymbol := strings.Repeat(" ", layout.VisibleLength(cfg.HighlightSymbol))

	var lines []string
	lines = append(lines, blankSymbol+a.styles.Header.Render(
		layout.FitText(headerFileName, widths.Name, a.layoutConfig.Text)+gap+
			layout.FitText(headerTables, widths.Tables, a.layoutConfig.Text),
	))

	items := a.state.Items()
	if len(items) == 0 {
		empty := "(no query files)"
		if a.filter.Active() {
			empty = "(no matches)"
		}
		lines = append(lines, blankSymbol+a.styles.Empty.Render(empty))
		return strings.Join(lines, "\n")
	}

	maxLines := layout.CalculateTableHeight(a.height, cfg)
	selected, hasSelected := a.state.Selected()
	if !hasSelected {
		selected = -1
	}
	start, end := layout.CalculateVisibleRows(rowHeights(items), selected, maxLines)

	used := 0
	for i := start; i < end && used < maxLines; i++ {
		rowLines := a.renderRow(items[i], i == selected, widths)
		if used+len(rowLines) > maxLines {
			rowLines = rowLines[:maxLines-used]
		}
		lines = append(lines, rowLines...)
		used += len(rowLines)
	}

	return strings.Join(lines, "\n")
}

// renderRow renders one item as one line per table.
// The file name sits on the first line.
func (a App) renderRow(item model.QueryItem, isSelected bool, widths layout.ColumnWidths) []string {
	cfg := a.layoutConfig.Table
	gap := strings.Repeat(" ", cfg.ColumnGap)
	blankSymbol := strings.Repeat(" ", layout.VisibleLength(cfg.HighlightSymbol))
	blankName := strings.Repeat(" ", widths.Name)

	style := a.styles.Row
	if isSelected {
		style = a.styles.RowSelected
	}

	height := rowHeight(item)
	lines := make([]string, height)
	for i := 0; i < height; i++ {
		prefix := blankSymbol
		name := blankName
		if i == 0 {
			name = layout.FitText(item.SourceName, widths.Name, a.layoutConfig.Text)
			if isSelected {
				prefix = a.styles.Highlight.Render(cfg.HighlightSymbol)
			}
		}

		table := ""
		if i < len(item.Tables) {
			table = item.Tables[i]
		}

		lines[i] = prefix + style.Render(name+gap+layout.FitText(table, widths.Tables, a.layoutConfig.Text))
	}
	return lines
}

// renderHelpBar renders the spacer, status message and contextual hints.
func (a App) renderHelpBar() string {
	lines := []string{""}

	if a.messageText != "" {
		lines = append(lines, a.renderMessageLine())
	} else {
		lines = append(lines, "")
	}

	lines = append(lines, a.renderHints(a.getContextualHints()))

	return strings.Join(lines, "\n")
}

// renderMessageLine renders the styled message with prefix icon based on type.
func (a App) renderMessageLine() string {
	var msgStyle lipgloss.Style
	var prefix string

	switch a.messageType {
	case MessageError:
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CC3333", Dark: "#FF6666"}).
			Bold(true)
		prefix = "✗ "
	case MessageWarning:
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CC8800", Dark: "#FFAA00"}).
			Bold(true)
		prefix = "⚠ "
	case MessageSuccess:
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#338833", Dark: "#66CC66"}).
			Bold(true)
		prefix = "✓ "
	default: // MessageInfo
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}).
			Bold(true)
		prefix = ""
	}

	return msgStyle.Render(prefix + a.messageText)
}

// renderHelpOverlay renders the full-screen key reference.
func (a App) renderHelpOverlay() string {
	// Brutalist style: no border, just raw columns
	modalStyle := lipgloss.NewStyle().
		Padding(1, 2)

	var left strings.Builder
	left.WriteString(a.styles.Title.Render("nav") + "\n")
	left.WriteString("j/down  next file\n")
	left.WriteString("k/up    prev file\n")
	left.WriteString("\n")
	left.WriteString(a.styles.Title.Render("filter") + "\n")
	left.WriteString("/       filter\n")
	left.WriteString("Enter   apply\n")
	left.WriteString("Esc     clear\n")

	var right strings.Builder
	right.WriteString(a.styles.Title.Render("act") + "\n")
	right.WriteString("y       yank tables\n")
	right.WriteString("r       reload\n")
	right.WriteString("\n")
	right.WriteString(a.styles.Title.Render("system") + "\n")
	right.WriteString("?       help\n")
	right.WriteString("q       quit\n")
	right.WriteString("\n")
	right.WriteString(a.styles.Help.Render("[?/esc] close"))

	leftCol := lipgloss.NewStyle().Width(a.layoutConfig.Help.LeftColumnWidth).Render(left.String())
	rightCol := lipgloss.NewStyle().Width(a.layoutConfig.Help.RightColumnWidth).Render(right.String())
	cols := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, "  ", rightCol)

	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Left,
		lipgloss.Top,
		modalStyle.Render(cols),
	)
}
