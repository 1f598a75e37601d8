package layout

import "unicode/utf8"

// ColumnWidths holds calculated column widths of the item table.
type ColumnWidths struct {
	Name   int
	Tables int
}

// CalculateTableHeight computes the number of row lines available to the table.
// Returns at least MinHeight.
func CalculateTableHeight(terminalHeight int, cfg TableConfig) int {
	height := terminalHeight - cfg.HeightReduction
	if height < cfg.MinHeight {
		return cfg.MinHeight
	}
	return height
}

// CalculateColumnWidths splits the terminal width between the two columns.
// The highlight symbol and column gap are taken off first.
func CalculateColumnWidths(terminalWidth int, cfg TableConfig) ColumnWidths {
	available := terminalWidth - cfg.ContentPadding - utf8.RuneCountInString(cfg.HighlightSymbol) - cfg.ColumnGap

	name := available * cfg.NameWidthPercent / 100
	if name < cfg.MinNameWidth {
		name = cfg.MinNameWidth
	}

	tables := available - name
	if tables < cfg.MinTablesWidth {
		tables = cfg.MinTablesWidth
	}

	return ColumnWidths{Name: name, Tables: tables}
}

// CalculateVisibleRows computes which rows of variable height fit in maxLines
// while keeping the selected row visible.
// Returns (start, end) where rows[start:end] should be displayed.
// A negative selected index means no selection and shows rows from the top.
func CalculateVisibleRows(heights []int, selected, maxLines int) (start, end int) {
	total := len(heights)
	if total == 0 {
		return 0, 0
	}
	if selected < 0 {
		selected = 0
	}
	if selected >= total {
		selected = total - 1
	}

	// Scroll down until the selected row's last line fits
	lines := 0
	for i := 0; i <= selected; i++ {
		lines += heights[i]
	}
	for lines > maxLines && start < selected {
		lines -= heights[start]
		start++
	}

	// Fill the remaining space below the selection
	end = selected + 1
	for end < total && lines+heights[end] <= maxLines {
		lines += heights[end]
		end++
	}

	return start, end
}

// CalculateVisibleListItems computes the start and end indices for a scrollable list.
// Returns (start, end) where items[start:end] should be displayed.
func CalculateVisibleListItems(maxVisible, selectedIdx, totalItems int) (start, end int) {
	if totalItems <= maxVisible {
		return 0, totalItems
	}

	if selectedIdx >= maxVisible {
		start = selectedIdx - maxVisible + 1
	}

	end = start + maxVisible
	if end > totalItems {
		end = totalItems
	}

	return start, end
}
