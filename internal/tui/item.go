package tui

import "github.com/nikbrunner/tablemap/internal/model"

// rowHeight returns the number of lines a row occupies: one per table,
// at least one.
func rowHeight(item model.QueryItem) int {
	if len(item.Tables) > 1 {
		return len(item.Tables)
	}
	return 1
}

// rowHeights returns the row height of every item.
func rowHeights(items []model.QueryItem) []int {
	heights := make([]int, len(items))
	for i, item := range items {
		heights[i] = rowHeight(item)
	}
	return heights
}
