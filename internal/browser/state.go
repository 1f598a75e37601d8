// Package browser scans a query directory and keeps the selection cursor
// used to browse the scanned items one file at a time.
package browser

import "github.com/nikbrunner/tablemap/internal/model"

// State holds the scanned items and the currently selected row.
// The zero value is an empty state with no selection.
type State struct {
	items       []model.QueryItem
	selected    int
	hasSelected bool
}

// NewState creates a State over items with no selection.
func NewState(items []model.QueryItem) State {
	return State{items: items}
}

// Items returns the browsed items.
func (s *State) Items() []model.QueryItem {
	return s.items
}

// Len returns the number of items.
func (s *State) Len() int {
	return len(s.items)
}

// Selected returns the selected index and whether a selection exists.
func (s *State) Selected() (int, bool) {
	return s.selected, s.hasSelected
}

// SelectedItem returns the selected item, or nil if nothing is selected.
func (s *State) SelectedItem() *model.QueryItem {
	if !s.hasSelected || s.selected >= len(s.items) {
		return nil
	}
	return &s.items[s.selected]
}

// Advance selects the next item, wrapping from the last back to the first.
// Without a selection it selects the first item.
func (s *State) Advance() {
	n := len(s.items)
	if n == 0 {
		return
	}
	if !s.hasSelected {
		s.selectIndex(0)
		return
	}
	s.selectIndex((s.selected + 1) % n)
}

// Retreat selects the previous item, wrapping from the first back to the last.
// Without a selection it selects the first item.
func (s *State) Retreat() {
	n := len(s.items)
	if n == 0 {
		return
	}
	if !s.hasSelected {
		s.selectIndex(0)
		return
	}
	if s.selected == 0 {
		s.selectIndex(n - 1)
		return
	}
	s.selectIndex(s.selected - 1)
}

func (s *State) selectIndex(i int) {
	s.selected = i
	s.hasSelected = true
}
