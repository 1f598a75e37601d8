package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/nikbrunner/tablemap/internal/tui/layout"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeFilter
	ModeHelp
)

// MessageType determines how the status message is styled.
type MessageType int

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

// FilterState holds state for the fuzzy filter over the item table.
type FilterState struct {
	Input textinput.Model // Filter input while typing
	Query string          // Active filter query (persists after closing filter)
}

// NewFilterState creates a new FilterState with initialized input.
func NewFilterState(cfg layout.LayoutConfig) FilterState {
	input := textinput.New()
	input.Placeholder = "Filter files and tables..."
	input.Prompt = "/"
	input.CharLimit = cfg.Input.FilterCharLimit
	input.Width = cfg.Input.FilterWidth

	return FilterState{
		Input: input,
	}
}

// Active returns true if a filter query is applied.
func (f *FilterState) Active() bool {
	return f.Query != ""
}

// Reset clears the filter state.
func (f *FilterState) Reset() {
	f.Input.Reset()
	f.Input.Blur()
	f.Query = ""
}
