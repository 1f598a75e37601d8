package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds all lipgloss styles for the TUI.
type Styles struct {
	App         lipgloss.Style
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Header      lipgloss.Style
	Row         lipgloss.Style
	RowSelected lipgloss.Style
	Highlight   lipgloss.Style // The ">> " marker in front of the selected row
	Help        lipgloss.Style
	Empty       lipgloss.Style
	HintKey     lipgloss.Style // Key portion of hints (e.g., "/", "j/k")
	HintDesc    lipgloss.Style // Description portion of hints (e.g., "filter", "move")
}

// DefaultStyles returns the default style configuration.
// Industrial design: grayscale with single desaturated teal accent.
func DefaultStyles() Styles {
	primary := lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"} // main text
	subtle := lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}  // secondary text
	accent := lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}  // desaturated teal

	return Styles{
		App: lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			PaddingRight(2),

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Subtitle: lipgloss.NewStyle().
			Foreground(subtle),

		Header: lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(accent),

		Row: lipgloss.NewStyle().
			Foreground(primary),

		RowSelected: lipgloss.NewStyle().
			Reverse(true),

		Highlight: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),

		Help: lipgloss.NewStyle().
			Foreground(subtle),

		Empty: lipgloss.NewStyle().
			Foreground(subtle),

		HintKey: lipgloss.NewStyle().
			Foreground(accent),

		HintDesc: lipgloss.NewStyle().
			Foreground(subtle),
	}
}
