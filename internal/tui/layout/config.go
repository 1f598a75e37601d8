package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Table TableConfig
	Help  HelpConfig
	Input InputConfig
	Text  TextConfig
}

// TableConfig holds the dimensions of the two-column item table.
type TableConfig struct {
	// HeightReduction is subtracted from terminal height for table rows.
	// Accounts for: app padding (1) + title (1) + header (1) + help bar (3) = 6
	HeightReduction int

	// MinHeight is the minimum number of row lines shown.
	MinHeight int

	// ContentPadding is subtracted from terminal width before columns are laid out.
	// Accounts for app padding on each side.
	ContentPadding int

	// HighlightSymbol prefixes the selected row; other rows get matching spaces.
	HighlightSymbol string

	// ColumnGap is the space between the file name and tables columns.
	ColumnGap int

	// NameWidthPercent is the share of the available width given to file names.
	NameWidthPercent int

	// MinNameWidth is the minimum file name column width.
	MinNameWidth int

	// MinTablesWidth is the minimum tables column width.
	MinTablesWidth int
}

// HelpConfig holds help overlay configuration.
type HelpConfig struct {
	// LeftColumnWidth: width for help overlay left column.
	LeftColumnWidth int

	// RightColumnWidth: width for help overlay right column.
	RightColumnWidth int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	FilterCharLimit int
	FilterWidth     int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Table: TableConfig{
			HeightReduction:  6, // app padding (1) + title (1) + header (1) + help bar (3)
			MinHeight:        3,
			ContentPadding:   4,
			HighlightSymbol:  ">> ",
			ColumnGap:        2,
			NameWidthPercent: 40,
			MinNameWidth:     12,
			MinTablesWidth:   12,
		},
		Help: HelpConfig{
			LeftColumnWidth:  20,
			RightColumnWidth: 24,
		},
		Input: InputConfig{
			FilterCharLimit: 50,
			FilterWidth:     30,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
