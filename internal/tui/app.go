package tui

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/tablemap/internal/browser"
	"github.com/nikbrunner/tablemap/internal/model"
	"github.com/nikbrunner/tablemap/internal/search"
	"github.com/nikbrunner/tablemap/internal/tui/layout"
)

// App is the main bubbletea model for browsing a scanned query directory.
type App struct {
	scan         *model.Scan
	rescan       func() (*model.Scan, error)
	copy         func(string) error
	logger       *slog.Logger
	keys         KeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig

	mode   Mode
	state  browser.State // Selection over the visible (possibly filtered) items
	filter FilterState

	messageText string
	messageType MessageType

	// Window dimensions
	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Scan         *model.Scan
	Rescan       func() (*model.Scan, error) // optional, reload is unavailable if nil
	Copy         func(string) error          // optional, uses the system clipboard if nil
	Logger       *slog.Logger                // optional, discards if nil
	Keys         *KeyMap                     // optional, uses default if nil
	Styles       *Styles                     // optional, uses default if nil
	LayoutConfig *layout.LayoutConfig        // optional, uses default if nil
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	layoutConfig := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		layoutConfig = *params.LayoutConfig
	}

	copyFn := params.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	logger := params.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	scan := params.Scan
	if scan == nil {
		scan = model.NewScan(model.NewScanParams{})
	}

	app := App{
		scan:         scan,
		rescan:       params.Rescan,
		copy:         copyFn,
		logger:       logger,
		keys:         keys,
		styles:       styles,
		layoutConfig: layoutConfig,
		mode:         ModeNormal,
		filter:       NewFilterState(layoutConfig),
		width:        80,
		height:       24,
	}

	app.refreshItems()
	return app
}

// WithDimensions returns a copy of the app sized to width x height.
func (a App) WithDimensions(width, height int) App {
	a.width = width
	a.height = height
	return a
}

// refreshItems rebuilds the browse state from the scan and active filter.
// The selection is discarded.
func (a *App) refreshItems() {
	a.state = browser.NewState(a.visibleItems())
}

// visibleItems returns the scan items matching the active filter, in scan order.
func (a App) visibleItems() []model.QueryItem {
	if !a.filter.Active() {
		return a.scan.Items
	}

	results := search.FuzzySearchItems(a.scan.Items, a.filter.Query)
	indexes := make([]int, len(results))
	for i, r := range results {
		indexes[i] = r.Index
	}
	sort.Ints(indexes)

	items := make([]model.QueryItem, len(indexes))
	for i, idx := range indexes {
		items[i] = a.scan.Items[idx]
	}
	return items
}

// Scan returns the scan being browsed.
func (a App) Scan() *model.Scan {
	return a.scan
}

// Items returns the visible items.
func (a App) Items() []model.QueryItem {
	return a.state.Items()
}

// Selected returns the selected row and whether a row is selected.
func (a App) Selected() (int, bool) {
	return a.state.Selected()
}

// SelectedItem returns the selected item, or nil if nothing is selected.
func (a App) SelectedItem() *model.QueryItem {
	return a.state.SelectedItem()
}

// Mode returns the current interaction mode.
func (a App) Mode() Mode {
	return a.mode
}

// FilterQuery returns the active filter query.
func (a App) FilterQuery() string {
	return a.filter.Query
}

// Message returns the current status message and its type.
func (a App) Message() (string, MessageType) {
	return a.messageText, a.messageType
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		switch a.mode {
		case ModeFilter:
			return a.updateFilter(msg)
		case ModeHelp:
			return a.updateHelp(msg)
		default:
			return a.updateNormal(msg)
		}
	}

	return a, nil
}

// updateNormal handles keys while browsing the table.
func (a App) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.clearMessage()

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Down):
		a.state.Advance()

	case key.Matches(msg, a.keys.Up):
		a.state.Retreat()

	case key.Matches(msg, a.keys.Filter):
		a.mode = ModeFilter
		a.filter.Input.SetValue(a.filter.Query)
		a.filter.Input.CursorEnd()
		return a, a.filter.Input.Focus()

	case key.Matches(msg, a.keys.ClearFilter):
		if a.filter.Active() {
			a.filter.Reset()
			a.refreshItems()
		}

	case key.Matches(msg, a.keys.Yank):
		a.yankSelected()

	case key.Matches(msg, a.keys.Reload):
		a.reload()

	case key.Matches(msg, a.keys.Help):
		a.mode = ModeHelp
	}

	return a, nil
}

// updateFilter handles keys while typing a filter query.
// The table is filtered live as the query changes.
func (a App) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.ForceQuit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.ClearFilter):
		a.mode = ModeNormal
		a.filter.Reset()
		a.refreshItems()
		return a, nil

	case key.Matches(msg, a.keys.Apply):
		a.mode = ModeNormal
		a.filter.Input.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.filter.Input, cmd = a.filter.Input.Update(msg)

	query := strings.TrimSpace(a.filter.Input.Value())
	if query != a.filter.Query {
		a.filter.Query = query
		a.refreshItems()
	}

	return a, cmd
}

// updateHelp handles keys while the help overlay is shown.
func (a App) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.ForceQuit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Help), key.Matches(msg, a.keys.Quit), key.Matches(msg, a.keys.ClearFilter):
		a.mode = ModeNormal
	}
	return a, nil
}

// yankSelected copies the selected item's tables, one per line.
func (a *App) yankSelected() {
	item := a.state.SelectedItem()
	if item == nil {
		a.setMessage(MessageWarning, "Nothing selected")
		return
	}
	if len(item.Tables) == 0 {
		a.setMessage(MessageWarning, fmt.Sprintf("%s references no tables", item.SourceName))
		return
	}

	if err := a.copy(strings.Join(item.Tables, "\n")); err != nil {
		a.logger.Warn("failed to copy to clipboard", "error", err)
		a.setMessage(MessageError, "Copy failed: "+err.Error())
		return
	}

	a.setMessage(MessageSuccess, fmt.Sprintf("Copied %d tables from %s", len(item.Tables), item.SourceName))
}

// reload re-runs the scan. On failure the previous items are kept.
func (a *App) reload() {
	if a.rescan == nil {
		a.setMessage(MessageWarning, "Reload unavailable")
		return
	}

	scan, err := a.rescan()
	if err != nil {
		a.logger.Warn("reload failed", "error", err)
		a.setMessage(MessageError, "Reload failed: "+err.Error())
		return
	}

	a.scan = scan
	a.refreshItems()
	a.setMessage(MessageSuccess, fmt.Sprintf("Reloaded %d files", len(scan.Items)))
}

func (a *App) setMessage(t MessageType, text string) {
	a.messageType = t
	a.messageText = text
}

func (a *App) clearMessage() {
	a.messageText = ""
	a.messageType = MessageInfo
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}
