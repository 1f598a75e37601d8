package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/tablemap/internal/model"
	"github.com/nikbrunner/tablemap/internal/picker"
	"github.com/nikbrunner/tablemap/internal/search"
	"github.com/spf13/cobra"
)

// NewSearchCommand creates the search command.
func NewSearchCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy search files and tables",
		Long: `Fuzzy match the query against each file name and its tables.
A single match is printed directly; several matches open a picker.`,
		Example: `  # Find files reading a payments table
  tablemap search payments

  # Print every match without the picker
  tablemap search pay --all`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), all)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Print every match, best first, without the picker")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, all bool) error {
	s, err := mustSession(cmd)
	if err != nil {
		return err
	}

	scan, err := s.scan()
	if err != nil {
		return err
	}

	results := search.FuzzySearchItems(scan.Items, query)
	s.logger.Debug("search complete", "query", query, "matches", len(results))

	if len(results) == 0 {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No matches for %q\n", query)
		return nil
	}

	if all || len(results) == 1 {
		items := make([]model.QueryItem, len(results))
		for i, r := range results {
			items[i] = *r.Item
		}
		return printItems(cmd, s, items)
	}

	p := tea.NewProgram(picker.New(results, query),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.ErrOrStderr()),
		tea.WithContext(cmd.Context()),
	)
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("picker failed: %w", err)
	}

	selected := finalModel.(picker.Picker).SelectedItem()
	if selected == nil {
		return nil
	}
	return printItems(cmd, s, []model.QueryItem{*selected})
}

func printItems(cmd *cobra.Command, s *session, items []model.QueryItem) error {
	if s.cfg.Output == "json" {
		return writeJSON(cmd.OutOrStdout(), items)
	}
	renderItems(cmd.OutOrStdout(), items)
	return nil
}
