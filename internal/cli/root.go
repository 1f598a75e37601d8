// Package cli provides the command-line interface for tablemap.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/tablemap/internal/config"
	"github.com/nikbrunner/tablemap/internal/model"
	"github.com/nikbrunner/tablemap/internal/tui"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// sessionKey is used to store the session in context.
type sessionKey struct{}

// session holds what every command needs once configuration is loaded.
type session struct {
	cfg        *config.Config
	configFile string
	logger     *slog.Logger
	closeLog   func() error
}

// NewRootCmd creates and returns the root command.
// Run without a subcommand it scans the configured directory and opens the browser.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "tablemap",
		Short: "tablemap - map query files to the tables they read",
		Long: `tablemap scans a directory of SQL query files, finds the table named after
every "from" keyword, and lets you browse which file reads which tables.

The directory is <dag.folder>/<dag.name>/. Settings come from tablemap.yaml,
TABLEMAP_* environment variables (TABLEMAP_DAG__FOLDER for dag.folder) and flags.`,
		Version: Version,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for commands that don't need it
			switch cmd.Name() {
			case "help", "completion", "__complete", "version":
				return nil
			}

			loaded, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger, closeLog, err := config.NewLogger(loaded.Config.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			logger.Debug("configuration loaded",
				"file", loaded.FileUsed,
				"config", fmt.Sprintf("%+v", *loaded.Config),
			)

			s := &session{
				cfg:        loaded.Config,
				configFile: loaded.FileUsed,
				logger:     logger,
				closeLog:   closeLog,
			}
			cmd.SetContext(context.WithValue(cmd.Context(), sessionKey{}, s))
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBrowse(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./tablemap.yaml)")
	flags.String("dag-folder", "", "Folder holding DAG directories")
	flags.String("dag-name", "", "DAG directory to scan")
	flags.String("log-level", "", "Log level (trace|debug|info|warn|error|off)")
	flags.String("log-file", "", "Append logs to this file instead of stderr")
	flags.Bool("skip-unreadable", false, "Skip files that cannot be read instead of failing")
	flags.StringSlice("extension", nil, "Only scan files with these extensions (e.g. sql,hql)")
	flags.Bool("history", true, "Record scans in the history database")
	flags.String("history-path", "", "Path to the history database")
	flags.StringP("output", "o", "", "Output format (text|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"trace", "debug", "info", "warn", "error", "off"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(NewVersionCommand(Version))
	rootCmd.AddCommand(NewListCommand())
	rootCmd.AddCommand(NewSearchCommand())
	rootCmd.AddCommand(NewExportCommand())
	rootCmd.AddCommand(NewImportCommand())
	rootCmd.AddCommand(NewLookupCommand())
	rootCmd.AddCommand(NewHistoryCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	if _, err := run(NewRootCmd()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// run executes rootCmd and closes the log of the command that ran, also when
// it failed. It returns that command.
func run(rootCmd *cobra.Command) (*cobra.Command, error) {
	cmd, err := rootCmd.ExecuteC()
	if cmd == nil {
		return nil, err
	}
	if s := getSession(cmd.Context()); s != nil {
		if closeErr := s.closeLog(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close log: %w", closeErr)
		}
	}
	return cmd, err
}

// getSession retrieves the session from the command context.
func getSession(ctx context.Context) *session {
	if ctx == nil {
		return nil
	}
	if s, ok := ctx.Value(sessionKey{}).(*session); ok {
		return s
	}
	return nil
}

// mustSession retrieves the session or reports that configuration was not loaded.
func mustSession(cmd *cobra.Command) (*session, error) {
	s := getSession(cmd.Context())
	if s == nil {
		return nil, fmt.Errorf("configuration not loaded for %q", cmd.Name())
	}
	return s, nil
}

// runBrowse scans the directory and runs the interactive browser.
func runBrowse(cmd *cobra.Command) error {
	s, err := mustSession(cmd)
	if err != nil {
		return err
	}

	scan, err := s.scan()
	if err != nil {
		return err
	}

	p := tea.NewProgram(s.newBrowser(scan),
		tea.WithAltScreen(),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
		tea.WithContext(cmd.Context()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browser failed: %w", err)
	}
	return nil
}

// newBrowser builds the browser for scan. Without log.file, log records are
// discarded from here on: the browser owns the terminal and stderr would be
// drawn into its frame.
func (s *session) newBrowser(scan *model.Scan) tui.App {
	if s.cfg.Log.File == "" {
		s.logger = slog.New(slog.DiscardHandler)
	}

	return tui.NewApp(tui.AppParams{
		Scan:   scan,
		Rescan: func() (*model.Scan, error) { return s.scan() },
		Logger: s.logger,
	})
}
