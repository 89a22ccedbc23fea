package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/artpar/cookiedesk/internal/app"
	"github.com/artpar/cookiedesk/internal/collab"
	"github.com/artpar/cookiedesk/internal/config"
	"github.com/artpar/cookiedesk/internal/cookies/sqlite"
	"github.com/artpar/cookiedesk/internal/logging"
	"github.com/artpar/cookiedesk/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// GlobalOptions holds flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	URL        string
	Database   string
	LogLevel   string
	LogFormat  string
	Yes        bool

	fs afero.Fs
}

// filesystem returns the filesystem config and import files are read from.
func (o *GlobalOptions) filesystem() afero.Fs {
	if o.fs == nil {
		return afero.NewOsFs()
	}
	return o.fs
}

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	opts := &GlobalOptions{}

	cmd := &cobra.Command{
		Use:     "cookiedesk",
		Short:   "cookiedesk - manage the cookies of one site",
		Long:    "cookiedesk inspects, edits, imports and exports the cookies of the current page's domain and its parent domain.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", config.DefaultPath(), "Config file")
	flags.StringVarP(&opts.URL, "url", "u", "", "Page URL whose cookies are managed (overrides config)")
	flags.StringVar(&opts.Database, "db", "", "Cookie database path (overrides config)")
	flags.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&opts.LogFormat, "log-format", "", "Log format: text or json")
	flags.BoolVarP(&opts.Yes, "yes", "y", false, "Skip confirmation prompts")

	cmd.AddCommand(
		NewListCommand(opts),
		NewAddCommand(opts),
		NewEditCommand(opts),
		NewRemoveCommand(opts),
		NewClearCommand(opts),
		NewImportCommand(opts),
		NewExportCommand(opts),
		NewDomainCommand(opts),
		NewConfigCommand(opts),
	)

	return cmd
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(fs afero.Fs, opts *GlobalOptions) (config.Config, error) {
	cfg, err := config.Load(fs, opts.ConfigPath)
	if err != nil {
		return cfg, err
	}
	if opts.URL != "" {
		cfg.URL = opts.URL
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.Log.Format = opts.LogFormat
	}
	return cfg, nil
}

// openApp builds the session App for cmd. The returned func closes the
// cookie database.
func openApp(cmd *cobra.Command, opts *GlobalOptions, extra ...app.Option) (*app.App, func(), error) {
	fs := opts.filesystem()
	cfg, err := loadConfig(fs, opts)
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, nil, err
	}

	dbPath, err := config.ExpandHome(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := fs.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	store, err := sqlite.New(dbPath)
	if err != nil {
		return nil, nil, err
	}

	var confirmer collab.Confirmer = collab.Prompt{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
	if opts.Yes {
		confirmer = collab.AlwaysConfirm{}
	}

	appOpts := []app.Option{
		app.WithConfig(cfg),
		app.WithLogger(logger),
		app.WithConfirmer(confirmer),
		app.WithClipboard(collab.SystemClipboard{}),
	}
	appOpts = append(appOpts, extra...)

	a := app.New(store, appOpts...)
	return a, func() { store.Close() }, nil
}

// runTUI starts the interactive cookie manager.
func runTUI(cmd *cobra.Command, opts *GlobalOptions) error {
	// The TUI asks for confirmation itself before calling the core.
	a, closeStore, err := openApp(cmd, opts, app.WithConfirmer(collab.AlwaysConfirm{}))
	if err != nil {
		return err
	}
	defer closeStore()

	if _, err := a.Domain(); err != nil {
		return fmt.Errorf("%w (pass --url or set url in %s)", err, opts.ConfigPath)
	}

	p := tea.NewProgram(tui.NewModel(context.Background(), a), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error running TUI: %v\n", err)
		return err
	}
	return nil
}
