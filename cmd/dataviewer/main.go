// cmd/dataviewer/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/julianshen/dataviewer/internal/adapters"
	"github.com/julianshen/dataviewer/internal/config"
	"github.com/julianshen/dataviewer/internal/loader"
	"github.com/julianshen/dataviewer/internal/loader/goplugin"
	"github.com/julianshen/dataviewer/internal/loader/starlark"
	"github.com/julianshen/dataviewer/internal/plugins"
	"github.com/julianshen/dataviewer/internal/store"
	"github.com/julianshen/dataviewer/internal/tui"
	"github.com/julianshen/dataviewer/internal/viewer"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configPath string
	verbose    bool
)

func versionString() string {
	return fmt.Sprintf("dataviewer %s (commit: %s, built: %s)", version, commit, date)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dataviewer [file]",
		Short: "A terminal viewer for scientific data files",
		Long: `dataviewer browses HDF5, NumPy, TFRecord, YAML and JSON files as a tree
and renders the selected item with a choice of parsers.

Additional formats, parsers and visualizers are loaded from the adapters
and plugins directories named in the config file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd.Context(), args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log plugin loading and dispatch details")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(pluginsCmd())
	rootCmd.AddCommand(formatsCmd())
	rootCmd.AddCommand(treeCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(recentCmd())
	rootCmd.AddCommand(configCmd())

	return rootCmd
}

// resolveConfigPath returns the --config value or the default location.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.ExpandHome(config.DefaultPath())
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// newLogger creates the process logger. Only warnings are shown unless
// --verbose is set.
func newLogger(w io.Writer) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          "dataviewer",
		Level:           level,
		ReportTimestamp: true,
	})
}

// app holds the loaded registries shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	adapters *adapters.Registry
	plugins  *plugins.Registry
	reports  []*loader.Report
}

// newApp loads the builtins and the configured plugin directories.
func newApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	a, p := adapters.NewRegistry(), plugins.NewRegistry()
	if err := a.SetProbePolicy(adapters.ProbePolicy(cfg.Adapters.Probe)); err != nil {
		return nil, err
	}
	policy, err := loader.ParsePolicy(cfg.Plugins.OnError)
	if err != nil {
		return nil, err
	}

	l := loader.New(a, p,
		loader.WithOpener(".star", starlark.NewOpener(logger)),
		loader.WithOpener(".so", goplugin.NewOpener()),
		loader.WithPolicy(policy),
		loader.WithLogger(logger),
	)
	reports, err := viewer.Load(ctx, l, viewer.Sources{
		AdaptersDir:     cfg.Adapters.Dir,
		AdaptersPattern: cfg.Adapters.Pattern,
		PluginsDir:      cfg.Plugins.Dir,
		PluginsPattern:  cfg.Plugins.Pattern,
	}, viewer.Builtins()...)
	if err != nil {
		return nil, fmt.Errorf("loading plugins: %w", err)
	}

	return &app{cfg: cfg, logger: logger, adapters: a, plugins: p, reports: reports}, nil
}

// controller creates a viewer over the app's registries. rec may be nil.
func (a *app) controller(rec viewer.Recorder) *viewer.Controller {
	opts := []viewer.Option{
		viewer.WithLogger(a.logger),
		viewer.WithDefaultParser(a.cfg.Plugins.DefaultParser),
	}
	if rec != nil {
		opts = append(opts, viewer.WithRecorder(rec))
	}
	return viewer.New(a.adapters, a.plugins, opts...)
}

// openLogFile opens the TUI log file for appending, creating its
// directory.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func runInteractive(ctx context.Context, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal, so logs go to a file.
	logOut := io.Discard
	if cfg.UI.LogFile != "" {
		f, err := openLogFile(cfg.UI.LogFile)
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(logOut)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	for _, r := range a.reports {
		if err := r.Err(); err != nil {
			logger.Warn("some plugin units were skipped", "dir", r.Dir, "err", err)
		}
	}

	var (
		rec    viewer.Recorder
		recent func() ([]string, error)
	)
	history, err := store.NewStore(cfg.UI.HistoryDB)
	if err != nil {
		logger.Warn("recent file history disabled", "db", cfg.UI.HistoryDB, "err", err)
	} else {
		defer history.Close()
		rec = history
		recent = func() ([]string, error) {
			return recentPaths(history, cfg.UI.RecentLimit)
		}
	}

	model, err := tui.NewModel(a.controller(rec), recent)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		model.Open(args[0])
	}
	prog := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	if history != nil {
		if err := history.Prune(cfg.UI.RecentLimit); err != nil {
			logger.Warn("pruning recent files", "err", err)
		}
	}
	return nil
}

func recentPaths(s *store.Store, limit int) ([]string, error) {
	files, err := s.Recent(limit)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths, nil
}
