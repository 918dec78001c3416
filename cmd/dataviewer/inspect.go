package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/julianshen/dataviewer/internal/adapters"
	"github.com/julianshen/dataviewer/internal/config"
	"github.com/julianshen/dataviewer/internal/store"
	"github.com/julianshen/dataviewer/internal/viewer"
	"github.com/julianshen/dataviewer/pkg/viewersdk"
)

// cliApp loads config and plugins for a one-shot subcommand, logging to
// the command's stderr.
func cliApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return newApp(ctx, cfg, newLogger(cmd.ErrOrStderr()))
}

func pluginsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List registered adapters, parsers and visualizers",
		Long: `Display a table of every registered adapter, parser and visualizer in
registration order, followed by any plugin units that failed to load.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := cliApp(cmd)
			if err != nil {
				return err
			}
			return printPlugins(cmd.OutOrStdout(), a)
		},
	}
}

func printPlugins(out io.Writer, a *app) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\t#\tNAME\tDETAIL")
	i := 0
	for cls := range a.adapters.List() {
		i++
		fmt.Fprintf(w, "adapter\t%d\t%s\t%s\n", i, cls.Name, cls.FileFilter())
	}
	i = 0
	for cls := range a.plugins.Parsers() {
		i++
		fmt.Fprintf(w, "parser\t%d\t%s\t\n", i, cls.Name)
	}
	i = 0
	for cls := range a.plugins.Visualizers() {
		i++
		fmt.Fprintf(w, "visualizer\t%d\t%s\t%s\n", i, cls.Name, strings.Join(acceptedKinds(cls), ", "))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, r := range a.reports {
		for _, f := range r.Failed {
			fmt.Fprintf(out, "failed: %s: %v\n", f.Path, f.Err)
		}
	}
	return nil
}

// acceptedKinds lists the builtin kinds a visualizer accepts.
func acceptedKinds(cls *viewersdk.VisualizerClass) []string {
	var out []string
	for _, k := range viewersdk.Kinds() {
		if cls.Accepts(k) {
			out = append(out, string(k))
		}
	}
	return out
}

func formatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the file formats that can be opened",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := cliApp(cmd)
			if err != nil {
				return err
			}
			for _, f := range strings.Split(a.adapters.FileDialogFilter(), adapters.FilterSeparator) {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
}

func treeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree <file>",
		Short: "Print the item tree of a file",
		Long: `Open a file with the first adapter that accepts it and print its items,
one per line, with the shape and element type of items that hold data.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := cliApp(cmd)
			if err != nil {
				return err
			}
			ctrl := a.controller(nil)
			if err := ctrl.OpenFile(args[0]); err != nil {
				return err
			}
			defer ctrl.CloseFile()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", ctrl.FileName(), ctrl.AdapterName())
			return printTree(out, ctrl.Items())
		},
	}
}

func printTree(out io.Writer, items []*viewersdk.DataItem) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, row := range viewer.Flatten(items) {
		name := strings.Repeat("  ", row.Depth) + row.Name
		switch {
		case row.IsGroup():
			fmt.Fprintf(w, "%s/\t\t\n", name)
		case row.Item.Data == nil:
			fmt.Fprintf(w, "%s\t\t\n", name)
		default:
			shape, _, dtype := viewersdk.Describe(row.Item.Data)
			fmt.Fprintf(w, "%s\t%s\t%v\n", name, dtype, shape)
		}
	}
	return w.Flush()
}

// textSurface collects visualizer output for printing.
type textSurface struct {
	width, height int
	content       string
}

func (s *textSurface) Size() (int, int)          { return s.width, s.height }
func (s *textSurface) SetContent(content string) { s.content = content }

// terminalSize returns the size of stdout, or 80x24 when it is not a
// terminal.
func terminalSize() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80, 24
	}
	return w, h
}

func showCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <file> <item-path>",
		Short: "Render one item of a file",
		Long: `Open a file, select the item at the given slash-separated path and render it
with the chosen parser, e.g.

  dataviewer show model.h5 weights/dense --parser Array`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := cliApp(cmd)
			if err != nil {
				return err
			}
			ctrl := a.controller(nil)

			if name, _ := cmd.Flags().GetString("parser"); name != "" {
				if err := ctrl.SelectParserByName(name); err != nil {
					return err
				}
			}
			if err := ctrl.OpenFile(args[0]); err != nil {
				return err
			}
			defer ctrl.CloseFile()

			item, ok := viewer.Find(ctrl.Items(), args[1])
			if !ok {
				return fmt.Errorf("no item %q in %s", args[1], args[0])
			}

			surface := &textSurface{}
			surface.width, surface.height = terminalSize()
			if width, _ := cmd.Flags().GetInt("width"); width > 0 {
				surface.width = width
			}
			if out := ctrl.Show(item, surface); out != viewer.Rendered {
				return fmt.Errorf("cannot show %s with %s: %s", args[1], ctrl.ParserName(), out)
			}
			fmt.Fprintln(cmd.OutOrStdout(), surface.content)
			return nil
		},
	}
	cmd.Flags().StringP("parser", "p", "", "parser name (default: the configured default parser)")
	cmd.Flags().Int("width", 0, "render width (default: terminal width)")
	return cmd
}

func recentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently opened files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := store.NewStore(cfg.UI.HistoryDB)
			if err != nil {
				return fmt.Errorf("opening history: %w", err)
			}
			defer s.Close()

			if wipe, _ := cmd.Flags().GetBool("clear"); wipe {
				if err := s.Prune(0); err != nil {
					return fmt.Errorf("clearing history: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Recent files cleared.")
				return nil
			}

			if path, _ := cmd.Flags().GetString("remove"); path != "" {
				if err := s.RemoveRecent(path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", path)
				return nil
			}

			limit, _ := cmd.Flags().GetInt("limit")
			if limit == 0 {
				limit = cfg.UI.RecentLimit
			}
			files, err := s.Recent(limit)
			if err != nil {
				return fmt.Errorf("listing recent files: %w", err)
			}
			return printRecent(cmd.OutOrStdout(), files)
		},
	}
	cmd.Flags().Int("limit", 0, "number of files to list (default: ui.recent_limit)")
	cmd.Flags().Bool("clear", false, "forget all recent files")
	cmd.Flags().String("remove", "", "forget one file")
	return cmd
}

func printRecent(out io.Writer, files []store.RecentFile) error {
	if len(files) == 0 {
		fmt.Fprintln(out, "No recent files.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tADAPTER\tOPENED\tCOUNT")
	for _, f := range files {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", f.Path, f.Adapter, f.OpenedAt.Format(time.RFC3339), f.Count)
	}
	return w.Flush()
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the config file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), resolveConfigPath())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
		},
	})

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := resolveConfigPath()
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
	cmd.AddCommand(initCmd)

	return cmd
}
