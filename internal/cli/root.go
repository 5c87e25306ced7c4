package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"hierarchy-cli/internal/format"
	applog "hierarchy-cli/internal/log"
	"hierarchy-cli/internal/store"
	"hierarchy-cli/internal/tui"
	"hierarchy-cli/internal/workspace"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type App struct {
	Dir        string
	Workspace  string
	PrettyJSON bool
	Format     string

	logOpts applog.Options
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "hierarchy",
		Short:        "Hierarchy editor (local-first) CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive editor
  hierarchy

  # Scriptable commands
  hierarchy init --label Places --dims Region,City
  hierarchy nodes add North
  hierarchy show --format text

  # Direct node lookup (shortcut for: hierarchy nodes show <node-id>)
  hierarchy node-a1b2c3
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		app.logOpts = logOptions()
		applog.Init(app.logOpts)
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("HIERARCHY_DIR", ""), "Path to workspace dir (overrides workspace resolution)")
	cmd.PersistentFlags().StringVar(&app.Workspace, "workspace", envOr("HIERARCHY_WORKSPACE", ""), "Workspace name (default: 'default')")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("HIERARCHY_FORMAT", "json"), "Output format (json|yaml|edn|text)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newNodesCmd(app))
	cmd.AddCommand(newDimsCmd(app))
	cmd.AddCommand(newLabelCmd(app))
	cmd.AddCommand(newCollapseCmd(app))
	cmd.AddCommand(newExpandCmd(app))
	cmd.AddCommand(newSearchCmd(app))
	cmd.AddCommand(newLayoutCmd(app))
	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newApplyCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newWorkspaceCmd(app))

	return cmd
}

// logOptions reads HIERARCHY_LOG_* and falls back to config.json for unset keys.
func logOptions() applog.Options {
	opts := applog.FromEnv()
	cfg, err := store.LoadConfig()
	if err != nil || cfg.Log == nil {
		return opts
	}
	if os.Getenv("HIERARCHY_LOG_LEVEL") == "" && cfg.Log.Level != "" {
		opts.Level = cfg.Log.Level
	}
	if os.Getenv("HIERARCHY_LOG_FORMAT") == "" && cfg.Log.Format != "" {
		opts.Format = cfg.Log.Format
	}
	if opts.File == "" {
		opts.File = cfg.Log.File
	}
	return opts
}

func runTUI(cmd *cobra.Command, app *App) error {
	if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
		return writeErr(cmd, errors.New("the canvas needs an interactive terminal (run a subcommand, or see `hierarchy --help`)"))
	}
	ctx := cmdContext(cmd)
	dir, err := resolveDir(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	s := store.Store{Dir: dir}
	var ws *workspace.Workspace
	if s.Exists() {
		ws, err = workspace.Open(ctx, dir)
	} else {
		ws, err = workspace.Init(ctx, dir, workspace.DefaultDocument())
	}
	if err != nil {
		return writeErr(cmd, err)
	}

	// The alt screen owns the terminal; keep only the file sink.
	quiet := app.logOpts
	quiet.Format = "off"
	applog.Init(quiet)

	opts := tui.Options{Workspace: app.Workspace}
	if cfg, err := store.LoadConfig(); err == nil && cfg.TUI != nil {
		opts.Glyphs = cfg.TUI.Glyphs
	}
	return tui.Run(ctx, ws, opts)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// resolveDir picks the workspace directory.
//
// Precedence:
// 1) --dir
// 2) --workspace
// 3) ~/.hierarchy/config.json currentWorkspace
// 4) a .hierarchy directory found walking up from the cwd
// 5) the "default" workspace
func resolveDir(app *App) (string, error) {
	if app.Dir != "" {
		return app.Dir, nil
	}
	if app.Workspace != "" {
		d, err := store.WorkspaceDir(app.Workspace)
		if err != nil {
			return "", err
		}
		app.Dir = d
		return d, nil
	}
	if cfg, err := store.LoadConfig(); err == nil && cfg.CurrentWorkspace != "" {
		d, err := store.WorkspaceDir(cfg.CurrentWorkspace)
		if err != nil {
			return "", err
		}
		app.Workspace = cfg.CurrentWorkspace
		app.Dir = d
		return d, nil
	}
	if cwd, err := os.Getwd(); err == nil {
		if d, ok := store.DiscoverDir(cwd); ok {
			app.Dir = d
			return d, nil
		}
	}

	app.Workspace = "default"
	d, err := store.WorkspaceDir(app.Workspace)
	if err != nil {
		return "", err
	}
	app.Dir = d
	return d, nil
}

func openWorkspace(cmd *cobra.Command, app *App) (*workspace.Workspace, error) {
	dir, err := resolveDir(app)
	if err != nil {
		return nil, err
	}
	ws, err := workspace.Open(cmdContext(cmd), dir)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w (run `hierarchy init` first)", dir, err)
	}
	return ws, nil
}

// mutateAndSave opens the workspace, runs fn and persists the draft if fn succeeds.
func mutateAndSave(cmd *cobra.Command, app *App, fn func(ws *workspace.Workspace) (any, error)) error {
	ws, err := openWorkspace(cmd, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	out, err := fn(ws)
	if err != nil {
		return writeErr(cmd, err)
	}
	if err := ws.Save(cmdContext(cmd)); err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, map[string]any{"data": out})
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
