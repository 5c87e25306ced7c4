package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hierarchy-cli/internal/store"

	"github.com/spf13/cobra"
)

func newWorkspaceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Workspace management (the default workspace is fine unless you need several)",
	}

	cmd.AddCommand(newWorkspaceListCmd(app))
	cmd.AddCommand(newWorkspaceCurrentCmd(app))
	cmd.AddCommand(newWorkspaceUseCmd(app))
	cmd.AddCommand(newWorkspaceAddCmd(app))

	return cmd
}

func newWorkspaceListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := store.ListWorkspaces()
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			type row struct {
				Name    string `json:"name" yaml:"name"`
				Dir     string `json:"dir" yaml:"dir"`
				Current bool   `json:"current" yaml:"current"`
			}
			out := make([]row, 0, len(names))
			for _, n := range names {
				d, err := store.WorkspaceDir(n)
				if err != nil {
					return writeErr(cmd, err)
				}
				out = append(out, row{Name: n, Dir: d, Current: n == cfg.CurrentWorkspace})
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
}

func newWorkspaceCurrentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the workspace commands will use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveDir(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"workspace":   app.Workspace,
				"dir":         dir,
				"initialized": store.Store{Dir: dir}.Exists(),
			}})
		},
	}
}

func newWorkspaceUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Make a workspace current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := store.NormalizeWorkspaceName(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg.CurrentWorkspace = name
			if ref, ok := cfg.Workspaces[name]; ok {
				ref.LastOpened = time.Now().UTC().Format(time.RFC3339)
				cfg.Workspaces[name] = ref
			}
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			dir, err := store.WorkspaceDir(name)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"workspace": name, "dir": dir}})
		},
	}
}

func newWorkspaceAddCmd(app *App) *cobra.Command {
	var dir string
	var use bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register an existing workspace directory under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := store.NormalizeWorkspaceName(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			dir = strings.TrimSpace(dir)
			if dir == "" {
				return writeErr(cmd, errors.New("missing --dir"))
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return writeErr(cmd, err)
			}
			abs = filepath.Clean(abs)
			if st, err := os.Stat(abs); err != nil || !st.IsDir() {
				return writeErr(cmd, errors.New("--dir must be an existing directory"))
			}

			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			if cfg.Workspaces == nil {
				cfg.Workspaces = map[string]store.WorkspaceRef{}
			}
			cfg.Workspaces[name] = store.WorkspaceRef{Path: abs}
			if use {
				cfg.CurrentWorkspace = name
			}
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"workspace": name,
				"dir":       abs,
				"current":   cfg.CurrentWorkspace == name,
			}})
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Existing workspace directory")
	cmd.Flags().BoolVar(&use, "use", false, "Also make it the current workspace")

	return cmd
}
