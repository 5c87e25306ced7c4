package cli

import (
	"path/filepath"
	"strings"

	"hierarchy-cli/internal/store"
	"hierarchy-cli/internal/workspace"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	var label string
	var dims []string
	var from string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a workspace (empty, or seeded from a document file)",
		Example: strings.TrimSpace(`
hierarchy init --label Places --dims Region,City,District
hierarchy init --from places.toml
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveDir(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			doc := workspace.DefaultDocument()
			if p := strings.TrimSpace(from); p != "" {
				if doc, err = workspace.LoadDocumentFile(p); err != nil {
					return writeErr(cmd, err)
				}
			}
			if v := strings.TrimSpace(label); v != "" {
				doc.Label = v
			}
			if len(dims) > 0 {
				doc.Dimensions = []string{}
				for _, d := range dims {
					if d = strings.TrimSpace(d); d != "" {
						doc.Dimensions = append(doc.Dimensions, d)
					}
				}
			}

			ctx := cmdContext(cmd)
			ws, err := workspace.Init(ctx, dir, doc)
			if err != nil {
				return writeErr(cmd, err)
			}

			// In workspace mode with no current workspace yet, make this one current.
			if app.Workspace != "" {
				cfg, err := store.LoadConfig()
				if err == nil && cfg.CurrentWorkspace == "" {
					cfg.CurrentWorkspace = app.Workspace
					_ = store.SaveConfig(cfg)
				}
			}

			id, err := ws.Store.WorkspaceID(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":         dir,
					"sqlitePath":  filepath.Join(dir, "hierarchy.sqlite"),
					"workspaceId": id,
					"document":    ws.Editor.Document(),
				},
			})
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "Top-level group label (default: Hierarchy)")
	cmd.Flags().StringSliceVar(&dims, "dims", nil, "Comma-separated dimension labels, one per depth level")
	cmd.Flags().StringVar(&from, "from", "", "Seed the forest from a .json, .yaml or .toml document (--label/--dims override it)")

	return cmd
}
