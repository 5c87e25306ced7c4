package cli

import (
	"errors"
	"sort"

	"hierarchy-cli/internal/mutate"
	"hierarchy-cli/internal/workspace"

	"github.com/spf13/cobra"
)

// viewAndSave is mutateAndSave for view-only changes: the draft is untouched.
func viewAndSave(cmd *cobra.Command, app *App, fn func(ws *workspace.Workspace) error) error {
	ws, err := openWorkspace(cmd, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	if err := fn(ws); err != nil {
		return writeErr(cmd, err)
	}
	if err := ws.SaveView(); err != nil {
		return writeErr(cmd, err)
	}
	collapsed := ws.Editor.Collapsed().IDs()
	sort.Strings(collapsed)
	return writeOut(cmd, app, map[string]any{"data": map[string]any{"collapsed": collapsed}})
}

func newCollapseCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "collapse [node-id...]",
		Short: "Hide the subtrees of the given nodes (or every node with --all)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return writeErr(cmd, errors.New("collapse: pass node ids or --all"))
			}
			return viewAndSave(cmd, app, func(ws *workspace.Workspace) error {
				if all {
					ws.Editor.CollapseAll()
					return nil
				}
				for _, id := range args {
					if err := ws.Editor.Collapse(id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Collapse every node that has children")

	return cmd
}

func newExpandCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "expand [node-id...]",
		Short: "Show the subtrees of the given nodes (or every node with --all)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return writeErr(cmd, errors.New("expand: pass node ids or --all"))
			}
			return viewAndSave(cmd, app, func(ws *workspace.Workspace) error {
				if all {
					ws.Editor.ExpandAll()
					return nil
				}
				for _, id := range args {
					if err := ws.Editor.Expand(id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Expand every node")

	return cmd
}

func newSearchCmd(app *App) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find nodes whose name contains the query (case-insensitive, literal)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			query := args[0]
			var ids []string
			if reveal {
				ids = ws.Editor.RevealMatches(query)
				if err := ws.SaveView(); err != nil {
					return writeErr(cmd, err)
				}
			} else {
				ids = ws.Editor.Search(query)
			}

			type match struct {
				ID   string `json:"id" yaml:"id"`
				Name string `json:"name" yaml:"name"`
			}
			f := ws.Editor.Document().Forest
			matches := make([]match, 0, len(ids))
			for _, id := range ids {
				if n := mutate.Find(f, id); n != nil {
					matches = append(matches, match{ID: id, Name: n.Name})
				}
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"query": query, "matches": matches}})
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Expand collapsed ancestors so every match is visible")

	return cmd
}
