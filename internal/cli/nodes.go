package cli

import (
	"errors"
	"strings"

	"hierarchy-cli/internal/model"
	"hierarchy-cli/internal/mutate"
	"hierarchy-cli/internal/workspace"

	"github.com/spf13/cobra"
)

func newNodesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "nodes",
		Aliases: []string{"node"},
		Short:   "Node commands (add, rename, delete, move, inspect)",
	}

	cmd.AddCommand(newNodesAddCmd(app))
	cmd.AddCommand(newNodesRenameCmd(app))
	cmd.AddCommand(newNodesDeleteCmd(app))
	cmd.AddCommand(newNodesMoveCmd(app))
	cmd.AddCommand(newNodesShowCmd(app))
	cmd.AddCommand(newNodesPathCmd(app))
	cmd.AddCommand(newNodesCandidatesCmd(app))

	return cmd
}

// nodeView is a node plus where it sits in the forest.
type nodeView struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Level       int      `json:"level" yaml:"level"`
	Dimension   string   `json:"dimension" yaml:"dimension"`
	ParentID    string   `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	Path        []string `json:"path" yaml:"path"`
	ChildIDs    []string `json:"childIds" yaml:"childIds"`
	Collapsed   bool     `json:"collapsed" yaml:"collapsed"`
	Descendants int      `json:"descendants" yaml:"descendants"`
}

func describeNode(ws *workspace.Workspace, id string) (nodeView, error) {
	doc := ws.Editor.Document()
	path, err := mutate.FindPath(doc.Forest, id)
	if err != nil {
		return nodeView{}, err
	}
	n := path[len(path)-1]
	v := nodeView{
		ID:          n.ID,
		Name:        n.Name,
		Level:       len(path) - 1,
		Dimension:   mutate.DimensionName(doc, len(path)-1),
		Path:        make([]string, 0, len(path)),
		ChildIDs:    make([]string, 0, len(n.Children)),
		Collapsed:   ws.Editor.IsCollapsed(n.ID),
		Descendants: len(mutate.SubtreeIDs(n)) - 1,
	}
	if len(path) > 1 {
		v.ParentID = path[len(path)-2].ID
	}
	for _, p := range path {
		v.Path = append(v.Path, p.Name)
	}
	for _, ch := range n.Children {
		v.ChildIDs = append(v.ChildIDs, ch.ID)
	}
	return v, nil
}

func newNodesAddCmd(app *App) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a root node, or a child with --parent (blank name uses the level default)",
		Args:  cobra.MaximumNArgs(1),
		Example: strings.TrimSpace(`
hierarchy nodes add North
hierarchy nodes add Oslo --parent node-abcd1234
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return mutateAndSave(cmd, app, func(ws *workspace.Workspace) (any, error) {
				var n *model.Node
				var err error
				if p := strings.TrimSpace(parent); p != "" {
					n, err = ws.Editor.AddChild(p, name)
				} else {
					n, err = ws.Editor.AddRoot(name)
				}
				if err != nil {
					return nil, err
				}
				return describeNode(ws, n.ID)
			})
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Parent node id (omit to add a root)")

	return cmd
}

func newNodesRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <node-id> <name>",
		Short: "Rename a node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateAndSave(cmd, app, func(ws *workspace.Workspace) (any, error) {
				if err := ws.Editor.Rename(args[0], args[1]); err != nil {
					return nil, err
				}
				return describeNode(ws, args[0])
			})
		},
	}
}

func newNodesDeleteCmd(app *App) *cobra.Command {
	var reassignTo string

	cmd := &cobra.Command{
		Use:   "delete <node-id>",
		Short: "Delete a node and its subtree, or move its children with --reassign-to",
		Args:  cobra.ExactArgs(1),
		Example: strings.TrimSpace(`
# Remove the node and everything below it
hierarchy nodes delete node-abcd1234

# Keep the children: move them under another node first
hierarchy nodes candidates node-abcd1234
hierarchy nodes delete node-abcd1234 --reassign-to node-efgh5678
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return mutateAndSave(cmd, app, func(ws *workspace.Workspace) (any, error) {
				mode := mutate.DeleteModeCascade
				target := strings.TrimSpace(reassignTo)
				if target != "" {
					mode = mutate.DeleteModeReassign
				}
				if err := ws.Editor.Delete(id, mode, target); err != nil {
					return nil, err
				}
				return map[string]any{
					"deleted":    id,
					"mode":       mode,
					"reassignTo": target,
					"status":     ws.Editor.Status(),
				}, nil
			})
		},
	}

	cmd.Flags().StringVar(&reassignTo, "reassign-to", "", "Move the node's children under this node before deleting it")

	return cmd
}

func newNodesMoveCmd(app *App) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "move <node-id> --to <target-id>",
		Short: "Move a node (with its subtree) to the end of another node's children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(to)
			if target == "" {
				return writeErr(cmd, errors.New("missing --to"))
			}
			return mutateAndSave(cmd, app, func(ws *workspace.Workspace) (any, error) {
				if err := ws.Editor.Move(args[0], target); err != nil {
					return nil, err
				}
				return describeNode(ws, args[0])
			})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Target parent node id")

	return cmd
}

func newNodesShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <node-id>",
		Short: "Show a node with its level, path and children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			v, err := describeNode(ws, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": v})
		},
	}
}

func newNodesPathCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path <node-id>",
		Short: "Print the root-to-node chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			doc := ws.Editor.Document()
			path, err := mutate.FindPath(doc.Forest, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			type step struct {
				ID        string `json:"id" yaml:"id"`
				Name      string `json:"name" yaml:"name"`
				Dimension string `json:"dimension" yaml:"dimension"`
			}
			out := make([]step, 0, len(path))
			for i, n := range path {
				out = append(out, step{ID: n.ID, Name: n.Name, Dimension: mutate.DimensionName(doc, i)})
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
}

func newNodesCandidatesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "candidates <node-id>",
		Short: "List the delete options for a node (modes and reassignment targets)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			plan, err := ws.Editor.PlanDelete(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": plan})
		},
	}
}
