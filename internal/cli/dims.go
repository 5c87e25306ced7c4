package cli

import (
	"fmt"
	"strconv"

	"hierarchy-cli/internal/workspace"

	"github.com/spf13/cobra"
)

func newDimsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dims",
		Aliases: []string{"dimensions"},
		Short:   "Dimension labels (one per depth level, level 1 = roots)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List dimension labels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": dimensionRows(ws)})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <label>",
		Short: "Add a label for the next depth level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateAndSave(cmd, app, func(ws *workspace.Workspace) (any, error) {
				if err := ws.Editor.AddDimension(args[0]); err != nil {
					return nil, err
				}
				return dimensionRows(ws), nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <level> <label>",
		Short: "Rename the label of a depth level",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[0])
			if err != nil || level < 1 {
				return writeErr(cmd, fmt.Errorf("invalid level %q (levels start at 1)", args[0]))
			}
			return mutateAndSave(cmd, app, func(ws *workspace.Workspace) (any, error) {
				if err := ws.Editor.RenameDimension(level-1, args[1]); err != nil {
					return nil, err
				}
				return dimensionRows(ws), nil
			})
		},
	})

	return cmd
}

type dimensionRow struct {
	Level int    `json:"level" yaml:"level"`
	Label string `json:"label" yaml:"label"`
}

func dimensionRows(ws *workspace.Workspace) []dimensionRow {
	dims := ws.Editor.Document().Dimensions
	out := make([]dimensionRow, 0, len(dims))
	for i, d := range dims {
		out = append(out, dimensionRow{Level: i + 1, Label: d})
	}
	return out
}

func newLabelCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Top-level group label",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <label>",
		Short: "Rename the top-level group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateAndSave(cmd, app, func(ws *workspace.Workspace) (any, error) {
				if err := ws.Editor.RenameLabel(args[0]); err != nil {
					return nil, err
				}
				return map[string]any{"label": ws.Editor.Document().Label}, nil
			})
		},
	})
	return cmd
}
