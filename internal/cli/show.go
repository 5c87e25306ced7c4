package cli

import (
	"hierarchy-cli/internal/format"

	"github.com/spf13/cobra"
)

func newShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the draft document (use --format text for an outline)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": format.TreeReport{
				Document:  ws.Editor.Document(),
				Collapsed: ws.Editor.Collapsed(),
				Status:    ws.Editor.Status(),
			}})
		},
	}
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the draft has pending changes and when it was last applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": format.StatusReport{Status: ws.Editor.Status()}})
		},
	}
}

func newLayoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Print the computed scene (node positions, boxes, edges, headers)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": ws.Editor.Scene()})
		},
	}
}
