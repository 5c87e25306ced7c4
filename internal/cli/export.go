package cli

import (
	"errors"
	"path/filepath"
	"strings"

	"hierarchy-cli/internal/export"
	"hierarchy-cli/internal/publish"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the forest",
	}
	cmd.AddCommand(newExportPDFCmd(app))
	cmd.AddCommand(newExportMarkdownCmd(app))
	return cmd
}

func newExportPDFCmd(app *App) *cobra.Command {
	var out string
	var title string
	var expandAll bool

	cmd := &cobra.Command{
		Use:   "pdf",
		Short: "Render the current view (respecting collapsed nodes) to a single-page PDF",
		Args:  cobra.NoArgs,
		Example: strings.TrimSpace(`
hierarchy export pdf --out places.pdf
hierarchy export pdf --out full.pdf --expand-all
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			out = strings.TrimSpace(out)
			if out == "" {
				return writeErr(cmd, errors.New("missing --out"))
			}
			ws, err := openWorkspace(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			// Not saved: the exported view must not change the stored one.
			if expandAll {
				ws.Editor.ExpandAll()
			}
			doc := ws.Editor.Document()
			if strings.TrimSpace(title) == "" {
				title = doc.Label
			}
			sc := ws.Editor.Scene()
			if err := export.ExportScenePDF(sc, out, export.PDFOptions{Title: title}); err != nil {
				return writeErr(cmd, err)
			}
			abs, err := filepath.Abs(out)
			if err != nil {
				abs = out
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"path":  abs,
				"nodes": len(sc.Nodes),
				"title": title,
			}})
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Output PDF path")
	cmd.Flags().StringVar(&title, "title", "", "Document title (default: the group label)")
	cmd.Flags().BoolVar(&expandAll, "expand-all", false, "Ignore collapsed nodes for this export")

	return cmd
}

func newExportMarkdownCmd(app *App) *cobra.Command {
	var to string
	var overwrite bool
	var includeIDs bool

	cmd := &cobra.Command{
		Use:   "markdown",
		Short: "Write the draft forest as Markdown pages (index.md plus one page per root)",
		Args:  cobra.NoArgs,
		Example: strings.TrimSpace(`
hierarchy export markdown --to ./out
hierarchy export markdown --to ./out --overwrite --ids
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := publish.WriteDocument(ws.Editor.Document(), to, publish.WriteOptions{
				Overwrite: overwrite,
				Render:    publish.RenderOptions{IncludeIDs: includeIDs},
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Output directory")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing pages")
	cmd.Flags().BoolVar(&includeIDs, "ids", false, "Include node ids")

	return cmd
}
