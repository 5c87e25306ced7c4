package cli

import (
	"errors"
	"fmt"
	"strings"

	"hierarchy-cli/internal/format"
	"hierarchy-cli/internal/gitrepo"
	"hierarchy-cli/internal/publish"

	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	var applied bool
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show pending changes since the last apply (or past applies with --applied)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if applied {
				recs, err := ws.Store.AppliedLog(cmdContext(cmd), limit)
				if err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": recs})
			}
			return writeOut(cmd, app, map[string]any{"data": format.HistoryReport{
				Entries: ws.Editor.History(),
				Status:  ws.Editor.Status(),
			}})
		},
	}

	cmd.Flags().BoolVar(&applied, "applied", false, "List past applies (newest first)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Max applies to list with --applied (0 = all)")

	return cmd
}

func newApplyCmd(app *App) *cobra.Command {
	var publishDir string
	var commit bool
	var includeIDs bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Commit the draft: clear pending changes and stamp the applied label",
		Long: strings.TrimSpace(`
Commit the draft: clear pending changes and stamp the applied label.

With --publish DIR the applied hierarchy is also written as Markdown pages
(index.md plus roots/<id>.md), replacing any earlier publish in DIR. With
--commit those pages are committed when DIR is inside a git repository.
`),
		Example: strings.TrimSpace(`
hierarchy apply
hierarchy apply --publish docs/org --commit
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			publishDir = strings.TrimSpace(publishDir)
			if commit && publishDir == "" {
				return writeErr(cmd, errors.New("--commit requires --publish"))
			}
			ws, err := openWorkspace(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			ctx := cmdContext(cmd)
			entries := ws.Editor.History()
			a, err := ws.Apply(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			data := map[string]any{
				"applied": a,
				"changes": len(entries),
			}
			if publishDir != "" {
				res, err := publish.WriteDocument(ws.Editor.Document(), publishDir, publish.WriteOptions{
					Overwrite: true,
					Render:    publish.RenderOptions{IncludeIDs: includeIDs, AppliedAt: a.At},
				})
				if err != nil {
					return writeErr(cmd, fmt.Errorf("publish: %w", err))
				}
				data["published"] = res
			}
			if commit {
				summaries := make([]string, 0, len(entries))
				for _, e := range entries {
					summaries = append(summaries, e.Summary)
				}
				committed, err := gitrepo.CommitPaths(ctx, publishDir, []string{publishDir}, gitrepo.ApplyMessage(a.Label, summaries))
				if err != nil {
					return writeErr(cmd, fmt.Errorf("commit: %w", err))
				}
				data["committed"] = committed
				if committed {
					if st, err := gitrepo.GetStatus(ctx, publishDir); err == nil {
						data["commit"] = map[string]string{"branch": st.Branch, "head": st.Head}
					}
				}
			}
			return writeOut(cmd, app, map[string]any{"data": data})
		},
	}

	cmd.Flags().StringVar(&publishDir, "publish", "", "Also write the applied hierarchy as Markdown pages to this directory")
	cmd.Flags().BoolVar(&commit, "commit", false, "Commit the published pages when the directory is in a git repository")
	cmd.Flags().BoolVar(&includeIDs, "ids", false, "Include node ids in published pages")

	return cmd
}
