package cli

import (
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	applog "hierarchy-cli/internal/log"
	"hierarchy-cli/internal/web"
	"hierarchy-cli/internal/webtui"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string
	var readOnly bool
	var terminal bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the workspace over a small JSON HTTP API",
		Long: strings.TrimSpace(`
Serve the workspace over HTTP.

Reads: /api/scene, /api/history, /api/status, /api/search?q=, /api/nodes/{id}/delete-plan
Writes: POST /api/nodes/{id}/move, POST /api/nodes/{id}/delete, POST /api/apply

With --read-only every write returns 403.

With --terminal the interactive canvas is also served at /terminal: each browser
tab runs its own editor process in a pseudo-terminal over a websocket.
`),
		Example: strings.TrimSpace(`
hierarchy serve --addr 127.0.0.1:3336
hierarchy --workspace demo serve --addr :3336 --read-only
hierarchy serve --terminal
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("serve: missing --addr"))
			}
			ws, err := openWorkspace(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if terminal && readOnly {
				return writeErr(cmd, errors.New("serve: --terminal cannot be combined with --read-only"))
			}
			cfg := web.ServerConfig{Addr: listenAddr, ReadOnly: readOnly}
			if terminal {
				cfg.Terminal = webtui.New(webtui.Config{Dir: app.Dir, Workspace: app.Workspace}, applog.WithComponent("webtui")).Handler()
			}
			srv, err := web.NewServer(cfg, ws, applog.WithComponent("web"))
			if err != nil {
				return writeErr(cmd, err)
			}

			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":      app.Dir,
					"addr":     srv.Addr(),
					"readOnly": readOnly,
					"terminal": terminal,
				},
			})

			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.ListenAndServe(ctx); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3336", "Listen address")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Reject write requests with 403")
	cmd.Flags().BoolVar(&terminal, "terminal", false, "Also serve the interactive canvas in the browser at /terminal")

	return cmd
}
