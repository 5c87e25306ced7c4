// Package webtui runs the interactive canvas in a pseudo-terminal and streams
// it to a browser over a websocket.
package webtui

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"fortio.org/safecast"
	"github.com/creack/pty"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const (
	defaultCols = 120
	defaultRows = 40
	writeWait   = 10 * time.Second
)

type Config struct {
	// Dir and Workspace are forwarded to the spawned editor.
	Dir       string
	Workspace string
	// Command overrides the spawned process (argv). Empty runs this executable
	// with no subcommand, which opens the canvas.
	Command []string
}

// Bridge serves a terminal page and the websocket that drives one editor
// process per connection.
type Bridge struct {
	cfg Config
	log *slog.Logger

	mu       sync.Mutex
	sessions int
}

func New(cfg Config, log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.Default()
	}
	return &Bridge{cfg: cfg, log: log}
}

// Handler is meant to be mounted under a prefix (for example /terminal).
func (b *Bridge) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/", b.handlePage)
	r.Get("/ws", b.handleWS)
	return r
}

// Sessions reports the number of live terminal sessions.
func (b *Bridge) Sessions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessions
}

func (b *Bridge) track(delta int) {
	b.mu.Lock()
	b.sessions += delta
	b.mu.Unlock()
}

type controlMsg struct {
	Type string `json:"type"`
	Cols int    `json:"cols"`
	Rows int    `json:"rows"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  32 * 1024,
	WriteBufferSize: 32 * 1024,
	CheckOrigin:     sameOrigin,
}

// sameOrigin accepts requests without an Origin header (non-browser clients)
// and browser requests whose origin host matches the request host.
func sameOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	_, host, ok := strings.Cut(origin, "://")
	return ok && strings.EqualFold(host, r.Host)
}

func (b *Bridge) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		b.log.Debug("websocket upgrade failed", slog.Any("err", err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ptmx, cmd, err := b.start()
	if err != nil {
		b.log.Warn("terminal session failed to start", slog.Any("err", err))
		_ = conn.WriteMessage(websocket.TextMessage, []byte("failed to start session: "+err.Error()))
		return
	}
	b.track(1)
	b.log.Info("terminal session started", slog.Int("pid", cmd.Process.Pid), slog.String("remote", r.RemoteAddr))
	defer func() {
		_ = ptmx.Close()
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
		b.track(-1)
		b.log.Info("terminal session ended", slog.Int("pid", cmd.Process.Pid))
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return endOf(copyToSocket(gctx, ptmx, conn)) })
	g.Go(func() error { return endOf(copyFromSocket(gctx, conn, ptmx)) })
	g.Go(func() error {
		// Either side finishing closes both ends, which unblocks the other pump.
		<-gctx.Done()
		_ = cmd.Process.Kill()
		_ = ptmx.Close()
		_ = conn.Close()
		return nil
	})
	if err := g.Wait(); err != nil && !errors.Is(err, errSessionEnded) {
		b.log.Debug("terminal stream closed", slog.Any("err", err))
	}
}

// errSessionEnded marks a pump that stopped because its side closed normally.
var errSessionEnded = errors.New("session ended")

func endOf(err error) error {
	if err == nil || errors.Is(err, context.Canceled) ||
		websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return errSessionEnded
	}
	return err
}

func (b *Bridge) argv() ([]string, error) {
	if len(b.cfg.Command) > 0 {
		return b.cfg.Command, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	args := []string{exe}
	if dir := strings.TrimSpace(b.cfg.Dir); dir != "" {
		args = append(args, "--dir", dir)
	}
	if ws := strings.TrimSpace(b.cfg.Workspace); ws != "" {
		args = append(args, "--workspace", ws)
	}
	return args, nil
}

func (b *Bridge) start() (*os.File, *exec.Cmd, error) {
	argv, err := b.argv()
	if err != nil {
		return nil, nil, err
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
		// The canvas owns the screen; log lines would corrupt it.
		"HIERARCHY_LOG_FORMAT=off",
	)
	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: defaultCols, Rows: defaultRows})
	if err != nil {
		return nil, nil, err
	}
	return ptmx, cmd, nil
}

func copyToSocket(ctx context.Context, ptmx io.Reader, conn *websocket.Conn) error {
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := ptmx.Read(buf)
		if n > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if werr := conn.WriteMessage(websocket.BinaryMessage, buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// copyFromSocket forwards keystrokes to the terminal. JSON text frames are
// control messages; everything else is input.
func copyFromSocket(ctx context.Context, conn *websocket.Conn, ptmx *os.File) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if len(data) == 0 {
			continue
		}
		if mt == websocket.TextMessage && data[0] == '{' {
			if size, ok := parseResize(data); ok {
				_ = pty.Setsize(ptmx, size)
			}
			continue
		}
		if _, err := ptmx.Write(data); err != nil {
			return err
		}
	}
}

func parseResize(data []byte) (*pty.Winsize, bool) {
	var m controlMsg
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false
	}
	if !strings.EqualFold(strings.TrimSpace(m.Type), "resize") || m.Cols <= 0 || m.Rows <= 0 {
		return nil, false
	}
	cols, err := safecast.Conv[uint16](m.Cols)
	if err != nil {
		return nil, false
	}
	rows, err := safecast.Conv[uint16](m.Rows)
	if err != nil {
		return nil, false
	}
	return &pty.Winsize{Cols: cols, Rows: rows}, true
}
