package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"hierarchy-cli/internal/workspace"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type ServerConfig struct {
	Addr     string
	ReadOnly bool
	// Terminal, when set, is mounted at /terminal.
	Terminal http.Handler
}

// Server exposes one workspace over HTTP. Requests are serialized through mu:
// the editor underneath is single-threaded.
type Server struct {
	mu  sync.Mutex
	cfg ServerConfig
	ws  *workspace.Workspace
	log *slog.Logger

	router chi.Router
}

func NewServer(cfg ServerConfig, ws *workspace.Workspace, log *slog.Logger) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if ws == nil {
		return nil, errors.New("web: workspace is nil")
	}
	s := &Server{cfg: cfg, ws: ws, log: log}
	s.setupRoutes()
	return s, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	if s.cfg.Terminal != nil {
		r.Mount("/terminal", s.cfg.Terminal)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/scene", s.handleScene)
		r.Get("/history", s.handleHistory)
		r.Get("/status", s.handleStatus)
		r.Get("/search", s.handleSearch)
		r.Get("/nodes/{nodeID}/delete-plan", s.handleDeletePlan)

		r.Group(func(r chi.Router) {
			r.Use(s.writeGuard)
			r.Post("/nodes/{nodeID}/move", s.handleMove)
			r.Post("/nodes/{nodeID}/delete", s.handleDelete)
			r.Post("/apply", s.handleApply)
		})
	})

	s.router = r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	hs := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- hs.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) writeGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.ReadOnly {
			jsonError(w, "server is read-only", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
