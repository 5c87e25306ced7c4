package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"hierarchy-cli/internal/editor"
	"hierarchy-cli/internal/format"
	"hierarchy-cli/internal/mutate"
	"hierarchy-cli/internal/store"

	"github.com/go-chi/chi/v5"
)

func writeData(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": v})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// errStatus maps editor errors onto HTTP status codes.
func errStatus(err error) int {
	switch {
	case mutate.IsNotFound(err):
		return http.StatusNotFound
	case mutate.IsCycle(err), errors.Is(err, editor.ErrBusy), errors.Is(err, store.ErrStaleDraft):
		return http.StatusConflict
	case mutate.IsEmptyName(err), errors.Is(err, mutate.ErrReassignNoChildren):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// refresh picks up saves made by other sessions (terminal, CLI) before the
// request reads or writes. The caller holds s.mu.
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) bool {
	if _, err := s.ws.Refresh(r.Context()); err != nil {
		jsonError(w, "reload workspace: "+err.Error(), http.StatusInternalServerError)
		return false
	}
	return true
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.refresh(w, r) {
		return
	}
	writeData(w, s.ws.Editor.Scene())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.refresh(w, r) {
		return
	}
	writeData(w, format.HistoryReport{Entries: s.ws.Editor.History(), Status: s.ws.Editor.Status()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.refresh(w, r) {
		return
	}
	writeData(w, s.ws.Editor.Status())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.refresh(w, r) {
		return
	}
	writeData(w, map[string]any{"query": q, "matches": s.ws.Editor.Search(q)})
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "nodeID")
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.refresh(w, r) {
		return
	}
	plan, err := s.ws.Editor.PlanDelete(id)
	if err != nil {
		jsonError(w, err.Error(), errStatus(err))
		return
	}
	writeData(w, plan)
}

type moveRequest struct {
	TargetID string `json:"targetId"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "nodeID")
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TargetID == "" {
		jsonError(w, "body must be {\"targetId\": \"...\"}", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.refresh(w, r) {
		return
	}
	if err := s.ws.Editor.Move(id, req.TargetID); err != nil {
		jsonError(w, err.Error(), errStatus(err))
		return
	}
	// A failed save reloads the workspace, so memory never runs ahead of disk.
	if err := s.ws.Save(r.Context()); err != nil {
		jsonError(w, err.Error(), errStatus(err))
		return
	}
	writeData(w, map[string]any{"nodeId": id, "targetId": req.TargetID, "status": s.ws.Editor.Status()})
}

type deleteRequest struct {
	Mode     mutate.DeleteMode `json:"mode"`
	TargetID string            `json:"targetId,omitempty"`
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "nodeID")
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid body: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.refresh(w, r) {
		return
	}
	if err := s.ws.Editor.Delete(id, req.Mode, req.TargetID); err != nil {
		jsonError(w, err.Error(), errStatus(err))
		return
	}
	if err := s.ws.Save(r.Context()); err != nil {
		jsonError(w, err.Error(), errStatus(err))
		return
	}
	writeData(w, map[string]any{"nodeId": id, "status": s.ws.Editor.Status()})
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.refresh(w, r) {
		return
	}
	a, err := s.ws.Apply(r.Context())
	if err != nil {
		jsonError(w, err.Error(), errStatus(err))
		return
	}
	writeData(w, a)
}
