package drag

import (
	"hierarchy-cli/internal/model"
	"hierarchy-cli/internal/mutate"
)

type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Point is a pointer position as reported by the UI layer. The controller only
// carries it so renderers can draw the drag ghost; hit-testing stays in the UI.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Session is the whole drag state. It is a plain value: transitions take a
// session and return the next one.
type Session struct {
	State        State  `json:"state"`
	DraggingID   string `json:"draggingId,omitempty"`
	Pointer      Point  `json:"pointer"`
	DropTargetID string `json:"dropTargetId,omitempty"`
	// Rejected is set while hovering a candidate that would create a cycle.
	Rejected bool `json:"rejected,omitempty"`
}

// Guard carries the editor conditions that block a drag from starting.
type Guard struct {
	Renaming  bool
	ModalOpen bool
}

func (g Guard) Blocked() bool { return g.Renaming || g.ModalOpen }

// Drop is a validated move ready to commit.
type Drop struct {
	NodeID   string
	TargetID string
}

// Begin starts a drag on nodeID. It returns the unchanged session and false when
// a drag is already active, the guard blocks, or the node does not exist.
func Begin(s Session, g Guard, f model.Forest, nodeID string, p Point) (Session, bool) {
	if s.State != Idle || g.Blocked() {
		return s, false
	}
	if mutate.Find(f, nodeID) == nil {
		return s, false
	}
	return Session{State: Dragging, DraggingID: nodeID, Pointer: p}, true
}

// Over records the node the UI resolved under the pointer. Candidates equal to
// the dragged node or inside its subtree never become a drop target.
func Over(s Session, f model.Forest, candidateID string, p Point) Session {
	if s.State != Dragging {
		return s
	}
	s.Pointer = p
	s.DropTargetID = ""
	s.Rejected = false
	if candidateID == "" {
		return s
	}
	if !mutate.CanPlace(f, s.DraggingID, candidateID) {
		s.Rejected = true
		return s
	}
	s.DropTargetID = candidateID
	return s
}

// Release ends the drag. The returned Drop is valid only when ok is true; a
// release without a target is a cancel.
func Release(s Session) (next Session, d Drop, ok bool) {
	if s.State != Dragging {
		return s, Drop{}, false
	}
	if s.DropTargetID == "" {
		return Session{}, Drop{}, false
	}
	return Session{}, Drop{NodeID: s.DraggingID, TargetID: s.DropTargetID}, true
}

// Cancel abandons any active drag.
func Cancel(Session) Session { return Session{} }
