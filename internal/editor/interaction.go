package editor

import (
	"errors"
	"fmt"
	"log/slog"

	"hierarchy-cli/internal/drag"
	"hierarchy-cli/internal/model"
	"hierarchy-cli/internal/mutate"
	"hierarchy-cli/internal/view"
)

type EditKind int

const (
	EditNone EditKind = iota
	EditNode
	EditDimension
	EditLabel
)

func (k EditKind) String() string {
	switch k {
	case EditNode:
		return "node"
	case EditDimension:
		return "dimension"
	case EditLabel:
		return "label"
	default:
		return "none"
	}
}

// EditTarget names the text field being edited inline. NodeID is set for
// EditNode, Level for EditDimension.
type EditTarget struct {
	Kind   EditKind
	NodeID string
	Level  int
}

// BeginEdit opens an inline edit. Only one edit may be open and none while a
// drag is active.
func (e *Editor) BeginEdit(t EditTarget) error {
	if e.drag.State == drag.Dragging {
		return ErrBusy
	}
	switch t.Kind {
	case EditNode:
		if mutate.Find(e.doc.Forest, t.NodeID) == nil {
			return mutate.NotFoundError{Kind: "node", ID: t.NodeID}
		}
	case EditDimension:
		if t.Level < 0 || t.Level >= len(e.doc.Dimensions) {
			return mutate.NotFoundError{Kind: "dimension", ID: fmt.Sprint(t.Level + 1)}
		}
	case EditLabel:
	default:
		return fmt.Errorf("invalid edit target: %s", t.Kind)
	}
	e.edit = t
	return nil
}

// Editing returns the open edit target, if any.
func (e *Editor) Editing() (EditTarget, bool) {
	return e.edit, e.edit.Kind != EditNone
}

// EditValue is the current text of the open edit target.
func (e *Editor) EditValue() string {
	switch e.edit.Kind {
	case EditNode:
		return e.nameOf(e.edit.NodeID)
	case EditDimension:
		return e.doc.DimensionLabel(e.edit.Level)
	case EditLabel:
		return e.doc.Label
	}
	return ""
}

// CommitEdit applies value to the open edit target. An empty value is rejected
// and the edit stays open so the user can correct it.
func (e *Editor) CommitEdit(value string) error {
	var err error
	switch e.edit.Kind {
	case EditNode:
		err = e.Rename(e.edit.NodeID, value)
	case EditDimension:
		err = e.RenameDimension(e.edit.Level, value)
	case EditLabel:
		err = e.RenameLabel(value)
	default:
		return nil
	}
	if mutate.IsEmptyName(err) {
		return err
	}
	e.edit = EditTarget{}
	return err
}

func (e *Editor) CancelEdit() { e.edit = EditTarget{} }

// IsCollapsed reports whether id's subtree is hidden.
func (e *Editor) IsCollapsed(id string) bool { return e.collapsed[id] }

// Collapsed returns a copy of the collapsed set.
func (e *Editor) Collapsed() model.CollapsedSet {
	out := make(model.CollapsedSet, len(e.collapsed))
	for id, on := range e.collapsed {
		if on {
			out[id] = true
		}
	}
	return out
}

// SetViewState restores collapse and selection, dropping ids that no longer exist.
func (e *Editor) SetViewState(collapsed []string, selected string) {
	set := model.CollapsedSet{}
	for _, id := range collapsed {
		set[id] = true
	}
	e.collapsed = view.Prune(e.doc.Forest, set)
	if mutate.Find(e.doc.Forest, selected) != nil {
		e.selected = selected
	} else {
		e.selected = ""
	}
}

// SetCollapsed collapses or expands id. Leaves cannot be collapsed.
func (e *Editor) SetCollapsed(id string, collapsed bool) error {
	n := mutate.Find(e.doc.Forest, id)
	if n == nil {
		return mutate.NotFoundError{Kind: "node", ID: id}
	}
	if collapsed && n.HasChildren() {
		e.collapsed[id] = true
	} else {
		delete(e.collapsed, id)
	}
	return nil
}

func (e *Editor) Collapse(id string) error { return e.SetCollapsed(id, true) }

func (e *Editor) Expand(id string) error { return e.SetCollapsed(id, false) }

// ToggleCollapse flips id and returns the new state.
func (e *Editor) ToggleCollapse(id string) (bool, error) {
	next := !e.collapsed[id]
	if err := e.SetCollapsed(id, next); err != nil {
		return false, err
	}
	return e.collapsed[id], nil
}

func (e *Editor) ExpandAll() { e.collapsed = model.CollapsedSet{} }

func (e *Editor) CollapseAll() { e.collapsed = view.CollapseAll(e.doc.Forest) }

func (e *Editor) guard() drag.Guard {
	return drag.Guard{Renaming: e.edit.Kind != EditNone, ModalOpen: e.modalOpen}
}

// DragSession returns the current drag state for rendering.
func (e *Editor) DragSession() drag.Session { return e.drag }

// PointerDown starts dragging id. It reports false when the drag is blocked.
func (e *Editor) PointerDown(id string, p drag.Point) bool {
	next, ok := drag.Begin(e.drag, e.guard(), e.doc.Forest, id, p)
	e.drag = next
	if ok {
		e.log.Debug("drag started", slog.String("node", id))
	}
	return ok
}

// PointerMove reports the node under the pointer ("" for empty canvas).
func (e *Editor) PointerMove(candidateID string, p drag.Point) drag.Session {
	e.drag = drag.Over(e.drag, e.doc.Forest, candidateID, p)
	return e.drag
}

// PointerUp ends the drag. When a valid target was under the pointer the move
// is committed, the target expanded and the moved node selected.
func (e *Editor) PointerUp() (bool, error) {
	next, d, ok := drag.Release(e.drag)
	e.drag = next
	if !ok {
		return false, nil
	}
	return true, e.move(d.NodeID, d.TargetID)
}

func (e *Editor) CancelDrag() { e.drag = drag.Cancel(e.drag) }

func (e *Editor) move(id, targetID string) error {
	name := e.nameOf(id)
	f, err := mutate.Move(e.doc.Forest, id, targetID)
	if err != nil {
		return e.reject("move", err)
	}
	e.commit("move", e.withForest(f), fmt.Sprintf("Moved %q under %q", name, e.nameOf(targetID)))
	delete(e.collapsed, targetID)
	e.selected = id
	return nil
}

// Move runs a complete drag of id onto targetID. It is the scripted form of
// PointerDown, PointerMove and PointerUp used by non-pointer front ends.
func (e *Editor) Move(id, targetID string) error {
	if err := mutate.CheckPlacement(e.doc.Forest, id, targetID); err != nil {
		return e.reject("move", err)
	}
	if !e.PointerDown(id, drag.Point{}) {
		return ErrBusy
	}
	e.PointerMove(targetID, drag.Point{})
	moved, err := e.PointerUp()
	if err != nil {
		return err
	}
	if !moved {
		return errors.New("move was not applied")
	}
	return nil
}
