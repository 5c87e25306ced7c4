package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"hierarchy-cli/internal/drag"
	"hierarchy-cli/internal/layout"
	"hierarchy-cli/internal/ledger"
	applog "hierarchy-cli/internal/log"
	"hierarchy-cli/internal/model"
	"hierarchy-cli/internal/mutate"
	"hierarchy-cli/internal/search"
	"hierarchy-cli/internal/view"
)

// ErrBusy is returned when an interaction cannot start because another one
// (drag, inline edit, modal) is in progress.
var ErrBusy = errors.New("another interaction is in progress")

type Options struct {
	Ledger ledger.Config
	Logger *slog.Logger
	// NewID generates node ids; defaults to mutate.NewNodeID.
	NewID func(model.Forest) string
}

// Editor owns the canonical document and every piece of interaction state that
// refers to it. All methods run synchronously for one input event; it is not
// safe for concurrent use.
type Editor struct {
	doc       model.Document
	collapsed model.CollapsedSet

	selected  string
	hovered   string
	edit      EditTarget
	modalOpen bool
	drag      drag.Session

	ledger *ledger.Ledger
	log    *slog.Logger
	newID  func(model.Forest) string
}

func New(doc model.Document, opts Options) *Editor {
	e := &Editor{
		doc:       doc,
		collapsed: model.CollapsedSet{},
		ledger:    ledger.New(opts.Ledger),
		log:       opts.Logger,
		newID:     opts.NewID,
	}
	if e.log == nil {
		e.log = applog.WithComponent("editor")
	}
	if e.newID == nil {
		e.newID = mutate.NewNodeID
	}
	return e
}

// FromDraft restores an editor from persisted state.
func FromDraft(d model.Draft, opts Options) *Editor {
	e := New(d.Document, opts)
	e.ledger.Restore(d.Changes, d.Applied)
	return e
}

// Draft returns the state to persist.
func (e *Editor) Draft() model.Draft {
	d := model.Draft{Document: e.Document(), Changes: e.ledger.Entries()}
	if a, ok := e.ledger.Applied(); ok {
		d.Applied = &a
	}
	return d
}

// Document returns the current snapshot. Nodes are shared and must not be modified.
func (e *Editor) Document() model.Document {
	d := e.doc
	d.Dimensions = append([]string(nil), e.doc.Dimensions...)
	return d
}

// commit swaps in next and records summary. It is the only place the canonical
// document changes, so a mutation and its ledger entry cannot come apart.
func (e *Editor) commit(op string, next model.Document, summary string) model.ChangeEntry {
	e.doc = next
	entry := e.ledger.Append(summary)
	e.log.Debug("mutation", slog.String("op", op), slog.String("summary", summary))
	return entry
}

func (e *Editor) reject(op string, err error) error {
	e.log.Info("rejected", slog.String("op", op), slog.Any("err", err))
	return err
}

func (e *Editor) withForest(f model.Forest) model.Document {
	d := e.doc
	d.Forest = f
	return d
}

func (e *Editor) defaultName(level int) string {
	if dim := strings.TrimSpace(e.doc.DimensionLabel(level)); dim != "" {
		return "New " + dim
	}
	return "New node"
}

func (e *Editor) nameOf(id string) string {
	if n := mutate.Find(e.doc.Forest, id); n != nil {
		return n.Name
	}
	return id
}

// AddRoot appends a new root. A blank name uses the default for level 0.
func (e *Editor) AddRoot(name string) (*model.Node, error) {
	if strings.TrimSpace(name) == "" {
		name = e.defaultName(0)
	}
	f, n, err := mutate.AddRoot(e.doc.Forest, e.newID(e.doc.Forest), name)
	if err != nil {
		return nil, e.reject("add_root", err)
	}
	e.commit("add_root", e.withForest(f), fmt.Sprintf("Added %s %q", strings.ToLower(mutate.DimensionName(e.doc, 0)), n.Name))
	e.selected = n.ID
	return n, nil
}

// AddChild appends a new child under parentID and expands the parent.
func (e *Editor) AddChild(parentID, name string) (*model.Node, error) {
	depth, err := mutate.Depth(e.doc.Forest, parentID)
	if err != nil {
		return nil, e.reject("add_child", err)
	}
	if strings.TrimSpace(name) == "" {
		name = e.defaultName(depth + 1)
	}
	f, n, err := mutate.AddChild(e.doc.Forest, parentID, e.newID(e.doc.Forest), name)
	if err != nil {
		return nil, e.reject("add_child", err)
	}
	parent := e.nameOf(parentID)
	e.commit("add_child", e.withForest(f), fmt.Sprintf("Added %q under %q", n.Name, parent))
	delete(e.collapsed, parentID)
	e.selected = n.ID
	return n, nil
}

// Rename renames a node. Renaming to the current name is not a change.
func (e *Editor) Rename(id, name string) error {
	old := mutate.Find(e.doc.Forest, id)
	if old == nil {
		return e.reject("rename", mutate.NotFoundError{Kind: "node", ID: id})
	}
	if strings.TrimSpace(name) == old.Name {
		return nil
	}
	f, err := mutate.Rename(e.doc.Forest, id, name)
	if err != nil {
		return e.reject("rename", err)
	}
	e.commit("rename", e.withForest(f), fmt.Sprintf("Renamed %q to %q", old.Name, mutate.Find(f, id).Name))
	return nil
}

// RenameDimension relabels depth level.
func (e *Editor) RenameDimension(level int, name string) error {
	name = strings.TrimSpace(name)
	if level < 0 || level >= len(e.doc.Dimensions) {
		return e.reject("rename_dimension", mutate.NotFoundError{Kind: "dimension", ID: fmt.Sprint(level + 1)})
	}
	if name == "" {
		return e.reject("rename_dimension", mutate.EmptyNameError{})
	}
	old := e.doc.Dimensions[level]
	if old == name {
		return nil
	}
	next := e.Document()
	next.Dimensions[level] = name
	e.commit("rename_dimension", next, fmt.Sprintf("Renamed level %d %q to %q", level+1, old, name))
	return nil
}

// AddDimension appends a label for the next depth level.
func (e *Editor) AddDimension(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return e.reject("add_dimension", mutate.EmptyNameError{})
	}
	next := e.Document()
	next.Dimensions = append(next.Dimensions, name)
	e.commit("add_dimension", next, fmt.Sprintf("Added level %d %q", len(next.Dimensions), name))
	return nil
}

// RenameLabel renames the top-level group.
func (e *Editor) RenameLabel(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return e.reject("rename_label", mutate.EmptyNameError{})
	}
	if name == e.doc.Label {
		return nil
	}
	old := e.doc.Label
	next := e.Document()
	next.Label = name
	e.commit("rename_label", next, fmt.Sprintf("Renamed group %q to %q", old, name))
	return nil
}

// PlanDelete returns the resolution options for deleting id.
func (e *Editor) PlanDelete(id string) (mutate.DeletePlan, error) {
	return mutate.PlanDelete(e.doc, id)
}

// Delete removes id using mode (targetID only for reassign). Any selection,
// hover, edit, collapse or drag reference to a removed node is cleared in the
// same step.
func (e *Editor) Delete(id string, mode mutate.DeleteMode, targetID string) error {
	n := mutate.Find(e.doc.Forest, id)
	if n == nil {
		return e.reject("delete", mutate.NotFoundError{Kind: "node", ID: id})
	}
	kids := len(n.Children)
	f, gone, err := mutate.ResolveDelete(e.doc.Forest, id, mode, targetID)
	if err != nil {
		return e.reject("delete", err)
	}

	var summary string
	if mode == mutate.DeleteModeReassign {
		summary = fmt.Sprintf("Deleted %q; moved %s to %q", n.Name, plural(kids, "child", "children"), e.nameOf(targetID))
	} else if extra := len(gone) - 1; extra > 0 {
		summary = fmt.Sprintf("Deleted %q and %s", n.Name, plural(extra, "descendant", "descendants"))
	} else {
		summary = fmt.Sprintf("Deleted %q", n.Name)
	}
	e.commit("delete", e.withForest(f), summary)
	e.forget(gone)
	return nil
}

func (e *Editor) forget(ids []string) {
	for _, id := range ids {
		if e.selected == id {
			e.selected = ""
		}
		if e.hovered == id {
			e.hovered = ""
		}
		if e.edit.Kind == EditNode && e.edit.NodeID == id {
			e.edit = EditTarget{}
		}
		if e.drag.DraggingID == id || e.drag.DropTargetID == id {
			e.drag = drag.Cancel(e.drag)
		}
		delete(e.collapsed, id)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}

// Select marks id as selected ("" clears).
func (e *Editor) Select(id string) error {
	if id != "" && mutate.Find(e.doc.Forest, id) == nil {
		return mutate.NotFoundError{Kind: "node", ID: id}
	}
	e.selected = id
	return nil
}

func (e *Editor) Selected() string { return e.selected }

// Hover records the node the action overlay belongs to ("" clears).
func (e *Editor) Hover(id string) {
	if id != "" && mutate.Find(e.doc.Forest, id) == nil {
		id = ""
	}
	e.hovered = id
}

func (e *Editor) Hovered() string { return e.hovered }

func (e *Editor) OpenModal()      { e.modalOpen = true }
func (e *Editor) CloseModal()     { e.modalOpen = false }
func (e *Editor) ModalOpen() bool { return e.modalOpen }

// Search returns ids whose names match query literally (case-insensitive).
func (e *Editor) Search(query string) []string {
	return search.Matches(e.doc.Forest, search.Compile(query))
}

// RevealMatches expands the ancestors of every match and returns the matches.
func (e *Editor) RevealMatches(query string) []string {
	ids := e.Search(query)
	if len(ids) > 0 {
		e.collapsed = view.Reveal(e.doc.Forest, e.collapsed, ids)
	}
	return ids
}

// Scene projects the document through the collapsed set and lays it out.
func (e *Editor) Scene() layout.Scene {
	return layout.Build(e.doc, e.collapsed)
}

func (e *Editor) History() []model.ChangeEntry { return e.ledger.Entries() }

func (e *Editor) Status() model.Status { return e.ledger.Status() }

func (e *Editor) IsDirty() bool { return e.ledger.IsDirty() }

// Apply commits the draft: stamps the current label and clears the ledger.
func (e *Editor) Apply() model.Applied {
	pending := e.ledger.Len()
	a := e.ledger.Commit(e.doc.Label)
	e.log.Info("applied draft", slog.String("label", a.Label), slog.Int("changes", pending))
	return a
}
