// Package workspace binds a store directory to a live editor: it loads the
// persisted draft and view state, and writes them back after each change.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hierarchy-cli/internal/editor"
	applog "hierarchy-cli/internal/log"
	"hierarchy-cli/internal/model"
	"hierarchy-cli/internal/store"
)

// Workspace is an opened store plus the editor holding its draft. Editor is
// replaced by Reload, so callers must not keep it across a failed save.
type Workspace struct {
	Store  store.Store
	Editor *editor.Editor

	rev int64
	log *slog.Logger
}

// DefaultDocument is the document created by Init when none is given.
func DefaultDocument() model.Document {
	return model.Document{Label: "Hierarchy", Dimensions: []string{}}
}

// Init creates the workspace at dir.
func Init(ctx context.Context, dir string, doc model.Document) (*Workspace, error) {
	s := store.Store{Dir: dir}
	if err := s.Init(ctx, doc); err != nil {
		return nil, err
	}
	return Open(ctx, dir)
}

// Open loads the draft and view state stored at dir.
func Open(ctx context.Context, dir string) (*Workspace, error) {
	w := &Workspace{Store: store.Store{Dir: dir}, log: applog.WithComponent("workspace")}
	if err := w.Reload(ctx); err != nil {
		return nil, err
	}
	w.log.Debug("opened", slog.String("dir", dir), slog.Int("pending", len(w.Editor.History())))
	return w, nil
}

// Reload replaces the editor with the draft and view state on disk.
func (w *Workspace) Reload(ctx context.Context) error {
	d, err := w.Store.LoadDraft(ctx)
	if err != nil {
		return err
	}
	ed := editor.FromDraft(d, editor.Options{Logger: applog.WithComponent("editor")})
	if vs, err := w.Store.LoadViewState(); err == nil {
		ed.SetViewState(vs.Collapsed, vs.Selected)
	} else {
		w.log.Warn("view state unreadable", slog.Any("err", err))
	}
	w.Editor, w.rev = ed, d.Revision
	return nil
}

// Refresh reloads when another session has saved since the last load or save.
// It reports whether the editor was replaced.
func (w *Workspace) Refresh(ctx context.Context) (bool, error) {
	rev, err := w.Store.DraftRevision(ctx)
	if err != nil {
		return false, err
	}
	if rev == w.rev {
		return false, nil
	}
	w.log.Info("draft changed on disk; reloading", slog.Int64("have", w.rev), slog.Int64("disk", rev))
	return true, w.Reload(ctx)
}

// Save persists the view state and the draft. On failure the editor is
// reloaded from disk, dropping the unsaved change; the error wraps
// store.ErrStaleDraft when another session saved first.
func (w *Workspace) Save(ctx context.Context) error {
	err := w.SaveView()
	if err == nil {
		d := w.Editor.Draft()
		d.Revision = w.rev
		var rev int64
		if rev, err = w.Store.SaveDraft(ctx, d); err == nil {
			w.rev = rev
			return nil
		}
		err = fmt.Errorf("save draft: %w", err)
	} else {
		err = fmt.Errorf("save view: %w", err)
	}
	return w.discard(ctx, err)
}

// SaveView persists only collapse and selection.
func (w *Workspace) SaveView() error {
	return w.Store.SaveViewState(&store.ViewState{
		Collapsed: w.Editor.Collapsed().IDs(),
		Selected:  w.Editor.Selected(),
	})
}

// Apply commits the draft and records it in the commit history. On failure
// the editor is reloaded as in Save.
func (w *Workspace) Apply(ctx context.Context) (model.Applied, error) {
	pending := len(w.Editor.History())
	a := w.Editor.Apply()
	d := w.Editor.Draft()
	d.Revision = w.rev
	rev, err := w.Store.SaveApplied(ctx, d, pending)
	if err != nil {
		return a, w.discard(ctx, fmt.Errorf("save applied: %w", err))
	}
	w.rev = rev
	w.log.Info("applied", slog.String("label", a.Label), slog.Int("changes", pending))
	return a, nil
}

func (w *Workspace) discard(ctx context.Context, err error) error {
	w.log.Warn("save failed; reloading from disk", slog.Any("err", err))
	if rerr := w.Reload(ctx); rerr != nil {
		return errors.Join(err, fmt.Errorf("reload: %w", rerr))
	}
	return err
}
