package ledger

import (
	"time"

	"hierarchy-cli/internal/model"

	"github.com/google/uuid"
)

// DefaultCapacity is the number of change entries kept per draft.
const DefaultCapacity = 80

// Config controls capacity and the clock/id sources.
type Config struct {
	// Capacity caps the entry list; the oldest entry is evicted first. <= 0 means DefaultCapacity.
	Capacity int
	Now      func() time.Time
	NewID    func() string
}

// Ledger records one human-readable entry per mutation of the current draft.
// It is not safe for concurrent use; callers serialize events.
type Ledger struct {
	cfg     Config
	entries []model.ChangeEntry
	applied *model.Applied
}

func New(cfg Config) *Ledger {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Ledger{cfg: cfg}
}

// Append adds an entry for summary, evicting the oldest entry when full.
func (l *Ledger) Append(summary string) model.ChangeEntry {
	e := model.ChangeEntry{ID: l.cfg.NewID(), TS: l.cfg.Now(), Summary: summary}
	l.entries = append(l.entries, e)
	if over := len(l.entries) - l.cfg.Capacity; over > 0 {
		// Copy down so the backing array does not grow without bound.
		n := copy(l.entries, l.entries[over:])
		clear(l.entries[n:])
		l.entries = l.entries[:n]
	}
	return e
}

// Entries returns a copy of the entries, oldest first.
func (l *Ledger) Entries() []model.ChangeEntry {
	out := make([]model.ChangeEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Ledger) Len() int { return len(l.entries) }

func (l *Ledger) IsDirty() bool { return len(l.entries) > 0 }

// Commit stamps the draft as applied under label and clears the entries.
func (l *Ledger) Commit(label string) model.Applied {
	a := model.Applied{At: l.cfg.Now(), Label: label}
	l.applied = &a
	l.entries = nil
	return a
}

// Applied returns the last commit stamp, if any.
func (l *Ledger) Applied() (model.Applied, bool) {
	if l.applied == nil {
		return model.Applied{}, false
	}
	return *l.applied, true
}

func (l *Ledger) Status() model.Status {
	st := model.Status{Dirty: l.IsDirty(), Pending: len(l.entries)}
	if a, ok := l.Applied(); ok {
		st.Applied = &a
	}
	return st
}

// Restore replaces the ledger contents with persisted state. Entries beyond
// capacity are trimmed from the oldest end.
func (l *Ledger) Restore(entries []model.ChangeEntry, applied *model.Applied) {
	if over := len(entries) - l.cfg.Capacity; over > 0 {
		entries = entries[over:]
	}
	l.entries = append([]model.ChangeEntry(nil), entries...)
	l.applied = nil
	if applied != nil {
		a := *applied
		l.applied = &a
	}
}
