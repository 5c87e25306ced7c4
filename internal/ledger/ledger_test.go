package ledger

import (
	"fmt"
	"testing"
	"time"
)

func fixedClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestLedger_CapsAtEightyAndEvictsOldest(t *testing.T) {
	l := New(Config{Now: fixedClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))})

	for i := 1; i <= DefaultCapacity; i++ {
		l.Append(fmt.Sprintf("change %d", i))
	}
	if l.Len() != 80 {
		t.Fatalf("expected 80 entries, got %d", l.Len())
	}
	if got := l.Entries()[0].Summary; got != "change 1" {
		t.Fatalf("oldest before overflow: %q", got)
	}

	l.Append("change 81")
	es := l.Entries()
	if len(es) != 80 {
		t.Fatalf("ledger exceeded capacity: %d", len(es))
	}
	if es[0].Summary != "change 2" {
		t.Fatalf("expected entry #1 evicted; oldest is %q", es[0].Summary)
	}
	if es[79].Summary != "change 81" {
		t.Fatalf("newest entry: %q", es[79].Summary)
	}
}

func TestLedger_CommitClearsAndStamps(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	l := New(Config{Capacity: 3, Now: func() time.Time { return now }})

	if l.IsDirty() {
		t.Fatalf("new ledger should be clean")
	}
	if _, ok := l.Applied(); ok {
		t.Fatalf("new ledger should have no applied stamp")
	}

	l.Append("a")
	if !l.IsDirty() {
		t.Fatalf("expected dirty after append")
	}

	a := l.Commit("Locations")
	if l.IsDirty() || l.Len() != 0 {
		t.Fatalf("commit must empty the ledger")
	}
	if !a.At.Equal(now) || a.Label != "Locations" {
		t.Fatalf("unexpected stamp %#v", a)
	}
	got, ok := l.Applied()
	if !ok || got != a {
		t.Fatalf("Applied() = %#v, %v", got, ok)
	}

	// Committing a clean ledger still refreshes the stamp.
	now = now.Add(time.Hour)
	b := l.Commit("Places")
	if !b.At.Equal(now) || b.Label != "Places" {
		t.Fatalf("second commit stamp %#v", b)
	}
	if st := l.Status(); st.Dirty || st.Applied == nil || st.Applied.Label != "Places" {
		t.Fatalf("status %#v", st)
	}
}

func TestLedger_EntriesAreCopies(t *testing.T) {
	l := New(Config{})
	l.Append("x")
	es := l.Entries()
	es[0].Summary = "mutated"
	if l.Entries()[0].Summary != "x" {
		t.Fatalf("Entries must return a copy")
	}
	if es[0].ID == "" {
		t.Fatalf("expected generated id")
	}
}

func TestLedger_RestoreTrimsToCapacity(t *testing.T) {
	src := New(Config{Capacity: 10})
	for i := 0; i < 5; i++ {
		src.Append(fmt.Sprintf("c%d", i))
	}
	l := New(Config{Capacity: 3})
	l.Restore(src.Entries(), nil)
	es := l.Entries()
	if len(es) != 3 || es[0].Summary != "c2" {
		t.Fatalf("restore: %#v", es)
	}
}
