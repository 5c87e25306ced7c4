package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"hierarchy-cli/internal/model"
)

func sampleDoc() model.Document {
	return model.Document{
		Label:      "Places",
		Dimensions: []string{"Region", "City"},
		Forest: model.Forest{Roots: []*model.Node{
			{ID: "n1", Name: "North", Children: []*model.Node{{ID: "n2", Name: "Oslo"}}},
			{ID: "n3", Name: "South"},
		}},
	}
}

func TestLoadDraft_NotInitialized(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	if _, err := s.LoadDraft(context.Background()); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestInit_SaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}

	if err := s.Init(ctx, sampleDoc()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := s.Init(ctx, sampleDoc()); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}
	if !s.Exists() {
		t.Fatalf("expected sqlite file to exist")
	}

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	d := model.Draft{
		Document: sampleDoc(),
		Changes: []model.ChangeEntry{
			{ID: "c1", TS: ts, Summary: `Added "South"`},
			{ID: "c2", TS: ts.Add(time.Second), Summary: `Renamed "A" to "B"`},
		},
	}
	rev, err := s.SaveDraft(ctx, d)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.LoadDraft(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rev != 1 || got.Revision != rev {
		t.Fatalf("revision: saved %d, loaded %d", rev, got.Revision)
	}
	if !reflect.DeepEqual(got.Document, d.Document) {
		t.Fatalf("document mismatch:\n got %+v\nwant %+v", got.Document, d.Document)
	}
	if !reflect.DeepEqual(got.Changes, d.Changes) {
		t.Fatalf("changes mismatch:\n got %+v\nwant %+v", got.Changes, d.Changes)
	}
	if got.Applied != nil {
		t.Fatalf("expected no applied stamp, got %+v", got.Applied)
	}
}

func TestSaveApplied_RecordsHistory(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}
	if err := s.Init(ctx, sampleDoc()); err != nil {
		t.Fatalf("init: %v", err)
	}

	var rev int64
	for i, label := range []string{"Places", "Places v2"} {
		doc := sampleDoc()
		doc.Label = label
		at := time.Date(2024, 5, 1+i, 0, 0, 0, 0, time.UTC)
		d := model.Draft{Document: doc, Applied: &model.Applied{At: at, Label: label}, Revision: rev}
		next, err := s.SaveApplied(ctx, d, i+3)
		if err != nil {
			t.Fatalf("save applied: %v", err)
		}
		rev = next
	}

	recs, err := s.AppliedLog(ctx, 0)
	if err != nil {
		t.Fatalf("applied log: %v", err)
	}
	if len(recs) != 2 || recs[0].Label != "Places v2" || recs[0].Changes != 4 || recs[1].Label != "Places" {
		t.Fatalf("unexpected history: %+v", recs)
	}
	if recs, _ := s.AppliedLog(ctx, 1); len(recs) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(recs))
	}

	d, err := s.LoadDraft(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.Applied == nil || d.Applied.Label != "Places v2" || len(d.Changes) != 0 {
		t.Fatalf("unexpected draft after apply: %+v", d)
	}
	doc, ok, err := s.LoadApplied(ctx)
	if err != nil || !ok || doc.Label != "Places v2" {
		t.Fatalf("load applied: ok=%v err=%v doc=%+v", ok, err, doc)
	}
}

func TestWorkspaceID_Stable(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}
	a, err := s.WorkspaceID(ctx)
	if err != nil {
		t.Fatalf("workspace id: %v", err)
	}
	b, _ := s.WorkspaceID(ctx)
	if a == "" || a != b {
		t.Fatalf("expected stable id, got %q and %q", a, b)
	}
}

func TestViewState_RoundTripAndCorruption(t *testing.T) {
	s := Store{Dir: t.TempDir()}

	st, err := s.LoadViewState()
	if err != nil || st.Version != 1 || len(st.Collapsed) != 0 {
		t.Fatalf("unexpected default: %+v %v", st, err)
	}
	if err := s.SaveViewState(&ViewState{Collapsed: []string{"b", "a"}, Selected: "a"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	st, err = s.LoadViewState()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(st.Collapsed, []string{"a", "b"}) || st.Selected != "a" {
		t.Fatalf("unexpected state: %+v", st)
	}

	if err := os.WriteFile(filepath.Join(s.Dir, viewStateFileName), []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	st, err = s.LoadViewState()
	if err != nil || st.Selected != "" {
		t.Fatalf("expected corrupted state to load as empty, got %+v %v", st, err)
	}
}

func TestDiscoverDir(t *testing.T) {
	root := t.TempDir()
	ws := filepath.Join(root, workspaceDirName)
	deep := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(ws, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}
	got, ok := DiscoverDir(deep)
	if !ok || got != ws {
		t.Fatalf("DiscoverDir = %q, %v; want %q", got, ok, ws)
	}
}

func TestSaveDraft_RevisionGuard(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}
	if err := s.Init(ctx, sampleDoc()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if rev, err := s.DraftRevision(ctx); err != nil || rev != 0 {
		t.Fatalf("fresh revision = %d, %v", rev, err)
	}

	a, err := s.LoadDraft(ctx)
	if err != nil {
		t.Fatalf("load a: %v", err)
	}
	b, err := s.LoadDraft(ctx)
	if err != nil {
		t.Fatalf("load b: %v", err)
	}

	a.Document.Label = "From A"
	if _, err := s.SaveDraft(ctx, a); err != nil {
		t.Fatalf("save a: %v", err)
	}
	b.Document.Label = "From B"
	if _, err := s.SaveDraft(ctx, b); !errors.Is(err, ErrStaleDraft) {
		t.Fatalf("expected ErrStaleDraft, got %v", err)
	}
	b.Applied = &model.Applied{At: time.Now(), Label: "From B"}
	if _, err := s.SaveApplied(ctx, b, 0); !errors.Is(err, ErrStaleDraft) {
		t.Fatalf("expected ErrStaleDraft from apply, got %v", err)
	}

	got, err := s.LoadDraft(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Document.Label != "From A" || got.Revision != 1 {
		t.Fatalf("stale save leaked: label %q rev %d", got.Document.Label, got.Revision)
	}
	if recs, _ := s.AppliedLog(ctx, 0); len(recs) != 0 {
		t.Fatalf("stale apply wrote history: %+v", recs)
	}
}
