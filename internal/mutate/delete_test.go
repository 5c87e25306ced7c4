package mutate

import (
	"errors"
	"reflect"
	"testing"

	"hierarchy-cli/internal/model"
)

func sampleDoc() model.Document {
	return model.Document{
		Label:      "Locations",
		Dimensions: []string{"Region", "City"},
		Forest: forestOf(
			tree("North", tree("Oslo", tree("Main")), tree("Bergen")),
			tree("South"),
		),
	}
}

func TestPlanDelete_CandidatesExcludeSubtree(t *testing.T) {
	plan, err := PlanDelete(sampleDoc(), "Oslo")
	if err != nil {
		t.Fatalf("PlanDelete: %v", err)
	}
	if !plan.HasChildren {
		t.Fatalf("expected HasChildren")
	}
	if plan.Descendants != 1 {
		t.Fatalf("expected 1 descendant, got %d", plan.Descendants)
	}
	if want := []DeleteMode{DeleteModeCascade, DeleteModeReassign}; !reflect.DeepEqual(plan.Modes, want) {
		t.Fatalf("modes: got %v want %v", plan.Modes, want)
	}
	want := []Candidate{
		{ID: "North", Label: "Region: North — North"},
		{ID: "Bergen", Label: "City: Bergen — North → Bergen"},
		{ID: "South", Label: "Region: South — South"},
	}
	if !reflect.DeepEqual(plan.Candidates, want) {
		t.Fatalf("candidates:\n got: %#v\nwant: %#v", plan.Candidates, want)
	}
	if plan.Allows("Main") || plan.Allows("Oslo") {
		t.Fatalf("plan must not allow the node or its descendants")
	}
}

func TestPlanDelete_LeafOffersCascadeOnly(t *testing.T) {
	plan, err := PlanDelete(sampleDoc(), "Main")
	if err != nil {
		t.Fatalf("PlanDelete: %v", err)
	}
	if plan.HasChildren {
		t.Fatalf("leaf should not have children")
	}
	if len(plan.Modes) != 1 || plan.Modes[0] != DeleteModeCascade {
		t.Fatalf("expected cascade only, got %v", plan.Modes)
	}
	// Depth 2 has no dimension label.
	for _, c := range plan.Candidates {
		if c.ID == "Main" {
			t.Fatalf("candidate list contains the node itself")
		}
	}
	if _, err := PlanDelete(sampleDoc(), "missing"); !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestCandidateLabel_FallsBackToLevelNumber(t *testing.T) {
	doc := sampleDoc()
	got := CandidateLabel(doc, 2, "Main", []string{"North", "Oslo", "Main"})
	if want := "Level 3: Main — North → Oslo → Main"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestResolveDelete(t *testing.T) {
	doc := sampleDoc()

	next, gone, err := ResolveDelete(doc.Forest, "North", DeleteModeCascade, "")
	if err != nil {
		t.Fatalf("cascade: %v", err)
	}
	if want := []string{"North", "Oslo", "Main", "Bergen"}; !reflect.DeepEqual(gone, want) {
		t.Fatalf("gone: got %v want %v", gone, want)
	}
	if got := shape(next); got != "[South]" {
		t.Fatalf("shape after cascade: %s", got)
	}

	next, gone, err = ResolveDelete(doc.Forest, "North", DeleteModeReassign, "South")
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if !reflect.DeepEqual(gone, []string{"North"}) {
		t.Fatalf("gone: %v", gone)
	}
	if got, want := shape(next), "[South[Oslo[Main], Bergen]]"; got != want {
		t.Fatalf("shape after reassign: got %s want %s", got, want)
	}

	if _, _, err := ResolveDelete(doc.Forest, "South", DeleteModeReassign, "North"); !errors.Is(err, ErrReassignNoChildren) {
		t.Fatalf("expected ErrReassignNoChildren, got %v", err)
	}
	if _, _, err := ResolveDelete(doc.Forest, "North", DeleteModeReassign, "Main"); !IsCycle(err) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if _, _, err := ResolveDelete(doc.Forest, "North", "bogus", ""); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
