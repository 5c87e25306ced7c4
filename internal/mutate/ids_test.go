package mutate

import (
	"strings"
	"testing"

	"hierarchy-cli/internal/model"
)

func TestNewNodeID_PrefixAndLength(t *testing.T) {
	id := NewNodeID(model.Forest{})
	if !strings.HasPrefix(id, "node-") {
		t.Fatalf("expected node prefix, got %q", id)
	}
	if got, want := len(strings.TrimPrefix(id, "node-")), 8; got != want {
		t.Fatalf("expected suffix len %d, got %d (%q)", want, got, id)
	}
}

func TestNewNodeID_AvoidsExisting(t *testing.T) {
	f := forestOf(tree("A", tree("B")))
	for i := 0; i < 50; i++ {
		id := NewNodeID(f)
		if Find(f, id) != nil {
			t.Fatalf("NewNodeID returned existing id %q", id)
		}
	}
}
