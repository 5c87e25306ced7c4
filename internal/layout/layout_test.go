package layout

import (
	"reflect"
	"sort"
	"testing"

	"hierarchy-cli/internal/model"
)

func tree(name string, kids ...*model.Node) *model.Node {
	return &model.Node{ID: name, Name: name, Children: kids}
}

func forestOf(roots ...*model.Node) model.Forest {
	return model.Forest{Roots: roots}
}

func TestCompute_ParentsSitAtChildMean(t *testing.T) {
	f := forestOf(
		tree("A", tree("B"), tree("C", tree("C1"), tree("C2"), tree("C3"))),
		tree("D"),
	)
	got := Compute(f)
	want := map[string]model.Position{
		"B":  {Level: 1, Y: 0},
		"C1": {Level: 2, Y: 1},
		"C2": {Level: 2, Y: 2},
		"C3": {Level: 2, Y: 3},
		"C":  {Level: 1, Y: 2},
		"A":  {Level: 0, Y: 1},
		"D":  {Level: 0, Y: 4},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Compute:\n got: %v\nwant: %v", got, want)
	}
}

func TestCompute_LeafRowsAreDenseAndLevelsIncrease(t *testing.T) {
	f := forestOf(
		tree("r1", tree("a", tree("a1"), tree("a2", tree("a2x"))), tree("b")),
		tree("r2"),
		tree("r3", tree("c", tree("c1"))),
	)
	pos := Compute(f)

	var leafYs []float64
	var walk func(n *model.Node)
	walk = func(n *model.Node) {
		if len(n.Children) == 0 {
			leafYs = append(leafYs, pos[n.ID].Y)
		}
		for _, ch := range n.Children {
			if pos[ch.ID].Level <= pos[n.ID].Level {
				t.Fatalf("level(%s)=%d not greater than level(%s)=%d", ch.ID, pos[ch.ID].Level, n.ID, pos[n.ID].Level)
			}
			walk(ch)
		}
	}
	for _, r := range f.Roots {
		walk(r)
	}
	sort.Float64s(leafYs)
	for i, y := range leafYs {
		if y != float64(i) {
			t.Fatalf("leaf ys must be 0..k-1 without duplicates; got %v", leafYs)
		}
	}
}

func TestCompute_Deterministic(t *testing.T) {
	f := forestOf(tree("A", tree("B"), tree("C")), tree("D", tree("E")))
	first := Compute(f)
	for i := 0; i < 10; i++ {
		if !reflect.DeepEqual(Compute(f), first) {
			t.Fatalf("layout differs between runs")
		}
	}
}

func TestBounds_IncludesExtraDimensionHeaders(t *testing.T) {
	f := forestOf(tree("A", tree("B")))
	pos := Compute(f)

	b := Bounds(pos, 0)
	wantW := 2*Padding + 2*NodeWidth + ColumnGap
	wantH := 2*Padding + HeaderHeight + NodeHeight
	if b.W != wantW || b.H != wantH {
		t.Fatalf("Bounds = %+v, want w=%v h=%v", b, wantW, wantH)
	}

	b = Bounds(pos, 4)
	if want := 2*Padding + 4*NodeWidth + 3*ColumnGap; b.W != want {
		t.Fatalf("Bounds with 4 dimensions: w=%v want %v", b.W, want)
	}

	empty := Bounds(nil, 0)
	if empty.W != 2*Padding || empty.H != 2*Padding+HeaderHeight {
		t.Fatalf("empty bounds %+v", empty)
	}
}

func TestEdges(t *testing.T) {
	f := forestOf(tree("A", tree("B", tree("C")), tree("D")), tree("E"))
	want := []Edge{{"A", "B"}, {"B", "C"}, {"A", "D"}}
	if got := Edges(f); !reflect.DeepEqual(got, want) {
		t.Fatalf("Edges: got %v want %v", got, want)
	}
}

func TestBuild_CollapsedSubtree(t *testing.T) {
	doc := model.Document{
		Dimensions: []string{"Region", "City", "Street"},
		Forest:     forestOf(tree("A", tree("B", tree("C"))), tree("D")),
	}
	sc := Build(doc, model.CollapsedSet{"B": true})

	var ids []string
	for _, n := range sc.Nodes {
		ids = append(ids, n.ID)
	}
	if want := []string{"A", "B", "D"}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("visible nodes: got %v want %v", ids, want)
	}
	b, _ := sc.Find("B")
	if !b.Collapsed || !b.HasChildren || b.Hidden != 1 {
		t.Fatalf("B: %+v", b)
	}
	if len(sc.Edges) != 1 || sc.Edges[0] != (Edge{ParentID: "A", ChildID: "B"}) {
		t.Fatalf("edges: %v", sc.Edges)
	}
	if len(sc.Headers) != 3 || sc.Headers[2].Label != "Street" {
		t.Fatalf("headers: %+v", sc.Headers)
	}
	if b.Box.X != HeaderX(1) {
		t.Fatalf("node box x %v should align with header column %v", b.Box.X, HeaderX(1))
	}
	if len(doc.Forest.Roots[0].Children[0].Children) != 1 {
		t.Fatalf("Build modified the document")
	}
}
