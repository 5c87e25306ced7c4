package layout

import (
	"math"

	"hierarchy-cli/internal/model"
)

// Fixed drawing sizes (in renderer units; the TUI maps them onto cells).
const (
	NodeWidth    = 180.0
	NodeHeight   = 40.0
	ColumnGap    = 64.0
	RowGap       = 16.0
	Padding      = 24.0
	HeaderHeight = 32.0
)

type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Rect is an axis-aligned rectangle defined by its min corner and size.
type Rect struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

type Edge struct {
	ParentID string `json:"parentId" yaml:"parentId"`
	ChildID  string `json:"childId" yaml:"childId"`
}

// Compute assigns a (level, y) position to every node of f.
//
// Leaves take consecutive integers from a single forest-wide counter in
// traversal order; an internal node sits at the mean y of its children. Since
// leaf values only increase and every parent lies within the range of its
// descendants, subtrees never overlap. The result depends only on tree shape
// and child order.
func Compute(f model.Forest) map[string]model.Position {
	out := make(map[string]model.Position)
	next := 0
	var place func(n *model.Node, level int) float64
	place = func(n *model.Node, level int) float64 {
		var y float64
		if len(n.Children) == 0 {
			y = float64(next)
			next++
		} else {
			sum := 0.0
			for _, ch := range n.Children {
				sum += place(ch, level+1)
			}
			y = sum / float64(len(n.Children))
		}
		out[n.ID] = model.Position{Level: level, Y: y}
		return y
	}
	for _, r := range f.Roots {
		place(r, 0)
	}
	return out
}

// Place maps a layout position to the top-left corner of its node box.
func Place(p model.Position) Point {
	return Point{
		X: Padding + float64(p.Level)*(NodeWidth+ColumnGap),
		Y: Padding + HeaderHeight + p.Y*(NodeHeight+RowGap),
	}
}

// HeaderX returns the left edge of the header column for level.
func HeaderX(level int) float64 {
	return Padding + float64(level)*(NodeWidth+ColumnGap)
}

// Bounds returns the canvas size needed for positions plus dimensionCount header
// columns (headers may extend past the deepest level).
func Bounds(positions map[string]model.Position, dimensionCount int) Rect {
	cols, rows := grid(positions, dimensionCount)
	w := 2 * Padding
	if cols > 0 {
		w += float64(cols)*NodeWidth + float64(cols-1)*ColumnGap
	}
	h := 2*Padding + HeaderHeight
	if rows > 0 {
		h += float64(rows)*NodeHeight + float64(rows-1)*RowGap
	}
	return Rect{W: w, H: h}
}

// grid returns the number of level columns and integer rows in use.
func grid(positions map[string]model.Position, dimensionCount int) (cols, rows int) {
	cols = dimensionCount
	for _, p := range positions {
		cols = max(cols, p.Level+1)
		rows = max(rows, int(math.Ceil(p.Y))+1)
	}
	return cols, rows
}

// Edges lists parent->child pairs of f in traversal order.
func Edges(f model.Forest) []Edge {
	out := []Edge{}
	var walk func(nodes []*model.Node)
	walk = func(nodes []*model.Node) {
		for _, n := range nodes {
			for _, ch := range n.Children {
				out = append(out, Edge{ParentID: n.ID, ChildID: ch.ID})
			}
			walk(n.Children)
		}
	}
	walk(f.Roots)
	return out
}
