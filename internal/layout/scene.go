package layout

import (
	"hierarchy-cli/internal/model"
	"hierarchy-cli/internal/view"
)

// PlacedNode is everything a renderer needs to draw one visible node.
type PlacedNode struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Level       int     `json:"level" yaml:"level"`
	Y           float64 `json:"y" yaml:"y"`
	Box         Rect    `json:"box" yaml:"box"`
	HasChildren bool    `json:"hasChildren" yaml:"hasChildren"`
	Collapsed   bool    `json:"collapsed" yaml:"collapsed"`
	Hidden      int     `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

type Header struct {
	Level int     `json:"level" yaml:"level"`
	Label string  `json:"label" yaml:"label"`
	X     float64 `json:"x" yaml:"x"`
}

// Scene is the renderable view of a document under a collapsed set.
type Scene struct {
	Nodes   []PlacedNode `json:"nodes" yaml:"nodes"`
	Edges   []Edge       `json:"edges" yaml:"edges"`
	Headers []Header     `json:"headers" yaml:"headers"`
	Bounds  Rect         `json:"bounds" yaml:"bounds"`
	Size    Rect         `json:"nodeSize" yaml:"nodeSize"`
}

// Build projects doc through collapsed and lays out the visible forest.
func Build(doc model.Document, collapsed model.CollapsedSet) Scene {
	visible := view.Project(doc.Forest, collapsed)
	pos := Compute(visible)

	// Canonical child counts; a collapsed node has none in the projection.
	hasKids := map[string]bool{}
	var mark func(nodes []*model.Node)
	mark = func(nodes []*model.Node) {
		for _, n := range nodes {
			hasKids[n.ID] = len(n.Children) > 0
			mark(n.Children)
		}
	}
	mark(doc.Forest.Roots)

	sc := Scene{
		Nodes:   []PlacedNode{},
		Edges:   Edges(visible),
		Headers: []Header{},
		Size:    Rect{W: NodeWidth, H: NodeHeight},
	}
	var walk func(nodes []*model.Node)
	walk = func(nodes []*model.Node) {
		for _, n := range nodes {
			p := pos[n.ID]
			tl := Place(p)
			pn := PlacedNode{
				ID:          n.ID,
				Name:        n.Name,
				Level:       p.Level,
				Y:           p.Y,
				Box:         Rect{X: tl.X, Y: tl.Y, W: NodeWidth, H: NodeHeight},
				HasChildren: hasKids[n.ID],
				Collapsed:   collapsed[n.ID] && hasKids[n.ID],
			}
			if pn.Collapsed {
				pn.Hidden = view.HiddenCount(doc.Forest, collapsed, n.ID)
			}
			sc.Nodes = append(sc.Nodes, pn)
			walk(n.Children)
		}
	}
	walk(visible.Roots)

	sc.Bounds = Bounds(pos, len(doc.Dimensions))
	cols, _ := grid(pos, len(doc.Dimensions))
	for lvl := 0; lvl < cols; lvl++ {
		label := doc.DimensionLabel(lvl)
		sc.Headers = append(sc.Headers, Header{Level: lvl, Label: label, X: HeaderX(lvl)})
	}
	return sc
}

// Find returns the placed node with id.
func (s Scene) Find(id string) (PlacedNode, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return PlacedNode{}, false
}
