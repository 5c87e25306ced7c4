package model

import "time"

// Node is a named classification entry. Nodes reachable from a published Forest
// are treated as immutable: mutations copy the path from the root down to the
// changed node and share every other subtree.
type Node struct {
	ID       string  `json:"id" yaml:"id" toml:"id" msgpack:"id"`
	Name     string  `json:"name" yaml:"name" toml:"name" msgpack:"name"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty" msgpack:"children,omitempty"`
}

// HasChildren reports whether n owns at least one child.
func (n *Node) HasChildren() bool {
	return n != nil && len(n.Children) > 0
}

// Forest is an ordered list of independent trees.
type Forest struct {
	Roots []*Node `json:"roots" yaml:"roots" toml:"roots" msgpack:"roots"`
}

// Document is the editable unit: the forest plus its labels.
type Document struct {
	// Label is the top-level group name shown above the forest.
	Label string `json:"label" yaml:"label" toml:"label" msgpack:"label"`

	// Dimensions holds one label per depth level. It may be longer than the
	// deepest branch; extra labels only render as headers.
	Dimensions []string `json:"dimensions" yaml:"dimensions" toml:"dimensions" msgpack:"dimensions"`

	Forest Forest `json:"forest" yaml:"forest" toml:"forest" msgpack:"forest"`
}

// DimensionLabel returns the label for depth level, or "" if none is set.
func (d Document) DimensionLabel(level int) string {
	if level < 0 || level >= len(d.Dimensions) {
		return ""
	}
	return d.Dimensions[level]
}

// CollapsedSet holds ids of nodes whose subtree is hidden from the view.
type CollapsedSet map[string]bool

// IDs returns the collapsed ids (unordered).
func (c CollapsedSet) IDs() []string {
	out := make([]string, 0, len(c))
	for id, on := range c {
		if on {
			out = append(out, id)
		}
	}
	return out
}

type ChangeEntry struct {
	ID      string    `json:"id" yaml:"id" msgpack:"id"`
	TS      time.Time `json:"ts" yaml:"ts" msgpack:"ts"`
	Summary string    `json:"summary" yaml:"summary" msgpack:"summary"`
}

// Applied stamps the last explicit commit of a draft.
type Applied struct {
	At    time.Time `json:"at" yaml:"at" msgpack:"at"`
	Label string    `json:"label" yaml:"label" msgpack:"label"`
}

// Position is the derived layout coordinate of a visible node.
type Position struct {
	Level int     `json:"level" yaml:"level"`
	Y     float64 `json:"y" yaml:"y"`
}

// Status is the draft/apply summary rendered by history views.
type Status struct {
	Dirty   bool     `json:"dirty" yaml:"dirty"`
	Pending int      `json:"pending" yaml:"pending"`
	Applied *Applied `json:"applied,omitempty" yaml:"applied,omitempty"`
}

// Draft is the persisted editing state: the current document plus its pending
// change entries and the last commit stamp.
type Draft struct {
	Document Document      `json:"document" yaml:"document" msgpack:"document"`
	Changes  []ChangeEntry `json:"changes" yaml:"changes" msgpack:"changes"`
	Applied  *Applied      `json:"applied,omitempty" yaml:"applied,omitempty" msgpack:"applied,omitempty"`

	// Revision is the store revision the draft was loaded at. Saves are
	// rejected when the stored draft has moved on since.
	Revision int64 `json:"-" yaml:"-" msgpack:"-"`
}
