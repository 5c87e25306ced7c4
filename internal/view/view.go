package view

import (
	"hierarchy-cli/internal/model"
)

// Project returns an independent copy of f in which every collapsed node has no
// children. The result is for rendering only and never flows back into the
// canonical document.
func Project(f model.Forest, collapsed model.CollapsedSet) model.Forest {
	return model.Forest{Roots: project(f.Roots, collapsed)}
}

func project(nodes []*model.Node, collapsed model.CollapsedSet) []*model.Node {
	if nodes == nil {
		return nil
	}
	out := make([]*model.Node, len(nodes))
	for i, n := range nodes {
		cp := &model.Node{ID: n.ID, Name: n.Name}
		if !collapsed[n.ID] {
			cp.Children = project(n.Children, collapsed)
		}
		out[i] = cp
	}
	return out
}

// HiddenCount returns how many descendants of id are hidden because id itself is
// collapsed (0 when id is expanded or absent).
func HiddenCount(f model.Forest, collapsed model.CollapsedSet, id string) int {
	if !collapsed[id] {
		return 0
	}
	n := find(f.Roots, id)
	if n == nil {
		return 0
	}
	return countBelow(n)
}

func countBelow(n *model.Node) int {
	c := 0
	for _, ch := range n.Children {
		c += 1 + countBelow(ch)
	}
	return c
}

func find(nodes []*model.Node, id string) *model.Node {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
		if got := find(n.Children, id); got != nil {
			return got
		}
	}
	return nil
}

// VisibleIDs lists the ids present in the projected forest, in traversal order.
func VisibleIDs(f model.Forest, collapsed model.CollapsedSet) []string {
	var out []string
	var walk func(nodes []*model.Node)
	walk = func(nodes []*model.Node) {
		for _, n := range nodes {
			out = append(out, n.ID)
			if !collapsed[n.ID] {
				walk(n.Children)
			}
		}
	}
	walk(f.Roots)
	return out
}

// CollapseAll returns a set collapsing every node that has children.
func CollapseAll(f model.Forest) model.CollapsedSet {
	out := model.CollapsedSet{}
	var walk func(nodes []*model.Node)
	walk = func(nodes []*model.Node) {
		for _, n := range nodes {
			if len(n.Children) > 0 {
				out[n.ID] = true
				walk(n.Children)
			}
		}
	}
	walk(f.Roots)
	return out
}

// Reveal returns a copy of collapsed with every ancestor of ids expanded.
func Reveal(f model.Forest, collapsed model.CollapsedSet, ids []string) model.CollapsedSet {
	out := Prune(f, collapsed)
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var path []string
	var walk func(nodes []*model.Node)
	walk = func(nodes []*model.Node) {
		for _, n := range nodes {
			if want[n.ID] {
				for _, a := range path {
					delete(out, a)
				}
			}
			path = append(path, n.ID)
			walk(n.Children)
			path = path[:len(path)-1]
		}
	}
	walk(f.Roots)
	return out
}

// Prune returns a copy of collapsed without ids that no longer exist in f.
func Prune(f model.Forest, collapsed model.CollapsedSet) model.CollapsedSet {
	out := model.CollapsedSet{}
	for id, on := range collapsed {
		if on && find(f.Roots, id) != nil {
			out[id] = true
		}
	}
	return out
}
