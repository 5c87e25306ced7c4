package mutate

import (
	"strconv"
	"strings"

	"hierarchy-cli/internal/model"
)

// Find returns the node with id, or nil.
func Find(f model.Forest, id string) *model.Node {
	var found *model.Node
	Walk(f, func(n *model.Node, _ int) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Walk visits nodes depth-first in array order. Returning false stops the walk.
func Walk(f model.Forest, fn func(n *model.Node, depth int) bool) {
	var walk func(nodes []*model.Node, depth int) bool
	walk = func(nodes []*model.Node, depth int) bool {
		for _, n := range nodes {
			if !fn(n, depth) {
				return false
			}
			if !walk(n.Children, depth+1) {
				return false
			}
		}
		return true
	}
	walk(f.Roots, 0)
}

// IsDescendant reports whether id lies strictly inside n's subtree.
func IsDescendant(n *model.Node, id string) bool {
	if n == nil {
		return false
	}
	for _, ch := range n.Children {
		if ch.ID == id || IsDescendant(ch, id) {
			return true
		}
	}
	return false
}

// SubtreeIDs returns n's id followed by every descendant id (pre-order).
func SubtreeIDs(n *model.Node) []string {
	if n == nil {
		return nil
	}
	out := []string{n.ID}
	for _, ch := range n.Children {
		out = append(out, SubtreeIDs(ch)...)
	}
	return out
}

// FindPath returns the ancestor chain root..node.
func FindPath(f model.Forest, id string) ([]*model.Node, error) {
	var path []*model.Node
	var walk func(nodes []*model.Node) bool
	walk = func(nodes []*model.Node) bool {
		for _, n := range nodes {
			path = append(path, n)
			if n.ID == id || walk(n.Children) {
				return true
			}
			path = path[:len(path)-1]
		}
		return false
	}
	if !walk(f.Roots) {
		return nil, NotFoundError{Kind: "node", ID: id}
	}
	return path, nil
}

// Depth returns the level of id (root = 0).
func Depth(f model.Forest, id string) (int, error) {
	path, err := FindPath(f, id)
	if err != nil {
		return 0, err
	}
	return len(path) - 1, nil
}

// Count returns the number of nodes in f.
func Count(f model.Forest) int {
	n := 0
	Walk(f, func(*model.Node, int) bool {
		n++
		return true
	})
	return n
}

// DisambiguateName returns name, or name followed by " 2", " 3", ... (first unused)
// when a sibling already uses it.
func DisambiguateName(name string, siblings []*model.Node) string {
	name = strings.TrimSpace(name)
	used := make(map[string]bool, len(siblings))
	for _, s := range siblings {
		used[s.Name] = true
	}
	if !used[name] {
		return name
	}
	for i := 2; ; i++ {
		cand := name + " " + strconv.Itoa(i)
		if !used[cand] {
			return cand
		}
	}
}

// rewrite returns a copy of nodes where the node with id is replaced by fn(node)
// (zero or more nodes). Only the path to the node is copied; all other subtrees
// are shared with the input.
func rewrite(nodes []*model.Node, id string, fn func(n *model.Node) []*model.Node) ([]*model.Node, bool) {
	for i, n := range nodes {
		if n.ID == id {
			repl := fn(n)
			out := make([]*model.Node, 0, len(nodes)-1+len(repl))
			out = append(out, nodes[:i]...)
			out = append(out, repl...)
			out = append(out, nodes[i+1:]...)
			return out, true
		}
		if kids, ok := rewrite(n.Children, id, fn); ok {
			cp := *n
			cp.Children = kids
			out := make([]*model.Node, len(nodes))
			copy(out, nodes)
			out[i] = &cp
			return out, true
		}
	}
	return nodes, false
}

func withChildren(n *model.Node, extra ...*model.Node) *model.Node {
	cp := *n
	cp.Children = make([]*model.Node, 0, len(n.Children)+len(extra))
	cp.Children = append(cp.Children, n.Children...)
	cp.Children = append(cp.Children, extra...)
	return &cp
}
