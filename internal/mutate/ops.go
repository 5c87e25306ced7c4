package mutate

import (
	"strings"

	"hierarchy-cli/internal/model"
)

// Every operation in this file takes the current forest snapshot and returns a
// replacement. On error the input is returned untouched and nothing it references
// has been modified.

// AddRoot appends a new root named name (disambiguated against root names).
func AddRoot(f model.Forest, id, name string) (model.Forest, *model.Node, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return f, nil, EmptyNameError{}
	}
	if Find(f, id) != nil {
		return f, nil, DuplicateIDError{ID: id}
	}
	n := &model.Node{ID: id, Name: DisambiguateName(name, f.Roots)}
	roots := make([]*model.Node, 0, len(f.Roots)+1)
	roots = append(roots, f.Roots...)
	roots = append(roots, n)
	return model.Forest{Roots: roots}, n, nil
}

// AddChild appends a new child under parentID (name disambiguated against siblings only).
func AddChild(f model.Forest, parentID, id, name string) (model.Forest, *model.Node, error) {
	parent := Find(f, parentID)
	if parent == nil {
		return f, nil, NotFoundError{Kind: "node", ID: parentID}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return f, nil, EmptyNameError{}
	}
	if Find(f, id) != nil {
		return f, nil, DuplicateIDError{ID: id}
	}
	n := &model.Node{ID: id, Name: DisambiguateName(name, parent.Children)}
	roots, _ := rewrite(f.Roots, parentID, func(p *model.Node) []*model.Node {
		return []*model.Node{withChildren(p, n)}
	})
	return model.Forest{Roots: roots}, n, nil
}

// Rename replaces the node's name. A name that trims to empty is rejected.
func Rename(f model.Forest, id, name string) (model.Forest, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return f, EmptyNameError{}
	}
	roots, ok := rewrite(f.Roots, id, func(n *model.Node) []*model.Node {
		cp := *n
		cp.Name = name
		return []*model.Node{&cp}
	})
	if !ok {
		return f, NotFoundError{Kind: "node", ID: id}
	}
	return model.Forest{Roots: roots}, nil
}

// DeleteCascade removes id and its whole subtree.
func DeleteCascade(f model.Forest, id string) (model.Forest, *model.Node, error) {
	var removed *model.Node
	roots, ok := rewrite(f.Roots, id, func(n *model.Node) []*model.Node {
		removed = n
		return nil
	})
	if !ok {
		return f, nil, NotFoundError{Kind: "node", ID: id}
	}
	return model.Forest{Roots: roots}, removed, nil
}

// checkPlacement validates placing node id under targetID.
func checkPlacement(f model.Forest, id, targetID string) (*model.Node, error) {
	n := Find(f, id)
	if n == nil {
		return nil, NotFoundError{Kind: "node", ID: id}
	}
	if targetID == id || IsDescendant(n, targetID) {
		return nil, CycleError{NodeID: id, TargetID: targetID}
	}
	if Find(f, targetID) == nil {
		return nil, NotFoundError{Kind: "node", ID: targetID}
	}
	return n, nil
}

// ReassignAndDelete appends id's immediate children (in order) after targetID's
// existing children and removes id. Deeper descendants stay inside the subtrees
// of those children.
func ReassignAndDelete(f model.Forest, id, targetID string) (model.Forest, error) {
	n, err := checkPlacement(f, id, targetID)
	if err != nil {
		return f, err
	}
	orphans := n.Children
	roots, _ := rewrite(f.Roots, id, func(*model.Node) []*model.Node { return nil })
	roots, _ = rewrite(roots, targetID, func(t *model.Node) []*model.Node {
		return []*model.Node{withChildren(t, orphans...)}
	})
	return model.Forest{Roots: roots}, nil
}

// Move detaches id (with its subtree) and appends it to targetID's children.
func Move(f model.Forest, id, targetID string) (model.Forest, error) {
	n, err := checkPlacement(f, id, targetID)
	if err != nil {
		return f, err
	}
	roots, _ := rewrite(f.Roots, id, func(*model.Node) []*model.Node { return nil })
	roots, _ = rewrite(roots, targetID, func(t *model.Node) []*model.Node {
		return []*model.Node{withChildren(t, n)}
	})
	return model.Forest{Roots: roots}, nil
}

// CheckPlacement returns the error Move would fail with for id and targetID,
// without building the moved forest.
func CheckPlacement(f model.Forest, id, targetID string) error {
	_, err := checkPlacement(f, id, targetID)
	return err
}

// CanPlace reports whether id may be moved (or have its children reassigned) under targetID.
func CanPlace(f model.Forest, id, targetID string) bool {
	return CheckPlacement(f, id, targetID) == nil
}
