package mutate

import (
	"errors"
	"fmt"
	"strings"

	"hierarchy-cli/internal/model"
)

type DeleteMode string

const (
	DeleteModeCascade  DeleteMode = "cascade"
	DeleteModeReassign DeleteMode = "reassign"
)

// ErrReassignNoChildren is returned when reassign mode is requested for a leaf.
var ErrReassignNoChildren = errors.New("reassign is only offered for nodes with children")

// Candidate is a valid reassignment target.
type Candidate struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// DeletePlan describes the choices offered for deleting one node.
type DeletePlan struct {
	NodeID      string       `json:"nodeId" yaml:"nodeId"`
	Name        string       `json:"name" yaml:"name"`
	HasChildren bool         `json:"hasChildren" yaml:"hasChildren"`
	Descendants int          `json:"descendants" yaml:"descendants"`
	Modes       []DeleteMode `json:"modes" yaml:"modes"`
	Candidates  []Candidate  `json:"candidates" yaml:"candidates"`
}

// Allows reports whether targetID is one of the plan's candidates.
func (p DeletePlan) Allows(targetID string) bool {
	for _, c := range p.Candidates {
		if c.ID == targetID {
			return true
		}
	}
	return false
}

// PlanDelete computes the resolution options for deleting id.
func PlanDelete(doc model.Document, id string) (DeletePlan, error) {
	n := Find(doc.Forest, id)
	if n == nil {
		return DeletePlan{}, NotFoundError{Kind: "node", ID: id}
	}
	plan := DeletePlan{
		NodeID:      n.ID,
		Name:        n.Name,
		HasChildren: n.HasChildren(),
		Descendants: len(SubtreeIDs(n)) - 1,
		Modes:       []DeleteMode{DeleteModeCascade},
		Candidates:  []Candidate{},
	}
	if plan.HasChildren {
		plan.Modes = append(plan.Modes, DeleteModeReassign)
	}

	var path []string
	var walk func(nodes []*model.Node)
	walk = func(nodes []*model.Node) {
		for _, c := range nodes {
			if c.ID == id {
				continue // skips the whole subtree
			}
			path = append(path, c.Name)
			plan.Candidates = append(plan.Candidates, Candidate{
				ID:    c.ID,
				Label: CandidateLabel(doc, len(path)-1, c.Name, path),
			})
			walk(c.Children)
			path = path[:len(path)-1]
		}
	}
	walk(doc.Forest.Roots)
	return plan, nil
}

// CandidateLabel formats "<dimension>: <name> — <root → … → node>".
func CandidateLabel(doc model.Document, level int, name string, path []string) string {
	return fmt.Sprintf("%s: %s — %s", DimensionName(doc, level), name, strings.Join(path, " → "))
}

// DimensionName returns the dimension label for level, falling back to "Level N".
func DimensionName(doc model.Document, level int) string {
	if s := strings.TrimSpace(doc.DimensionLabel(level)); s != "" {
		return s
	}
	return fmt.Sprintf("Level %d", level+1)
}

// ResolveDelete applies the chosen mode. It returns the new forest and the ids
// that no longer exist afterwards.
func ResolveDelete(f model.Forest, id string, mode DeleteMode, targetID string) (model.Forest, []string, error) {
	switch mode {
	case DeleteModeCascade, "":
		next, removed, err := DeleteCascade(f, id)
		if err != nil {
			return f, nil, err
		}
		return next, SubtreeIDs(removed), nil
	case DeleteModeReassign:
		n := Find(f, id)
		if n == nil {
			return f, nil, NotFoundError{Kind: "node", ID: id}
		}
		if !n.HasChildren() {
			return f, nil, ErrReassignNoChildren
		}
		next, err := ReassignAndDelete(f, id, targetID)
		if err != nil {
			return f, nil, err
		}
		return next, []string{id}, nil
	default:
		return f, nil, fmt.Errorf("unknown delete mode: %s", mode)
	}
}
