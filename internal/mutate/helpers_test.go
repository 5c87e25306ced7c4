package mutate

import (
	"strings"

	"hierarchy-cli/internal/model"
)

// tree builds a node whose id equals its name.
func tree(name string, kids ...*model.Node) *model.Node {
	return &model.Node{ID: name, Name: name, Children: kids}
}

func forestOf(roots ...*model.Node) model.Forest {
	return model.Forest{Roots: roots}
}

// shape renders f as "[A[B, C], D]".
func shape(f model.Forest) string {
	var b strings.Builder
	var write func(nodes []*model.Node)
	write = func(nodes []*model.Node) {
		b.WriteString("[")
		for i, n := range nodes {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(n.Name)
			if len(n.Children) > 0 {
				write(n.Children)
			}
		}
		b.WriteString("]")
	}
	write(f.Roots)
	return b.String()
}
