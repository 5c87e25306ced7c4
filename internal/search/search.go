package search

import (
	"regexp"
	"strings"

	"hierarchy-cli/internal/model"
)

// Matcher reports whether a node name matches a compiled query.
type Matcher func(name string) bool

// Compile turns free text into a literal, case-insensitive matcher. A blank
// query, or one the regexp package rejects (invalid UTF-8), matches nothing.
func Compile(query string) Matcher {
	if strings.TrimSpace(query) == "" {
		return matchNothing
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return matchNothing
	}
	return re.MatchString
}

func matchNothing(string) bool { return false }

// Matches returns the ids of nodes whose name matches, in traversal order.
func Matches(f model.Forest, m Matcher) []string {
	var out []string
	var walk func(nodes []*model.Node)
	walk = func(nodes []*model.Node) {
		for _, n := range nodes {
			if m(n.Name) {
				out = append(out, n.ID)
			}
			walk(n.Children)
		}
	}
	walk(f.Roots)
	return out
}
