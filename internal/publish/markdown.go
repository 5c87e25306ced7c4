package publish

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"hierarchy-cli/internal/model"
	"hierarchy-cli/internal/mutate"
)

type RenderOptions struct {
	// IncludeIDs appends node ids to each line.
	IncludeIDs bool
	// AppliedAt stamps the index page when non-zero.
	AppliedAt time.Time
}

// RenderIndexMarkdown renders the document title, its level labels and the
// whole forest as a nested list. Roots link to their own page.
func RenderIndexMarkdown(doc model.Document, opt RenderOptions) string {
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	writeLn("# " + strings.TrimSpace(doc.Label))
	writeLn("")
	if !opt.AppliedAt.IsZero() {
		writeLn("_Applied " + opt.AppliedAt.UTC().Format(time.RFC3339) + "_")
		writeLn("")
	}
	if len(doc.Dimensions) > 0 {
		writeLn("## Levels")
		writeLn("")
		for i, d := range doc.Dimensions {
			fmt.Fprintf(&buf, "%d. %s\n", i+1, strings.TrimSpace(d))
		}
		writeLn("")
	}

	writeLn("## Nodes")
	writeLn("")
	if len(doc.Forest.Roots) == 0 {
		writeLn("_Empty._")
		return buf.String()
	}
	for _, root := range doc.Forest.Roots {
		fmt.Fprintf(&buf, "- [%s](roots/%s.md)%s\n", escape(root.Name), root.ID, suffix(doc, root, 0, opt))
		for _, ch := range root.Children {
			renderNodeLine(&buf, doc, ch, 1, 1, opt)
		}
	}
	return buf.String()
}

// RenderRootMarkdown renders one root and its subtree.
func RenderRootMarkdown(doc model.Document, rootID string, opt RenderOptions) (string, error) {
	var root *model.Node
	for _, r := range doc.Forest.Roots {
		if r.ID == rootID {
			root = r
			break
		}
	}
	if root == nil {
		return "", mutate.NotFoundError{Kind: "root", ID: rootID}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", escape(root.Name))
	fmt.Fprintf(&buf, "- Hierarchy: [%s](../index.md)\n", escape(doc.Label))
	if dim := doc.DimensionLabel(0); dim != "" {
		fmt.Fprintf(&buf, "- Level: %s\n", dim)
	}
	fmt.Fprintf(&buf, "- Descendants: %d\n", len(mutate.SubtreeIDs(root))-1)
	if opt.IncludeIDs {
		fmt.Fprintf(&buf, "- ID: `%s`\n", root.ID)
	}
	if len(root.Children) > 0 {
		buf.WriteString("\n## Children\n\n")
		for _, ch := range root.Children {
			renderNodeLine(&buf, doc, ch, 0, 1, opt)
		}
	}
	return buf.String(), nil
}

// renderNodeLine writes n at the given list indent; level is its depth in the
// forest and picks the dimension label.
func renderNodeLine(buf *bytes.Buffer, doc model.Document, n *model.Node, indent, level int, opt RenderOptions) {
	if n == nil {
		return
	}
	fmt.Fprintf(buf, "%s- %s%s\n", strings.Repeat("  ", indent), escape(n.Name), suffix(doc, n, level, opt))
	for _, ch := range n.Children {
		renderNodeLine(buf, doc, ch, indent+1, level+1, opt)
	}
}

func suffix(doc model.Document, n *model.Node, level int, opt RenderOptions) string {
	var parts []string
	if dim := doc.DimensionLabel(level); dim != "" {
		parts = append(parts, "_"+dim+"_")
	}
	if opt.IncludeIDs {
		parts = append(parts, "`"+n.ID+"`")
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

var mdEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "`", "\\`")

func escape(s string) string { return mdEscaper.Replace(strings.TrimSpace(s)) }
