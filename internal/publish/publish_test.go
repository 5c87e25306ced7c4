package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hierarchy-cli/internal/model"
)

func sampleDoc() model.Document {
	return model.Document{
		Label:      "Places",
		Dimensions: []string{"Region", "City"},
		Forest: model.Forest{Roots: []*model.Node{
			{ID: "n-north", Name: "North", Children: []*model.Node{
				{ID: "n-oslo", Name: "Oslo"},
				{ID: "n-bergen", Name: "Bergen_West"},
			}},
			{ID: "n-south", Name: "South"},
		}},
	}
}

func TestRenderIndexMarkdown_ListsForestWithLevels(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	md := RenderIndexMarkdown(sampleDoc(), RenderOptions{AppliedAt: at})
	for _, want := range []string{
		"# Places\n",
		"_Applied 2026-01-02T03:04:05Z_",
		"1. Region\n2. City\n",
		"- [North](roots/n-north.md) _Region_\n",
		"  - Oslo _City_\n",
		`  - Bergen\_West _City_`,
		"- [South](roots/n-south.md) _Region_\n",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
	if strings.Contains(md, "n-oslo") {
		t.Fatalf("ids should be omitted by default:\n%s", md)
	}
}

func TestRenderRootMarkdown(t *testing.T) {
	t.Parallel()

	md, err := RenderRootMarkdown(sampleDoc(), "n-north", RenderOptions{IncludeIDs: true})
	if err != nil {
		t.Fatalf("RenderRootMarkdown: %v", err)
	}
	for _, want := range []string{"# North\n", "- Descendants: 2\n", "- ID: `n-north`", "- Oslo _City_ `n-oslo`\n"} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
	if _, err := RenderRootMarkdown(sampleDoc(), "n-oslo", RenderOptions{}); err == nil {
		t.Fatalf("expected error for a non-root id")
	}
}

func TestWriteDocument_WritesIndexAndRoots(t *testing.T) {
	t.Parallel()

	to := t.TempDir()
	res, err := WriteDocument(sampleDoc(), to, WriteOptions{})
	if err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}
	if len(res.Written) != 3 {
		t.Fatalf("expected 3 written files; got %v", res.Written)
	}
	for _, p := range []string{"index.md", filepath.Join("roots", "n-north.md"), filepath.Join("roots", "n-south.md")} {
		if _, err := os.Stat(filepath.Join(to, p)); err != nil {
			t.Fatalf("stat %s: %v", p, err)
		}
	}

	if _, err := WriteDocument(sampleDoc(), to, WriteOptions{}); err == nil || !strings.Contains(err.Error(), "--overwrite") {
		t.Fatalf("expected overwrite guard, got %v", err)
	}

	doc := sampleDoc()
	doc.Forest.Roots = doc.Forest.Roots[:1]
	if _, err := WriteDocument(doc, to, WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if _, err := os.Stat(filepath.Join(to, "roots", "n-south.md")); !os.IsNotExist(err) {
		t.Fatalf("expected stale root page to be removed, got %v", err)
	}
}
