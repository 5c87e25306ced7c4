// Package publish writes a document as a small tree of Markdown pages: an
// index with the whole forest and one page per root.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"hierarchy-cli/internal/model"
)

type WriteOptions struct {
	Overwrite bool
	Render    RenderOptions
}

type WriteResult struct {
	Dir     string   `json:"dir"`
	Written []string `json:"written"`
}

// WriteDocument writes index.md and roots/<id>.md under toDir. It stops on the
// first error; files written before it are kept.
func WriteDocument(doc model.Document, toDir string, opt WriteOptions) (WriteResult, error) {
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	rootsDir := filepath.Join(toDir, "roots")
	if err := os.MkdirAll(rootsDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	indexPath := filepath.Join(toDir, "index.md")
	if err := writeFile(indexPath, []byte(RenderIndexMarkdown(doc, opt.Render)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	written := []string{indexPath}
	for _, root := range doc.Forest.Roots {
		md, err := RenderRootMarkdown(doc, root.ID, opt.Render)
		if err != nil {
			return WriteResult{}, err
		}
		p := filepath.Join(rootsDir, root.ID+".md")
		if err := writeFile(p, []byte(md), opt.Overwrite); err != nil {
			return WriteResult{}, err
		}
		written = append(written, p)
	}

	if err := removeStaleRoots(rootsDir, doc, opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Dir: toDir, Written: written}, nil
}

// removeStaleRoots deletes pages of roots no longer in doc. It only runs when
// overwriting, since a fresh publish never has stale pages.
func removeStaleRoots(rootsDir string, doc model.Document, overwrite bool) error {
	if !overwrite {
		return nil
	}
	keep := make(map[string]bool, len(doc.Forest.Roots))
	for _, r := range doc.Forest.Roots {
		keep[r.ID+".md"] = true
	}
	ents, err := os.ReadDir(rootsDir)
	if err != nil {
		return err
	}
	for _, e := range ents {
		if e.IsDir() || keep[e.Name()] || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		if err := os.Remove(filepath.Join(rootsDir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
