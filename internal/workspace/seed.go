package workspace

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hierarchy-cli/internal/model"
	"hierarchy-cli/internal/mutate"

	"github.com/BurntSushi/toml"
	gojsonschema "github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed document.schema.json
var documentSchema []byte

// LoadDocumentFile reads a seed document from path. The format follows the
// extension (.json, .yaml/.yml or .toml) and the content must match
// document.schema.json. Names are trimmed and nodes without an id get a fresh
// one.
func LoadDocumentFile(path string) (model.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json", ".yaml", ".yml", ".toml":
	default:
		return model.Document{}, fmt.Errorf("%s: unsupported document format %q (want .json, .yaml or .toml)", path, ext)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, err
	}

	var raw any
	var doc model.Document
	switch ext {
	case ".toml":
		var tbl map[string]any
		if _, err = toml.Decode(string(b), &tbl); err == nil {
			raw = tbl
			_, err = toml.Decode(string(b), &doc)
		}
	case ".json":
		if err = json.Unmarshal(b, &raw); err == nil {
			err = json.Unmarshal(b, &doc)
		}
	default:
		if err = yaml.Unmarshal(b, &raw); err == nil {
			err = yaml.Unmarshal(b, &doc)
		}
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := validateDocument(raw); err != nil {
		return model.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := normalizeDocument(&doc); err != nil {
		return model.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func validateDocument(raw any) error {
	if raw == nil {
		raw = map[string]any{}
	}
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(documentSchema), gojsonschema.NewGoLoader(raw))
	if err != nil {
		return fmt.Errorf("validate document: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("invalid document: %s", strings.Join(msgs, "; "))
}

func normalizeDocument(doc *model.Document) error {
	doc.Label = strings.TrimSpace(doc.Label)
	if doc.Label == "" {
		doc.Label = DefaultDocument().Label
	}
	dims := make([]string, 0, len(doc.Dimensions))
	for _, d := range doc.Dimensions {
		dims = append(dims, strings.TrimSpace(d))
	}
	doc.Dimensions = dims

	seen := map[string]bool{}
	var missing []*model.Node
	var walk func(nodes []*model.Node) error
	walk = func(nodes []*model.Node) error {
		for _, n := range nodes {
			if n == nil {
				return fmt.Errorf("empty node entry")
			}
			n.Name = strings.TrimSpace(n.Name)
			if n.Name == "" {
				return mutate.EmptyNameError{}
			}
			n.ID = strings.TrimSpace(n.ID)
			if n.ID == "" {
				missing = append(missing, n)
			} else if seen[n.ID] {
				return mutate.DuplicateIDError{ID: n.ID}
			} else {
				seen[n.ID] = true
			}
			if err := walk(n.Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(doc.Forest.Roots); err != nil {
		return err
	}
	// Ids are assigned after the walk so generated ones never clash with
	// explicit ids that appear later in the file.
	for _, n := range missing {
		n.ID = mutate.NewNodeID(doc.Forest)
	}
	return nil
}
