package format

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - yaml
// - edn
// - text (only for values implementing Texter)
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "yaml", "yml":
		return WriteYAML(w, v)
	case "edn":
		return WriteEDN(w, v, pretty)
	case "text":
		t, ok := unwrapTexter(v)
		if !ok {
			return fmt.Errorf("text format is not supported for this command")
		}
		return t.WriteText(w, DefaultStyle())
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// WriteYAML writes v using its yaml tags.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// unwrapTexter accepts a Texter directly or inside a {"data": ...} envelope.
func unwrapTexter(v any) (Texter, bool) {
	if t, ok := v.(Texter); ok {
		return t, true
	}
	if m, ok := v.(map[string]any); ok {
		t, ok := m["data"].(Texter)
		return t, ok
	}
	return nil, false
}
