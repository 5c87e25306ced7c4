package log

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "debug", Format: "console", Console: &buf})

	WithOperation(WithComponent("editor"), "move").Debug("moved node", slog.String("name", "Old Town"), slog.Int("children", 2))

	line := buf.String()
	for _, want := range []string{"DBG moved node", "app=hierarchy", "component=editor", "op=move", `name="Old Town"`, "children=2"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}

func TestInit_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "warn", Console: &buf})
	L().Info("hidden")
	L().Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("level filtering broken: %q", buf.String())
	}
}

func TestInit_FileLogsAreJSON(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "hierarchy.log")
	Init(Options{Level: "info", Format: "off", File: fpath})

	WithComponent("store").Info("saved", slog.String("kind", "draft"))

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var last string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log %q: %v", last, err)
	}
	if m["app"] != "hierarchy" || m["component"] != "store" || m["msg"] != "saved" || m["kind"] != "draft" {
		t.Fatalf("unexpected log record: %v", m)
	}
}
