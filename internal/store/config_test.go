package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSaveConfig_RoundTripAndBackup(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HIERARCHY_CONFIG_DIR", dir)

	cfg := &GlobalConfig{
		CurrentWorkspace: "geo",
		Workspaces:       map[string]WorkspaceRef{"geo": {Path: "/tmp/geo"}},
		TUI:              &TUIConfig{Glyphs: "ascii"},
	}
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	cfg.CurrentWorkspace = "other"
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("save 2: %v", err)
	}

	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("config mismatch:\n got %+v\nwant %+v", got, cfg)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.json.bak")); err != nil {
		t.Fatalf("expected backup file: %v", err)
	}
}

func TestWorkspaceDir_PrefersRegistry(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HIERARCHY_CONFIG_DIR", dir)

	if err := os.MkdirAll(filepath.Join(dir, "workspaces", "legacy"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := SaveConfig(&GlobalConfig{Workspaces: map[string]WorkspaceRef{"geo": {Path: "/srv/geo"}}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := WorkspaceDir("geo")
	if err != nil || got != "/srv/geo" {
		t.Fatalf("WorkspaceDir(geo) = %q, %v", got, err)
	}
	got, err = WorkspaceDir("legacy")
	if err != nil || got != filepath.Join(dir, "workspaces", "legacy") {
		t.Fatalf("WorkspaceDir(legacy) = %q, %v", got, err)
	}
	if _, err := WorkspaceDir("../x"); err == nil {
		t.Fatalf("expected invalid name error")
	}

	names, err := ListWorkspaces()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"geo", "legacy"}) {
		t.Fatalf("names = %v", names)
	}
}
