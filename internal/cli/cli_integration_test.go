//go:build integration

package cli

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func TestCLIIntegrationSmoke(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	mustRun := func(args ...string) map[string]any {
		t.Helper()
		stdout, stderr, err := runCLI(t, args)
		if err != nil {
			t.Fatalf("command failed: hierarchy %v\nerr: %v\nstderr:\n%s\nstdout:\n%s", args, err, string(stderr), string(stdout))
		}
		var env map[string]any
		if err := json.Unmarshal(stdout, &env); err != nil {
			t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s\nargs: %v", err, string(stdout), args)
		}
		if _, ok := env["data"]; !ok {
			t.Fatalf("expected JSON envelope to contain data key; got: %v\nstdout:\n%s", env, string(stdout))
		}
		return env
	}
	idOf := func(env map[string]any) string {
		t.Helper()
		id, _ := env["data"].(map[string]any)["id"].(string)
		if id == "" {
			t.Fatalf("expected node id; got: %#v", env["data"])
		}
		return id
	}

	mustRun("--dir", dir, "init", "--label", "Org", "--dims", "Division,Team")

	eng := idOf(mustRun("--dir", dir, "nodes", "add", "Engineering"))
	ops := idOf(mustRun("--dir", dir, "nodes", "add", "Operations"))
	web := idOf(mustRun("--dir", dir, "nodes", "add", "Web", "--parent", eng))
	infra := idOf(mustRun("--dir", dir, "nodes", "add", "--parent", eng))
	mustRun("--dir", dir, "nodes", "rename", infra, "Infra")

	// Default names are disambiguated against siblings.
	n1 := mustRun("--dir", dir, "nodes", "add", "--parent", ops)
	n2 := mustRun("--dir", dir, "nodes", "add", "--parent", ops)
	if n1["data"].(map[string]any)["name"] != "New Team" || n2["data"].(map[string]any)["name"] == "New Team" {
		t.Fatalf("unexpected default names: %#v / %#v", n1["data"], n2["data"])
	}

	mustRun("--dir", dir, "nodes", "move", web, "--to", ops)
	mustRun("--dir", dir, "collapse", "--all")
	mustRun("--dir", dir, "expand", ops)
	mustRun("--dir", dir, "search", "infra", "--reveal")

	scene := mustRun("--dir", dir, "layout")["data"].(map[string]any)
	if nodes, _ := scene["nodes"].([]any); len(nodes) != 6 {
		t.Fatalf("expected every node visible after reveal; got %d", len(nodes))
	}

	plan := mustRun("--dir", dir, "nodes", "candidates", eng)["data"].(map[string]any)
	if modes, _ := plan["modes"].([]any); len(modes) != 2 {
		t.Fatalf("expected cascade and reassign modes: %#v", plan)
	}
	mustRun("--dir", dir, "nodes", "delete", eng, "--reassign-to", ops)

	for _, format := range []string{"yaml", "edn", "text"} {
		stdout, stderr, err := runCLI(t, []string{"--dir", dir, "--format", format, "history"})
		if err != nil || len(stdout) == 0 {
			t.Fatalf("history --format %s: %v\n%s", format, err, stderr)
		}
	}

	mustRun("--dir", dir, "export", "pdf", "--out", filepath.Join(t.TempDir(), "org.pdf"))
	mustRun("--dir", dir, "apply")

	stdout, _, err := runCLI(t, []string{"--dir", dir, "--format", "text", "status"})
	if err != nil || !strings.HasPrefix(string(stdout), "clean") {
		t.Fatalf("expected clean status after apply: %v\n%s", err, stdout)
	}
}
