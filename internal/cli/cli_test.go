package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()
	cmd := NewRootCmd()
	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// isolate keeps config.json reads and writes inside a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	cfg := t.TempDir()
	t.Setenv("HIERARCHY_CONFIG_DIR", cfg)
	t.Setenv("HIERARCHY_LOG_FORMAT", "off")
	t.Setenv("HIERARCHY_DIR", "")
	t.Setenv("HIERARCHY_WORKSPACE", "")
	t.Setenv("HIERARCHY_FORMAT", "")
	return cfg
}

func mustData(t *testing.T, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("hierarchy %v: %v\nstderr:\n%s", args, err, stderr)
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("decode %v: %v\n%s", args, err, stdout)
	}
	data, ok := env["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected object data for %v, got %#v", args, env["data"])
	}
	return data
}

func addNode(t *testing.T, dir, name, parent string) string {
	t.Helper()
	args := []string{"--dir", dir, "nodes", "add", name}
	if parent != "" {
		args = append(args, "--parent", parent)
	}
	id, _ := mustData(t, args...)["id"].(string)
	if id == "" {
		t.Fatalf("nodes add %q returned no id", name)
	}
	return id
}

func TestInit_Twice(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	data := mustData(t, "--dir", dir, "init", "--label", "Places", "--dims", "Region,City")
	doc, _ := data["document"].(map[string]any)
	if doc["label"] != "Places" || len(doc["dimensions"].([]any)) != 2 {
		t.Fatalf("unexpected document: %#v", doc)
	}
	if id, _ := data["workspaceId"].(string); id == "" {
		t.Fatalf("expected workspace id")
	}
	if _, _, err := runCLI(t, []string{"--dir", dir, "init"}); err == nil {
		t.Fatalf("expected second init to fail")
	}
}

func TestInit_FromTOML(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	seed := filepath.Join(t.TempDir(), "places.toml")
	body := "label = \"Places\"\ndimensions = [\"Region\", \"City\"]\n\n[[forest.roots]]\nname = \"North\"\n\n[[forest.roots.children]]\nname = \"Oslo\"\n"
	if err := os.WriteFile(seed, []byte(body), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	data := mustData(t, "--dir", dir, "init", "--from", seed, "--dims", "Area")
	doc, _ := data["document"].(map[string]any)
	if doc["label"] != "Places" || len(doc["dimensions"].([]any)) != 1 {
		t.Fatalf("unexpected document: %#v", doc)
	}
	roots := doc["forest"].(map[string]any)["roots"].([]any)
	north := roots[0].(map[string]any)
	if north["name"] != "North" || north["id"] == "" || len(north["children"].([]any)) != 1 {
		t.Fatalf("unexpected seeded roots: %#v", roots)
	}

	_, stderr, err := runCLI(t, []string{"--dir", t.TempDir(), "init", "--from", filepath.Join(dir, "missing.ini")})
	if err == nil || !strings.Contains(string(stderr), "unsupported") {
		t.Fatalf("expected unsupported format error, got err=%v stderr=%s", err, stderr)
	}
}

func TestRoot_CanvasNeedsTerminal(t *testing.T) {
	isolate(t)
	if isTerminal(os.Stdin) && isTerminal(os.Stdout) {
		t.Skip("attached to a terminal")
	}
	_, stderr, err := runCLI(t, []string{"--dir", t.TempDir()})
	if err == nil || !strings.Contains(string(stderr), "interactive terminal") {
		t.Fatalf("expected terminal error, got err=%v stderr=%s", err, stderr)
	}
}

func TestCommands_RequireInit(t *testing.T) {
	isolate(t)
	_, stderr, err := runCLI(t, []string{"--dir", t.TempDir(), "show"})
	if err == nil || !strings.Contains(string(stderr), "hierarchy init") {
		t.Fatalf("expected init hint, got err=%v stderr=%s", err, stderr)
	}
}

func TestServe_TerminalRequiresWrites(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	mustData(t, "--dir", dir, "init")
	_, stderr, err := runCLI(t, []string{"--dir", dir, "serve", "--terminal", "--read-only"})
	if err == nil || !strings.Contains(string(stderr), "--read-only") {
		t.Fatalf("expected flag conflict, got err=%v stderr=%s", err, stderr)
	}
}

func TestMoveAndCycle(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	mustData(t, "--dir", dir, "init", "--dims", "Region,City,District")
	a := addNode(t, dir, "A", "")
	b := addNode(t, dir, "B", a)
	c := addNode(t, dir, "C", a)

	moved := mustData(t, "--dir", dir, "nodes", "move", c, "--to", b)
	if moved["parentId"] != b || moved["level"].(float64) != 2 || moved["dimension"] != "District" {
		t.Fatalf("unexpected move result: %#v", moved)
	}

	_, stderr, err := runCLI(t, []string{"--dir", dir, "nodes", "move", a, "--to", c})
	if err == nil || !strings.Contains(string(stderr), "descendant") {
		t.Fatalf("expected cycle rejection, got err=%v stderr=%s", err, stderr)
	}

	path := mustPath(t, dir, c)
	if strings.Join(path, "/") != "A/B/C" {
		t.Fatalf("path = %v", path)
	}

	stdout, _, err := runCLI(t, []string{"--dir", dir, "--format", "text", "history"})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	out := string(stdout)
	if !strings.HasPrefix(out, "draft: 4 pending") || !strings.Contains(out, `Moved "C" under "B"`) {
		t.Fatalf("unexpected history:\n%s", out)
	}
}

func mustPath(t *testing.T, dir, id string) []string {
	t.Helper()
	stdout, stderr, err := runCLI(t, []string{"--dir", dir, "nodes", "path", id})
	if err != nil {
		t.Fatalf("path: %v\n%s", err, stderr)
	}
	var env struct {
		Data []struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("decode path: %v", err)
	}
	out := []string{}
	for _, s := range env.Data {
		out = append(out, s.Name)
	}
	return out
}

func TestDelete_ReassignAndCascade(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	mustData(t, "--dir", dir, "init", "--dims", "Region,City")
	a := addNode(t, dir, "A", "")
	addNode(t, dir, "B", a)
	addNode(t, dir, "C", a)
	d := addNode(t, dir, "D", "")

	plan := mustData(t, "--dir", dir, "nodes", "candidates", a)
	cands, _ := plan["candidates"].([]any)
	if len(cands) != 1 || cands[0].(map[string]any)["id"] != d {
		t.Fatalf("unexpected candidates: %#v", plan)
	}

	mustData(t, "--dir", dir, "nodes", "delete", a, "--reassign-to", d)
	got := mustData(t, "--dir", dir, "nodes", "show", d)
	if kids, _ := got["childIds"].([]any); len(kids) != 2 {
		t.Fatalf("expected D to own B and C: %#v", got)
	}

	mustData(t, "--dir", dir, "nodes", "delete", d)
	stdout, _, err := runCLI(t, []string{"--dir", dir, "--format", "text", "show"})
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if strings.Contains(string(stdout), "- ") {
		t.Fatalf("expected empty forest:\n%s", stdout)
	}
}

func TestDelete_ReassignLeafRejected(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	mustData(t, "--dir", dir, "init")
	a := addNode(t, dir, "A", "")
	d := addNode(t, dir, "D", "")
	if _, _, err := runCLI(t, []string{"--dir", dir, "nodes", "delete", a, "--reassign-to", d}); err == nil {
		t.Fatalf("expected reassign of a leaf to fail")
	}
	if _, _, err := runCLI(t, []string{"--dir", dir, "nodes", "show", a}); err != nil {
		t.Fatalf("leaf must survive a rejected delete: %v", err)
	}
}

func TestShowText_CollapseAndReveal(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	mustData(t, "--dir", dir, "init", "--label", "Places", "--dims", "Region,City")
	north := addNode(t, dir, "North", "")
	addNode(t, dir, "Oslo", north)

	mustData(t, "--dir", dir, "collapse", north)
	stdout, _, err := runCLI(t, []string{"--dir", dir, "--format", "text", "show"})
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(string(stdout), "North (Region) [+1]") || strings.Contains(string(stdout), "Oslo") {
		t.Fatalf("expected collapsed North:\n%s", stdout)
	}

	res := mustData(t, "--dir", dir, "search", "OSL", "--reveal")
	if m, _ := res["matches"].([]any); len(m) != 1 {
		t.Fatalf("matches = %#v", res["matches"])
	}
	stdout, _, _ = runCLI(t, []string{"--dir", dir, "--format", "text", "show"})
	if !strings.Contains(string(stdout), "Oslo (City)") {
		t.Fatalf("expected Oslo revealed:\n%s", stdout)
	}

	// View changes are not draft changes.
	st := mustData(t, "--dir", dir, "status")
	if st["status"].(map[string]any)["pending"].(float64) != 2 {
		t.Fatalf("status = %#v", st)
	}
}

func TestSearch_Literal(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	mustData(t, "--dir", dir, "init")
	addNode(t, dir, "a+b(c)", "")
	addNode(t, dir, "abc", "")

	res := mustData(t, "--dir", dir, "search", "A+B(")
	m, _ := res["matches"].([]any)
	if len(m) != 1 || m[0].(map[string]any)["name"] != "a+b(c)" {
		t.Fatalf("matches = %#v", res["matches"])
	}
	res = mustData(t, "--dir", dir, "search", "   ")
	if m, _ := res["matches"].([]any); len(m) != 0 {
		t.Fatalf("blank query must match nothing: %#v", m)
	}
}

func TestDimsAndLabel(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	mustData(t, "--dir", dir, "init", "--dims", "Region")

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "add", args: []string{"dims", "add", "City"}},
		{name: "rename", args: []string{"dims", "rename", "2", "Town"}},
		{name: "rename level zero", args: []string{"dims", "rename", "0", "X"}, wantErr: true},
		{name: "rename missing level", args: []string{"dims", "rename", "9", "X"}, wantErr: true},
		{name: "rename empty", args: []string{"dims", "rename", "1", "  "}, wantErr: true},
		{name: "label", args: []string{"label", "set", "Places"}},
		{name: "label empty", args: []string{"label", "set", ""}, wantErr: true},
	}
	for _, tc := range tests {
		_, _, err := runCLI(t, append([]string{"--dir", dir}, tc.args...))
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: err=%v wantErr=%v", tc.name, err, tc.wantErr)
		}
	}

	stdout, _, err := runCLI(t, []string{"--dir", dir, "--format", "yaml", "dims", "list"})
	if err != nil {
		t.Fatalf("dims list: %v", err)
	}
	if !strings.Contains(string(stdout), "label: Town") {
		t.Fatalf("unexpected dims:\n%s", stdout)
	}
}

func TestApply_ClearsPending(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	mustData(t, "--dir", dir, "init", "--label", "Places")
	addNode(t, dir, "A", "")

	res := mustData(t, "--dir", dir, "apply")
	if res["changes"].(float64) != 1 {
		t.Fatalf("apply = %#v", res)
	}
	st := mustData(t, "--dir", dir, "status")["status"].(map[string]any)
	if st["dirty"] != false || st["applied"].(map[string]any)["label"] != "Places" {
		t.Fatalf("status after apply = %#v", st)
	}

	stdout, _, err := runCLI(t, []string{"--dir", dir, "history", "--applied"})
	if err != nil {
		t.Fatalf("history --applied: %v", err)
	}
	var env struct {
		Data []struct {
			Label   string `json:"label"`
			Changes int    `json:"changes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(stdout, &env); err != nil || len(env.Data) != 1 || env.Data[0].Changes != 1 {
		t.Fatalf("applied log = %s (%v)", stdout, err)
	}
}

func TestApply_PublishesMarkdown(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	mustData(t, "--dir", dir, "init", "--label", "Places", "--dims", "Region,City")
	north := addNode(t, dir, "North", "")
	addNode(t, dir, "Oslo", north)

	if _, _, err := runCLI(t, []string{"--dir", dir, "apply", "--commit"}); err == nil {
		t.Fatalf("expected --commit without --publish to fail")
	}

	pub := filepath.Join(t.TempDir(), "site")
	res := mustData(t, "--dir", dir, "apply", "--publish", pub, "--commit")
	if res["changes"].(float64) != 2 || res["committed"] != false {
		t.Fatalf("apply = %#v", res)
	}
	index, err := os.ReadFile(filepath.Join(pub, "index.md"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if !strings.Contains(string(index), "# Places") || !strings.Contains(string(index), "  - Oslo _City_") {
		t.Fatalf("index.md:\n%s", index)
	}
	if _, err := os.Stat(filepath.Join(pub, "roots", north+".md")); err != nil {
		t.Fatalf("root page: %v", err)
	}

	// A second apply replaces the earlier publish.
	mustData(t, "--dir", dir, "apply", "--publish", pub)
}

func TestApply_CommitsInsideRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	isolate(t)
	dir := t.TempDir()
	mustData(t, "--dir", dir, "init", "--label", "Places")
	addNode(t, dir, "North", "")

	repo := t.TempDir()
	for _, args := range [][]string{
		{"init"},
		{"config", "user.email", "test@example.com"},
		{"config", "user.name", "Test"},
		{"config", "commit.gpgsign", "false"},
	} {
		if out, err := exec.Command("git", append([]string{"-C", repo}, args...)...).CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	pub := filepath.Join(repo, "published")
	res := mustData(t, "--dir", dir, "apply", "--publish", pub, "--commit")
	commit, _ := res["commit"].(map[string]any)
	if res["committed"] != true || commit["head"] == "" {
		t.Fatalf("apply = %#v", res)
	}
	msg, err := exec.Command("git", "-C", repo, "log", "-1", "--format=%B").Output()
	if err != nil {
		t.Fatalf("git log: %v", err)
	}
	if !strings.HasPrefix(string(msg), `hierarchy: apply "Places" (1 change)`) || !strings.Contains(string(msg), `- Added level 1 "North"`) {
		t.Fatalf("commit message:\n%s", msg)
	}
}

func TestExportMarkdown(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	mustData(t, "--dir", dir, "init", "--label", "Places")
	addNode(t, dir, "North", "")

	to := t.TempDir()
	res := mustData(t, "--dir", dir, "export", "markdown", "--to", to, "--ids")
	if written, _ := res["written"].([]any); len(written) != 2 {
		t.Fatalf("export = %#v", res)
	}
	if _, _, err := runCLI(t, []string{"--dir", dir, "export", "markdown", "--to", to}); err == nil {
		t.Fatalf("expected existing pages to need --overwrite")
	}
	mustData(t, "--dir", dir, "export", "markdown", "--to", to, "--overwrite")
}

func TestExportPDF(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	mustData(t, "--dir", dir, "init", "--dims", "Region,City")
	a := addNode(t, dir, "North", "")
	addNode(t, dir, "Oslo", a)

	out := filepath.Join(t.TempDir(), "nested", "places.pdf")
	res := mustData(t, "--dir", dir, "export", "pdf", "--out", out)
	if res["nodes"].(float64) != 2 {
		t.Fatalf("export = %#v", res)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Fatalf("not a pdf: %q", b[:min(len(b), 8)])
	}
}

func TestWorkspace_UseAndCurrent(t *testing.T) {
	cfg := isolate(t)
	mustData(t, "--workspace", "demo", "init")

	cur := mustData(t, "workspace", "current")
	if cur["workspace"] != "demo" || cur["initialized"] != true {
		t.Fatalf("current = %#v", cur)
	}
	if want := filepath.Join(cfg, "workspaces", "demo"); cur["dir"] != want {
		t.Fatalf("dir = %v, want %s", cur["dir"], want)
	}

	other := t.TempDir()
	mustData(t, "workspace", "add", "other", "--dir", other, "--use")
	cur = mustData(t, "workspace", "current")
	if cur["workspace"] != "other" || cur["initialized"] != false {
		t.Fatalf("current after add = %#v", cur)
	}

	if _, _, err := runCLI(t, []string{"workspace", "use", "a/b"}); err == nil {
		t.Fatalf("expected invalid workspace name to fail")
	}
}

func TestDocs(t *testing.T) {
	isolate(t)
	data := mustData(t, "docs")
	topics, _ := data["topics"].([]any)
	if len(topics) == 0 {
		t.Fatalf("expected topics")
	}
	stdout, _, err := runCLI(t, []string{"docs", "editing", "--raw"})
	if err != nil || !strings.HasPrefix(string(stdout), "#") {
		t.Fatalf("docs --raw: %v\n%s", err, stdout)
	}
	if _, _, err := runCLI(t, []string{"docs", "nope"}); err == nil {
		t.Fatalf("expected unknown topic to fail")
	}
}
