package main

import (
	"os"
	"strings"

	"hierarchy-cli/internal/cli"
)

// Persistent flags that take a separate value token.
var valueFlags = map[string]bool{
	"--dir":       true,
	"--workspace": true,
	"--format":    true,
}

func isNodeID(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "node-") && len(s) > len("node-")
}

// withShow inserts "nodes show" before argv[i].
func withShow(argv []string, i int) []string {
	out := make([]string, 0, len(argv)+2)
	out = append(out, argv[:i]...)
	out = append(out, "nodes", "show")
	return append(out, argv[i:]...)
}

// rewriteNodeLookupArgs makes `hierarchy <node-id>` behave like
// `hierarchy nodes show <node-id>`. Cobra would treat the id as a subcommand,
// so argv is rewritten before parsing. Leading persistent flags are skipped.
func rewriteNodeLookupArgs(argv []string) []string {
	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		switch {
		case a == "":
			continue
		case a == "--":
			if i+1 < len(argv) && isNodeID(argv[i+1]) {
				return withShow(argv, i+1)
			}
			return argv
		case strings.HasPrefix(a, "-"):
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		case isNodeID(a):
			return withShow(argv, i)
		default:
			return argv
		}
	}
	return argv
}

func main() {
	os.Args = rewriteNodeLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
