package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrInProgress is returned when the repository is mid merge or rebase.
var ErrInProgress = errors.New("git repo has an in-progress merge/rebase; resolve first")

// CommitPaths stages paths (files or directories under dir's repository) and
// commits them. It returns committed=false when dir is not in a repository or
// nothing changed.
func CommitPaths(ctx context.Context, dir string, paths []string, message string) (committed bool, err error) {
	st, err := GetStatus(ctx, dir)
	if err != nil {
		return false, err
	}
	if !st.IsRepo {
		return false, nil
	}
	if st.Unmerged || st.InProgress {
		return false, ErrInProgress
	}

	rels, err := repoRelative(st.Root, paths)
	if err != nil {
		return false, err
	}
	if len(rels) == 0 {
		return false, nil
	}
	// -A also stages deletions under the given paths.
	if _, err := git(ctx, st.Root, append([]string{"add", "-A", "--"}, rels...)...); err != nil {
		return false, err
	}

	out, err := git(ctx, st.Root, append([]string{"diff", "--cached", "--name-only", "--"}, rels...)...)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(out) == "" {
		return false, nil
	}

	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = fmt.Sprintf("hierarchy: publish (%s)", time.Now().UTC().Format(time.RFC3339))
	}
	if _, err := git(ctx, st.Root, append([]string{"commit", "-m", msg, "--"}, rels...)...); err != nil {
		return false, err
	}
	return true, nil
}

// ApplyMessage is the commit message for publishing an apply of label with the
// given change summaries (oldest first).
func ApplyMessage(label string, summaries []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "hierarchy: apply %q (%d change", strings.TrimSpace(label), len(summaries))
	if len(summaries) != 1 {
		b.WriteString("s")
	}
	b.WriteString(")")
	if len(summaries) > 0 {
		b.WriteString("\n\n")
		for _, s := range summaries {
			b.WriteString("- ")
			b.WriteString(strings.TrimSpace(s))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// repoRelative maps existing paths to paths relative to root. Symlinks are
// resolved on both sides since git reports a canonical root (macOS /var vs
// /private/var).
func repoRelative(root string, paths []string) ([]string, error) {
	if v, err := filepath.EvalSymlinks(root); err == nil {
		root = v
	}
	var out []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(abs); err != nil {
			continue
		}
		if v, err := filepath.EvalSymlinks(abs); err == nil {
			abs = v
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			return nil, err
		}
		if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("%s is outside repository %s", p, root)
		}
		out = append(out, filepath.Clean(rel))
	}
	return out, nil
}
