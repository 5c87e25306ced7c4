package gitrepo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// FindGitDir walks up from start to the nearest .git. Worktrees and submodules
// use a .git file holding "gitdir: <path>"; that path is returned instead.
func FindGitDir(start string) (gitDir string, ok bool, err error) {
	if strings.TrimSpace(start) == "" {
		return "", false, errors.New("empty start dir")
	}
	dir, err := filepath.Abs(strings.TrimSpace(start))
	if err != nil {
		return "", false, err
	}
	for {
		candidate := filepath.Join(dir, ".git")
		if st, statErr := os.Stat(candidate); statErr == nil {
			if st.IsDir() {
				return candidate, true, nil
			}
			target, err := readGitdirFile(candidate)
			if err != nil {
				return "", false, err
			}
			if target != "" {
				return target, true, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

func readGitdirFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(b)), "\n")
	key, target, ok := strings.Cut(first, ":")
	if !ok || !strings.EqualFold(strings.TrimSpace(key), "gitdir") {
		return "", nil
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return "", nil
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}
	return filepath.Clean(target), nil
}
