package store

import (
	"os"
	"path/filepath"
)

const (
	workspaceDirName = ".hierarchy"
	sqliteFileName   = "hierarchy.sqlite"
)

// Store is a workspace directory holding the sqlite state and small UI state files.
type Store struct {
	Dir string
}

// DiscoverDir walks up from start looking for a .hierarchy directory.
func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, workspaceDirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// DefaultDir returns the discovered workspace dir, or ./.hierarchy.
func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, workspaceDirName), nil
}

// WorkspaceDir resolves a named workspace. Registered paths in config.json win
// over ~/.hierarchy/workspaces/<name>.
func WorkspaceDir(name string) (string, error) {
	name, err := NormalizeWorkspaceName(name)
	if err != nil {
		return "", err
	}
	cfg, err := LoadConfig()
	if err != nil {
		return "", err
	}
	if ref, ok := cfg.Workspaces[name]; ok && ref.Path != "" {
		return filepath.Clean(ref.Path), nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "workspaces", name), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, sqliteFileName)
}

// Exists reports whether the workspace has been initialised.
func (s Store) Exists() bool {
	_, err := os.Stat(s.sqlitePath())
	return err == nil
}
