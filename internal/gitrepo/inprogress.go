package gitrepo

import (
	"os"
	"path/filepath"
)

type InProgress struct {
	InProgress bool   `json:"inProgress"`
	Kind       string `json:"kind,omitempty"`
}

// DetectInProgress looks for merge/rebase marker files in the git directory
// above dir. Outside a repository it reports nothing in progress.
func DetectInProgress(dir string) (InProgress, error) {
	gitDir, ok, err := FindGitDir(dir)
	if err != nil || !ok {
		return InProgress{}, err
	}

	switch {
	case exists(filepath.Join(gitDir, "MERGE_HEAD")):
		return InProgress{InProgress: true, Kind: "merge"}, nil
	case exists(filepath.Join(gitDir, "rebase-apply")), exists(filepath.Join(gitDir, "rebase-merge")):
		return InProgress{InProgress: true, Kind: "rebase"}, nil
	case exists(filepath.Join(gitDir, "CHERRY_PICK_HEAD")):
		return InProgress{InProgress: true, Kind: "cherry-pick"}, nil
	case exists(filepath.Join(gitDir, "REVERT_HEAD")):
		return InProgress{InProgress: true, Kind: "revert"}, nil
	}
	return InProgress{}, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
