// Package gitrepo commits published hierarchy pages when they live inside a
// git working tree. It shells out to the git binary.
package gitrepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

type Status struct {
	IsRepo bool `json:"isRepo"`

	Root   string `json:"root,omitempty"`
	Branch string `json:"branch,omitempty"`
	Head   string `json:"head,omitempty"`

	Dirty    bool `json:"dirty"`
	Unmerged bool `json:"unmerged"`

	InProgress     bool   `json:"inProgress"`
	InProgressKind string `json:"inProgressKind,omitempty"` // merge|rebase|cherry-pick|revert
}

// GetStatus describes the repository containing dir. A directory outside any
// repository yields IsRepo=false and no error.
func GetStatus(ctx context.Context, dir string) (Status, error) {
	root, err := git(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return Status{IsRepo: false}, nil
	}
	root = strings.TrimSpace(root)
	if root == "" {
		return Status{}, errors.New("git rev-parse returned empty root")
	}

	branch, _ := git(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	head, _ := git(ctx, dir, "rev-parse", "--short", "HEAD")
	porcelain, _ := git(ctx, dir, "status", "--porcelain=v1")
	dirty, unmerged := parsePorcelain(porcelain)

	ip, err := DetectInProgress(dir)
	if err != nil {
		return Status{}, err
	}

	return Status{
		IsRepo: true,
		Root:   root,

		Branch: strings.TrimSpace(branch),
		Head:   strings.TrimSpace(head),

		Dirty:    dirty,
		Unmerged: unmerged,

		InProgress:     ip.InProgress,
		InProgressKind: ip.Kind,
	}, nil
}

func git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return stdout.String(), nil
}

func parsePorcelain(out string) (dirty bool, unmerged bool) {
	for _, ln := range strings.Split(out, "\n") {
		ln = strings.TrimRight(ln, "\r")
		if len(ln) < 2 {
			continue
		}
		xy := ln[:2]
		if strings.TrimSpace(xy) == "" {
			continue
		}
		dirty = true
		if isUnmergedXY(xy) {
			unmerged = true
		}
	}
	return dirty, unmerged
}

func isUnmergedXY(xy string) bool {
	if len(xy) != 2 {
		return false
	}
	switch xy {
	case "DD", "AU", "UD", "UA", "DU", "AA", "UU":
		return true
	}
	return xy[0] == 'U' || xy[1] == 'U'
}
