package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const viewStateFileName = "view_state.json"

// ViewState stores collapse and selection so the canvas reopens where it was left.
//
// It is best effort: callers tolerate missing or invalid data, and ids that no
// longer exist are dropped by the editor on restore.
type ViewState struct {
	Version   int      `json:"version"`
	Collapsed []string `json:"collapsed,omitempty"`
	Selected  string   `json:"selected,omitempty"`
}

func (s Store) viewStatePath() string {
	return filepath.Join(s.Dir, viewStateFileName)
}

func (s Store) LoadViewState() (*ViewState, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return &ViewState{Version: 1}, nil
	}
	b, err := os.ReadFile(s.viewStatePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ViewState{Version: 1}, nil
		}
		return nil, err
	}
	var st ViewState
	if err := json.Unmarshal(b, &st); err != nil {
		// Corrupted state is treated as missing.
		return &ViewState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

func (s Store) SaveViewState(st *ViewState) error {
	if st == nil || strings.TrimSpace(s.Dir) == "" {
		return nil
	}
	if err := s.Ensure(); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	sort.Strings(st.Collapsed)
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(s.Dir, viewStateFileName+".*.tmp", s.viewStatePath(), b, 0o644)
}
