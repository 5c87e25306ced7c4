package tui

import (
	"context"

	"hierarchy-cli/internal/workspace"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	// Workspace is the workspace name shown in the title bar.
	Workspace string
	// Glyphs is the configured glyph set ("unicode" or "ascii").
	Glyphs string
}

// Run opens the canvas editor on ws until the user quits.
func Run(ctx context.Context, ws *workspace.Workspace, opts Options) error {
	applyColorProfilePreference()
	applyThemePreference()
	applyGlyphPreference(opts.Glyphs)

	m := newModel(ctx, ws, opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
