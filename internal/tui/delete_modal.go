package tui

import (
	"fmt"

	"hierarchy-cli/internal/mutate"

	"github.com/charmbracelet/bubbles/list"
)

// deleteOption is one row of the delete dialog.
type deleteOption struct {
	title    string
	desc     string
	mode     mutate.DeleteMode
	targetID string
}

func (o deleteOption) Title() string       { return o.title }
func (o deleteOption) Description() string { return o.desc }
func (o deleteOption) FilterValue() string { return o.title }

// deleteOptions lists cascade first, then one reassign row per candidate.
func deleteOptions(p mutate.DeletePlan) []list.Item {
	cascade := deleteOption{title: fmt.Sprintf("Delete %q", p.Name), mode: mutate.DeleteModeCascade}
	if p.Descendants > 0 {
		cascade.title = fmt.Sprintf("Delete %q and everything below it", p.Name)
		cascade.desc = fmt.Sprintf("removes %d descendant(s)", p.Descendants)
	}
	items := []list.Item{cascade}
	for _, c := range p.Candidates {
		items = append(items, deleteOption{
			title:    "Move children to " + c.Label,
			desc:     fmt.Sprintf("then delete %q", p.Name),
			mode:     mutate.DeleteModeReassign,
			targetID: c.ID,
		})
	}
	return items
}

func newDeleteList(p mutate.DeletePlan, width, height int) list.Model {
	l := list.New(deleteOptions(p), list.NewDefaultDelegate(), width, height)
	l.Title = fmt.Sprintf("Delete %q", p.Name)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	if p.HasChildren && len(p.Candidates) == 0 {
		l.NewStatusMessage("No node at the same level can take the children.")
	}
	return l
}
