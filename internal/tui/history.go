package tui

import (
	"fmt"
	"strings"

	"hierarchy-cli/internal/docs"
	hmodel "hierarchy-cli/internal/model"
)

const historyTimeLayout = "2006-01-02 15:04"

// historyMarkdown renders the change ledger newest first.
func historyMarkdown(label string, entries []hmodel.ChangeEntry, st hmodel.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", label)
	switch {
	case st.Dirty:
		fmt.Fprintf(&b, "**Draft:** %d pending change(s).", st.Pending)
	default:
		b.WriteString("**Clean:** nothing to apply.")
	}
	if st.Applied != nil {
		fmt.Fprintf(&b, " Last applied as *%s* at %s.", st.Applied.Label, st.Applied.At.Local().Format(historyTimeLayout))
	}
	b.WriteString("\n\n")
	if len(entries) == 0 {
		b.WriteString("_No changes since the last apply._\n")
		return b.String()
	}
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		fmt.Fprintf(&b, "- `%s` %s\n", e.TS.Local().Format(historyTimeLayout), e.Summary)
	}
	return b.String()
}

func renderHistory(label string, entries []hmodel.ChangeEntry, st hmodel.Status, width int) string {
	return docs.Render(historyMarkdown(label, entries, st), width)
}
