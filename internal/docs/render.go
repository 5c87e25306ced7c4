package docs

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

var (
	rendererMu sync.Mutex
	// Keyed by style and wrap width. WithAutoStyle is avoided: its terminal
	// background query can block inside the alt screen.
	renderers = map[string]*glamour.TermRenderer{}
)

// Style returns the glamour style name: HIERARCHY_MARKDOWN_STYLE or "dark".
func Style() string {
	if v := strings.TrimSpace(os.Getenv("HIERARCHY_MARKDOWN_STYLE")); v != "" {
		return v
	}
	return styles.DarkStyle
}

// Render renders markdown for a terminal of the given width. On renderer
// failure the input is returned unchanged.
func Render(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	width = max(width, 10)
	style := Style()
	key := style + ":" + strconv.Itoa(width)

	rendererMu.Lock()
	r := renderers[key]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			rendererMu.Unlock()
			return md
		}
		renderers[key] = rr
		r = rr
	}
	rendererMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
