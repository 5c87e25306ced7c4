package tui

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"hierarchy-cli/internal/drag"
	"hierarchy-cli/internal/layout"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// Terminal metrics for the scene: one layout column is cellColW cells wide and
// one unit of layout y is rowsPerUnit rows, so half-step parent rows land on a
// whole row.
const (
	cellBoxW    = 20
	cellGapW    = 6
	cellColW    = cellBoxW + cellGapW
	rowsPerUnit = 2
)

// decoration is the interaction state drawn on top of the scene.
type decoration struct {
	Selected string
	Cursor   string
	Matches  map[string]bool
	Drag     drag.Session
}

type nodeCell struct {
	Row, Col int
}

type canvas struct {
	Header string
	Lines  []string
	Width  int
	Cells  map[string]nodeCell
}

func nodeRow(y float64) int { return int(math.Round(y * rowsPerUnit)) }

func nodeCol(level int) int { return level * cellColW }

// fitCell truncates s to w cells and pads it with spaces.
func fitCell(s string, w int) string {
	if xansi.StringWidth(s) > w {
		s = xansi.Truncate(s, w, "…")
	}
	if pad := w - xansi.StringWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

func nodeLabel(n layout.PlacedNode) string {
	prefix := "  "
	suffix := ""
	if n.HasChildren {
		prefix = glyphTwistyExpanded() + " "
		if n.Collapsed {
			prefix = glyphTwistyCollapsed() + " "
			if n.Hidden > 0 {
				suffix = " +" + strconv.Itoa(n.Hidden)
			}
		}
	}
	name := n.Name
	room := cellBoxW - 2 - xansi.StringWidth(prefix) - xansi.StringWidth(suffix)
	if xansi.StringWidth(name) > room {
		name = xansi.Truncate(name, max(room, 1), "…")
	}
	return "[" + fitCell(prefix+name+suffix, cellBoxW-2) + "]"
}

func nodeStyle(id string, d decoration) lipgloss.Style {
	switch {
	case d.Drag.State == drag.Dragging && id == d.Drag.DraggingID:
		return styleMuted()
	case d.Drag.State == drag.Dragging && id == d.Drag.DropTargetID:
		return styleDropOK()
	case d.Drag.State == drag.Dragging && d.Drag.Rejected && id == d.Cursor:
		return styleDropBad()
	case id == d.Selected:
		return styleSelected()
	case d.Matches[id]:
		return styleMatch()
	default:
		return styleNode()
	}
}

// renderCanvas draws the scene as text: a header row with the dimension
// labels, then node boxes joined by orthogonal connectors.
func renderCanvas(sc layout.Scene, d decoration) canvas {
	c := canvas{Cells: make(map[string]nodeCell, len(sc.Nodes))}

	rows := 0
	for _, n := range sc.Nodes {
		cell := nodeCell{Row: nodeRow(n.Y), Col: nodeCol(n.Level)}
		c.Cells[n.ID] = cell
		rows = max(rows, cell.Row+1)
		c.Width = max(c.Width, cell.Col+cellBoxW)
	}
	for _, h := range sc.Headers {
		c.Width = max(c.Width, nodeCol(h.Level)+cellBoxW)
	}

	grid := make([][]int, rows)
	for i := range grid {
		grid[i] = make([]int, c.Width)
	}
	link := func(x1, y1, x2, y2 int) {
		switch {
		case x2 == x1+1:
			grid[y1][x1] |= lineRight
			grid[y2][x2] |= lineLeft
		case x2 == x1-1:
			grid[y1][x1] |= lineLeft
			grid[y2][x2] |= lineRight
		case y2 == y1+1:
			grid[y1][x1] |= lineDown
			grid[y2][x2] |= lineUp
		case y2 == y1-1:
			grid[y1][x1] |= lineUp
			grid[y2][x2] |= lineDown
		}
	}
	for _, e := range sc.Edges {
		p, okP := c.Cells[e.ParentID]
		ch, okC := c.Cells[e.ChildID]
		if !okP || !okC {
			continue
		}
		x0 := p.Col + cellBoxW
		mid := x0 + cellGapW/2 - 1
		x1 := ch.Col - 1
		grid[p.Row][x0] |= lineLeft
		for x := x0; x < mid; x++ {
			link(x, p.Row, x+1, p.Row)
		}
		step := 1
		if ch.Row < p.Row {
			step = -1
		}
		for y := p.Row; y != ch.Row; y += step {
			link(mid, y, mid, y+step)
		}
		for x := mid; x < x1; x++ {
			link(x, ch.Row, x+1, ch.Row)
		}
		grid[ch.Row][x1] |= lineRight
	}

	type span struct {
		col  int
		text string
		st   lipgloss.Style
	}
	spans := make([][]span, rows)
	for _, n := range sc.Nodes {
		cell := c.Cells[n.ID]
		spans[cell.Row] = append(spans[cell.Row], span{col: cell.Col, text: nodeLabel(n), st: nodeStyle(n.ID, d)})
	}

	edge := styleEdge()
	c.Lines = make([]string, rows)
	for y := 0; y < rows; y++ {
		sort.Slice(spans[y], func(i, j int) bool { return spans[y][i].col < spans[y][j].col })
		var b strings.Builder
		var run strings.Builder
		flush := func() {
			if run.Len() > 0 {
				b.WriteString(edge.Render(run.String()))
				run.Reset()
			}
		}
		next := 0
		for x := 0; x < c.Width; {
			if next < len(spans[y]) && spans[y][next].col == x {
				flush()
				b.WriteString(spans[y][next].st.Render(spans[y][next].text))
				x += cellBoxW
				next++
				continue
			}
			run.WriteRune(glyphLine(grid[y][x]))
			x++
		}
		flush()
		c.Lines[y] = strings.TrimRight(b.String(), " ")
	}

	var hb strings.Builder
	col := 0
	headers := append([]layout.Header(nil), sc.Headers...)
	sort.Slice(headers, func(i, j int) bool { return headers[i].Level < headers[j].Level })
	for _, h := range headers {
		at := nodeCol(h.Level)
		if at > col {
			hb.WriteString(strings.Repeat(" ", at-col))
		}
		hb.WriteString(styleHeader().Render(fitCell(h.Label, cellBoxW)))
		col = at + cellBoxW
	}
	c.Header = hb.String()
	return c
}

// viewport is the scroll offset of the canvas.
type viewport struct {
	Row, Col int
}

// follow scrolls vp so that the node cell at focus stays inside w x h.
func (vp viewport) follow(focus nodeCell, ok bool, w, h int) viewport {
	if !ok || w <= 0 || h <= 0 {
		return vp
	}
	if focus.Row < vp.Row {
		vp.Row = focus.Row
	} else if focus.Row >= vp.Row+h {
		vp.Row = focus.Row - h + 1
	}
	if focus.Col < vp.Col {
		vp.Col = focus.Col
	} else if focus.Col+cellBoxW > vp.Col+w {
		vp.Col = focus.Col + cellBoxW - w
	}
	vp.Row = max(vp.Row, 0)
	vp.Col = max(vp.Col, 0)
	return vp
}

// crop returns the w x h window of c at vp; the header scrolls horizontally only.
func (c canvas) crop(vp viewport, w, h int) (header string, body []string) {
	cut := func(s string) string {
		if vp.Col == 0 && xansi.StringWidth(s) <= w {
			return s
		}
		return xansi.Cut(s, vp.Col, vp.Col+w)
	}
	header = cut(c.Header)
	body = make([]string, 0, h)
	for y := vp.Row; y < len(c.Lines) && len(body) < h; y++ {
		body = append(body, cut(c.Lines[y]))
	}
	return header, body
}
