package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"hierarchy-cli/internal/drag"
	"hierarchy-cli/internal/editor"
	"hierarchy-cli/internal/layout"
	applog "hierarchy-cli/internal/log"
	hmodel "hierarchy-cli/internal/model"
	"hierarchy-cli/internal/mutate"
	"hierarchy-cli/internal/store"
	"hierarchy-cli/internal/workspace"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type mode int

const (
	modeCanvas mode = iota
	modePrompt
	modeDelete
	modeHistory
)

type promptKind int

const (
	promptNone promptKind = iota
	// promptEdit is an inline edit owned by the editor (node, dimension or label).
	promptEdit
	promptSearch
	promptAddDimension
)

const helpLine = "a/A add  r rename  d delete  m move  space fold  / search  H history  p apply  q quit"

type model struct {
	ctx  context.Context
	ws   *workspace.Workspace
	ed   *editor.Editor
	opts Options
	log  *slog.Logger

	width  int
	height int

	mode   mode
	prompt promptKind
	input  textinput.Model

	deleteList list.Model
	deleteID   string

	// cursor is the hovered candidate while dragging.
	cursor string
	vp     viewport

	query    string
	matches  []string
	matchSet map[string]bool
	matchIdx int

	history string

	flash    string
	flashErr bool
}

func newModel(ctx context.Context, ws *workspace.Workspace, opts Options) model {
	in := textinput.New()
	in.CharLimit = 200
	m := model{
		ctx:    ctx,
		ws:     ws,
		ed:     ws.Editor,
		opts:   opts,
		log:    applog.WithComponent("tui"),
		width:  80,
		height: 24,
		input:  in,
	}
	if m.ed.Selected() == "" {
		if order := m.visibleOrder(); len(order) > 0 {
			_ = m.ed.Select(order[0])
		}
	}
	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	if mm, ok := next.(model); ok {
		mm.vp = mm.scrolled()
		return mm, cmd
	}
	return next, cmd
}

func (m model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.mode == modeDelete {
			m.deleteList.SetSize(m.modalWidth(), m.modalHeight())
		}
		if m.mode == modeHistory {
			m.refreshHistory()
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		switch m.mode {
		case modePrompt:
			return m.updatePrompt(msg)
		case modeDelete:
			return m.updateDelete(msg)
		case modeHistory:
			return m.updateHistory(msg)
		}
		if m.ed.DragSession().State == drag.Dragging {
			return m.updateDrag(msg)
		}
		return m.updateCanvas(msg)
	}
	return m, nil
}

func (m *model) setFlash(s string) {
	m.flash, m.flashErr = s, false
}

func (m *model) setError(err error) {
	if err == nil {
		return
	}
	m.flash, m.flashErr = err.Error(), true
}

// save persists the draft and view after a committed change. A failed save
// leaves the workspace reloaded from disk.
func (m *model) save() {
	if err := m.ws.Save(m.ctx); err != nil {
		m.log.Warn("save failed", slog.Any("err", err))
		m.persistFailed(fmt.Errorf("save: %w", err))
	}
}

func (m *model) persistFailed(err error) {
	m.ed = m.ws.Editor
	if errors.Is(err, store.ErrStaleDraft) {
		m.setError(errors.New("workspace changed in another session; reloaded, last change dropped"))
		return
	}
	m.setError(err)
}

func (m *model) saveView() {
	if err := m.ws.SaveView(); err != nil {
		m.log.Warn("save view failed", slog.Any("err", err))
	}
}

func (m model) quit() (tea.Model, tea.Cmd) {
	m.ed.CancelDrag()
	m.saveView()
	return m, tea.Quit
}

// visibleOrder lists visible nodes top to bottom, parents before children on
// the same row.
func (m model) visibleOrder() []string {
	nodes := append([]layout.PlacedNode(nil), m.ed.Scene().Nodes...)
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Y != nodes[j].Y {
			return nodes[i].Y < nodes[j].Y
		}
		return nodes[i].Level < nodes[j].Level
	})
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

// step returns the visible node delta positions away from id.
func (m model) step(id string, delta int) string {
	order := m.visibleOrder()
	if len(order) == 0 {
		return ""
	}
	for i, v := range order {
		if v == id {
			return order[min(max(i+delta, 0), len(order)-1)]
		}
	}
	return order[0]
}

func (m model) parentOf(id string) string {
	path, err := mutate.FindPath(m.ed.Document().Forest, id)
	if err != nil || len(path) < 2 {
		return id
	}
	return path[len(path)-2].ID
}

func (m model) firstChildOf(id string) string {
	n := mutate.Find(m.ed.Document().Forest, id)
	if !n.HasChildren() {
		return id
	}
	return n.Children[0].ID
}

// keepSelectionVisible moves the selection to its nearest visible ancestor.
func (m *model) keepSelectionVisible() {
	sel := m.ed.Selected()
	if sel == "" {
		return
	}
	sc := m.ed.Scene()
	if _, ok := sc.Find(sel); ok {
		return
	}
	path, err := mutate.FindPath(m.ed.Document().Forest, sel)
	if err != nil {
		return
	}
	for i := len(path) - 2; i >= 0; i-- {
		if _, ok := sc.Find(path[i].ID); ok {
			_ = m.ed.Select(path[i].ID)
			return
		}
	}
}

func (m model) updateCanvas(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sel := m.ed.Selected()
	m.flash = ""

	switch msg.String() {
	case "q":
		return m.quit()
	case "up", "k":
		_ = m.ed.Select(m.step(sel, -1))
		m.saveView()
	case "down", "j":
		_ = m.ed.Select(m.step(sel, 1))
		m.saveView()
	case "left", "h":
		if sel != "" {
			_ = m.ed.Select(m.parentOf(sel))
			m.saveView()
		}
	case "right", "l":
		if sel != "" {
			if m.ed.IsCollapsed(sel) {
				_ = m.ed.Expand(sel)
			}
			_ = m.ed.Select(m.firstChildOf(sel))
			m.saveView()
		}
	case " ", "enter":
		if sel == "" {
			break
		}
		if _, err := m.ed.ToggleCollapse(sel); err != nil {
			m.setError(err)
			break
		}
		m.saveView()
	case "z":
		m.ed.CollapseAll()
		m.keepSelectionVisible()
		m.saveView()
	case "Z":
		m.ed.ExpandAll()
		m.saveView()
	case "a":
		return m.addNode(sel)
	case "A":
		return m.addNode("")
	case "r":
		if sel == "" {
			break
		}
		return m.beginEdit(editor.EditTarget{Kind: editor.EditNode, NodeID: sel})
	case "e":
		if sel == "" {
			break
		}
		level, err := mutate.Depth(m.ed.Document().Forest, sel)
		if err != nil {
			m.setError(err)
			break
		}
		if level >= len(m.ed.Document().Dimensions) {
			m.setFlash(fmt.Sprintf("level %d has no label yet; press + to add one", level+1))
			break
		}
		return m.beginEdit(editor.EditTarget{Kind: editor.EditDimension, Level: level})
	case "L":
		return m.beginEdit(editor.EditTarget{Kind: editor.EditLabel})
	case "+":
		return m.openPrompt(promptAddDimension, "level label: ", "")
	case "d", "delete":
		if sel == "" {
			break
		}
		return m.openDelete(sel)
	case "m":
		if sel == "" {
			break
		}
		if !m.ed.PointerDown(sel, m.pointAt(sel)) {
			m.setFlash("cannot move right now")
			break
		}
		m.cursor = sel
		m.ed.PointerMove(sel, m.pointAt(sel))
		m.setFlash("moving: arrows choose a new parent, enter drops, esc cancels")
	case "/":
		return m.openPrompt(promptSearch, "search: ", m.query)
	case "n":
		m.cycleMatch(1)
	case "N":
		m.cycleMatch(-1)
	case "esc":
		m.clearSearch()
	case "H":
		m.mode = modeHistory
		m.refreshHistory()
	case "p":
		pending := len(m.ed.History())
		a, err := m.ws.Apply(m.ctx)
		if err != nil {
			m.persistFailed(err)
			break
		}
		m.setFlash(fmt.Sprintf("applied %q (%d change(s))", a.Label, pending))
	}
	return m, nil
}

// addNode adds a root (parentID == "") or a child with the level's default
// name and opens the rename prompt on it.
func (m model) addNode(parentID string) (tea.Model, tea.Cmd) {
	add := m.ed.AddRoot
	if parentID != "" {
		add = func(name string) (*hmodel.Node, error) { return m.ed.AddChild(parentID, name) }
	}
	n, err := add("")
	if err != nil {
		m.setError(err)
		return m, nil
	}
	m.save()
	return m.beginEdit(editor.EditTarget{Kind: editor.EditNode, NodeID: n.ID})
}

func (m model) beginEdit(t editor.EditTarget) (tea.Model, tea.Cmd) {
	if err := m.ed.BeginEdit(t); err != nil {
		m.setError(err)
		return m, nil
	}
	return m.openPrompt(promptEdit, "rename "+t.Kind.String()+": ", m.ed.EditValue())
}

func (m model) openPrompt(kind promptKind, prompt, value string) (tea.Model, tea.Cmd) {
	m.mode = modePrompt
	m.prompt = kind
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m model) closePrompt() model {
	m.mode = modeCanvas
	m.prompt = promptNone
	m.input.Blur()
	m.input.SetValue("")
	return m
}

func (m model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.prompt == promptEdit {
			m.ed.CancelEdit()
		}
		return m.closePrompt(), nil
	case "enter":
		value := m.input.Value()
		switch m.prompt {
		case promptEdit:
			if err := m.ed.CommitEdit(value); err != nil {
				// An empty name keeps the edit open.
				if mutate.IsEmptyName(err) {
					m.setFlash("name cannot be empty")
					return m, nil
				}
				m.setError(err)
			} else {
				m.save()
			}
		case promptSearch:
			m.runSearch(value)
		case promptAddDimension:
			if err := m.ed.AddDimension(value); err != nil {
				m.setError(err)
				return m, nil
			}
			m.save()
		}
		return m.closePrompt(), nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) runSearch(q string) {
	m.query = q
	m.matches = m.ed.RevealMatches(q)
	m.matchSet = make(map[string]bool, len(m.matches))
	for _, id := range m.matches {
		m.matchSet[id] = true
	}
	m.matchIdx = 0
	if len(m.matches) == 0 {
		if strings.TrimSpace(q) != "" {
			m.setFlash(fmt.Sprintf("no match for %q", q))
		}
		return
	}
	_ = m.ed.Select(m.matches[0])
	m.saveView()
	m.setFlash(fmt.Sprintf("%d match(es) for %q  n/N: next/prev", len(m.matches), q))
}

func (m *model) cycleMatch(delta int) {
	if len(m.matches) == 0 {
		return
	}
	m.matchIdx = (m.matchIdx + delta + len(m.matches)) % len(m.matches)
	_ = m.ed.Select(m.matches[m.matchIdx])
	m.saveView()
}

func (m *model) clearSearch() {
	m.query = ""
	m.matches = nil
	m.matchSet = nil
	m.matchIdx = 0
}

func (m model) modalWidth() int  { return min(max(m.width-8, 20), 90) }
func (m model) modalHeight() int { return min(max(m.height-6, 6), 20) }

func (m model) openDelete(id string) (tea.Model, tea.Cmd) {
	plan, err := m.ed.PlanDelete(id)
	if err != nil {
		m.setError(err)
		return m, nil
	}
	m.ed.OpenModal()
	m.deleteID = id
	m.deleteList = newDeleteList(plan, m.modalWidth(), m.modalHeight())
	m.mode = modeDelete
	return m, nil
}

func (m model) closeDelete() model {
	m.ed.CloseModal()
	m.deleteID = ""
	m.mode = modeCanvas
	return m
}

func (m model) updateDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	filtering := m.deleteList.FilterState() == list.Filtering
	if !filtering {
		switch msg.String() {
		case "esc", "q":
			return m.closeDelete(), nil
		case "enter":
			opt, ok := m.deleteList.SelectedItem().(deleteOption)
			if !ok {
				return m, nil
			}
			id := m.deleteID
			m = m.closeDelete()
			if err := m.ed.Delete(id, opt.mode, opt.targetID); err != nil {
				m.setError(err)
				return m, nil
			}
			if m.ed.Selected() == "" {
				if order := m.visibleOrder(); len(order) > 0 {
					_ = m.ed.Select(order[0])
				}
			}
			m.save()
			m.setFlash(m.lastSummary())
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.deleteList, cmd = m.deleteList.Update(msg)
	return m, cmd
}

func (m model) lastSummary() string {
	h := m.ed.History()
	if len(h) == 0 {
		return ""
	}
	return h[len(h)-1].Summary
}

func (m model) pointAt(id string) drag.Point {
	n, ok := m.ed.Scene().Find(id)
	if !ok {
		return drag.Point{}
	}
	return drag.Point{X: n.Box.X + n.Box.W/2, Y: n.Box.Y + n.Box.H/2}
}

func (m model) updateDrag(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	next := m.cursor
	switch msg.String() {
	case "esc":
		m.ed.CancelDrag()
		m.cursor = ""
		m.setFlash("move cancelled")
		return m, nil
	case "enter", "m":
		dragged := m.ed.DragSession().DraggingID
		moved, err := m.ed.PointerUp()
		m.cursor = ""
		switch {
		case err != nil:
			m.setError(err)
		case !moved:
			m.setFlash("nothing to drop on; move cancelled")
		default:
			m.save()
			m.setFlash(m.lastSummary())
		}
		if m.ed.Selected() == "" {
			_ = m.ed.Select(dragged)
		}
		return m, nil
	case "up", "k":
		next = m.step(m.cursor, -1)
	case "down", "j":
		next = m.step(m.cursor, 1)
	case "left", "h":
		next = m.parentOf(m.cursor)
	case "right", "l":
		next = m.firstChildOf(m.cursor)
	default:
		return m, nil
	}
	m.cursor = next
	s := m.ed.PointerMove(next, m.pointAt(next))
	if s.Rejected {
		m.setFlash("cannot drop a node into itself or its own subtree")
	} else if s.DropTargetID != "" {
		m.setFlash("drop under " + m.nameOf(s.DropTargetID))
	}
	return m, nil
}

func (m model) nameOf(id string) string {
	if n := mutate.Find(m.ed.Document().Forest, id); n != nil {
		return n.Name
	}
	return id
}

func (m *model) refreshHistory() {
	m.history = renderHistory(m.ed.Document().Label, m.ed.History(), m.ed.Status(), max(m.width-4, 20))
}

func (m model) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "H":
		m.mode = modeCanvas
	case "p":
		if _, err := m.ws.Apply(m.ctx); err != nil {
			m.persistFailed(err)
		}
		m.refreshHistory()
	}
	return m, nil
}

func (m model) View() string {
	title := m.titleBar()

	if m.mode == modeHistory {
		lines := strings.Split(m.history, "\n")
		if h := m.height - 2; h > 0 && len(lines) > h {
			lines = lines[:h]
		}
		return strings.Join(append([]string{title}, lines...), "\n") + "\n" + styleMuted().Render("esc: back  p: apply")
	}

	bodyH := m.bodyHeight()
	c := renderCanvas(m.ed.Scene(), m.decoration())
	header, body := c.crop(m.vp, m.width, bodyH)

	var canvasView string
	if len(c.Cells) == 0 {
		canvasView = styleMuted().Render("Empty forest. Press A to add a root node.")
	} else {
		canvasView = strings.Join(body, "\n")
	}
	canvasView = lipgloss.NewStyle().Height(bodyH).MaxHeight(bodyH).Render(canvasView)

	if m.mode == modeDelete {
		modal := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(0, 1).
			Render(m.deleteList.View())
		canvasView = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, modal)
	}

	return strings.Join([]string{title, header, canvasView, m.footer()}, "\n")
}

func (m model) bodyHeight() int { return max(m.height-3, 1) }

func (m model) decoration() decoration {
	return decoration{Selected: m.ed.Selected(), Cursor: m.cursor, Matches: m.matchSet, Drag: m.ed.DragSession()}
}

// scrolled returns the viewport that keeps the selection (or the drag cursor)
// on screen.
func (m model) scrolled() viewport {
	d := m.decoration()
	focus := d.Selected
	if d.Drag.State == drag.Dragging {
		focus = m.cursor
	}
	c := renderCanvas(m.ed.Scene(), d)
	cell, ok := c.Cells[focus]
	return m.vp.follow(cell, ok, m.width, m.bodyHeight())
}

func (m model) titleBar() string {
	st := m.ed.Status()
	state := "clean"
	if st.Dirty {
		state = fmt.Sprintf("draft: %d pending", st.Pending)
	}
	right := state
	if m.opts.Workspace != "" {
		right = m.opts.Workspace + "  " + right
	}
	left := styleTitle().Render(m.ed.Document().Label)
	gap := m.width - xansi.StringWidth(left) - xansi.StringWidth(right) - 1
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + styleMuted().Render(right)
}

func (m model) footer() string {
	if m.mode == modePrompt {
		return renderInputLine(m.width, m.input.View())
	}
	if m.flash != "" {
		if m.flashErr {
			return styleDropBad().Render(fitCell(m.flash, m.width))
		}
		return fitCell(m.flash, m.width)
	}
	if m.ed.DragSession().State == drag.Dragging {
		return styleMuted().Render(fitCell("moving "+m.nameOf(m.ed.DragSession().DraggingID)+" "+glyphArrow()+" ?", m.width))
	}
	return styleMuted().Render(fitCell(helpLine, m.width))
}

func renderInputLine(width int, inputView string) string {
	width = max(width, 10)
	inputView = strings.NewReplacer("\n", " ", "\r", " ").Replace(inputView)
	line := lipgloss.PlaceHorizontal(width, lipgloss.Left, " "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > width {
		line = xansi.Cut(line, 0, width) + "\x1b[0m"
	}
	return line
}
