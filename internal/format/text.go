package format

import (
	"fmt"
	"io"
	"strings"

	"hierarchy-cli/internal/model"

	"github.com/fatih/color"
)

// Texter renders itself for --format text.
type Texter interface {
	WriteText(w io.Writer, s Style) error
}

// Style paints text output. The zero value prints plain text.
type Style struct {
	Color bool
}

// DefaultStyle colours output unless color.NoColor is set (NO_COLOR, non-tty).
func DefaultStyle() Style { return Style{Color: !color.NoColor} }

func (s Style) paint(text string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if s.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(text)
}

func (s Style) Dim(text string) string   { return s.paint(text, color.Faint) }
func (s Style) Bold(text string) string  { return s.paint(text, color.Bold) }
func (s Style) Warn(text string) string  { return s.paint(text, color.FgYellow, color.Bold) }
func (s Style) Ok(text string) string    { return s.paint(text, color.FgGreen) }
func (s Style) Label(text string) string { return s.paint(text, color.FgCyan) }

const timeLayout = "2006-01-02 15:04:05"

// StatusReport is the draft status shown by `hierarchy status`.
type StatusReport struct {
	Status model.Status `json:"status" yaml:"status"`
}

func (r StatusReport) WriteText(w io.Writer, s Style) error {
	st := r.Status
	state := s.Ok("clean")
	if st.Dirty {
		state = s.Warn(fmt.Sprintf("draft: %d pending", st.Pending))
	}
	if _, err := fmt.Fprintln(w, state); err != nil {
		return err
	}
	if st.Applied == nil {
		_, err := fmt.Fprintln(w, s.Dim("never applied"))
		return err
	}
	_, err := fmt.Fprintf(w, "%s %s %s\n",
		s.Dim("applied"), s.Label(st.Applied.Label), s.Dim(st.Applied.At.Local().Format(timeLayout)))
	return err
}

// HistoryReport is the change ledger shown by `hierarchy history`.
type HistoryReport struct {
	Entries []model.ChangeEntry `json:"entries" yaml:"entries"`
	Status  model.Status        `json:"status" yaml:"status"`
}

func (r HistoryReport) WriteText(w io.Writer, s Style) error {
	if err := (StatusReport{Status: r.Status}).WriteText(w, s); err != nil {
		return err
	}
	for i := len(r.Entries) - 1; i >= 0; i-- {
		e := r.Entries[i]
		if _, err := fmt.Fprintf(w, "%s  %s\n", s.Dim(e.TS.Local().Format(timeLayout)), e.Summary); err != nil {
			return err
		}
	}
	return nil
}

// TreeReport is the indented outline shown by `hierarchy show --format text`.
type TreeReport struct {
	Document  model.Document     `json:"document" yaml:"document"`
	Collapsed model.CollapsedSet `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
	Status    model.Status       `json:"status" yaml:"status"`
}

func (r TreeReport) WriteText(w io.Writer, s Style) error {
	if _, err := fmt.Fprintln(w, s.Bold(r.Document.Label)); err != nil {
		return err
	}
	var walk func(nodes []*model.Node, depth int) error
	walk = func(nodes []*model.Node, depth int) error {
		for _, n := range nodes {
			line := strings.Repeat("  ", depth) + "- " + n.Name
			if dim := r.Document.DimensionLabel(depth); dim != "" {
				line += " " + s.Dim("("+dim+")")
			}
			if r.Collapsed[n.ID] && n.HasChildren() {
				line += " " + s.Label(fmt.Sprintf("[+%d]", len(n.Children)))
				if _, err := fmt.Fprintln(w, line); err != nil {
					return err
				}
				continue
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
			if err := walk(n.Children, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(r.Document.Forest.Roots, 0); err != nil {
		return err
	}
	return StatusReport{Status: r.Status}.WriteText(w, s)
}
