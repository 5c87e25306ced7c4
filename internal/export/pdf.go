package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"hierarchy-cli/internal/layout"

	"github.com/jung-kurt/gofpdf"
)

// RGB is an 8-bit colour.
type RGB struct{ R, G, B int }

// PDFOptions controls PDF export. Units are points; scene units map 1:1.
type PDFOptions struct {
	Title string

	NodeStroke RGB
	NodeFill   RGB
	Collapsed  RGB
	EdgeColor  RGB
	TextColor  RGB
	FontSize   float64
}

func (o PDFOptions) withDefaults() PDFOptions {
	zero := RGB{}
	if o.NodeStroke == zero {
		o.NodeStroke = RGB{60, 60, 60}
	}
	if o.NodeFill == zero {
		o.NodeFill = RGB{245, 245, 245}
	}
	if o.Collapsed == zero {
		o.Collapsed = RGB{255, 236, 200}
	}
	if o.EdgeColor == zero {
		o.EdgeColor = RGB{150, 150, 150}
	}
	if o.FontSize <= 0 {
		o.FontSize = 11
	}
	return o
}

const (
	minPageW = 240.0
	minPageH = 120.0
	textPad  = 8.0
)

// WriteScenePDF renders sc as a single page: headers, connectors, then node boxes.
func WriteScenePDF(w io.Writer, sc layout.Scene, opt PDFOptions) error {
	pdf := render(sc, opt.withDefaults())
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// ExportScenePDF writes sc to outPath, creating parent directories.
func ExportScenePDF(sc layout.Scene, outPath string, opt PDFOptions) error {
	if outPath == "" {
		return errors.New("missing output path")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	pdf := render(sc, opt.withDefaults())
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func render(sc layout.Scene, opt PDFOptions) *gofpdf.Fpdf {
	size := gofpdf.SizeType{Wd: max(sc.Bounds.W, minPageW), Ht: max(sc.Bounds.H, minPageH)}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: size})
	pdf.SetTitle(opt.Title, true)
	pdf.SetCreator("hierarchy", true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", size)

	// Core fonts are cp1252; names and arrows arrive as UTF-8.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTextColor(opt.TextColor.R, opt.TextColor.G, opt.TextColor.B)
	pdf.SetFont("Helvetica", "B", opt.FontSize)
	for _, h := range sc.Headers {
		label := h.Label
		if label == "" {
			label = fmt.Sprintf("Level %d", h.Level+1)
		}
		pdf.Text(h.X, layout.Padding+layout.HeaderHeight/2, tr(label))
	}

	byID := make(map[string]layout.PlacedNode, len(sc.Nodes))
	for _, n := range sc.Nodes {
		byID[n.ID] = n
	}
	setDraw(pdf, opt.EdgeColor)
	pdf.SetLineWidth(0.8)
	for _, e := range sc.Edges {
		p, ok1 := byID[e.ParentID]
		c, ok2 := byID[e.ChildID]
		if !ok1 || !ok2 {
			continue
		}
		x1, y1 := p.Box.X+p.Box.W, p.Box.Y+p.Box.H/2
		x2, y2 := c.Box.X, c.Box.Y+c.Box.H/2
		mid := (x1 + x2) / 2
		pdf.Line(x1, y1, mid, y1)
		pdf.Line(mid, y1, mid, y2)
		pdf.Line(mid, y2, x2, y2)
	}

	pdf.SetFont("Helvetica", "", opt.FontSize)
	setDraw(pdf, opt.NodeStroke)
	pdf.SetLineWidth(1)
	for _, n := range sc.Nodes {
		fill := opt.NodeFill
		label := n.Name
		if n.Collapsed {
			fill = opt.Collapsed
			label = fmt.Sprintf("%s (+%d)", n.Name, n.Hidden)
		}
		pdf.SetFillColor(fill.R, fill.G, fill.B)
		pdf.Rect(n.Box.X, n.Box.Y, n.Box.W, n.Box.H, "FD")
		pdf.Text(n.Box.X+textPad, n.Box.Y+n.Box.H/2+opt.FontSize/3, tr(fit(pdf, label, n.Box.W-2*textPad)))
	}
	return pdf
}

// fit truncates s with "..." so it fits in width.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}

func setDraw(pdf *gofpdf.Fpdf, c RGB) {
	pdf.SetDrawColor(c.R, c.G, c.B)
}
