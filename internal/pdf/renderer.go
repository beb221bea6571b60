// Package pdf lays out report lines as a paginated PDF document.
package pdf

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/JonMunkholm/xls2vcard/internal/core"
)

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = "A4"

// Layout in millimetres and points.
const (
	fontFamily   = "Arial"
	titleSize    = 16
	bodySize     = 12
	titleHeight  = 10
	spacerHeight = 8
	nameHeight   = 10
	detailHeight = 8
	bottomMargin = 15
)

// Renderer implements core.Renderer with fpdf core fonts.
type Renderer struct {
	pageSize string
}

var _ core.Renderer = (*Renderer)(nil)

// New returns a renderer for the given page size (A3, A4, A5, Letter or
// Legal). An empty size selects A4.
func New(pageSize string) *Renderer {
	if pageSize == "" {
		pageSize = DefaultPageSize
	}
	return &Renderer{pageSize: pageSize}
}

// Render writes the document for lines to w. Nothing is written when
// layout fails.
func (r *Renderer) Render(w io.Writer, lines []core.ReportLine) error {
	doc := fpdf.New("P", "mm", r.pageSize, "")
	doc.SetAutoPageBreak(true, bottomMargin)
	doc.AddPage()

	// Core fonts are cp1252; runes outside it degrade instead of failing.
	tr := doc.UnicodeTranslatorFromDescriptor("")

	pageWidth, _ := doc.GetPageSize()
	left, _, right, _ := doc.GetMargins()

	for _, line := range lines {
		switch line.Kind {
		case core.LineTitle:
			doc.SetFont(fontFamily, "B", titleSize)
			doc.CellFormat(0, titleHeight, tr(line.Text), "", 1, "C", false, 0, "")
			doc.SetFont(fontFamily, "", bodySize)
		case core.LineSpacer:
			doc.Ln(spacerHeight)
		case core.LineName:
			doc.CellFormat(0, nameHeight, tr(line.Text), "", 1, "L", false, 0, "")
		case core.LineDetail:
			doc.CellFormat(0, detailHeight, tr(line.Text), "", 1, "L", false, 0, "")
		case core.LineSeparator:
			y := doc.GetY()
			doc.Line(left, y, pageWidth-right, y)
		default:
			return fmt.Errorf("unknown report line kind %d", line.Kind)
		}
	}

	if err := doc.Error(); err != nil {
		return err
	}
	return doc.Output(w)
}
