// Package export renders printable PDFs: delivery notes and reports.
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

var ErrNothingToExport = errors.New("nothing to export")

// Letterhead is printed at the top of every document.
type Letterhead struct {
	Agency  string
	Kitchen string
	Address string
}

var DefaultLetterhead = Letterhead{
	Agency:  "BADAN GIZI NASIONAL",
	Kitchen: "SPPG MARTAJASAH",
	Address: "Martajasah, Kec. Bangkalan, Kab. Bangkalan-Madura. Jawa Timur, 69115.",
}

const (
	pageW    = 210.0
	margin   = 14.0
	contentW = pageW - 2*margin
)

type doc struct {
	*fpdf.Fpdf
	tr func(string) string
}

func newDoc() *doc {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	return &doc{Fpdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (d *doc) text(w, h float64, s, border, align string, ln int) {
	d.CellFormat(w, h, d.tr(s), border, ln, align, false, 0, "")
}

// letterhead draws the heading block starting at y and returns the y below it.
func (d *doc) letterhead(lh Letterhead, y float64) float64 {
	d.SetXY(margin, y)
	d.SetFont("Helvetica", "B", 13)
	d.text(contentW, 6, lh.Agency, "", "C", 1)
	d.SetFont("Helvetica", "B", 11)
	d.text(contentW, 5, lh.Kitchen+" - PROGRAM MBG", "", "C", 1)
	if lh.Address != "" {
		d.SetFont("Helvetica", "", 8)
		d.text(contentW, 4, lh.Address, "", "C", 1)
	}
	y = d.GetY() + 1.5
	d.SetLineWidth(0.8)
	d.Line(margin, y, pageW-margin, y)
	d.SetLineWidth(0.2)
	return y + 3
}

// table draws a bordered grid with a shaded header, adding pages as needed.
func (d *doc) table(head []string, widths []float64, rows [][]string, y float64) {
	const rowH = 6.0
	header := func(y float64) {
		d.SetXY(margin, y)
		d.SetFont("Helvetica", "B", 8)
		d.SetFillColor(37, 99, 235)
		d.SetTextColor(255, 255, 255)
		for i, h := range head {
			d.CellFormat(widths[i], rowH, d.tr(h), "1", 0, "C", true, 0, "")
		}
		d.Ln(-1)
		d.SetTextColor(0, 0, 0)
		d.SetFont("Helvetica", "", 8)
	}
	header(y)
	_, pageH := d.GetPageSize()
	for _, row := range rows {
		if d.GetY()+rowH > pageH-margin {
			d.AddPage()
			header(margin)
		}
		d.SetX(margin)
		for i, cell := range row {
			align := "L"
			if i == 0 {
				align = "C"
			}
			d.CellFormat(widths[i], rowH, d.tr(cell), "1", 0, align, false, 0, "")
		}
		d.Ln(-1)
	}
}

func (d *doc) write(w io.Writer) error {
	if err := d.Output(w); err != nil {
		return fmt.Errorf("export: render pdf: %w", err)
	}
	return nil
}
