package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfMargin     = 10.0
	pdfTitleSize  = 14.0
	pdfHeadSize   = 9.0
	pdfBodySize   = 8.0
	pdfRowHeight  = 6.0
	pdfTitleGap   = 10.0
	pdfFooterRoom = 12.0
	pdfCellPad    = 2.0
	pdfMinColumn  = 14.0
	pdfEllipsis   = "..."
	pdfFontFamily = "Arial"
)

// WritePDF lays the tables out on landscape A4 pages. Every page a table spills onto
// starts with that table's header row again; each following table opens a titled section.
func WritePDF(w io.Writer, doc Document) error {
	pdf, err := renderPDF(doc)
	if err != nil {
		return err
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

func renderPDF(doc Document) (*gofpdf.Fpdf, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin)
		pdf.SetFont(pdfFontFamily, "I", 7)
		pdf.CellFormat(0, 4, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	r := &pdfRenderer{pdf: pdf, tr: tr}
	pdf.AddPage()
	if doc.Title != "" {
		pdf.SetFont(pdfFontFamily, "B", pdfTitleSize)
		pdf.CellFormat(0, pdfTitleGap, tr(doc.Title), "", 1, "L", false, 0, "")
	}

	for i, table := range doc.Tables {
		if i > 0 || len(doc.Tables) > 1 {
			r.section(table.Name, i > 0)
		}
		r.table(table)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return pdf, nil
}

type pdfRenderer struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func (r *pdfRenderer) bottom() float64 {
	_, h := r.pdf.GetPageSize()
	return h - pdfFooterRoom
}

func (r *pdfRenderer) fits(height float64) bool {
	return r.pdf.GetY()+height <= r.bottom()
}

// section starts a titled block, on a new page when the title and a header row
// would not fit on the current one.
func (r *pdfRenderer) section(name string, spaced bool) {
	if spaced {
		r.pdf.Ln(pdfRowHeight)
	}
	if !r.fits(pdfTitleGap + 2*pdfRowHeight) {
		r.pdf.AddPage()
	}
	r.pdf.SetFont(pdfFontFamily, "B", pdfTitleSize-2)
	r.pdf.CellFormat(0, pdfTitleGap-2, r.tr(name), "", 1, "L", false, 0, "")
}

func (r *pdfRenderer) table(t Table) {
	widths := r.columnWidths(t)
	if len(widths) == 0 {
		return
	}

	if !r.fits(2 * pdfRowHeight) {
		r.pdf.AddPage()
	}
	r.header(t.Headers, widths)

	r.pdf.SetFont(pdfFontFamily, "", pdfBodySize)
	for i, row := range t.Rows {
		if !r.fits(pdfRowHeight) {
			r.pdf.AddPage()
			r.header(t.Headers, widths)
			r.pdf.SetFont(pdfFontFamily, "", pdfBodySize)
		}
		fill := i%2 == 1
		r.pdf.SetFillColor(242, 242, 242)
		for c, wd := range widths {
			r.pdf.CellFormat(wd, pdfRowHeight, r.fit(cell(row, c), wd), "1", 0, "L", fill, 0, "")
		}
		r.pdf.Ln(-1)
	}
}

func (r *pdfRenderer) header(headers []string, widths []float64) {
	if len(headers) == 0 {
		return
	}
	r.pdf.SetFont(pdfFontFamily, "B", pdfHeadSize)
	r.pdf.SetFillColor(68, 114, 196)
	r.pdf.SetTextColor(255, 255, 255)
	for c, wd := range widths {
		r.pdf.CellFormat(wd, pdfRowHeight+1, r.fit(cell(headers, c), wd), "1", 0, "C", true, 0, "")
	}
	r.pdf.Ln(-1)
	r.pdf.SetTextColor(0, 0, 0)
}

// columnWidths shares the printable width in proportion to each column's widest text.
func (r *pdfRenderer) columnWidths(t Table) []float64 {
	n := len(t.Headers)
	for _, row := range t.Rows {
		n = max(n, len(row))
	}
	if n == 0 {
		return nil
	}

	pageW, _ := r.pdf.GetPageSize()
	avail := pageW - 2*pdfMargin

	want := make([]float64, n)
	r.pdf.SetFont(pdfFontFamily, "B", pdfHeadSize)
	for c := range want {
		want[c] = r.pdf.GetStringWidth(r.tr(cell(t.Headers, c)))
	}
	r.pdf.SetFont(pdfFontFamily, "", pdfBodySize)
	for _, row := range t.Rows {
		for c := range want {
			want[c] = max(want[c], r.pdf.GetStringWidth(r.tr(cell(row, c))))
		}
	}

	total := 0.0
	for c := range want {
		want[c] = max(want[c]+2*pdfCellPad, pdfMinColumn)
		total += want[c]
	}
	if total <= avail {
		// Stretch to the full width.
		for c := range want {
			want[c] = want[c] * avail / total
		}
		return want
	}

	// Too wide: keep the minimum for every column and share the rest proportionally.
	spare := avail - pdfMinColumn*float64(n)
	if spare < 0 {
		spare = 0
	}
	excess := total - pdfMinColumn*float64(n)
	for c := range want {
		share := 0.0
		if excess > 0 {
			share = (want[c] - pdfMinColumn) / excess * spare
		}
		want[c] = min(pdfMinColumn, avail/float64(n)) + share
	}
	return want
}

// fit truncates s with an ellipsis so it prints inside a cell of width w.
func (r *pdfRenderer) fit(s string, w float64) string {
	s = r.tr(s)
	limit := w - pdfCellPad
	if r.pdf.GetStringWidth(s) <= limit {
		return s
	}
	// Translated text is single-byte, so trimming bytes trims characters.
	b := []byte(s)
	for len(b) > 0 && r.pdf.GetStringWidth(string(b)+pdfEllipsis) > limit {
		b = b[:len(b)-1]
	}
	return string(b) + pdfEllipsis
}
