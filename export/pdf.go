package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const pdfMargin = 20.0

// RenderPDF lays the note out on A4 pages: title heading, timestamp, then the
// stripped body.
func RenderPDF(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("noteshelf", true)

	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	pdf.MultiCell(0, 11, tr(doc.Title), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(0, 6, tr("Last modified: "+timestamp(doc.UpdatedAt)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(0, 6, tr(StripHTML(doc.Content)), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
