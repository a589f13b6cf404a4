package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders a Dataset into a tabular PDF. Result reports are wide,
// so pages are landscape.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with the dataset's title above the table.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, data.Title, "", 1, "C", false, 0, "")
		pdf.Ln(4)
	}

	colWidth := 277.0 / float64(len(data.Headers))
	writeHeader := func() {
		pdf.SetFont("Arial", "B", 10)
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	writeHeader()

	_, pageHeight := pdf.GetPageSize()
	_, topMargin, _, bottomMargin := pdf.GetMargins()
	for _, row := range data.Rows {
		if pdf.GetY()+7 > pageHeight-bottomMargin {
			pdf.AddPage()
			pdf.SetY(topMargin)
			writeHeader()
		}
		for _, cell := range row {
			pdf.CellFormat(colWidth, 7, cell, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
