package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// landscapeThreshold is the column count from which pages are laid out landscape.
const landscapeThreshold = 7

// PDFExporter renders datasets into a tabular PDF, one line of text per cell line.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body. Cell values may contain
// newlines; each row grows to fit its tallest cell.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	orientation := "P"
	if len(data.Headers) >= landscapeThreshold {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(data.Headers))

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 8)
	pdf.SetFillColor(49, 46, 129)
	pdf.SetTextColor(255, 255, 255)
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)

	const lineHeight = 5.0
	for i, row := range data.Rows {
		lines := 1
		for _, header := range data.Headers {
			if n := strings.Count(row[header], "\n") + 1; n > lines {
				lines = n
			}
		}
		height := float64(lines) * lineHeight
		x, y := pdf.GetXY()
		for j, header := range data.Headers {
			fill := data.highlighted(i, header)
			if fill {
				pdf.SetFillColor(236, 252, 203)
			}
			pdf.SetFont("Arial", "", 8)
			if j == 0 {
				pdf.SetFont("Arial", "B", 8)
			}
			pdf.SetXY(x+float64(j)*colWidth, y)
			pdf.Rect(x+float64(j)*colWidth, y, colWidth, height, rectStyle(fill))
			pdf.MultiCell(colWidth, lineHeight, row[header], "", "C", false)
		}
		pdf.SetXY(x, y+height)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func rectStyle(fill bool) string {
	if fill {
		return "FD"
	}
	return "D"
}
