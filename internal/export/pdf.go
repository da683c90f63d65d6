package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/talktotext/talktotext/internal/models"
	"github.com/talktotext/talktotext/internal/parser"
)

const (
	pdfMargin   = 40.0
	pdfBodySize = 11.0
	pdfLineH    = 16.0
	pdfIndent   = 16.0
	pdfFont     = "Helvetica"
)

// PDF renders note as an A4 PDF.
func PDF(note *models.Note) ([]byte, error) {
	doc := newDocument(note)

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("talktotext", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()

	pdf.SetFont(pdfFont, "B", 22)
	pdf.SetTextColor(17, 17, 17)
	pdf.MultiCell(0, 26, tr(doc.Title), "", "L", false)

	if doc.Created != "" {
		pdf.SetFont(pdfFont, "", 10)
		pdf.SetTextColor(85, 85, 85)
		pdf.MultiCell(0, 14, tr(doc.Created), "", "L", false)
	}
	pdf.Ln(8)
	pdf.SetTextColor(17, 17, 17)

	for _, b := range doc.Blocks {
		switch b.Kind {
		case parser.BlockHeading:
			size := 16.0
			if b.Level > 2 {
				size = 13
			}
			pdf.Ln(6)
			pdf.SetFont(pdfFont, "B", size)
			pdf.MultiCell(0, size+4, tr(parser.PlainText(b.Text)), "", "L", false)
			pdf.Ln(2)
		case parser.BlockBullet:
			writeIndented(pdf, tr, "•", b.Text)
		case parser.BlockNumbered:
			writeIndented(pdf, tr, b.Number, b.Text)
		default:
			writeSpans(pdf, tr, b.Text)
			pdf.Ln(4)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// writeSpans writes text with inline bold runs, wrapping at the margins.
func writeSpans(pdf *fpdf.Fpdf, tr func(string) string, text string) {
	for _, s := range parser.Spans(text) {
		style := ""
		if s.Bold {
			style = "B"
		}
		pdf.SetFont(pdfFont, style, pdfBodySize)
		pdf.Write(pdfLineH, tr(s.Text))
	}
	pdf.Ln(pdfLineH)
}

// writeIndented writes a list item with a hanging marker.
func writeIndented(pdf *fpdf.Fpdf, tr func(string) string, marker, text string) {
	pdf.SetFont(pdfFont, "", pdfBodySize)
	pdf.SetX(pdfMargin + pdfIndent/2)
	pdf.Write(pdfLineH, tr(marker)+" ")

	pdf.SetLeftMargin(pdfMargin + pdfIndent*1.5)
	writeSpans(pdf, tr, text)
	pdf.SetLeftMargin(pdfMargin)
}
