package formatter

import (
	"bytes"
	"os"

	"github.com/futig/notes-backend/internal/entity"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the gofpdf family name of the UTF-8 font
	pdfFontName = "DejaVuSans"

	// Docker images copy fonts next to the binary
	pdfFontRuntimePath = "ttf/DejaVuSans.ttf"
	pdfFontSourcePath  = "internal/pkg/formatter/ttf/DejaVuSans.ttf"
)

// PDFFormatter renders one landscape page per slide
type PDFFormatter struct{}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

func resolveFontPath() string {
	for _, p := range []string{pdfFontRuntimePath, pdfFontSourcePath} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (mf *PDFFormatter) Format(deck *entity.Deck) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")

	fontName := "Arial"
	if fontPath := resolveFontPath(); fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", fontPath)
		pdf.AddUTF8Font(pdfFontName, "I", fontPath)
		fontName = pdfFontName
	}

	pdf.AddPage()
	pdf.SetFont(fontName, "B", 28)
	pdf.Ln(60)
	pdf.CellFormat(0, 14, deckTitle(deck), "", 1, "C", false, 0, "")

	for _, s := range deck.Slides {
		pdf.AddPage()

		pdf.SetFont(fontName, "B", 20)
		pdf.MultiCell(0, 10, slideHeading(s), "", "", false)
		pdf.Ln(4)

		pdf.SetFont(fontName, "", 14)
		_, lineHeight := pdf.GetFontSize()
		pdf.MultiCell(0, lineHeight*1.5, s.Content, "", "", false)

		if s.ImageDescription != "" {
			pdf.Ln(4)
			pdf.SetFont(fontName, "I", 11)
			pdf.MultiCell(0, 6, "Image: "+s.ImageDescription, "", "", false)
		}

		if s.SpeakerNotes != "" {
			pdf.Ln(4)
			pdf.SetFont(fontName, "", 10)
			pdf.MultiCell(0, 5, "Notes: "+s.SpeakerNotes, "", "", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (mf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
