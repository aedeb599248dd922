package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/futig/notes-backend/internal/entity"
	"github.com/ledongthuc/pdf"
)

var pdfMagic = []byte("%PDF-")

// PDFExtractor turns PDF bytes into plain text.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract returns the text of every page joined by blank lines and the page count.
// Unparseable input fails with entity.ErrExtractionFailed.
func (e *PDFExtractor) Extract(content []byte) (result entity.ExtractedText, err error) {
	if !bytes.HasPrefix(bytes.TrimLeft(content, "\x00\t\r\n "), pdfMagic) {
		return entity.ExtractedText{}, fmt.Errorf("%w: missing PDF header", entity.ErrExtractionFailed)
	}

	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			result = entity.ExtractedText{}
			err = fmt.Errorf("%w: %v", entity.ErrExtractionFailed, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return entity.ExtractedText{}, fmt.Errorf("%w: %v", entity.ErrExtractionFailed, err)
	}

	numPages := r.NumPage()
	pages := make([]string, 0, numPages)

	for pageIndex := 1; pageIndex <= numPages; pageIndex++ {
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}

		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}

	return entity.ExtractedText{
		Text:      strings.Join(pages, "\n\n"),
		PageCount: numPages,
	}, nil
}
