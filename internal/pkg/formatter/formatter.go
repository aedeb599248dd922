package formatter

import (
	"fmt"

	"github.com/futig/notes-backend/internal/entity"
)

const untitledDeck = "Presentation"

// Formatter renders a slide deck into a downloadable document
type Formatter interface {
	Format(deck *entity.Deck) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func deckTitle(deck *entity.Deck) string {
	if deck.Title != "" {
		return deck.Title
	}
	return untitledDeck
}

func slideHeading(s entity.Slide) string {
	return fmt.Sprintf("Slide %d: %s", s.Number, s.Title)
}
