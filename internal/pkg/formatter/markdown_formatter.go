package formatter

import (
	"bytes"
	"fmt"

	"github.com/futig/notes-backend/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(deck *entity.Deck) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", deckTitle(deck))

	for _, s := range deck.Slides {
		fmt.Fprintf(&buf, "\n## %s\n\n%s\n", slideHeading(s), s.Content)
		if s.ImageDescription != "" {
			fmt.Fprintf(&buf, "\n*Image: %s*\n", s.ImageDescription)
		}
		if s.SpeakerNotes != "" {
			fmt.Fprintf(&buf, "\n> Notes: %s\n", s.SpeakerNotes)
		}
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
