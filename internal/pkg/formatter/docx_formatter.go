package formatter

import (
	"bytes"

	"github.com/futig/notes-backend/internal/entity"
	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (mf *DOCXFormatter) Format(deck *entity.Deck) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Title")
	titlePar.AddRun().AddText(deckTitle(deck))

	for _, s := range deck.Slides {
		heading := doc.AddParagraph()
		heading.SetStyle("Heading1")
		heading.AddRun().AddText(slideHeading(s))

		doc.AddParagraph().AddRun().AddText(s.Content)

		if s.ImageDescription != "" {
			imgRun := doc.AddParagraph().AddRun()
			imgRun.Properties().SetItalic(true)
			imgRun.AddText("Image: " + s.ImageDescription)
		}

		if s.SpeakerNotes != "" {
			notes := doc.AddParagraph()
			notes.SetStyle("Quote")
			notes.AddRun().AddText("Notes: " + s.SpeakerNotes)
		}
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (mf *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
