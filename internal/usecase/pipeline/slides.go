package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/futig/notes-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const slidesSystemPrompt = "You are an expert presentation designer. Create engaging, well-structured, " +
	"educational slides that explain a document clearly to an audience."

var slideSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"slides": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"slide_number":      map[string]any{"type": "integer"},
					"title":             map[string]any{"type": "string"},
					"content":           map[string]any{"type": "string", "description": "Slide body, short bullet-like sentences"},
					"image_description": map[string]any{"type": "string", "description": "Suggested visual for the slide"},
					"speaker_notes":     map[string]any{"type": "string", "description": "What the presenter should say"},
				},
				"required": []string{"slide_number", "title", "content", "image_description", "speaker_notes"},
			},
		},
	},
	"required": []string{"slides"},
}

type slidesPayload struct {
	Slides []entity.Slide `json:"slides"`
}

// SlideSynthesizer turns the summary and Q&A into a numbered deck.
type SlideSynthesizer struct {
	llm LLMConnector
}

func NewSlideSynthesizer(llm LLMConnector) *SlideSynthesizer {
	return &SlideSynthesizer{llm: llm}
}

func (s *SlideSynthesizer) Synthesize(ctx context.Context, summary entity.DocumentSummary, qa []entity.QAPair) entity.Outcome[[]entity.Slide] {
	if s.llm == nil {
		return entity.Fallback(FallbackSlides(summary), entity.ErrProviderUnavailable)
	}

	raw, err := s.llm.CompleteStructured(ctx, &entity.StructuredRequest{
		System:            slidesSystemPrompt,
		Prompt:            slidesPrompt(summary, qa),
		SchemaName:        entity.SchemaSlideDeck,
		SchemaDescription: "Create presentation slides for the document",
		Schema:            slideSchema,
		Required:          true,
		Temperature:       0.7,
	})
	if err != nil {
		ctxzap.Warn(ctx, "slide generation failed, using fallback", zap.Error(err))
		return entity.Fallback(FallbackSlides(summary), err)
	}

	slides, err := DecodeSlides(raw)
	if err != nil {
		ctxzap.Warn(ctx, "slide payload rejected, using fallback", zap.Error(err))
		return entity.Fallback(FallbackSlides(summary), err)
	}

	ctxzap.Info(ctx, "slides generated", zap.Int("count", len(slides)))
	return entity.Succeeded(slides)
}

func slidesPrompt(s entity.DocumentSummary, qa []entity.QAPair) string {
	var b strings.Builder
	b.WriteString("Create a presentation of 6-10 slides for the following document.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", s.Title)
	fmt.Fprintf(&b, "Abstract: %s\n", s.Abstract)
	fmt.Fprintf(&b, "Key Points:\n")
	for _, p := range s.KeyPoints {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	fmt.Fprintf(&b, "Main Topics: %s\n", strings.Join(s.MainTopics, ", "))
	fmt.Fprintf(&b, "Document Type: %s\n", humanType(s.DocumentType))
	fmt.Fprintf(&b, "Difficulty: %s\n", s.DifficultyLevel)

	if len(qa) > 0 {
		b.WriteString("\nQuestions and answers from the document:\n")
		for _, p := range qa {
			if p.Answer == UnableToRetrieve {
				continue
			}
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", p.Question, p.Answer)
		}
	}

	b.WriteString("\nStart with a title slide and finish with a summary slide. Number slides from 1.")
	return b.String()
}

// DecodeSlides parses a deck payload and renumbers it 1..N in provider order
func DecodeSlides(raw json.RawMessage) ([]entity.Slide, error) {
	var payload slidesPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrMalformedPayload, err)
	}

	slides := Renumber(payload.Slides)
	if len(slides) == 0 {
		return nil, fmt.Errorf("%w: deck has no slides", entity.ErrMalformedPayload)
	}
	return slides, nil
}

// Renumber drops empty slides and assigns contiguous numbers from 1 in provider order.
func Renumber(in []entity.Slide) []entity.Slide {
	slides := make([]entity.Slide, 0, len(in))
	for _, s := range in {
		s.Title = strings.TrimSpace(s.Title)
		s.Content = strings.TrimSpace(s.Content)
		s.ImageDescription = strings.TrimSpace(s.ImageDescription)
		s.SpeakerNotes = strings.TrimSpace(s.SpeakerNotes)
		if s.Title == "" && s.Content == "" {
			continue
		}
		slides = append(slides, s)
	}

	for i := range slides {
		slides[i].Number = i + 1
	}
	return slides
}

// FallbackSlides is a single title slide built from the summary
func FallbackSlides(s entity.DocumentSummary) []entity.Slide {
	return []entity.Slide{{
		Number: 1,
		Title:  s.Title,
		Content: fmt.Sprintf("An overview of this %s.\n%s", humanType(s.DocumentType),
			strings.TrimSpace(s.Abstract)),
		ImageDescription: "Title card with the document name",
		SpeakerNotes:     fmt.Sprintf("Introduce %q and its main ideas.", s.Title),
	}}
}
