package presentation

import (
	"context"

	"github.com/futig/notes-backend/internal/entity"
	"github.com/futig/notes-backend/internal/pkg/formatter"
	"github.com/futig/notes-backend/internal/state"
	"github.com/futig/notes-backend/internal/usecase/pipeline"
)

type SessionStore interface {
	Session(id string) *state.Session
}

type Summarizer interface {
	Summarize(ctx context.Context, in pipeline.SummaryInput) entity.Outcome[entity.DocumentSummary]
}

type QuestionGenerator interface {
	Generate(ctx context.Context, summary entity.DocumentSummary) entity.Outcome[[]string]
}

type AnswerRetriever interface {
	AnswerAll(ctx context.Context, handle entity.CorpusHandle, questions []string) []entity.QAPair
}

type SlideSynthesizer interface {
	Synthesize(ctx context.Context, summary entity.DocumentSummary, qa []entity.QAPair) entity.Outcome[[]entity.Slide]
}

type Narrator interface {
	Available() bool
	Speak(ctx context.Context, text string, voice entity.Voice) ([]byte, error)
	NarrateSlide(ctx context.Context, deck *entity.Deck, number int, cache pipeline.AudioCache) ([]byte, error)
	NarrateDeck(ctx context.Context, deck *entity.Deck, cache pipeline.AudioCache) entity.NarrationBatchResult
}

type FormatterFactory interface {
	Create(format entity.ResultFormat) (formatter.Formatter, error)
}
