package document

import (
	"context"

	"github.com/futig/notes-backend/internal/entity"
	"github.com/futig/notes-backend/internal/state"
	"github.com/futig/notes-backend/internal/usecase/pipeline"
)

type SessionStore interface {
	Session(id string) *state.Session
}

type TextExtractor interface {
	Extract(content []byte) (entity.ExtractedText, error)
}

type Analyzer interface {
	Analyze(text string) entity.HeuristicAnalysis
}

type Summarizer interface {
	Summarize(ctx context.Context, in pipeline.SummaryInput) entity.Outcome[entity.DocumentSummary]
}

type CorpusIndexer interface {
	CreateIndex(ctx context.Context, name string) (entity.CorpusHandle, error)
	AddDocument(ctx context.Context, handle entity.CorpusHandle, path string) (entity.IndexStatus, error)
	DropIndex(ctx context.Context, handle entity.CorpusHandle) error
}

type ReferenceExtractor interface {
	Extract(ctx context.Context, handle entity.CorpusHandle) entity.Outcome[[]entity.ReferenceLink]
}
