package pipeline

import (
	"context"
	"encoding/json"

	"github.com/futig/notes-backend/internal/entity"
)

type LLMConnector interface {
	CompleteStructured(ctx context.Context, req *entity.StructuredRequest) (json.RawMessage, error)
	CompleteText(ctx context.Context, req *entity.TextRequest) (string, error)
}

type Retriever interface {
	Query(ctx context.Context, handle entity.CorpusHandle, question string) (string, error)
}

type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string, voice entity.Voice) ([]byte, error)
}

// AudioCache stores narration per deck version and slide number
type AudioCache interface {
	Get(version int64, slide int) ([]byte, bool)
	Put(version int64, slide int, audio []byte) bool
}
