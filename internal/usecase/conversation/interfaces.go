package conversation

import (
	"context"

	"github.com/futig/notes-backend/internal/entity"
	"github.com/futig/notes-backend/internal/state"
)

type SessionStore interface {
	Session(id string) *state.Session
}

type AnswerRetriever interface {
	Answer(ctx context.Context, handle entity.CorpusHandle, question string) (string, bool)
}
