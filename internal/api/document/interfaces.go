package document

import (
	"context"

	"github.com/futig/notes-backend/internal/entity"
)

type DocumentUsecase interface {
	Upload(ctx context.Context, sessionID string, doc entity.Document) (*entity.UploadResult, error)
	Status(ctx context.Context, sessionID string) entity.DocumentStatus
	References(ctx context.Context, sessionID string) entity.ReferenceList
	AIEnabled() bool
}
