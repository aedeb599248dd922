package conversation

import (
	"context"

	"github.com/futig/notes-backend/internal/entity"
)

type ConversationUsecase interface {
	Messages(ctx context.Context, sessionID string) []entity.Message
	AddMessage(ctx context.Context, sessionID string, req *entity.AddMessageRequest) []entity.Message
	Updates(ctx context.Context, sessionID string, since int64) []entity.LiveUpdate
}
