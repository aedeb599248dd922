package presentation

import (
	"context"

	"github.com/futig/notes-backend/internal/entity"
)

type PresentationUsecase interface {
	GenerateQA(ctx context.Context, sessionID string) ([]entity.QAPair, error)
	QA(ctx context.Context, sessionID string) []entity.QAPair

	GenerateSlides(ctx context.Context, sessionID string) (entity.Deck, error)
	Deck(ctx context.Context, sessionID string) entity.Deck
	Slide(ctx context.Context, sessionID string, number int) (entity.Slide, error)
	Metadata(ctx context.Context, sessionID string) entity.SlidesMetadata
	Info(ctx context.Context, sessionID string) entity.SlidesInfo
	Navigate(ctx context.Context, sessionID string, req *entity.NavigateRequest) (entity.NavigateResponse, error)
	PresenterInstructions(ctx context.Context, sessionID string) (entity.PresenterInstructions, error)
	Export(ctx context.Context, sessionID string, format entity.ResultFormat) ([]byte, string, string, error)

	NarrateSlide(ctx context.Context, sessionID string, number int) ([]byte, error)
	NarrateDeck(ctx context.Context, sessionID string) (entity.NarrationBatchResult, error)
	NarrateText(ctx context.Context, req *entity.NarrationRequest) ([]byte, error)
	ClearNarration(ctx context.Context, sessionID string) int
	CachedNarration(ctx context.Context, sessionID string) []int
	Voices() []entity.Voice
}
