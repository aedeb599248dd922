package presentation

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/notes-backend/internal/entity"
	"github.com/futig/notes-backend/internal/pkg/logger"
	"github.com/futig/notes-backend/internal/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// NarrateText synthesizes arbitrary text
func (uc *PresentationUsecase) NarrateText(ctx context.Context, req *entity.NarrationRequest) ([]byte, error) {
	return uc.narrator.Speak(logger.WithAction(ctx, "narrate_text"), req.Text, req.Voice)
}

// NarrateSlide returns audio for one slide of a complete deck, cached per deck version
func (uc *PresentationUsecase) NarrateSlide(ctx context.Context, sessionID string, number int) ([]byte, error) {
	ctx = logger.WithAction(ctx, "narrate_slide")

	sess := uc.store.Session(sessionID)
	deck, err := uc.narratableDeck(sess, number)
	if err != nil {
		return nil, err
	}

	audio, err := uc.narrator.NarrateSlide(ctx, &deck, number, sess.Narration())
	if err != nil {
		return nil, err
	}

	sess.Publish(entity.UpdateNarrationReady, fmt.Sprintf("Narration ready for slide %d", number),
		map[string]any{"slide_number": number, "deck_version": deck.Version})
	return audio, nil
}

// NarrateDeck narrates all slides and reports which failed
func (uc *PresentationUsecase) NarrateDeck(ctx context.Context, sessionID string) (entity.NarrationBatchResult, error) {
	ctx = logger.WithAction(ctx, "narrate_deck")

	sess := uc.store.Session(sessionID)
	deck, err := uc.narratableDeck(sess, wholeDeck)
	if err != nil {
		return entity.NarrationBatchResult{}, err
	}

	result := uc.narrator.NarrateDeck(ctx, &deck, sess.Narration())
	sess.Publish(entity.UpdateNarrationReady, "Deck narration finished", result)
	return result, nil
}

// ClearNarration drops cached audio and returns how many entries were removed
func (uc *PresentationUsecase) ClearNarration(ctx context.Context, sessionID string) int {
	removed := uc.store.Session(sessionID).Narration().Clear()
	ctxzap.Info(ctx, "narration cache cleared", zap.Int("removed", removed))
	return removed
}

// CachedNarration lists slide numbers with cached audio for the current deck
func (uc *PresentationUsecase) CachedNarration(ctx context.Context, sessionID string) []int {
	return uc.store.Session(sessionID).Narration().Slides()
}

func (uc *PresentationUsecase) Voices() []entity.Voice {
	return entity.Voices
}

// PresenterInstructions describes the deck for a voice presenter
func (uc *PresentationUsecase) PresenterInstructions(ctx context.Context, sessionID string) (entity.PresenterInstructions, error) {
	sess := uc.store.Session(sessionID)
	deck, ok := sess.Deck()
	if !ok || len(deck.Slides) == 0 {
		return entity.PresenterInstructions{}, entity.ErrDeckNotReady
	}

	title := uc.documentTitle(sess, deck)

	var b strings.Builder
	fmt.Fprintf(&b, "You are presenting %q, a deck of %d slides.\n", title, len(deck.Slides))
	b.WriteString("Present one slide at a time, follow the speaker notes, and answer audience questions using the document content.\n\n")
	for _, s := range deck.Slides {
		fmt.Fprintf(&b, "Slide %d: %s\n", s.Number, s.Title)
		if s.SpeakerNotes != "" {
			fmt.Fprintf(&b, "Notes: %s\n", s.SpeakerNotes)
		}
	}

	return entity.PresenterInstructions{
		DocumentTitle: title,
		TotalSlides:   len(deck.Slides),
		Instructions:  strings.TrimRight(b.String(), "\n"),
	}, nil
}

const wholeDeck = -1

// narratableDeck returns the deck when it can be narrated. Unless number is
// wholeDeck it must name an existing slide, which is checked before completeness.
func (uc *PresentationUsecase) narratableDeck(sess *state.Session, number int) (entity.Deck, error) {
	if !uc.narrator.Available() {
		return entity.Deck{}, entity.ErrProviderUnavailable
	}

	deck, ok := sess.Deck()
	if !ok {
		return entity.Deck{}, entity.ErrDeckNotReady
	}
	if number != wholeDeck {
		if _, ok := deck.Slide(number); !ok {
			return entity.Deck{}, fmt.Errorf("%w: %d", entity.ErrSlideNotFound, number)
		}
	}
	if !deck.Ready {
		return entity.Deck{}, entity.ErrDeckIncomplete
	}
	return deck, nil
}
