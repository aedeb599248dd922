package pipeline

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/futig/notes-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Narrator synthesizes speech for free text and for deck slides.
type Narrator struct {
	tts           SpeechSynthesizer
	maxTextLength int
	defaultVoice  entity.Voice
	concurrency   int
}

func NewNarrator(tts SpeechSynthesizer, maxTextLength int, defaultVoice entity.Voice, concurrency int) *Narrator {
	if !defaultVoice.IsValid() {
		defaultVoice = entity.VoiceAlloy
	}
	return &Narrator{
		tts:           tts,
		maxTextLength: maxTextLength,
		defaultVoice:  defaultVoice,
		concurrency:   max(concurrency, 1),
	}
}

func (n *Narrator) Available() bool {
	return n.tts != nil
}

func (n *Narrator) DefaultVoice() entity.Voice {
	return n.defaultVoice
}

// NarrationText is what gets spoken for a slide
func NarrationText(s entity.Slide) string {
	title := strings.TrimSpace(s.Title)
	content := strings.TrimSpace(s.Content)
	switch {
	case title == "":
		return content
	case content == "":
		return title
	default:
		return title + ". " + content
	}
}

// Speak validates text and voice before calling the provider.
// Text over the length cap is rejected, never truncated.
func (n *Narrator) Speak(ctx context.Context, text string, voice entity.Voice) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text", entity.ErrMissingField)
	}
	if n.maxTextLength > 0 && utf8.RuneCountInString(text) > n.maxTextLength {
		return nil, fmt.Errorf("%w: %d characters, limit is %d", entity.ErrTextTooLong, utf8.RuneCountInString(text), n.maxTextLength)
	}

	if voice == "" {
		voice = n.defaultVoice
	}
	if !voice.IsValid() {
		return nil, fmt.Errorf("%w: %s", entity.ErrInvalidVoice, voice)
	}

	if n.tts == nil {
		return nil, entity.ErrProviderUnavailable
	}

	return n.tts.Synthesize(ctx, text, voice)
}

// NarrateSlide serves a slide from the cache or synthesizes and stores it.
func (n *Narrator) NarrateSlide(ctx context.Context, deck *entity.Deck, number int, cache AudioCache) ([]byte, error) {
	slide, ok := deck.Slide(number)
	if !ok {
		return nil, fmt.Errorf("%w: %d", entity.ErrSlideNotFound, number)
	}

	if audio, ok := cache.Get(deck.Version, number); ok {
		ctxzap.Debug(ctx, "narration cache hit", zap.Int("slide", number))
		return audio, nil
	}

	audio, err := n.Speak(ctx, NarrationText(slide), n.defaultVoice)
	if err != nil {
		return nil, err
	}

	if !cache.Put(deck.Version, number, audio) {
		ctxzap.Info(ctx, "deck replaced during narration, audio not cached",
			zap.Int("slide", number), zap.Int64("deck_version", deck.Version))
	}
	return audio, nil
}

// NarrateDeck narrates every slide that is not cached yet.
// A failure on one slide is recorded and does not stop the others.
func (n *Narrator) NarrateDeck(ctx context.Context, deck *entity.Deck, cache AudioCache) entity.NarrationBatchResult {
	result := entity.NarrationBatchResult{
		DeckVersion: deck.Version,
		Narrated:    []int{},
		Failed:      []int{},
	}

	var g errgroup.Group
	g.SetLimit(n.concurrency)

	ok := make([]bool, len(deck.Slides))
	for i, s := range deck.Slides {
		g.Go(func() error {
			if _, err := n.NarrateSlide(ctx, deck, s.Number, cache); err != nil {
				ctxzap.Warn(ctx, "slide narration failed", zap.Int("slide", s.Number), zap.Error(err))
				return nil
			}
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	for i, s := range deck.Slides {
		if ok[i] {
			result.Narrated = append(result.Narrated, s.Number)
		} else {
			result.Failed = append(result.Failed, s.Number)
		}
	}

	ctxzap.Info(ctx, "deck narration finished",
		zap.Int("narrated", len(result.Narrated)), zap.Int("failed", len(result.Failed)))
	return result
}
