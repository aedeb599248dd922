package presentation

import (
	"context"
	"fmt"

	"github.com/futig/notes-backend/internal/entity"
	"github.com/futig/notes-backend/internal/pkg/logger"
	"github.com/futig/notes-backend/internal/state"
	"github.com/futig/notes-backend/internal/usecase/pipeline"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// PresentationUsecase drives Q&A, slides and narration for the session document
type PresentationUsecase struct {
	store      SessionStore
	summarizer Summarizer
	questions  QuestionGenerator
	answers    AnswerRetriever
	slides     SlideSynthesizer
	narrator   Narrator
	formatters FormatterFactory
	aiEnabled  bool
}

// NewUsecase creates a new presentation use case
func NewUsecase(
	store SessionStore,
	summarizer Summarizer,
	questions QuestionGenerator,
	answers AnswerRetriever,
	slides SlideSynthesizer,
	narrator Narrator,
	formatters FormatterFactory,
	aiEnabled bool,
) *PresentationUsecase {
	return &PresentationUsecase{
		store:      store,
		summarizer: summarizer,
		questions:  questions,
		answers:    answers,
		slides:     slides,
		narrator:   narrator,
		formatters: formatters,
		aiEnabled:  aiEnabled,
	}
}

// GenerateQA generates questions for the current document and answers them from its corpus
func (uc *PresentationUsecase) GenerateQA(ctx context.Context, sessionID string) ([]entity.QAPair, error) {
	ctx = logger.WithAction(ctx, "generate_qa")

	if !uc.aiEnabled {
		return nil, entity.ErrProviderUnavailable
	}

	sess := uc.store.Session(sessionID)
	doc, ok := sess.Document()
	if !ok {
		return nil, entity.ErrDocumentNotLoaded
	}

	handle := sess.Corpus()
	if handle.IsZero() {
		if sess.Indexing() == entity.IndexingFailed {
			return nil, entity.ErrIndexFailed
		}
		return nil, entity.ErrCorpusNotReady
	}

	summary := uc.ensureSummary(ctx, sess, doc)

	questions := uc.questions.Generate(ctx, summary)
	if questions.Degraded {
		ctxzap.Warn(ctx, "using template questions", zap.String("reason", questions.Reason))
	}

	qa := uc.answers.AnswerAll(ctx, handle, questions.Value)
	if !sess.SetQA(doc.ID, qa) {
		return nil, fmt.Errorf("%w: document replaced during generation", entity.ErrDocumentNotLoaded)
	}

	sess.Publish(entity.UpdateQAReady, "Questions and answers ready", qa)
	return qa, nil
}

func (uc *PresentationUsecase) QA(ctx context.Context, sessionID string) []entity.QAPair {
	qa := uc.store.Session(sessionID).QA()
	if qa == nil {
		return []entity.QAPair{}
	}
	return qa
}

// GenerateSlides builds a new deck version. Q&A is generated first when missing.
func (uc *PresentationUsecase) GenerateSlides(ctx context.Context, sessionID string) (entity.Deck, error) {
	ctx = logger.WithAction(ctx, "generate_slides")

	if !uc.aiEnabled {
		return entity.Deck{}, entity.ErrProviderUnavailable
	}

	sess := uc.store.Session(sessionID)
	doc, ok := sess.Document()
	if !ok {
		return entity.Deck{}, entity.ErrDocumentNotLoaded
	}

	qa := sess.QA()
	if len(qa) == 0 {
		var err error
		if qa, err = uc.GenerateQA(ctx, sessionID); err != nil {
			return entity.Deck{}, fmt.Errorf("generate qa: %w", err)
		}
	}

	summary := uc.ensureSummary(ctx, sess, doc)
	outcome := uc.slides.Synthesize(ctx, summary, qa)

	deck, ok := sess.ReplaceDeck(doc.ID, entity.Deck{
		Title:    summary.Title,
		Slides:   outcome.Value,
		Degraded: outcome.Degraded,
	})
	if !ok {
		return entity.Deck{}, fmt.Errorf("%w: document replaced during generation", entity.ErrDocumentNotLoaded)
	}

	ctxzap.Info(ctx, "deck stored",
		zap.Int64("deck_version", deck.Version),
		zap.Int("slides", len(deck.Slides)),
		zap.Bool("degraded", deck.Degraded),
	)
	sess.Publish(entity.UpdateDeckReady, "Slides ready", entity.SlidesMetadata{Total: len(deck.Slides), Numbers: deck.Numbers()})

	return deck, nil
}

// Deck returns the current deck, or an empty one before generation
func (uc *PresentationUsecase) Deck(ctx context.Context, sessionID string) entity.Deck {
	deck, ok := uc.store.Session(sessionID).Deck()
	if !ok {
		return entity.Deck{Slides: []entity.Slide{}}
	}
	return deck
}

func (uc *PresentationUsecase) Slide(ctx context.Context, sessionID string, number int) (entity.Slide, error) {
	deck, ok := uc.store.Session(sessionID).Deck()
	if !ok {
		return entity.Slide{}, entity.ErrDeckNotReady
	}

	slide, ok := deck.Slide(number)
	if !ok {
		return entity.Slide{}, fmt.Errorf("%w: %d", entity.ErrSlideNotFound, number)
	}
	return slide, nil
}

func (uc *PresentationUsecase) Metadata(ctx context.Context, sessionID string) entity.SlidesMetadata {
	deck := uc.Deck(ctx, sessionID)
	return entity.SlidesMetadata{Total: len(deck.Slides), Numbers: deck.Numbers()}
}

func (uc *PresentationUsecase) Info(ctx context.Context, sessionID string) entity.SlidesInfo {
	sess := uc.store.Session(sessionID)
	deck := uc.Deck(ctx, sessionID)

	return entity.SlidesInfo{
		TotalSlides:     len(deck.Slides),
		CurrentSlide:    sess.CurrentSlide(),
		DocumentTitle:   uc.documentTitle(sess, deck),
		SlidesAvailable: len(deck.Slides) > 0,
		Slides:          deck.Slides,
	}
}

func (uc *PresentationUsecase) Navigate(ctx context.Context, sessionID string, req *entity.NavigateRequest) (entity.NavigateResponse, error) {
	sess := uc.store.Session(sessionID)

	resp, err := sess.Navigate(req.Action, req.SlideNumber)
	if err != nil {
		return entity.NavigateResponse{}, err
	}

	sess.Publish(entity.UpdateSlideChanged, fmt.Sprintf("Slide %d of %d", resp.CurrentSlide, resp.TotalSlides), resp)
	return resp, nil
}

// Export renders the current deck with the formatter for format
func (uc *PresentationUsecase) Export(ctx context.Context, sessionID string, format entity.ResultFormat) ([]byte, string, string, error) {
	if !format.IsValid() {
		return nil, "", "", fmt.Errorf("%w: %s", entity.ErrInvalidFormat, format)
	}

	deck, ok := uc.store.Session(sessionID).Deck()
	if !ok || len(deck.Slides) == 0 {
		return nil, "", "", entity.ErrDeckNotReady
	}

	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: %v", entity.ErrInvalidFormat, err)
	}

	body, err := f.Format(&deck)
	if err != nil {
		return nil, "", "", fmt.Errorf("format deck: %w", err)
	}

	return body, f.ContentType(), "presentation" + f.FileExtension(), nil
}

func (uc *PresentationUsecase) ensureSummary(ctx context.Context, sess *state.Session, doc state.Document) entity.DocumentSummary {
	if summary, ok := sess.Summary(); ok {
		return summary.Value
	}

	ctxzap.Info(ctx, "summary missing, generating before continuing")
	outcome := uc.summarizer.Summarize(ctx, pipeline.SummaryInput{
		Text:     doc.Text,
		FileName: doc.FileName,
		Analysis: &doc.Analysis,
	})
	kept, stored := sess.SetSummaryOnce(doc.ID, outcome)
	if stored {
		sess.Publish(entity.UpdateSummaryReady, "Summary ready", kept.Value)
	}
	return kept.Value
}

func (uc *PresentationUsecase) documentTitle(sess *state.Session, deck entity.Deck) string {
	if deck.Title != "" {
		return deck.Title
	}
	if summary, ok := sess.Summary(); ok {
		return summary.Value.Title
	}
	if doc, ok := sess.Document(); ok {
		return pipeline.DocumentTitle(doc.FileName)
	}
	return ""
}
