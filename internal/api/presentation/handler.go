package presentation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/futig/notes-backend/internal/api/middleware"
	"github.com/futig/notes-backend/internal/entity"
	"github.com/futig/notes-backend/internal/pkg/logger"
	"github.com/futig/notes-backend/internal/pkg/response"
	"github.com/futig/notes-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   PresentationUsecase
	validator *validator.Validator
}

func NewHandler(usecase PresentationUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// GenerateQA handles POST /api/qa/generate
func (h *Handler) GenerateQA(w http.ResponseWriter, r *http.Request) {
	ctx := providerContext(r, "GenerateQA")

	qa, err := h.usecase.GenerateQA(ctx, middleware.SessionID(ctx))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, qa)
}

// GetQA handles GET /api/qa
func (h *Handler) GetQA(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetQA")
	h.respondJSON(w, http.StatusOK, h.usecase.QA(ctx, middleware.SessionID(ctx)))
}

// GenerateSlides handles POST /api/slides/generate
func (h *Handler) GenerateSlides(w http.ResponseWriter, r *http.Request) {
	ctx := providerContext(r, "GenerateSlides")

	deck, err := h.usecase.GenerateSlides(ctx, middleware.SessionID(ctx))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, deck)
}

// GetSlides handles GET /api/slides
func (h *Handler) GetSlides(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetSlides")
	h.respondJSON(w, http.StatusOK, h.usecase.Deck(ctx, middleware.SessionID(ctx)).Slides)
}

// GetSlide handles GET /api/slides/{slide_number}
func (h *Handler) GetSlide(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetSlide")

	number, err := slideNumber(r)
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid slide number", err)
		return
	}

	slide, err := h.usecase.Slide(ctx, middleware.SessionID(ctx), number)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, slide)
}

// GetMetadata handles GET /api/slides/metadata
func (h *Handler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetMetadata")
	h.respondJSON(w, http.StatusOK, h.usecase.Metadata(ctx, middleware.SessionID(ctx)))
}

// GetInfo handles GET /api/slides/info
func (h *Handler) GetInfo(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetInfo")
	h.respondJSON(w, http.StatusOK, h.usecase.Info(ctx, middleware.SessionID(ctx)))
}

// Navigate handles POST /api/slides/navigate
func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Navigate")

	var req entity.NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if !req.Action.IsValid() {
		h.respondError(ctx, w, http.StatusBadRequest, "action must be next, previous or goto", nil)
		return
	}

	resp, err := h.usecase.Navigate(ctx, middleware.SessionID(ctx), &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// GetPresenterInstructions handles GET /api/slides/presenter-instructions
func (h *Handler) GetPresenterInstructions(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetPresenterInstructions")

	instructions, err := h.usecase.PresenterInstructions(ctx, middleware.SessionID(ctx))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, instructions)
}

// Export handles GET /api/slides/export?format=markdown|docx|pdf
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Export")

	format := entity.ResultFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = entity.FormatMarkdown
	}

	body, contentType, filename, err := h.usecase.Export(ctx, middleware.SessionID(ctx), format)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "deck exported", zap.String("format", string(format)), zap.Int("bytes", len(body)))
	response.Attachment(w, contentType, filename, body)
}

// NarrateSlide handles POST /api/slides/{slide_number}/narration
func (h *Handler) NarrateSlide(w http.ResponseWriter, r *http.Request) {
	ctx := providerContext(r, "NarrateSlide")

	number, err := slideNumber(r)
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid slide number", err)
		return
	}

	audio, err := h.usecase.NarrateSlide(ctx, middleware.SessionID(ctx), number)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Audio(w, audio, fmt.Sprintf("slide-%d.mp3", number))
}

// NarrateDeck handles POST /api/slides/narration
func (h *Handler) NarrateDeck(w http.ResponseWriter, r *http.Request) {
	ctx := providerContext(r, "NarrateDeck")

	result, err := h.usecase.NarrateDeck(ctx, middleware.SessionID(ctx))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// NarrateText handles POST /api/narration
func (h *Handler) NarrateText(w http.ResponseWriter, r *http.Request) {
	ctx := providerContext(r, "NarrateText")

	var req entity.NarrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.validator.ValidateNarration(&req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	audio, err := h.usecase.NarrateText(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Audio(w, audio, "narration.mp3")
}

// GetCachedNarration handles GET /api/narration
func (h *Handler) GetCachedNarration(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetCachedNarration")
	h.respondJSON(w, http.StatusOK, map[string][]int{
		"slides": h.usecase.CachedNarration(ctx, middleware.SessionID(ctx)),
	})
}

// ClearNarration handles POST /api/narration/clear
func (h *Handler) ClearNarration(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ClearNarration")
	removed := h.usecase.ClearNarration(ctx, middleware.SessionID(ctx))

	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":  "cleared",
		"removed": removed,
	})
}

// GetVoices handles GET /api/narration/voices
func (h *Handler) GetVoices(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string][]entity.Voice{"voices": h.usecase.Voices()})
}

// providerContext keeps provider calls running when the client goes away
func providerContext(r *http.Request, action string) context.Context {
	return context.WithoutCancel(logger.WithAction(r.Context(), action))
}

func slideNumber(r *http.Request) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, "slide_number"))
	if err != nil {
		return 0, fmt.Errorf("%w: slide_number", entity.ErrInvalidParameter)
	}
	return n, nil
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	response.JSON(w, status, data)
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Error(ctx, message)
	}
	response.Error(w, status, message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrSlideNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "slide not found", err)
	case errors.Is(err, entity.ErrTextTooLong):
		h.respondError(ctx, w, http.StatusBadRequest, "text too long", err)
	case errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidVoice),
		errors.Is(err, entity.ErrInvalidFormat),
		errors.Is(err, entity.ErrInvalidParameter):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	case errors.Is(err, entity.ErrDocumentNotLoaded),
		errors.Is(err, entity.ErrCorpusNotReady),
		errors.Is(err, entity.ErrIndexFailed),
		errors.Is(err, entity.ErrDeckNotReady),
		errors.Is(err, entity.ErrDeckIncomplete):
		h.respondError(ctx, w, http.StatusBadRequest, prerequisiteMessage(err), err)
	case errors.Is(err, entity.ErrProviderUnavailable):
		h.respondError(ctx, w, http.StatusInternalServerError, "AI provider is not configured", err)
	case errors.Is(err, entity.ErrSynthesisFailed):
		h.respondError(ctx, w, http.StatusInternalServerError, "speech synthesis failed", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}

func prerequisiteMessage(err error) string {
	switch {
	case errors.Is(err, entity.ErrDocumentNotLoaded):
		return "upload a document first"
	case errors.Is(err, entity.ErrCorpusNotReady):
		return "document is still being indexed"
	case errors.Is(err, entity.ErrIndexFailed):
		return "document indexing failed; upload the document again"
	case errors.Is(err, entity.ErrDeckIncomplete):
		return "slide deck is incomplete"
	default:
		return "generate slides first"
	}
}
