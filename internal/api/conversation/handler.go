package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/futig/notes-backend/internal/api/middleware"
	"github.com/futig/notes-backend/internal/entity"
	"github.com/futig/notes-backend/internal/pkg/logger"
	"github.com/futig/notes-backend/internal/pkg/response"
	"github.com/futig/notes-backend/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   ConversationUsecase
	validator *validator.Validator
}

func NewHandler(usecase ConversationUsecase, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		validator: validator,
	}
}

// GetMessages handles GET /api/conversation
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetMessages")
	h.respondJSON(w, http.StatusOK, h.usecase.Messages(ctx, middleware.SessionID(ctx)))
}

// AddMessage handles POST /api/conversation
func (h *Handler) AddMessage(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(logger.WithAction(r.Context(), "AddMessage"))

	var req entity.AddMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.Role == "" {
		req.Role = entity.RoleUser
	}

	if err := h.validator.ValidateMessage(&req); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, h.usecase.AddMessage(ctx, middleware.SessionID(ctx), &req))
}

// GetLiveUpdates handles GET /api/live-updates?since=N
func (h *Handler) GetLiveUpdates(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetLiveUpdates")

	since, err := ParseSince(r)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, h.usecase.Updates(ctx, middleware.SessionID(ctx), since))
}

// ParseSince reads the optional since query parameter
func ParseSince(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		return 0, nil
	}

	since, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || since < 0 {
		return 0, entity.ErrInvalidParameter
	}
	return since, nil
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
	if errors.Is(err, entity.ErrMissingField) || errors.Is(err, entity.ErrInvalidParameter) {
		h.respondError(ctx, w, http.StatusBadRequest, "invalid parameter", err)
	} else {
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
