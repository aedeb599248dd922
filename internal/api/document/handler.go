package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/futig/notes-backend/internal/api/middleware"
	"github.com/futig/notes-backend/internal/config"
	"github.com/futig/notes-backend/internal/entity"
	"github.com/futig/notes-backend/internal/pkg/logger"
	"github.com/futig/notes-backend/internal/pkg/response"
	"github.com/futig/notes-backend/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const uploadField = "file"

type Handler struct {
	usecase   DocumentUsecase
	cfg       config.FileUploadConfig
	validator *validator.Validator
}

func NewHandler(usecase DocumentUsecase, cfg config.FileUploadConfig, validator *validator.Validator) *Handler {
	return &Handler{
		usecase:   usecase,
		cfg:       cfg,
		validator: validator,
	}
}

// Upload handles POST /api/upload
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Upload")

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.respondError(ctx, w, http.StatusBadRequest, "file too large", err)
			return
		}
		h.respondError(ctx, w, http.StatusBadRequest, "invalid form data", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[uploadField]
	if len(files) == 0 {
		h.respondError(ctx, w, http.StatusBadRequest, "file is required", nil)
		return
	}
	fh := files[0]

	if err := h.validator.ValidateUpload(fh); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "failed to read file", err)
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "failed to read file", err)
		return
	}

	ctxzap.Info(ctx, "uploading document",
		zap.String("file_name", fh.Filename),
		zap.Int64("size", fh.Size),
	)

	result, err := h.usecase.Upload(ctx, middleware.SessionID(ctx), entity.Document{
		FileName:  fh.Filename,
		MediaType: fh.Header.Get("Content-Type"),
		Content:   content,
	})
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// UploadInfo handles GET /api/upload
func (h *Handler) UploadInfo(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, entity.UploadInfo{
		Message:          "PDF upload endpoint ready",
		MaxFileSize:      formatLimit(h.cfg.MaxFileSize),
		MaxFileSizeBytes: h.cfg.MaxFileSize,
		SupportedFormats: []string{"PDF"},
		Status:           "operational",
		AIAvailable:      h.usecase.AIEnabled(),
	})
}

// References handles GET /api/references
func (h *Handler) References(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "References")

	refs := h.usecase.References(ctx, middleware.SessionID(ctx))
	if refs.Degraded {
		ctxzap.Debug(ctx, "references unavailable", zap.String("reason", refs.Reason))
	}
	h.respondJSON(w, http.StatusOK, refs)
}

// Summary handles GET /api/document-summary
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Summary")
	h.respondJSON(w, http.StatusOK, h.usecase.Status(ctx, middleware.SessionID(ctx)))
}

func formatLimit(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
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
	case errors.Is(err, entity.ErrInvalidExtension), errors.Is(err, entity.ErrInvalidMediaType):
		h.respondError(ctx, w, http.StatusBadRequest, "only PDF files are supported", err)
	case errors.Is(err, entity.ErrFileTooLarge):
		h.respondError(ctx, w, http.StatusBadRequest, "file too large", err)
	case errors.Is(err, entity.ErrInvalidFile), errors.Is(err, entity.ErrMissingField):
		h.respondError(ctx, w, http.StatusBadRequest, "invalid file", err)
	case errors.Is(err, entity.ErrExtractionFailed):
		h.respondError(ctx, w, http.StatusInternalServerError, "failed to extract text from PDF", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "internal server error", err)
	}
}
