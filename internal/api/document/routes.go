package document

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers document routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/upload", h.UploadInfo)
	r.Post("/upload", h.Upload)
	r.Get("/document-summary", h.Summary)
	r.Get("/references", h.References)
}
