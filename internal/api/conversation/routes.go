package conversation

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers conversation and live update routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/conversation", h.GetMessages)
	r.Post("/conversation", h.AddMessage)
	r.Get("/live-updates", h.GetLiveUpdates)
}
