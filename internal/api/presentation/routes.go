package presentation

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers Q&A, slide and narration routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/qa", func(r chi.Router) {
		r.Get("/", h.GetQA)
		r.Post("/generate", h.GenerateQA)
	})

	r.Route("/slides", func(r chi.Router) {
		r.Get("/", h.GetSlides)
		r.Post("/generate", h.GenerateSlides)
		r.Get("/metadata", h.GetMetadata)
		r.Get("/info", h.GetInfo)
		r.Post("/navigate", h.Navigate)
		r.Get("/presenter-instructions", h.GetPresenterInstructions)
		r.Get("/export", h.Export)
		r.Post("/narration", h.NarrateDeck)

		r.Route("/{slide_number}", func(r chi.Router) {
			r.Get("/", h.GetSlide)
			r.Post("/narration", h.NarrateSlide)
		})
	})

	r.Route("/narration", func(r chi.Router) {
		r.Post("/", h.NarrateText)
		r.Get("/", h.GetCachedNarration)
		r.Post("/clear", h.ClearNarration)
		r.Get("/voices", h.GetVoices)
	})
}
