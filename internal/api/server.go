package api

import (
	"net/http"
	"time"

	conversationapi "github.com/futig/notes-backend/internal/api/conversation"
	"github.com/futig/notes-backend/internal/api/docs"
	documentapi "github.com/futig/notes-backend/internal/api/document"
	"github.com/futig/notes-backend/internal/api/live"
	"github.com/futig/notes-backend/internal/api/middleware"
	presentationapi "github.com/futig/notes-backend/internal/api/presentation"
	"github.com/futig/notes-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted by SetupRouter
type Handlers struct {
	Document     *documentapi.Handler
	Presentation *presentationapi.Handler
	Conversation *conversationapi.Handler
	Live         *live.Handler
}

// RouterConfig holds router-level settings
type RouterConfig struct {
	AllowedOrigins []string
	HandlerTimeout time.Duration
	AIEnabled      bool
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(h Handlers, cfg RouterConfig, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(middleware.Session)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"message": "Notes presentation API is running"})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]any{
			"status":       "healthy",
			"ai_available": cfg.AIEnabled,
		})
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	r.Route("/api", func(r chi.Router) {
		// Websocket streams outlive the request timeout
		live.RegisterRoutes(r, h.Live)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(cfg.HandlerTimeout))

			documentapi.RegisterRoutes(r, h.Document)
			presentationapi.RegisterRoutes(r, h.Presentation)
			conversationapi.RegisterRoutes(r, h.Conversation)
		})
	})

	return r
}
