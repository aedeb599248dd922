package live

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/futig/notes-backend/internal/api/conversation"
	"github.com/futig/notes-backend/internal/api/middleware"
	"github.com/futig/notes-backend/internal/entity"
	"github.com/futig/notes-backend/internal/pkg/logger"
	"github.com/futig/notes-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
)

type LiveUsecase interface {
	Updates(ctx context.Context, sessionID string, since int64) []entity.LiveUpdate
	Subscribe(ctx context.Context, sessionID string) (<-chan entity.LiveUpdate, func())
}

// Handler streams session live updates over a websocket
type Handler struct {
	usecase  LiveUsecase
	upgrader websocket.Upgrader
}

func NewHandler(usecase LiveUsecase, allowedOrigins []string) *Handler {
	return &Handler{
		usecase: usecase,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

// RegisterRoutes registers the websocket route
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/live-updates/ws", h.Stream)
}

// Stream handles GET /api/live-updates/ws?since=N.
// Retained events after since are replayed before live ones.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StreamLiveUpdates")

	since, err := conversation.ParseSince(r)
	if err != nil {
		ctxzap.Warn(ctx, "invalid since parameter", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid parameter")
		return
	}

	sessionID := middleware.SessionID(ctx)
	updates, cancel := h.usecase.Subscribe(ctx, sessionID)
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ctxzap.Warn(ctx, "websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctxzap.Info(ctx, "live updates stream opened", zap.Int64("since", since))

	last := since
	for _, u := range h.usecase.Updates(ctx, sessionID, since) {
		if err := writeUpdate(conn, u); err != nil {
			ctxzap.Debug(ctx, "live updates write failed", zap.Error(err))
			return
		}
		last = u.Seq
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			ctxzap.Info(ctx, "live updates stream closed by client")
			return
		case u, ok := <-updates:
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "session expired")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
				return
			}
			if u.Seq <= last {
				continue
			}
			if err := writeUpdate(conn, u); err != nil {
				ctxzap.Debug(ctx, "live updates write failed", zap.Error(err))
				return
			}
			last = u.Seq
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func writeUpdate(conn *websocket.Conn, u entity.LiveUpdate) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(u)
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	allowAll := slices.Contains(allowed, "*")
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if allowAll || origin == "" {
			return true
		}
		return slices.ContainsFunc(allowed, func(o string) bool { return strings.EqualFold(o, origin) })
	}
}
