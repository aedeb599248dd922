package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/futig/notes-backend/internal/state"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// SessionHeader selects the session a request works on.
// The query parameter is read when the header is absent, as on websocket upgrades.
const (
	SessionHeader     = "X-Session-ID"
	SessionQueryParam = "session_id"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

type sessionKey struct{}

// Session resolves the session id of the request and stores it in the context
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if id == "" {
			id = r.URL.Query().Get(SessionQueryParam)
		}
		if !sessionIDPattern.MatchString(id) {
			id = state.DefaultSessionID
		}

		// Added in place so the request logger's finish line carries it too
		ctxzap.AddFields(r.Context(), zap.String("session_id", id))
		ctx := context.WithValue(r.Context(), sessionKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionID returns the session id stored by Session, or the default session
func SessionID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionKey{}).(string); ok {
		return id
	}
	return state.DefaultSessionID
}
