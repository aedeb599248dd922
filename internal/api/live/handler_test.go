package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/futig/notes-backend/internal/api/middleware"
	"github.com/futig/notes-backend/internal/entity"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type fakeUsecase struct {
	backlog []entity.LiveUpdate
	ch      chan entity.LiveUpdate
	session chan string
}

func (f *fakeUsecase) Updates(_ context.Context, _ string, since int64) []entity.LiveUpdate {
	var out []entity.LiveUpdate
	for _, u := range f.backlog {
		if u.Seq > since {
			out = append(out, u)
		}
	}
	return out
}

func (f *fakeUsecase) Subscribe(_ context.Context, sessionID string) (<-chan entity.LiveUpdate, func()) {
	f.session <- sessionID
	return f.ch, func() {}
}

func newServer(t *testing.T, uc LiveUsecase, origins []string) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Use(middleware.Session)
	RegisterRoutes(r, NewHandler(uc, origins))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/live-updates/ws" + query
}

func TestStream_ReplaysThenStreams(t *testing.T) {
	uc := &fakeUsecase{
		backlog: []entity.LiveUpdate{{Seq: 1, Kind: entity.UpdateDocumentAnalyzed}, {Seq: 2, Kind: entity.UpdateSummaryReady}},
		ch:      make(chan entity.LiveUpdate, 4),
		session: make(chan string, 1),
	}
	srv := newServer(t, uc, []string{"*"})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "?since=1&session_id=abc"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if got := <-uc.session; got != "abc" {
		t.Errorf("session = %q, want abc", got)
	}

	uc.ch <- entity.LiveUpdate{Seq: 2, Kind: entity.UpdateSummaryReady}
	uc.ch <- entity.LiveUpdate{Seq: 3, Kind: entity.UpdateIndexReady}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first, second entity.LiveUpdate
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}

	if first.Seq != 2 || second.Seq != 3 || second.Kind != entity.UpdateIndexReady {
		t.Errorf("updates = %+v, %+v; want seq 2 then 3 without duplicates", first, second)
	}
}

func TestStream_ClosesWhenSessionExpires(t *testing.T) {
	uc := &fakeUsecase{ch: make(chan entity.LiveUpdate), session: make(chan string, 1)}
	srv := newServer(t, uc, []string{"*"})

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	<-uc.session

	close(uc.ch)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("ReadMessage() error = %v, want going away close", err)
	}
}

func TestStream_RejectsUnknownOrigin(t *testing.T) {
	uc := &fakeUsecase{ch: make(chan entity.LiveUpdate), session: make(chan string, 1)}
	srv := newServer(t, uc, []string{"http://localhost:3000"})

	header := http.Header{"Origin": []string{"http://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), header)

	if err == nil {
		t.Fatal("Dial() succeeded, want handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v, want 403", resp)
	}
}

func TestStream_InvalidSince(t *testing.T) {
	uc := &fakeUsecase{ch: make(chan entity.LiveUpdate), session: make(chan string, 1)}
	srv := newServer(t, uc, []string{"*"})

	resp, err := http.Get(srv.URL + "/live-updates/ws?since=x")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
