package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/futig/notes-backend/internal/entity"
)

func TestError_Body(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusNotFound, "slide 99 not found")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	var body entity.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "Not Found" || body.Message != "slide 99 not found" {
		t.Errorf("body = %+v", body)
	}
}

func TestAudio_Headers(t *testing.T) {
	rec := httptest.NewRecorder()
	Audio(rec, []byte("ID3"), "slide-1.mp3")

	if got := rec.Header().Get("Content-Type"); got != "audio/mpeg" {
		t.Errorf("Content-Type = %q, want audio/mpeg", got)
	}
	if got := rec.Header().Get("Content-Length"); got != "3" {
		t.Errorf("Content-Length = %q, want 3", got)
	}
	if rec.Body.String() != "ID3" {
		t.Errorf("body = %q, want ID3", rec.Body.String())
	}
}
