package document

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/futig/notes-backend/internal/api/middleware"
	"github.com/futig/notes-backend/internal/config"
	"github.com/futig/notes-backend/internal/entity"
	"github.com/futig/notes-backend/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type fakeUsecase struct {
	err       error
	sessionID string
	doc       entity.Document
}

func (f *fakeUsecase) Upload(_ context.Context, sessionID string, doc entity.Document) (*entity.UploadResult, error) {
	f.sessionID = sessionID
	f.doc = doc
	if f.err != nil {
		return nil, f.err
	}
	return &entity.UploadResult{DocumentID: "doc-1", FileName: doc.FileName, Indexing: entity.IndexingStarted}, nil
}

func (f *fakeUsecase) Status(context.Context, string) entity.DocumentStatus {
	return entity.DocumentStatus{Summary: entity.DocumentSummary{Title: "T"}, CorpusReady: true}
}

func (f *fakeUsecase) References(_ context.Context, sessionID string) entity.ReferenceList {
	f.sessionID = sessionID
	return entity.ReferenceList{References: []entity.ReferenceLink{{Title: "Graph Theory", URL: "https://example.com/graphs"}}}
}

func (f *fakeUsecase) AIEnabled() bool {
	return true
}

func newRouter(uc DocumentUsecase) http.Handler {
	cfg := config.FileUploadConfig{MaxFileSize: 1024, MaxUploadSize: 4096}
	r := chi.NewRouter()
	r.Use(middleware.Session)
	RegisterRoutes(r, NewHandler(uc, cfg, validator.New(cfg, 4000)))
	return r
}

func uploadRequest(t *testing.T, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart() error = %v", err)
	}
	part.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(middleware.SessionHeader, "s1")
	return req
}

func TestUpload_Success(t *testing.T) {
	uc := &fakeUsecase{}
	rec := httptest.NewRecorder()

	newRouter(uc).ServeHTTP(rec, uploadRequest(t, "notes.pdf", "application/pdf", []byte("%PDF-1.4 body")))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	var got entity.UploadResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.DocumentID != "doc-1" || uc.sessionID != "s1" || string(uc.doc.Content) != "%PDF-1.4 body" {
		t.Errorf("result = %+v, session = %q", got, uc.sessionID)
	}
}

func TestUpload_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		content     []byte
		ucErr       error
		want        int
	}{
		{"wrong extension", "notes.txt", "text/plain", []byte("x"), nil, http.StatusBadRequest},
		{"wrong media type", "notes.pdf", "image/png", []byte("x"), nil, http.StatusBadRequest},
		{"octet stream", "notes.pdf", "application/octet-stream", []byte("x"), nil, http.StatusBadRequest},
		{"too large", "notes.pdf", "application/pdf", bytes.Repeat([]byte("x"), 2048), nil, http.StatusBadRequest},
		{"extraction error", "notes.pdf", "application/pdf", []byte("x"), entity.ErrExtractionFailed, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newRouter(&fakeUsecase{err: tt.ucErr}).ServeHTTP(rec, uploadRequest(t, tt.filename, tt.contentType, tt.content))

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			var body entity.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Error == "" {
				t.Errorf("error body = %s", rec.Body.String())
			}
		})
	}
}

func TestUpload_MissingFile(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("other", "x")
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	newRouter(&fakeUsecase{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSummary(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&fakeUsecase{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/document-summary", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got entity.DocumentStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Summary.Title != "T" || !got.CorpusReady {
		t.Errorf("status = %+v", got)
	}
}

func TestUploadInfo(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(&fakeUsecase{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/upload", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got entity.UploadInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.MaxFileSizeBytes != 1024 || got.MaxFileSize != "1KB" || !got.AIAvailable {
		t.Errorf("info = %+v", got)
	}
	if len(got.SupportedFormats) != 1 || got.SupportedFormats[0] != "PDF" {
		t.Errorf("SupportedFormats = %v, want [PDF]", got.SupportedFormats)
	}
}

func TestReferences(t *testing.T) {
	uc := &fakeUsecase{}
	req := httptest.NewRequest(http.MethodGet, "/references", nil)
	req.Header.Set(middleware.SessionHeader, "s1")
	rec := httptest.NewRecorder()

	newRouter(uc).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got entity.ReferenceList
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.References) != 1 || got.References[0].URL != "https://example.com/graphs" {
		t.Errorf("references = %+v", got)
	}
	if uc.sessionID != "s1" {
		t.Errorf("sessionID = %q, want s1", uc.sessionID)
	}
}

func TestFormatLimit(t *testing.T) {
	tests := map[int64]string{
		10485760: "10MB",
		1024:     "1KB",
		1500:     "1500 bytes",
	}
	for n, want := range tests {
		if got := formatLimit(n); got != want {
			t.Errorf("formatLimit(%d) = %q, want %q", n, got, want)
		}
	}
}
