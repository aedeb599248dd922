package rag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/futig/notes-backend/internal/config"
	"github.com/futig/notes-backend/internal/entity"
	pkgRetry "github.com/futig/notes-backend/internal/pkg/retry"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

func TestQuery_ForcesFileSearch(t *testing.T) {
	var captured entity.RAGResponsesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("path = %q, want /v1/responses", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("OpenAI-Organization"); got != "org-test" {
			t.Errorf("OpenAI-Organization = %q, want org-test", got)
		}
		json.NewDecoder(r.Body).Decode(&captured)
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "resp_1",
			"status": "completed",
			"output": []map[string]any{
				{"type": "file_search_call", "status": "completed"},
				{"type": "message", "content": []map[string]any{{"type": "output_text", "text": "Dijkstra's algorithm."}}},
			},
		})
	}))
	defer srv.Close()

	providerCfg := config.OpenAIConfig{APIKey: "test-key", Organization: "org-test"}
	providerCfg.Url = srv.URL + "/v1"
	providerCfg.RequestTimeout = 5 * time.Second

	clientCfg := openai.DefaultConfig("test-key")
	clientCfg.BaseURL = providerCfg.Url

	c := NewConnector(openai.NewClientWithConfig(clientCfg), config.RAGConnectorConfig{
		Model:             "gpt-test",
		ResponsesEndpoint: "/responses",
		Retry:             pkgRetry.RetryConfig{Attempts: 1, Delay: time.Millisecond, MaxDelay: time.Millisecond, Timeout: 5 * time.Second},
	}, providerCfg, zap.NewNop())

	answer, err := c.Query(context.Background(), "vs_123", "Which algorithm finds shortest paths?")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if answer != "Dijkstra's algorithm." {
		t.Errorf("answer = %q", answer)
	}

	if captured.ToolChoice.Type != entity.RAGFileSearchToolType {
		t.Errorf("tool_choice = %q, want file_search", captured.ToolChoice.Type)
	}
	if len(captured.Tools) != 1 || len(captured.Tools[0].VectorStoreIDs) != 1 || captured.Tools[0].VectorStoreIDs[0] != "vs_123" {
		t.Errorf("tools = %+v, want file_search over vs_123", captured.Tools)
	}
}

func TestDropIndex_DeletesVectorStore(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		json.NewEncoder(w).Encode(map[string]any{"id": "vs_123", "object": "vector_store.deleted", "deleted": true})
	}))
	defer srv.Close()

	clientCfg := openai.DefaultConfig("test-key")
	clientCfg.BaseURL = srv.URL + "/v1"

	c := NewConnector(openai.NewClientWithConfig(clientCfg), config.RAGConnectorConfig{
		Retry: pkgRetry.RetryConfig{Attempts: 1, Delay: time.Millisecond, MaxDelay: time.Millisecond, Timeout: 5 * time.Second},
	}, config.OpenAIConfig{APIKey: "test-key"}, zap.NewNop())

	if err := c.DropIndex(context.Background(), "vs_123"); err != nil {
		t.Fatalf("DropIndex: %v", err)
	}
	if method != http.MethodDelete || path != "/v1/vector_stores/vs_123" {
		t.Errorf("request = %s %s, want DELETE /v1/vector_stores/vs_123", method, path)
	}
}

func TestOutputText_IgnoresNonMessages(t *testing.T) {
	resp := entity.RAGResponsesResponse{Output: []entity.RAGOutputItem{
		{Type: "file_search_call"},
		{Type: "message", Content: []entity.RAGContentPart{{Type: "output_text", Text: "first"}, {Type: "refusal", Text: "nope"}}},
		{Type: "message", Content: []entity.RAGContentPart{{Type: "output_text", Text: " second "}}},
	}}
	if got := OutputText(resp); got != "first\n\nsecond" {
		t.Errorf("OutputText = %q", got)
	}
}

type plainTextExtractor struct{}

func (plainTextExtractor) Extract(content []byte) (entity.ExtractedText, error) {
	return entity.ExtractedText{Text: string(content), PageCount: 1}, nil
}

func TestMockConnector_GroundedAnswers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	text := strings.Repeat("filler words about nothing in particular. ", 40) +
		"The mitochondria is the powerhouse of the cell. " +
		strings.Repeat("more filler words that are unrelated. ", 40)
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	m := NewMockConnector(plainTextExtractor{}, zap.NewNop())
	ctx := context.Background()

	handle, err := m.CreateIndex(ctx, "test")
	if err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}
	status, err := m.AddDocument(ctx, handle, path)
	if err != nil || status != entity.IndexStatusCompleted {
		t.Fatalf("AddDocument = %q, %v", status, err)
	}

	answer, err := m.Query(ctx, handle, "What is the powerhouse of the cell?")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !strings.Contains(answer, "mitochondria") {
		t.Errorf("answer = %q, want the passage about mitochondria", answer)
	}

	if _, err := m.Query(ctx, "unknown", "anything"); err == nil {
		t.Error("expected error for unknown handle")
	}

	if err := m.DropIndex(ctx, handle); err != nil {
		t.Fatalf("DropIndex: %v", err)
	}
	if _, err := m.Query(ctx, handle, "What is the powerhouse of the cell?"); err == nil {
		t.Error("expected error after DropIndex")
	}
	if err := m.DropIndex(ctx, handle); err != nil {
		t.Errorf("second DropIndex: %v", err)
	}
}

func TestPassages(t *testing.T) {
	got := Passages("a b c d e", 2)
	if len(got) != 3 || got[0] != "a b" || got[2] != "e" {
		t.Errorf("Passages = %q", got)
	}
	if len(Passages("   ", 2)) != 0 {
		t.Error("blank text has no passages")
	}
}
