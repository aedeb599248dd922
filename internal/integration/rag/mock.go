package rag

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/futig/notes-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	passageWords   = 80
	mockTopHits    = 3
	mockNoCoverage = "The document does not appear to cover this question."
)

// TextExtractor reads the text of an indexed file
type TextExtractor interface {
	Extract(content []byte) (entity.ExtractedText, error)
}

// MockConnector keeps an in-memory BM25 index per corpus handle
// so grounded answers in mock mode still come from the uploaded document.
type MockConnector struct {
	extractor TextExtractor
	logger    *zap.Logger

	mu      sync.RWMutex
	indexes map[entity.CorpusHandle]bleve.Index
}

func NewMockConnector(extractor TextExtractor, logger *zap.Logger) *MockConnector {
	return &MockConnector{
		extractor: extractor,
		logger:    logger,
		indexes:   make(map[entity.CorpusHandle]bleve.Index),
	}
}

func (m *MockConnector) CreateIndex(ctx context.Context, name string) (entity.CorpusHandle, error) {
	ctxzap.Info(ctx, "[MOCK] creating index", zap.String("name", name))

	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return "", fmt.Errorf("create in-memory index: %w", err)
	}

	handle := entity.CorpusHandle("mock_vs_" + uuid.NewString())

	m.mu.Lock()
	m.indexes[handle] = idx
	m.mu.Unlock()

	return handle, nil
}

// DropIndex closes the in-memory index and forgets the handle
func (m *MockConnector) DropIndex(ctx context.Context, handle entity.CorpusHandle) error {
	m.mu.Lock()
	idx, ok := m.indexes[handle]
	delete(m.indexes, handle)
	m.mu.Unlock()

	if !ok {
		return nil
	}
	ctxzap.Info(ctx, "[MOCK] dropping index", zap.String("vector_store_id", string(handle)))
	if err := idx.Close(); err != nil {
		return fmt.Errorf("close in-memory index: %w", err)
	}
	return nil
}

func (m *MockConnector) AddDocument(ctx context.Context, handle entity.CorpusHandle, path string) (entity.IndexStatus, error) {
	ctxzap.Info(ctx, "[MOCK] indexing document", zap.String("vector_store_id", string(handle)))

	idx, ok := m.index(handle)
	if !ok {
		return entity.IndexStatusFailed, fmt.Errorf("unknown corpus handle %q", handle)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return entity.IndexStatusFailed, fmt.Errorf("read document: %w", err)
	}

	extracted, err := m.extractor.Extract(content)
	if err != nil {
		return entity.IndexStatusFailed, fmt.Errorf("extract document: %w", err)
	}

	batch := idx.NewBatch()
	for i, passage := range Passages(extracted.Text, passageWords) {
		if err := batch.Index(fmt.Sprintf("p%04d", i), map[string]any{"text": passage}); err != nil {
			return entity.IndexStatusFailed, fmt.Errorf("index passage: %w", err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return entity.IndexStatusFailed, fmt.Errorf("commit index batch: %w", err)
	}

	return entity.IndexStatusCompleted, nil
}

func (m *MockConnector) Query(ctx context.Context, handle entity.CorpusHandle, question string) (string, error) {
	ctxzap.Debug(ctx, "[MOCK] querying index", zap.String("question", question))

	idx, ok := m.index(handle)
	if !ok {
		return "", fmt.Errorf("unknown corpus handle %q", handle)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(question), mockTopHits, 0, false)
	req.Fields = []string{"text"}

	res, err := idx.Search(req)
	if err != nil {
		return "", fmt.Errorf("search index: %w", err)
	}

	var passages []string
	for _, hit := range res.Hits {
		if text, ok := hit.Fields["text"].(string); ok && text != "" {
			passages = append(passages, text)
		}
	}
	if len(passages) == 0 {
		return mockNoCoverage, nil
	}

	return strings.Join(passages, "\n\n"), nil
}

func (m *MockConnector) index(handle entity.CorpusHandle) (bleve.Index, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx, ok := m.indexes[handle]
	return idx, ok
}

// Passages splits text into windows of at most size words
func Passages(text string, size int) []string {
	words := strings.Fields(text)
	var out []string
	for start := 0; start < len(words); start += size {
		end := min(start+size, len(words))
		out = append(out, strings.Join(words[start:end], " "))
	}
	return out
}
