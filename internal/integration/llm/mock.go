package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/futig/notes-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector answers completions locally for development without a provider key
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) CompleteStructured(ctx context.Context, req *entity.StructuredRequest) (json.RawMessage, error) {
	ctxzap.Info(ctx, "[MOCK] structured completion", zap.String("schema", req.SchemaName))

	title := promptField(req.Prompt, "Title", promptField(req.Prompt, "Filename", "Uploaded Document"))

	var payload any
	switch req.SchemaName {
	case entity.SchemaDocumentSummary:
		payload = entity.DocumentSummary{
			Title:             strings.TrimSuffix(title, ".pdf"),
			Abstract:          "A locally generated summary of the uploaded document.",
			KeyPoints:         []string{"Core concepts", "Supporting evidence", "Practical implications"},
			MainTopics:        []string{"Overview", "Details"},
			DifficultyLevel:   entity.DifficultyIntermediate,
			EstimatedReadTime: "10 minutes",
			DocumentType:      entity.DocumentTypeArticle,
			Authors:           []string{"Unknown"},
			PublicationDate:   "Unknown",
		}
	case entity.SchemaSlideDeck:
		payload = map[string]any{
			"slides": []map[string]any{
				{"slide_number": 1, "title": title, "content": "What this document is about.", "image_description": "Title card", "speaker_notes": "Introduce the document."},
				{"slide_number": 2, "title": "Key Ideas", "content": "The main ideas drawn from the questions and answers.", "image_description": "Diagram of ideas", "speaker_notes": "Walk through each idea."},
				{"slide_number": 3, "title": "Details", "content": "Supporting details and examples.", "image_description": "Example chart", "speaker_notes": "Highlight one example."},
				{"slide_number": 4, "title": "Summary", "content": "Recap and next steps.", "image_description": "Checklist", "speaker_notes": "Invite questions."},
			},
		}
	default:
		return nil, fmt.Errorf("%w: mock has no payload for %s", entity.ErrSchemaOmitted, req.SchemaName)
	}

	return json.Marshal(payload)
}

func (m *MockConnector) CompleteText(ctx context.Context, req *entity.TextRequest) (string, error) {
	ctxzap.Info(ctx, "[MOCK] text completion")

	return strings.Join([]string{
		"Here are the questions:",
		"1. What problem does the document address?",
		"2. What approach does it take?",
		"3. What are the main findings?",
		"4. What evidence supports the conclusions?",
		"5. What are the limitations?",
		"6. How could the results be applied?",
	}, "\n"), nil
}

// promptField finds a "Name: value" line in a prompt
func promptField(prompt, name, fallback string) string {
	prefix := name + ":"
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, prefix); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return fallback
}
