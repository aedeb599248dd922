package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/futig/notes-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const summarySystemPrompt = "You are an expert at analyzing academic and educational documents. " +
	"Extract key information accurately and concisely."

var summarySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":               map[string]any{"type": "string", "description": "Document title"},
		"abstract":            map[string]any{"type": "string", "description": "Brief summary of the document, 2-3 sentences"},
		"key_points":          map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "3-5 main points"},
		"main_topics":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Primary subjects covered"},
		"difficulty_level":    map[string]any{"type": "string", "enum": []string{"beginner", "intermediate", "advanced"}},
		"estimated_read_time": map[string]any{"type": "string", "description": "e.g. '15 minutes'"},
		"document_type":       map[string]any{"type": "string", "enum": []string{"research_paper", "tutorial", "book_chapter", "article"}},
		"authors":             map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"publication_date":    map[string]any{"type": "string", "description": "Publication date if known"},
	},
	"required": []string{"title", "abstract", "key_points", "main_topics", "difficulty_level", "estimated_read_time", "document_type", "authors", "publication_date"},
}

// SummaryInput is what the summarizer needs from an upload
type SummaryInput struct {
	Text     string
	FileName string
	Analysis *entity.HeuristicAnalysis
}

// Summarizer produces a DocumentSummary and never fails: provider errors yield a local fallback.
type Summarizer struct {
	llm           LLMConnector
	maxInputChars int
}

func NewSummarizer(llm LLMConnector, maxInputChars int) *Summarizer {
	return &Summarizer{llm: llm, maxInputChars: maxInputChars}
}

func (s *Summarizer) Summarize(ctx context.Context, in SummaryInput) entity.Outcome[entity.DocumentSummary] {
	if s.llm == nil {
		return entity.Fallback(FallbackSummary(in), entity.ErrProviderUnavailable)
	}

	raw, err := s.llm.CompleteStructured(ctx, &entity.StructuredRequest{
		System:            summarySystemPrompt,
		Prompt:            summaryPrompt(in.FileName, Truncate(in.Text, s.maxInputChars)),
		SchemaName:        entity.SchemaDocumentSummary,
		SchemaDescription: "Extract a structured summary from the document",
		Schema:            summarySchema,
		Required:          true,
		Temperature:       0.2,
	})
	if err != nil {
		ctxzap.Warn(ctx, "summary generation failed, using fallback", zap.Error(err))
		return entity.Fallback(FallbackSummary(in), err)
	}

	summary, err := DecodeSummary(raw)
	if err != nil {
		ctxzap.Warn(ctx, "summary payload rejected, using fallback", zap.Error(err))
		return entity.Fallback(FallbackSummary(in), err)
	}

	ctxzap.Info(ctx, "summary generated", zap.String("title", summary.Title))
	return entity.Succeeded(summary)
}

func summaryPrompt(filename, text string) string {
	return fmt.Sprintf("Analyze this document and extract its key information.\n\nFilename: %s\n\nDocument text:\n%s", filename, text)
}

// DecodeSummary parses and normalizes a summary payload.
// Title and abstract are mandatory; enums outside the known set are coerced.
func DecodeSummary(raw json.RawMessage) (entity.DocumentSummary, error) {
	var summary entity.DocumentSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return entity.DocumentSummary{}, fmt.Errorf("%w: %v", entity.ErrMalformedPayload, err)
	}

	summary.Title = strings.TrimSpace(summary.Title)
	summary.Abstract = strings.TrimSpace(summary.Abstract)
	if summary.Title == "" || summary.Abstract == "" {
		return entity.DocumentSummary{}, fmt.Errorf("%w: title and abstract are required", entity.ErrMalformedPayload)
	}

	summary.DifficultyLevel = entity.DifficultyLevel(normalizeEnum(string(summary.DifficultyLevel)))
	if !summary.DifficultyLevel.IsValid() {
		summary.DifficultyLevel = entity.DifficultyIntermediate
	}

	summary.DocumentType = entity.DocumentType(normalizeEnum(string(summary.DocumentType)))
	if !summary.DocumentType.IsValid() {
		summary.DocumentType = entity.DocumentTypeArticle
	}

	summary.KeyPoints = nonEmpty(summary.KeyPoints)
	summary.MainTopics = nonEmpty(summary.MainTopics)
	summary.Authors = nonEmpty(summary.Authors)

	return summary, nil
}

// FallbackSummary is built from the filename and the local analysis only
func FallbackSummary(in SummaryInput) entity.DocumentSummary {
	summary := entity.DocumentSummary{
		Title:             DocumentTitle(in.FileName),
		Abstract:          "This document was uploaded successfully. An AI-generated summary is not available, so only a basic analysis is shown.",
		KeyPoints:         []string{"Document uploaded and text extracted", "Basic analysis available", "AI summary unavailable"},
		MainTopics:        []string{"General"},
		DifficultyLevel:   entity.DifficultyIntermediate,
		EstimatedReadTime: "Unknown",
		DocumentType:      entity.DocumentTypeArticle,
		Authors:           []string{"Unknown"},
		PublicationDate:   "Unknown",
	}

	if in.Analysis != nil {
		if len(in.Analysis.Topics) > 0 {
			summary.MainTopics = append([]string(nil), in.Analysis.Topics...)
		}
		summary.DifficultyLevel = in.Analysis.Complexity
		summary.EstimatedReadTime = in.Analysis.ReadingTime
	}

	return summary
}

// PlaceholderSummary is reported before any document is uploaded
func PlaceholderSummary() entity.DocumentSummary {
	return entity.DocumentSummary{
		Title:           "No document uploaded",
		Abstract:        "Upload a PDF to generate a summary.",
		KeyPoints:       []string{},
		MainTopics:      []string{},
		DifficultyLevel: entity.DifficultyBeginner,
		DocumentType:    entity.DocumentTypeArticle,
		Authors:         []string{},
	}
}

// DocumentTitle derives a readable title from a filename
func DocumentTitle(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(base))
	if base == "" || base == "." {
		return "Uploaded Document"
	}
	return base
}

// Truncate keeps at most limit characters and marks the cut with "..."
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

func normalizeEnum(v string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(v)), " ", "_")
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
