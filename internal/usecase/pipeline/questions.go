package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/futig/notes-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const questionSystemPrompt = "You are an expert educator who writes clear comprehension questions about documents."

var listMarker = regexp.MustCompile(`^(?:[-*•]+|(?:Q|q)?\d+[.):\]]?|\(\d+\))\s*`)

// QuestionGenerator asks for 5-7 comprehension questions and falls back to templates.
type QuestionGenerator struct {
	llm          LLMConnector
	maxQuestions int
}

func NewQuestionGenerator(llm LLMConnector, maxQuestions int) *QuestionGenerator {
	return &QuestionGenerator{llm: llm, maxQuestions: maxQuestions}
}

func (g *QuestionGenerator) Generate(ctx context.Context, summary entity.DocumentSummary) entity.Outcome[[]string] {
	if g.llm == nil {
		return entity.Fallback(FallbackQuestions(summary), entity.ErrProviderUnavailable)
	}

	raw, err := g.llm.CompleteText(ctx, &entity.TextRequest{
		System:      questionSystemPrompt,
		Prompt:      questionPrompt(summary),
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		ctxzap.Warn(ctx, "question generation failed, using templates", zap.Error(err))
		return entity.Fallback(FallbackQuestions(summary), err)
	}

	questions := ParseQuestions(raw, g.maxQuestions)
	if len(questions) == 0 {
		ctxzap.Warn(ctx, "no questions in completion, using templates")
		return entity.Fallback(FallbackQuestions(summary), fmt.Errorf("%w: no questions found", entity.ErrMalformedPayload))
	}

	ctxzap.Info(ctx, "questions generated", zap.Int("count", len(questions)))
	return entity.Succeeded(questions)
}

func questionPrompt(s entity.DocumentSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on this document summary, generate 5-7 comprehension questions that would help someone understand the main concepts.\n\n")
	fmt.Fprintf(&b, "Title: %s\n", s.Title)
	fmt.Fprintf(&b, "Abstract: %s\n", s.Abstract)
	fmt.Fprintf(&b, "Key Points: %s\n", strings.Join(s.KeyPoints, ", "))
	fmt.Fprintf(&b, "Main Topics: %s\n", strings.Join(s.MainTopics, ", "))
	fmt.Fprintf(&b, "Document Type: %s\n", humanType(s.DocumentType))
	fmt.Fprintf(&b, "Difficulty: %s\n\n", s.DifficultyLevel)
	b.WriteString("Return one question per line, each ending with a question mark, with no other text.")
	return b.String()
}

// ParseQuestions keeps lines that end in "?", without list markers, at most limit of them
func ParseQuestions(raw string, limit int) []string {
	var questions []string
	for _, line := range strings.Split(raw, "\n") {
		if limit > 0 && len(questions) >= limit {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		line = strings.Trim(line, "*_")
		if !strings.HasSuffix(line, "?") || len(line) < 2 {
			continue
		}
		questions = append(questions, line)
	}
	return questions
}

// FallbackQuestions are template questions built from the summary
func FallbackQuestions(s entity.DocumentSummary) []string {
	kind := humanType(s.DocumentType)
	return []string{
		fmt.Sprintf("What is the main purpose of %q?", s.Title),
		fmt.Sprintf("What are the key concepts introduced in this %s?", kind),
		fmt.Sprintf("What methods or approaches does %q describe?", s.Title),
		fmt.Sprintf("What are the most important findings or conclusions of this %s?", kind),
		fmt.Sprintf("How can the ideas in this %s be applied in practice?", kind),
	}
}

func humanType(t entity.DocumentType) string {
	if t == "" {
		return "document"
	}
	return strings.ReplaceAll(string(t), "_", " ")
}
