package pipeline

import (
	"context"
	"net/url"
	"strings"

	"github.com/futig/notes-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const referencesQuestion = "List the references, cited works, sources and links this document mentions. " +
	"Return one per line formatted as: title | url | one sentence description. " +
	"Leave the url empty when the document gives none. Return NONE when the document cites nothing."

// ReferenceExtractor asks the indexed document for the works and links it cites.
type ReferenceExtractor struct {
	retriever     Retriever
	maxReferences int
}

func NewReferenceExtractor(retriever Retriever, maxReferences int) *ReferenceExtractor {
	return &ReferenceExtractor{retriever: retriever, maxReferences: maxReferences}
}

// Extract returns the parsed references. A failed query yields an empty degraded list.
func (e *ReferenceExtractor) Extract(ctx context.Context, handle entity.CorpusHandle) entity.Outcome[[]entity.ReferenceLink] {
	empty := []entity.ReferenceLink{}
	if e.retriever == nil {
		return entity.Fallback(empty, entity.ErrProviderUnavailable)
	}
	if handle.IsZero() {
		return entity.Fallback(empty, entity.ErrCorpusNotReady)
	}

	raw, err := e.retriever.Query(ctx, handle, referencesQuestion)
	if err != nil {
		ctxzap.Warn(ctx, "reference extraction failed", zap.Error(err))
		return entity.Fallback(empty, err)
	}

	refs := ParseReferences(raw, e.maxReferences)
	ctxzap.Info(ctx, "references extracted", zap.Int("count", len(refs)))
	return entity.Succeeded(refs)
}

// ParseReferences reads "title | url | description" lines, at most limit of them.
// Lines without a separator are prose and skipped; invalid urls are dropped.
func ParseReferences(raw string, limit int) []entity.ReferenceLink {
	refs := []entity.ReferenceLink{}
	seen := make(map[string]bool)

	for _, line := range strings.Split(raw, "\n") {
		if limit > 0 && len(refs) >= limit {
			break
		}
		line = strings.TrimSpace(listMarker.ReplaceAllString(strings.TrimSpace(line), ""))
		if !strings.Contains(line, "|") {
			continue
		}

		parts := strings.SplitN(line, "|", 3)
		for i := range parts {
			parts[i] = strings.Trim(strings.TrimSpace(parts[i]), "*_\"")
		}

		ref := entity.ReferenceLink{Title: parts[0], URL: webURL(parts[1])}
		if len(parts) == 3 {
			ref.Description = parts[2]
		}
		if ref.Title == "" {
			ref.Title = ref.URL
		}
		if ref.Title == "" || strings.EqualFold(ref.Title, "none") {
			continue
		}

		key := strings.ToLower(ref.Title) + "|" + ref.URL
		if seen[key] {
			continue
		}
		seen[key] = true
		refs = append(refs, ref)
	}

	return refs
}

func webURL(raw string) string {
	raw = strings.Trim(raw, "<>()")
	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return u.String()
}
