package pipeline

import (
	"context"

	"github.com/futig/notes-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// UnableToRetrieve replaces the answer of a question whose retrieval failed
const UnableToRetrieve = "Unable to retrieve an answer from the document for this question."

// AnswerRetriever answers questions from the indexed document with bounded concurrency.
type AnswerRetriever struct {
	retriever   Retriever
	concurrency int
}

func NewAnswerRetriever(retriever Retriever, concurrency int) *AnswerRetriever {
	return &AnswerRetriever{retriever: retriever, concurrency: max(concurrency, 1)}
}

// Answer returns the grounded answer or the UnableToRetrieve sentinel; ok reports which.
func (r *AnswerRetriever) Answer(ctx context.Context, handle entity.CorpusHandle, question string) (answer string, ok bool) {
	if r.retriever == nil || handle.IsZero() {
		return UnableToRetrieve, false
	}

	answer, err := r.retriever.Query(ctx, handle, question)
	if err != nil {
		ctxzap.Warn(ctx, "answer retrieval failed", zap.String("question", question), zap.Error(err))
		return UnableToRetrieve, false
	}

	return answer, true
}

// AnswerAll blocks until every question has an answer or a sentinel.
// Results keep the order of questions whatever the completion order.
func (r *AnswerRetriever) AnswerAll(ctx context.Context, handle entity.CorpusHandle, questions []string) []entity.QAPair {
	pairs := make([]entity.QAPair, len(questions))

	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for i, q := range questions {
		g.Go(func() error {
			answer, _ := r.Answer(ctx, handle, q)
			pairs[i] = entity.QAPair{Position: i + 1, Question: q, Answer: answer}
			return nil
		})
	}

	// Workers never return errors, failures are already sentinels
	_ = g.Wait()

	ctxzap.Info(ctx, "answers retrieved", zap.Int("count", len(pairs)))
	return pairs
}
