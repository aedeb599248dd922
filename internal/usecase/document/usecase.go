package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/futig/notes-backend/internal/entity"
	"github.com/futig/notes-backend/internal/pkg/analyzer"
	"github.com/futig/notes-backend/internal/pkg/logger"
	"github.com/futig/notes-backend/internal/pkg/validator"
	"github.com/futig/notes-backend/internal/state"
	"github.com/futig/notes-backend/internal/usecase/pipeline"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// DocumentUsecase handles uploads: the heuristic analysis answers the request,
// summary and indexing run in the background.
type DocumentUsecase struct {
	store      SessionStore
	extractor  TextExtractor
	analyzer   Analyzer
	summarizer Summarizer
	indexer    CorpusIndexer
	references ReferenceExtractor
	aiEnabled  bool
	tempDir    string

	wg sync.WaitGroup
}

// NewUsecase creates a new document use case. A nil indexer disables indexing,
// a nil reference extractor disables the reference list.
func NewUsecase(
	store SessionStore,
	extractor TextExtractor,
	analyzer Analyzer,
	summarizer Summarizer,
	indexer CorpusIndexer,
	references ReferenceExtractor,
	aiEnabled bool,
) *DocumentUsecase {
	return &DocumentUsecase{
		store:      store,
		extractor:  extractor,
		analyzer:   analyzer,
		summarizer: summarizer,
		indexer:    indexer,
		references: references,
		aiEnabled:  aiEnabled,
		tempDir:    os.TempDir(),
	}
}

// Upload extracts and analyzes the document, makes it current for the session
// and starts background processing.
func (uc *DocumentUsecase) Upload(ctx context.Context, sessionID string, doc entity.Document) (*entity.UploadResult, error) {
	started := time.Now()

	extracted, err := uc.extractor.Extract(doc.Content)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	analysis := uc.analyzer.Analyze(extracted.Text)
	docID := uuid.New().String()
	uploadedAt := time.Now().UTC()

	indexing := entity.IndexingSkipped
	if uc.aiEnabled && uc.indexer != nil {
		indexing = entity.IndexingStarted
	}

	sess := uc.store.Session(sessionID)
	previous := sess.ReplaceDocument(state.Document{
		ID:         docID,
		FileName:   doc.FileName,
		Text:       extracted.Text,
		PageCount:  extracted.PageCount,
		Analysis:   analysis,
		UploadedAt: uploadedAt,
	}, indexing)

	ctx = logger.AddFields(ctx, zap.String("document_id", docID))
	bg := logger.Detach(ctx, zap.String("session_id", sess.ID))
	uc.ReleaseCorpus(bg, previous)

	ctxzap.Info(ctx, "document analyzed",
		zap.String("file_name", doc.FileName),
		zap.Int("pages", extracted.PageCount),
		zap.Int("words", analysis.WordCount),
	)
	sess.Publish(entity.UpdateDocumentAnalyzed, "Document analyzed", analysis)

	result := &entity.UploadResult{
		DocumentID:        docID,
		FileName:          doc.FileName,
		FileSize:          FormatFileSize(int64(len(doc.Content))),
		PageCount:         extracted.PageCount,
		HeuristicAnalysis: analysis,
		ProcessingTime:    fmt.Sprintf("%.2fs", time.Since(started).Seconds()),
		DetectedLanguage:  analyzer.DetectLanguage(extracted.Text),
		AIAvailable:       uc.aiEnabled,
		Indexing:          indexing,
		UploadedAt:        uploadedAt,
	}

	input := pipeline.SummaryInput{Text: extracted.Text, FileName: doc.FileName, Analysis: &analysis}
	if !uc.aiEnabled {
		// Without a provider the summary is the heuristic fallback, committed before returning.
		uc.summarize(ctx, sess, docID, input)
		return result, nil
	}

	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()
		uc.summarize(bg, sess, docID, input)
	}()
	if indexing == entity.IndexingStarted {
		uc.wg.Add(1)
		go func() {
			defer uc.wg.Done()
			uc.index(bg, sess, docID, doc)
		}()
	}

	return result, nil
}

// Status reports the summary of the current document or a placeholder.
func (uc *DocumentUsecase) Status(ctx context.Context, sessionID string) entity.DocumentStatus {
	sess := uc.store.Session(sessionID)
	status := entity.DocumentStatus{
		AIAvailable: uc.aiEnabled,
		CorpusReady: !sess.Corpus().IsZero(),
		Indexing:    sess.Indexing(),
	}

	if _, ok := sess.Document(); !ok {
		status.Summary = pipeline.PlaceholderSummary()
		status.Degraded = true
		status.Reason = "no document uploaded"
		return status
	}

	summary, ok := sess.Summary()
	if !ok {
		status.Summary = pipeline.PlaceholderSummary()
		status.Summary.Title = "Summary in progress"
		status.Summary.Abstract = "The document is being analyzed."
		status.Degraded = true
		status.Reason = "summary in progress"
		return status
	}

	status.Summary = summary.Value
	status.Degraded = summary.Degraded
	status.Reason = summary.Reason
	return status
}

// References lists the works cited by the current document. A successful
// extraction is cached until the document is replaced.
func (uc *DocumentUsecase) References(ctx context.Context, sessionID string) entity.ReferenceList {
	sess := uc.store.Session(sessionID)
	empty := []entity.ReferenceLink{}

	doc, ok := sess.Document()
	if !ok {
		return entity.ReferenceList{References: empty, Degraded: true, Reason: "no document uploaded"}
	}
	if refs, ok := sess.References(); ok {
		return entity.ReferenceList{References: refs}
	}

	handle := sess.Corpus()
	var outcome entity.Outcome[[]entity.ReferenceLink]
	switch {
	case uc.references == nil || !uc.aiEnabled:
		outcome = entity.Fallback(empty, entity.ErrProviderUnavailable)
	case handle.IsZero() && sess.Indexing() == entity.IndexingFailed:
		outcome = entity.Fallback(empty, entity.ErrIndexFailed)
	default:
		outcome = uc.references.Extract(logger.WithAction(ctx, "references"), handle)
	}

	if !outcome.Degraded {
		sess.SetReferences(doc.ID, outcome.Value)
	}
	return entity.ReferenceList{References: outcome.Value, Degraded: outcome.Degraded, Reason: outcome.Reason}
}

// ReleaseCorpus drops an index that no document refers to anymore.
func (uc *DocumentUsecase) ReleaseCorpus(ctx context.Context, handle entity.CorpusHandle) {
	if uc.indexer == nil || handle.IsZero() {
		return
	}

	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()
		uc.dropIndex(logger.WithAction(ctx, "release_corpus"), handle)
	}()
}

func (uc *DocumentUsecase) AIEnabled() bool {
	return uc.aiEnabled
}

// Wait blocks until background processing started by Upload has finished.
func (uc *DocumentUsecase) Wait() {
	uc.wg.Wait()
}

func (uc *DocumentUsecase) dropIndex(ctx context.Context, handle entity.CorpusHandle) {
	if err := uc.indexer.DropIndex(ctx, handle); err != nil {
		ctxzap.Warn(ctx, "failed to drop index", zap.String("corpus", string(handle)), zap.Error(err))
		return
	}
	ctxzap.Debug(ctx, "index dropped", zap.String("corpus", string(handle)))
}

func (uc *DocumentUsecase) summarize(ctx context.Context, sess *state.Session, docID string, in pipeline.SummaryInput) {
	ctx = logger.WithAction(ctx, "summarize")

	outcome := uc.summarizer.Summarize(ctx, in)
	kept, stored := sess.SetSummaryOnce(docID, outcome)
	if !stored {
		ctxzap.Info(ctx, "summary already committed or document replaced, result discarded")
		return
	}

	sess.Publish(entity.UpdateSummaryReady, "Summary ready", kept.Value)
}

// index uploads the document to a fresh corpus. The bytes go through a
// temporary directory that is removed on every exit path of the job.
func (uc *DocumentUsecase) index(ctx context.Context, sess *state.Session, docID string, doc entity.Document) {
	ctx = logger.WithAction(ctx, "index")

	fail := func(err error) {
		ctxzap.Error(ctx, "document indexing failed", zap.Error(err))
		if sess.SetIndexing(docID, entity.IndexingFailed) {
			sess.Publish(entity.UpdateIndexFailed, "Document indexing failed", nil)
		}
	}

	dir, err := os.MkdirTemp(uc.tempDir, "upload-"+docID+"-")
	if err != nil {
		fail(fmt.Errorf("create temp dir: %w", err))
		return
	}
	// Runs when this job ends, which is after the upload request has returned.
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			ctxzap.Warn(ctx, "failed to remove temp dir", zap.String("dir", dir), zap.Error(err))
		}
	}()

	name := validator.SanitizeFilename(doc.FileName)
	if name == "." || name == string(filepath.Separator) {
		name = "document.pdf"
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, doc.Content, 0o600); err != nil {
		fail(fmt.Errorf("write temp file: %w", err))
		return
	}

	handle, err := uc.indexer.CreateIndex(ctx, "document-"+docID)
	if err != nil {
		fail(fmt.Errorf("create index: %w", err))
		return
	}

	status, err := uc.indexer.AddDocument(ctx, handle, path)
	if err == nil && status != entity.IndexStatusCompleted {
		err = fmt.Errorf("index status %s", status)
	}
	if err != nil {
		uc.dropIndex(ctx, handle)
		fail(fmt.Errorf("add document: %w", err))
		return
	}

	if !sess.SetCorpus(docID, handle) {
		ctxzap.Info(ctx, "document replaced, corpus discarded", zap.String("corpus", string(handle)))
		uc.dropIndex(ctx, handle)
		return
	}

	ctxzap.Info(ctx, "document indexed", zap.String("corpus", string(handle)))
	sess.Publish(entity.UpdateIndexReady, "Document indexed", nil)
}

// FormatFileSize renders bytes as megabytes with two decimals
func FormatFileSize(size int64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/(1024*1024))
}
