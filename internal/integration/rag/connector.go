package rag

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/futig/notes-backend/internal/config"
	"github.com/futig/notes-backend/internal/entity"
	"github.com/futig/notes-backend/internal/integration/common"
	"github.com/futig/notes-backend/internal/pkg/logger"
	pkgRetry "github.com/futig/notes-backend/internal/pkg/retry"
	pkghttp "github.com/futig/notes-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	fileStatusCompleted  = "completed"
	fileStatusInProgress = "in_progress"

	indexPollAttempts = 60
	indexPollDelay    = time.Second

	retrievalInstructions = "Answer strictly from the attached document using the file search tool. " +
		"If the document does not contain the answer, say so. Be concise and specific."
)

var errStillIndexing = errors.New("vector store file still processing")

type Connector struct {
	config    config.RAGConnectorConfig
	client    *openai.Client
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	client *openai.Client,
	cfg config.RAGConnectorConfig,
	providerCfg config.OpenAIConfig,
	log *zap.Logger,
) *Connector {
	return &Connector{
		client:    client,
		connector: common.NewBaseConnector(providerCfg, log),
		config:    cfg,
		logger:    log,
	}
}

// CreateIndex creates an empty vector store and returns its id as the corpus handle
func (c *Connector) CreateIndex(ctx context.Context, name string) (entity.CorpusHandle, error) {
	ctxzap.Info(ctx, "creating vector store", zap.String("name", name))

	store, err := pkgRetry.Do(ctx, c.config.Retry, "rag.create_index", func(ctx context.Context) (openai.VectorStore, error) {
		vs, err := c.client.CreateVectorStore(ctx, openai.VectorStoreRequest{Name: name})
		return vs, common.TranslateError(err)
	})
	if err != nil {
		return "", fmt.Errorf("create vector store: %w", err)
	}

	ctxzap.Info(ctx, "vector store created", zap.String("vector_store_id", store.ID))
	return entity.CorpusHandle(store.ID), nil
}

// DropIndex deletes the vector store behind handle
func (c *Connector) DropIndex(ctx context.Context, handle entity.CorpusHandle) error {
	ctxzap.Info(ctx, "deleting vector store", zap.String("vector_store_id", string(handle)))

	_, err := pkgRetry.Do(ctx, c.config.Retry, "rag.drop_index", func(ctx context.Context) (openai.VectorStoreDeleteResponse, error) {
		resp, err := c.client.DeleteVectorStore(ctx, string(handle))
		return resp, common.TranslateError(err)
	})
	if err != nil {
		return fmt.Errorf("delete vector store: %w", err)
	}
	return nil
}

// AddDocument uploads the file at path into the store and waits until it is searchable
func (c *Connector) AddDocument(ctx context.Context, handle entity.CorpusHandle, path string) (entity.IndexStatus, error) {
	ctx = logger.AddFields(ctx, zap.String("vector_store_id", string(handle)))
	ctxzap.Info(ctx, "uploading document to vector store", zap.String("file", filepath.Base(path)))

	file, err := pkgRetry.Do(ctx, c.config.Retry, "rag.upload_file", func(ctx context.Context) (openai.File, error) {
		f, err := c.client.CreateFile(ctx, openai.FileRequest{
			FileName: filepath.Base(path),
			FilePath: path,
			Purpose:  string(openai.PurposeAssistants),
		})
		return f, common.TranslateError(err)
	})
	if err != nil {
		return entity.IndexStatusFailed, fmt.Errorf("upload file: %w", err)
	}

	vsFile, err := pkgRetry.Do(ctx, c.config.Retry, "rag.attach_file", func(ctx context.Context) (openai.VectorStoreFile, error) {
		f, err := c.client.CreateVectorStoreFile(ctx, string(handle), openai.VectorStoreFileRequest{FileID: file.ID})
		return f, common.TranslateError(err)
	})
	if err != nil {
		return entity.IndexStatusFailed, fmt.Errorf("attach file to vector store: %w", err)
	}

	status, err := c.waitIndexed(ctx, handle, vsFile)
	if err != nil {
		return entity.IndexStatusFailed, err
	}

	ctxzap.Info(ctx, "document indexed", zap.String("file_id", file.ID))
	return status, nil
}

func (c *Connector) waitIndexed(ctx context.Context, handle entity.CorpusHandle, vsFile openai.VectorStoreFile) (entity.IndexStatus, error) {
	status, err := retry.DoWithData(func() (string, error) {
		if vsFile.Status == fileStatusInProgress {
			f, err := c.client.RetrieveVectorStoreFile(ctx, string(handle), vsFile.ID)
			if err != nil {
				return "", retry.Unrecoverable(common.TranslateError(err))
			}
			vsFile = f
		}
		if vsFile.Status == fileStatusInProgress {
			return "", errStillIndexing
		}
		return vsFile.Status, nil
	},
		retry.Context(ctx),
		retry.Attempts(indexPollAttempts),
		retry.Delay(indexPollDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return errors.Is(err, errStillIndexing) }),
	)
	if err != nil {
		return entity.IndexStatusFailed, fmt.Errorf("wait for indexing: %w", err)
	}

	if status != fileStatusCompleted {
		return entity.IndexStatusFailed, fmt.Errorf("vector store file finished with status %q", status)
	}
	return entity.IndexStatusCompleted, nil
}

// Query answers question from the indexed document only; the file search tool is forced
func (c *Connector) Query(ctx context.Context, handle entity.CorpusHandle, question string) (string, error) {
	ctx = logger.AddFields(ctx, zap.String("vector_store_id", string(handle)))
	ctxzap.Debug(ctx, "querying document", zap.String("question", question))

	req := &entity.RAGResponsesRequest{
		Model:        c.config.Model,
		Instructions: retrievalInstructions,
		Input:        question,
		Tools: []entity.RAGFileSearchTool{{
			Type:           entity.RAGFileSearchToolType,
			VectorStoreIDs: []string{string(handle)},
		}},
		ToolChoice: entity.RAGToolChoice{Type: entity.RAGFileSearchToolType},
	}

	resp, err := pkgRetry.Do(ctx, c.config.Retry, "rag.query", func(ctx context.Context) (entity.RAGResponsesResponse, error) {
		var resp entity.RAGResponsesResponse
		err := c.connector.DoRequest(ctx, http.MethodPost, c.config.ResponsesEndpoint, req, &resp)
		return resp, err
	})
	if err != nil {
		return "", fmt.Errorf("failed to query document: %w", err)
	}

	answer := OutputText(resp)
	if answer == "" {
		return "", entity.ErrEmptyResponse
	}

	ctxzap.Debug(ctx, "document answered", zap.Int("answer_length", len(answer)))
	return answer, nil
}

// OutputText joins the text parts of every assistant message in a response
func OutputText(resp entity.RAGResponsesResponse) string {
	var texts []string
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		for _, part := range item.Content {
			if part.Type == "output_text" && strings.TrimSpace(part.Text) != "" {
				texts = append(texts, strings.TrimSpace(part.Text))
			}
		}
	}
	return strings.Join(texts, "\n\n")
}
