package builder

import (
	"context"
	"fmt"
	"net/http"

	"github.com/futig/notes-backend/internal/api"
	conversationapi "github.com/futig/notes-backend/internal/api/conversation"
	documentapi "github.com/futig/notes-backend/internal/api/document"
	"github.com/futig/notes-backend/internal/api/live"
	presentationapi "github.com/futig/notes-backend/internal/api/presentation"
	"github.com/futig/notes-backend/internal/config"
	"github.com/futig/notes-backend/internal/entity"
	"github.com/futig/notes-backend/internal/integration/common"
	"github.com/futig/notes-backend/internal/integration/llm"
	"github.com/futig/notes-backend/internal/integration/rag"
	"github.com/futig/notes-backend/internal/integration/tts"
	"github.com/futig/notes-backend/internal/pkg/analyzer"
	"github.com/futig/notes-backend/internal/pkg/extractor"
	"github.com/futig/notes-backend/internal/pkg/formatter"
	pkglogger "github.com/futig/notes-backend/internal/pkg/logger"
	"github.com/futig/notes-backend/internal/pkg/validator"
	"github.com/futig/notes-backend/internal/state"
	"github.com/futig/notes-backend/internal/usecase/conversation"
	"github.com/futig/notes-backend/internal/usecase/document"
	"github.com/futig/notes-backend/internal/usecase/pipeline"
	"github.com/futig/notes-backend/internal/usecase/presentation"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// retrievalConnector covers both indexing and grounded queries
type retrievalConnector interface {
	document.CorpusIndexer
	pipeline.Retriever
}

// connectors are nil when the AI provider is not configured
type connectors struct {
	llm pipeline.LLMConnector
	rag retrievalConnector
	tts pipeline.SpeechSynthesizer
}

func Build() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := pkglogger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
		zap.Bool("ai_enabled", cfg.AIEnabled()),
	)

	store := state.NewStore(cfg.SessionCfg.TTL, cfg.SessionCfg.CleanupInterval, cfg.SessionCfg.MaxLiveUpdates)
	logger.Info("Session store initialized", zap.Duration("ttl", cfg.SessionCfg.TTL))

	pdfExtractor := extractor.NewPDFExtractor()
	conns := setupConnectors(cfg, pdfExtractor, logger)

	// Initialize pipeline stages
	summarizer := pipeline.NewSummarizer(conns.llm, cfg.PipelineCfg.SummaryMaxInputChars)
	questions := pipeline.NewQuestionGenerator(conns.llm, cfg.PipelineCfg.MaxQuestions)
	var retriever pipeline.Retriever
	var indexer document.CorpusIndexer
	if conns.rag != nil {
		retriever = conns.rag
		indexer = conns.rag
	}
	answers := pipeline.NewAnswerRetriever(retriever, cfg.RAGCfg.MaxConcurrency)
	references := pipeline.NewReferenceExtractor(retriever, cfg.PipelineCfg.MaxReferences)
	slides := pipeline.NewSlideSynthesizer(conns.llm)
	narrator := pipeline.NewNarrator(
		conns.tts,
		cfg.TTSCfg.MaxTextLength,
		entity.Voice(cfg.TTSCfg.DefaultVoice),
		cfg.PipelineCfg.NarrationConcurrency,
	)

	inputValidator := validator.New(cfg.FileUploadCfg, cfg.TTSCfg.MaxTextLength)

	// Initialize use cases
	documentUC := document.NewUsecase(
		store,
		pdfExtractor,
		analyzer.New(cfg.AnalyzerCfg),
		summarizer,
		indexer,
		references,
		cfg.AIEnabled(),
	)
	if indexer != nil {
		releaseCtx := ctxzap.ToContext(context.Background(), logger)
		store.OnCorpusReleased(func(handle entity.CorpusHandle) {
			documentUC.ReleaseCorpus(releaseCtx, handle)
		})
	}

	presentationUC := presentation.NewUsecase(
		store,
		summarizer,
		questions,
		answers,
		slides,
		narrator,
		formatter.NewFactory(),
		cfg.AIEnabled(),
	)

	conversationUC := conversation.NewUsecase(store, answers)
	logger.Info("Use cases initialized")

	// Setup API handlers
	handlers := api.Handlers{
		Document:     documentapi.NewHandler(documentUC, cfg.FileUploadCfg, inputValidator),
		Presentation: presentationapi.NewHandler(presentationUC, inputValidator),
		Conversation: conversationapi.NewHandler(conversationUC, inputValidator),
		Live:         live.NewHandler(conversationUC, cfg.CORSAllowedOrigins),
	}

	router := api.SetupRouter(handlers, api.RouterConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		HandlerTimeout: cfg.HandlerTimeout,
		AIEnabled:      cfg.AIEnabled(),
	}, logger)
	logger.Info("HTTP router configured")

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		store:  store,
		jobs:   documentUC,
		logger: logger,
	}, nil
}

func setupConnectors(cfg *config.Config, textExtractor rag.TextExtractor, logger *zap.Logger) connectors {
	switch {
	case cfg.EnableMocks:
		logger.Info("Using mock connectors for external services")
		return connectors{
			llm: llm.NewMockConnector(logger),
			rag: rag.NewMockConnector(textExtractor, logger),
			tts: tts.NewMockConnector(logger),
		}
	case cfg.OpenAICfg.APIKey != "":
		logger.Info("Using real connectors for external services", zap.String("base_url", cfg.OpenAICfg.Url))
		client := common.NewOpenAIClient(cfg.OpenAICfg)
		return connectors{
			llm: llm.NewConnector(client, cfg.LLMCfg, logger),
			rag: rag.NewConnector(client, cfg.RAGCfg, cfg.OpenAICfg, logger),
			tts: tts.NewConnector(client, cfg.TTSCfg, logger),
		}
	default:
		logger.Warn("OPENAI_API_KEY is not set, AI features are disabled")
		return connectors{}
	}
}
