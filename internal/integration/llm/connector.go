package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/futig/notes-backend/internal/config"
	"github.com/futig/notes-backend/internal/entity"
	"github.com/futig/notes-backend/internal/integration/common"
	pkgRetry "github.com/futig/notes-backend/internal/pkg/retry"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type Connector struct {
	config config.LLMConnectorConfig
	client *openai.Client
	logger *zap.Logger
}

func NewConnector(
	client *openai.Client,
	cfg config.LLMConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		client: client,
		config: cfg,
		logger: logger,
	}
}

// CompleteStructured asks the model to answer through req.Schema and returns the raw arguments
func (c *Connector) CompleteStructured(ctx context.Context, req *entity.StructuredRequest) (json.RawMessage, error) {
	ctxzap.Info(ctx, "requesting structured completion",
		zap.String("schema", req.SchemaName),
		zap.Bool("required", req.Required),
	)

	chatReq := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    buildMessages(req.System, req.Prompt),
		Temperature: req.Temperature,
		Tools: []openai.Tool{{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        req.SchemaName,
				Description: req.SchemaDescription,
				Parameters:  req.Schema,
			},
		}},
	}
	if req.Required {
		chatReq.ToolChoice = openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: req.SchemaName},
		}
	}

	resp, err := pkgRetry.Do(ctx, c.config.Retry, "llm.structured", func(ctx context.Context) (openai.ChatCompletionResponse, error) {
		r, err := c.client.CreateChatCompletion(ctx, chatReq)
		return r, common.TranslateError(err)
	})
	if err != nil {
		return nil, fmt.Errorf("structured completion failed: %w", err)
	}

	args, err := ToolArguments(resp, req.SchemaName)
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "structured completion received",
		zap.String("schema", req.SchemaName),
		zap.Int("payload_length", len(args)),
	)

	return args, nil
}

// CompleteText returns the free-form text of a single completion
func (c *Connector) CompleteText(ctx context.Context, req *entity.TextRequest) (string, error) {
	ctxzap.Info(ctx, "requesting text completion")

	chatReq := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    buildMessages(req.System, req.Prompt),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	resp, err := pkgRetry.Do(ctx, c.config.Retry, "llm.text", func(ctx context.Context) (openai.ChatCompletionResponse, error) {
		r, err := c.client.CreateChatCompletion(ctx, chatReq)
		return r, common.TranslateError(err)
	})
	if err != nil {
		return "", fmt.Errorf("text completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", entity.ErrEmptyResponse
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", entity.ErrEmptyResponse
	}

	ctxzap.Info(ctx, "text completion received", zap.Int("result_length", len(text)))

	return text, nil
}

// ToolArguments pulls the arguments of the named function call out of a completion.
// A response without that call fails with ErrSchemaOmitted, invalid JSON with ErrMalformedPayload.
func ToolArguments(resp openai.ChatCompletionResponse, name string) (json.RawMessage, error) {
	if len(resp.Choices) == 0 {
		return nil, entity.ErrEmptyResponse
	}

	for _, call := range resp.Choices[0].Message.ToolCalls {
		if call.Function.Name != name {
			continue
		}
		args := strings.TrimSpace(call.Function.Arguments)
		if !json.Valid([]byte(args)) {
			return nil, fmt.Errorf("%w: %s arguments are not valid JSON", entity.ErrMalformedPayload, name)
		}
		return json.RawMessage(args), nil
	}

	return nil, fmt.Errorf("%w: %s", entity.ErrSchemaOmitted, name)
}

func buildMessages(system, prompt string) []openai.ChatCompletionMessage {
	var messages []openai.ChatCompletionMessage
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	return append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})
}
