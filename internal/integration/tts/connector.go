package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/futig/notes-backend/internal/config"
	"github.com/futig/notes-backend/internal/entity"
	"github.com/futig/notes-backend/internal/integration/common"
	pkgRetry "github.com/futig/notes-backend/internal/pkg/retry"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type Connector struct {
	config config.TTSConnectorConfig
	client *openai.Client
	logger *zap.Logger
}

func NewConnector(
	client *openai.Client,
	cfg config.TTSConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		client: client,
		config: cfg,
		logger: logger,
	}
}

// Synthesize returns MP3 audio for text spoken in voice
func (c *Connector) Synthesize(ctx context.Context, text string, voice entity.Voice) ([]byte, error) {
	ctxzap.Info(ctx, "synthesizing speech",
		zap.String("voice", string(voice)),
		zap.Int("text_length", len(text)),
	)

	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(c.config.Model),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	}

	audio, err := pkgRetry.Do(ctx, c.config.Retry, "tts.speech", func(ctx context.Context) ([]byte, error) {
		resp, err := c.client.CreateSpeech(ctx, req)
		if err != nil {
			return nil, common.TranslateError(err)
		}
		defer resp.Close()

		var buf bytes.Buffer
		if _, err := io.Copy(&buf, resp); err != nil {
			return nil, fmt.Errorf("read speech audio: %w", err)
		}
		return buf.Bytes(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrSynthesisFailed, err)
	}

	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: %w", entity.ErrSynthesisFailed, entity.ErrEmptyResponse)
	}

	ctxzap.Info(ctx, "speech synthesized", zap.Int("audio_bytes", len(audio)))

	return audio, nil
}
