package tts

import (
	"context"
	"crypto/sha256"

	"github.com/futig/notes-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// id3Header makes the mock payload recognizable as MP3 to players that sniff it
var id3Header = []byte{'I', 'D', '3', 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

// MockConnector returns deterministic pseudo-audio derived from the input
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Synthesize(ctx context.Context, text string, voice entity.Voice) ([]byte, error) {
	ctxzap.Info(ctx, "[MOCK] synthesizing speech", zap.String("voice", string(voice)))

	sum := sha256.Sum256([]byte(string(voice) + "|" + text))
	audio := make([]byte, 0, len(id3Header)+len(sum))
	audio = append(audio, id3Header...)
	return append(audio, sum[:]...), nil
}
