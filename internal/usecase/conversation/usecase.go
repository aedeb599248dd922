package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/futig/notes-backend/internal/entity"
	"github.com/futig/notes-backend/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const notIndexedReply = "I can answer questions about the document once it has been uploaded and indexed."

// ConversationUsecase keeps the session transcript and its live update feed
type ConversationUsecase struct {
	store   SessionStore
	answers AnswerRetriever
}

func NewUsecase(store SessionStore, answers AnswerRetriever) *ConversationUsecase {
	return &ConversationUsecase{store: store, answers: answers}
}

func (uc *ConversationUsecase) Messages(ctx context.Context, sessionID string) []entity.Message {
	messages := uc.store.Session(sessionID).Messages()
	if messages == nil {
		return []entity.Message{}
	}
	return messages
}

// AddMessage appends a message. A user question gets an assistant reply
// grounded in the session corpus; the returned slice holds the new messages.
func (uc *ConversationUsecase) AddMessage(ctx context.Context, sessionID string, req *entity.AddMessageRequest) []entity.Message {
	ctx = logger.WithAction(ctx, "add_message")
	sess := uc.store.Session(sessionID)

	msg := newMessage(req.Role, strings.TrimSpace(req.Content), false)
	sess.AppendMessage(msg)
	added := []entity.Message{msg}

	if req.Role != entity.RoleUser || !isQuestion(msg.Content) {
		return added
	}

	reply := newMessage(entity.RoleAssistant, notIndexedReply, false)
	if handle := sess.Corpus(); !handle.IsZero() && uc.answers != nil {
		answer, grounded := uc.answers.Answer(ctx, handle, msg.Content)
		reply = newMessage(entity.RoleAssistant, answer, grounded)
	}

	sess.AppendMessage(reply)
	ctxzap.Debug(ctx, "question answered", zap.Bool("grounded", reply.Grounded))

	return append(added, reply)
}

// Updates returns retained live updates after seq
func (uc *ConversationUsecase) Updates(ctx context.Context, sessionID string, since int64) []entity.LiveUpdate {
	return uc.store.Session(sessionID).Feed().Since(since)
}

// Subscribe streams future live updates until cancel is called or the session expires
func (uc *ConversationUsecase) Subscribe(ctx context.Context, sessionID string) (<-chan entity.LiveUpdate, func()) {
	return uc.store.Session(sessionID).Feed().Subscribe()
}

func newMessage(role entity.MessageRole, content string, grounded bool) entity.Message {
	return entity.Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Grounded:  grounded,
		CreatedAt: time.Now().UTC(),
	}
}

func isQuestion(content string) bool {
	return strings.HasSuffix(strings.TrimSpace(content), "?")
}
