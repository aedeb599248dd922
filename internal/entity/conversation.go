package entity

import "time"

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

func (r MessageRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}

type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Grounded  bool        `json:"grounded,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

type AddMessageRequest struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

type UpdateKind string

const (
	UpdateDocumentAnalyzed UpdateKind = "document_analyzed"
	UpdateSummaryReady     UpdateKind = "summary_ready"
	UpdateIndexReady       UpdateKind = "index_ready"
	UpdateIndexFailed      UpdateKind = "index_failed"
	UpdateQAReady          UpdateKind = "qa_ready"
	UpdateDeckReady        UpdateKind = "deck_ready"
	UpdateNarrationReady   UpdateKind = "narration_ready"
	UpdateSlideChanged     UpdateKind = "slide_changed"
)

// LiveUpdate is a pipeline event pushed to clients of one session.
type LiveUpdate struct {
	Seq       int64      `json:"seq"`
	Kind      UpdateKind `json:"kind"`
	Message   string     `json:"message"`
	Data      any        `json:"data,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
