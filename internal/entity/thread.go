package entity

import (
	"strings"
	"time"
)

type ThreadStatus string

const (
	ThreadStatusActive   ThreadStatus = "ACTIVE"
	ThreadStatusArchived ThreadStatus = "ARCHIVED"
	ThreadStatusDeleted  ThreadStatus = "DELETED"
)

// CanTransitionTo reports whether a thread may move from s to next.
// Transitions only move forward: ACTIVE -> ARCHIVED -> DELETED, or ACTIVE -> DELETED.
func (s ThreadStatus) CanTransitionTo(next ThreadStatus) bool {
	switch s {
	case ThreadStatusActive:
		return next == ThreadStatusArchived || next == ThreadStatusDeleted
	case ThreadStatusArchived:
		return next == ThreadStatusDeleted
	default:
		return false
	}
}

type ThreadMessage struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Role      string         `json:"role"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type ConversationThread struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	SessionID   string          `json:"sessionId"`
	Messages    []ThreadMessage `json:"messages"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Status      ThreadStatus    `json:"status"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}

// ThreadRole is the upper-case form (USER, ASSISTANT, SYSTEM) the thread service stores.
func ThreadRole(r Role) string {
	return strings.ToUpper(string(r))
}

// ToMessages maps thread entries onto the orchestrator's message shape.
func (t *ConversationThread) ToMessages() []Message {
	messages := make([]Message, 0, len(t.Messages))
	for _, m := range t.Messages {
		messages = append(messages, Message{
			Role:      RoleFromString(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}
	return messages
}

type CreateThreadRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type AddMessageRequest struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type UpdateTitleRequest struct {
	Title string `json:"title"`
}
