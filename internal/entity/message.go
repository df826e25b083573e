package entity

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Mode selects whether a send goes through retrieval first.
type Mode string

const (
	ModeAsk  Mode = "ask"
	ModeChat Mode = "chat"
)

func (m Mode) Validate() error {
	switch m {
	case ModeAsk, ModeChat:
		return nil
	default:
		return ErrInvalidMode
	}
}

// Message is an immutable conversation entry. Error marks a message produced from a failed request.
type Message struct {
	Role      Role             `json:"role"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
	Error     bool             `json:"error,omitempty"`
}

type MessageMetadata struct {
	Model             string        `json:"model,omitempty"`
	Tokens            int           `json:"tokens,omitempty"`
	ProcessingTime    time.Duration `json:"processingTime,omitempty"`
	SearchResultCount *int          `json:"searchResultCount,omitempty"`
	PromptTemplate    string        `json:"promptTemplate,omitempty"`
	SessionID         string        `json:"sessionId,omitempty"`
}

// RoleFromString maps a loosely cased role (USER, Assistant, ...) to a Role.
func RoleFromString(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}
