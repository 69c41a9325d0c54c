package conversation

import (
	"context"
	"time"

	"github.com/m-mizutani/kasumi/pkg/domain/types"
)

// Role identifies the author of a turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid checks if the role is one of the known values
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ToolCall records one tool invocation made while producing a turn
type ToolCall struct {
	Name      string `json:"name" firestore:"name"`
	Arguments string `json:"arguments" firestore:"arguments"`
}

// Turn is one message within a session. Immutable once appended.
type Turn struct {
	Role      Role      `json:"role" firestore:"role"`
	Content   string    `json:"content" firestore:"content"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`

	// ToolsUsed and ToolsOutput are set only on assistant turns that
	// invoked tools
	ToolsUsed   []ToolCall `json:"tools_used,omitempty" firestore:"tools_used"`
	ToolsOutput string     `json:"tools_output,omitempty" firestore:"tools_output"`
}

// Session is one continuous conversation, bounded by explicit start/clear
// actions. Turn order is chronological append order.
type Session struct {
	ID           types.SessionID `json:"session_id" firestore:"session_id"`
	StartedAt    time.Time       `json:"started_at" firestore:"started_at"`
	Messages     []Turn          `json:"messages" firestore:"messages"`
	MessageCount int             `json:"message_count" firestore:"message_count"`
	LastUpdated  time.Time       `json:"last_updated,omitempty" firestore:"last_updated"`
}

// NewSession creates a new empty session with a fresh identifier
func NewSession(ctx context.Context) *Session {
	return &Session{
		ID:        types.NewSessionID(ctx),
		StartedAt: time.Now(),
		Messages:  []Turn{},
	}
}

// Append adds a turn and recomputes the denormalized message count
func (s *Session) Append(turn Turn) {
	s.Messages = append(s.Messages, turn)
	s.MessageCount = len(s.Messages)
	s.LastUpdated = time.Now()
}

// Validate checks if the session has valid fields
func (s *Session) Validate() error {
	if !s.ID.IsValid() {
		return ErrInvalidSessionID
	}
	return nil
}

// Statistics summarizes the conversation history
type Statistics struct {
	TotalSessions          int  `json:"total_sessions"`
	TotalMessages          int  `json:"total_messages"`
	CurrentSessionMessages int  `json:"current_session_messages"`
	HasHistory             bool `json:"has_history"`
}
