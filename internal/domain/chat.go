package domain

import (
	"time"
)

// DefaultSessionTitle is used when a chat session is created without a title.
const DefaultSessionTitle = "New Chat"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatSession is a persisted conversation thread. Summary holds the rolling
// summary of older messages and is nil until the summarizer first runs.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Summary   *string   `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatMessage is one message within a session. Messages are append-only and
// totally ordered by CreatedAt within their session.
type ChatMessage struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	ToolCalls   string    `json:"toolCalls,omitempty"`   // serialized JSON, empty when none
	ToolResults string    `json:"toolResults,omitempty"` // serialized JSON, empty when none
	CreatedAt   time.Time `json:"created_at"`
}
