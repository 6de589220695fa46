// Package agent drives conversational turns: prompt assembly over live garden
// data, the tool-augmented model loop, and tool dispatch against the store.
package agent

import (
	"encoding/json"
)

// Event types streamed from a turn.
const (
	EventTextDelta  = "text-delta"
	EventToolCall   = "tool-call"
	EventToolResult = "tool-result"
	EventDone       = "done"
	EventError      = "error"
)

// Tool invocation states.
const (
	StatePending         = "pending"
	StateOutputAvailable = "output-available"
)

// Event is one unit of a streamed turn.
type Event struct {
	Type string `json:"type"`
	// MessageID identifies the assistant message this event belongs to.
	MessageID string `json:"messageId,omitempty"`
	// Text carries the delta for text-delta events.
	Text string `json:"text,omitempty"`
	// Call carries the invocation for tool-call and tool-result events.
	Call *ToolInvocation `json:"call,omitempty"`
	// Err carries the message for error events.
	Err string `json:"error,omitempty"`
}

// ToolInvocation is the stable envelope for one tool call through its
// lifecycle. State transitions pending -> output-available exactly once.
type ToolInvocation struct {
	CallID string          `json:"callId"`
	Name   string          `json:"toolName"`
	State  string          `json:"state"`
	Args   json.RawMessage `json:"input,omitempty"`
	Output json.RawMessage `json:"output,omitempty"`
}

// HistoryMessage is one prior message supplied by the client for a turn.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
