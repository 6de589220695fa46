package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"

	"github.com/google/uuid"

	"gardenai/internal/domain"
	"gardenai/internal/ollama"
	"gardenai/internal/store"
)

// maxSteps caps reasoning/tool-call rounds per turn to prevent runaway loops.
const maxSteps = 5

// Orchestrator drives one conversational turn end to end.
type Orchestrator struct {
	repo  store.Repository
	llm   *ollama.Client
	tools *Registry
}

// NewOrchestrator wires the turn driver to its collaborators.
func NewOrchestrator(repo store.Repository, llm *ollama.Client) *Orchestrator {
	return &Orchestrator{
		repo:  repo,
		llm:   llm,
		tools: NewRegistry(repo),
	}
}

// Tools exposes the registry, mainly for tests and the websocket handler.
func (o *Orchestrator) Tools() *Registry {
	return o.tools
}

// TurnResult carries what a completed turn produced, for persistence.
type TurnResult struct {
	Text        string
	ToolCalls   []*ToolInvocation
	ToolResults []*ToolInvocation
}

// RunTurn executes one turn: fetch the domain snapshot, compose the prompt,
// then loop the tool-augmented model up to maxSteps. Errors before any event
// is produced are returned directly so callers can map them to a status code
// before committing to a stream. No retries; retry is a user action.
func (o *Orchestrator) RunTurn(ctx context.Context, history []HistoryMessage, summary string) (iter.Seq2[*Event, error], error) {
	snapshot, err := DomainSnapshot(ctx, o.repo)
	if err != nil {
		return nil, err
	}

	messages := make([]ollama.Message, 0, len(history)+1)
	messages = append(messages, ollama.Message{
		Role:    domain.RoleSystem,
		Content: composeSystemPrompt(snapshot, summary),
	})
	for _, m := range history {
		messages = append(messages, ollama.Message{Role: m.Role, Content: m.Content})
	}

	tools := o.tools.Definitions()
	messageID := uuid.NewString()

	// Open the first stream eagerly so a dead or misconfigured model backend
	// fails before any event is emitted and can still map to a status code.
	chunks, err := o.llm.ChatStream(ctx, messages, tools)
	if err != nil {
		return nil, err
	}

	return func(yield func(*Event, error) bool) {
		for step := 0; step < maxSteps; step++ {
			if step > 0 {
				var err error
				chunks, err = o.llm.ChatStream(ctx, messages, tools)
				if err != nil {
					yield(nil, err)
					return
				}
			}

			var stepText string
			var stepCalls []ollama.ToolCall
			for chunk := range chunks {
				if chunk.Error != nil {
					drainChunks(chunks)
					yield(nil, chunk.Error)
					return
				}
				if chunk.Text != "" {
					stepText += chunk.Text
					if !yield(&Event{Type: EventTextDelta, MessageID: messageID, Text: chunk.Text}, nil) {
						drainChunks(chunks)
						return
					}
				}
				if chunk.ToolCall != nil {
					stepCalls = append(stepCalls, *chunk.ToolCall)
				}
			}

			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			if len(stepCalls) == 0 {
				slog.Debug("turn finished", "step", step+1, "text_len", len(stepText))
				yield(&Event{Type: EventDone, MessageID: messageID}, nil)
				return
			}

			// Feed the assistant step plus every tool result back into
			// the transcript for the next round.
			messages = append(messages, ollama.Message{
				Role:      domain.RoleAssistant,
				Content:   stepText,
				ToolCalls: stepCalls,
			})

			for _, tc := range stepCalls {
				inv := &ToolInvocation{
					CallID: tc.ID,
					Name:   tc.Function.Name,
					State:  StatePending,
					Args:   tc.Function.Arguments,
				}
				if !yield(&Event{Type: EventToolCall, MessageID: messageID, Call: inv}, nil) {
					return
				}

				output := o.tools.Execute(ctx, tc.Function.Name, tc.Function.Arguments)
				done := &ToolInvocation{
					CallID: tc.ID,
					Name:   tc.Function.Name,
					State:  StateOutputAvailable,
					Args:   tc.Function.Arguments,
					Output: output,
				}
				if !yield(&Event{Type: EventToolResult, MessageID: messageID, Call: done}, nil) {
					return
				}

				messages = append(messages, ollama.Message{
					Role:     "tool",
					Content:  string(output),
					ToolName: tc.Function.Name,
				})
			}

			select {
			case <-ctx.Done():
				yield(nil, ctx.Err())
				return
			default:
			}
		}

		slog.Warn("turn hit step limit", "max_steps", maxSteps)
		yield(&Event{Type: EventDone, MessageID: messageID}, nil)
	}, nil
}

// drainChunks unblocks the stream producer after an early consumer exit so
// it can finish reading and release the response body.
func drainChunks(chunks <-chan *ollama.Chunk) {
	go func() {
		for range chunks {
		}
	}()
}

// MarshalInvocations serializes tool invocations for message persistence.
func MarshalInvocations(invs []*ToolInvocation) (string, error) {
	if len(invs) == 0 {
		return "", nil
	}
	out, err := json.Marshal(invs)
	if err != nil {
		return "", fmt.Errorf("marshal tool invocations: %w", err)
	}
	return string(out), nil
}
