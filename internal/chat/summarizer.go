package chat

import (
	"context"
	"log/slog"
	"strings"

	"gardenai/internal/domain"
	"gardenai/internal/ollama"
)

// FallbackSummary stands in when the model cannot produce a summary, so the
// context window still shrinks instead of growing without bound.
const FallbackSummary = "Previous conversation context (summary unavailable)."

const summarizerInstruction = "You are a summarizer. Summarize the following conversation concisely, " +
	"preserving key facts, decisions, and context. Keep it under 500 words. " +
	"Focus on what the user asked for and what was done."

// Summarizer condenses older conversation history via the model.
type Summarizer struct {
	llm *ollama.Client
}

// NewSummarizer creates a summarizer backed by the Ollama client.
func NewSummarizer(llm *ollama.Client) *Summarizer {
	return &Summarizer{llm: llm}
}

// Summarize produces a rolling summary of the given messages. Tool and system
// messages are excluded from the transcript. It never returns an error; on
// model failure the fallback text is returned so summarization stays
// best-effort.
func (s *Summarizer) Summarize(ctx context.Context, messages []*domain.ChatMessage) string {
	var lines []string
	for _, m := range messages {
		if m.Role != domain.RoleUser && m.Role != domain.RoleAssistant {
			continue
		}
		lines = append(lines, m.Role+": "+m.Content)
	}
	transcript := strings.Join(lines, "\n")

	summary, err := s.llm.Chat(ctx, []ollama.Message{
		{Role: domain.RoleSystem, Content: summarizerInstruction},
		{Role: domain.RoleUser, Content: "Summarize this conversation:\n\n" + transcript},
	})
	if err != nil {
		slog.Error("summarization failed, using fallback", "error", err, "message_count", len(messages))
		return FallbackSummary
	}
	if strings.TrimSpace(summary) == "" {
		return FallbackSummary
	}
	slog.Info("conversation summarized", "message_count", len(messages), "summary_length", len(summary))
	return summary
}
