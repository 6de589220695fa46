// Package chat manages conversation sessions: windowed context assembly,
// rolling summarization of older messages, and the reconciliation of streamed
// agent turns back into persisted history.
package chat

import (
	"context"
	"fmt"

	"gardenai/internal/domain"
	"gardenai/internal/store"
)

// Context window tuning. Once a session exceeds summaryThreshold messages,
// only the most recent recentMessageCount are sent verbatim; older ones are
// folded into a rolling summary refreshed every resummarizeInterval messages.
const (
	summaryThreshold    = 20
	recentMessageCount  = 10
	resummarizeInterval = 10
)

// Snapshot is the assembled context window for one agent turn.
type Snapshot struct {
	// Summary is the stored rolling summary, nil when none exists yet.
	Summary *string
	// RecentMessages go into the model transcript verbatim, oldest first.
	RecentMessages []*domain.ChatMessage
	// NeedsSummarization signals that OlderMessages should be summarized
	// before the next turn.
	NeedsSummarization bool
	// OlderMessages holds everything outside the recent window. Only
	// populated when NeedsSummarization is true.
	OlderMessages []*domain.ChatMessage
}

// Builder assembles context snapshots from stored session history.
type Builder struct {
	repo store.Repository
}

// NewBuilder creates a context builder over the repository.
func NewBuilder(repo store.Repository) *Builder {
	return &Builder{repo: repo}
}

// GetContext loads the session's history and splits it into the context
// window. Sessions at or under the threshold return everything verbatim.
// Above it, re-summarization triggers when no summary exists yet or when the
// older portion has grown past the last summarized boundary. The modulo grace
// of two keeps a turn's user/assistant pair from re-triggering immediately.
func (b *Builder) GetContext(ctx context.Context, sessionID string) (*Snapshot, error) {
	session, err := b.repo.GetChatSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	messages, err := b.repo.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session messages: %w", err)
	}

	total := len(messages)
	if total <= summaryThreshold {
		return &Snapshot{
			Summary:        session.Summary,
			RecentMessages: messages,
		}, nil
	}

	recent := messages[total-recentMessageCount:]
	older := messages[:total-recentMessageCount]

	needsSummarization := session.Summary == nil || len(older)%resummarizeInterval < 2

	snap := &Snapshot{
		Summary:            session.Summary,
		RecentMessages:     recent,
		NeedsSummarization: needsSummarization,
	}
	if needsSummarization {
		snap.OlderMessages = older
	}
	return snap, nil
}
