package chat

import (
	"context"
	"log/slog"
	"time"
)

// StartSummarySweeper runs a background goroutine that periodically checks
// every session and refreshes stale rolling summaries. It is a safety net
// behind the per-turn trigger: a session abandoned mid-conversation still
// gets its summary before the user returns.
func StartSummarySweeper(ctx context.Context, builder *Builder, summarizer *Summarizer, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("summary sweeper started", "interval", interval)

		for {
			select {
			case <-ticker.C:
				sweepSessions(ctx, builder, summarizer)
			case <-ctx.Done():
				slog.Info("summary sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweepSessions(ctx context.Context, builder *Builder, summarizer *Summarizer) {
	sessions, err := builder.repo.ListChatSessions(ctx)
	if err != nil {
		slog.Error("summary sweeper failed to list sessions", "error", err)
		return
	}

	refreshed := 0
	for _, session := range sessions {
		snap, err := builder.GetContext(ctx, session.ID)
		if err != nil {
			slog.Warn("summary sweeper skipped session", "session_id", session.ID, "error", err)
			continue
		}
		if !snap.NeedsSummarization {
			continue
		}

		summary := summarizer.Summarize(ctx, snap.OlderMessages)
		if err := builder.repo.UpdateSessionSummary(ctx, session.ID, summary); err != nil {
			slog.Warn("summary sweeper failed to store summary", "session_id", session.ID, "error", err)
			continue
		}
		refreshed++
	}

	if refreshed > 0 {
		slog.Info("summary sweeper refreshed sessions", "count", refreshed)
	}
}
