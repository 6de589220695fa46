package chat

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"gardenai/internal/domain"
	"gardenai/internal/store"
)

func newTestRepo(t *testing.T) store.Repository {
	t.Helper()
	repo, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return repo
}

func seedSession(t *testing.T, repo store.Repository, count int) *domain.ChatSession {
	t.Helper()
	ctx := context.Background()
	session, err := repo.CreateChatSession(ctx, "")
	if err != nil {
		t.Fatalf("CreateChatSession failed: %v", err)
	}
	for i := 0; i < count; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		_, err := repo.AppendMessage(ctx, session.ID, store.MessageInput{
			Role:    role,
			Content: fmt.Sprintf("message %d", i),
		})
		if err != nil {
			t.Fatalf("AppendMessage %d failed: %v", i, err)
		}
	}
	return session
}

func TestGetContextSmallSession(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	builder := NewBuilder(repo)

	session := seedSession(t, repo, 8)

	snap, err := builder.GetContext(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("GetContext failed: %v", err)
	}
	if len(snap.RecentMessages) != 8 {
		t.Errorf("Expected all 8 messages verbatim, got %d", len(snap.RecentMessages))
	}
	if snap.NeedsSummarization {
		t.Error("Expected no summarization under the threshold")
	}
	if snap.OlderMessages != nil {
		t.Errorf("Expected no older messages, got %d", len(snap.OlderMessages))
	}
}

func TestGetContextAtThreshold(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	builder := NewBuilder(repo)

	// Exactly 20 messages stays verbatim.
	session := seedSession(t, repo, summaryThreshold)

	snap, err := builder.GetContext(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("GetContext failed: %v", err)
	}
	if len(snap.RecentMessages) != summaryThreshold {
		t.Errorf("Expected %d messages, got %d", summaryThreshold, len(snap.RecentMessages))
	}
	if snap.NeedsSummarization {
		t.Error("Expected no summarization at the threshold")
	}
}

func TestGetContextSplitsLongSession(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	builder := NewBuilder(repo)

	session := seedSession(t, repo, 25)

	snap, err := builder.GetContext(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("GetContext failed: %v", err)
	}
	if len(snap.RecentMessages) != recentMessageCount {
		t.Fatalf("Expected %d recent messages, got %d", recentMessageCount, len(snap.RecentMessages))
	}
	// The window holds the newest messages in order.
	if snap.RecentMessages[0].Content != "message 15" {
		t.Errorf("Expected window to start at message 15, got %q", snap.RecentMessages[0].Content)
	}
	if snap.RecentMessages[9].Content != "message 24" {
		t.Errorf("Expected window to end at message 24, got %q", snap.RecentMessages[9].Content)
	}
	// No summary yet, so summarization is due and older messages are exposed.
	if !snap.NeedsSummarization {
		t.Error("Expected summarization with no stored summary")
	}
	if len(snap.OlderMessages) != 15 {
		t.Errorf("Expected 15 older messages, got %d", len(snap.OlderMessages))
	}
}

func TestGetContextResummarizeBoundary(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	builder := NewBuilder(repo)
	ctx := context.Background()

	// 25 messages with a stored summary: 15 older, 15 % 10 = 5, within the
	// grace so no re-summarization.
	session := seedSession(t, repo, 25)
	if err := repo.UpdateSessionSummary(ctx, session.ID, "old summary"); err != nil {
		t.Fatalf("UpdateSessionSummary failed: %v", err)
	}

	snap, err := builder.GetContext(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetContext failed: %v", err)
	}
	if snap.NeedsSummarization {
		t.Error("Expected no re-summarization mid-interval")
	}
	if snap.Summary == nil || *snap.Summary != "old summary" {
		t.Errorf("Expected stored summary passed through, got %v", snap.Summary)
	}
	if snap.OlderMessages != nil {
		t.Error("Expected older messages withheld when summarization is not due")
	}

	// Grow the older portion onto a fresh interval boundary: 31 total makes
	// 21 older, 21 % 10 = 1, inside the grace window so summarization is due.
	for i := 25; i < 31; i++ {
		_, err := repo.AppendMessage(ctx, session.ID, store.MessageInput{
			Role:    domain.RoleUser,
			Content: fmt.Sprintf("message %d", i),
		})
		if err != nil {
			t.Fatalf("AppendMessage %d failed: %v", i, err)
		}
	}

	snap, err = builder.GetContext(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetContext failed: %v", err)
	}
	if !snap.NeedsSummarization {
		t.Error("Expected re-summarization at interval boundary")
	}
	if len(snap.OlderMessages) != 21 {
		t.Errorf("Expected 21 older messages, got %d", len(snap.OlderMessages))
	}
}

func TestGetContextIdempotent(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	builder := NewBuilder(repo)
	ctx := context.Background()

	session := seedSession(t, repo, 25)

	first, err := builder.GetContext(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetContext failed: %v", err)
	}
	second, err := builder.GetContext(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetContext failed: %v", err)
	}
	if len(first.RecentMessages) != len(second.RecentMessages) ||
		first.NeedsSummarization != second.NeedsSummarization ||
		len(first.OlderMessages) != len(second.OlderMessages) {
		t.Error("Expected identical snapshots from repeated reads")
	}
}
