package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/containerd/errdefs"

	"gardenai/internal/domain"
)

func TestChatSessionDefaults(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	session, err := repo.CreateChatSession(ctx, "")
	if err != nil {
		t.Fatalf("CreateChatSession failed: %v", err)
	}
	if session.Title != domain.DefaultSessionTitle {
		t.Errorf("Expected default title %q, got %q", domain.DefaultSessionTitle, session.Title)
	}
	if session.Summary != nil {
		t.Errorf("Expected nil summary on new session, got %q", *session.Summary)
	}

	got, err := repo.GetChatSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetChatSession failed: %v", err)
	}
	if got.ID != session.ID || got.Title != session.Title {
		t.Errorf("Expected session %s/%s, got %s/%s", session.ID, session.Title, got.ID, got.Title)
	}

	named, err := repo.CreateChatSession(ctx, "Spring planning")
	if err != nil {
		t.Fatalf("CreateChatSession failed: %v", err)
	}
	if named.Title != "Spring planning" {
		t.Errorf("Expected custom title, got %q", named.Title)
	}

	if _, err := repo.GetChatSession(ctx, "missing"); !errdefs.IsNotFound(err) {
		t.Errorf("Expected NotFound for missing session, got %v", err)
	}
}

func TestAppendAndListMessages(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	session, err := repo.CreateChatSession(ctx, "")
	if err != nil {
		t.Fatalf("CreateChatSession failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		_, err := repo.AppendMessage(ctx, session.ID, MessageInput{
			Role:    role,
			Content: fmt.Sprintf("message %d", i),
		})
		if err != nil {
			t.Fatalf("AppendMessage %d failed: %v", i, err)
		}
	}

	messages, err := repo.ListMessages(ctx, session.ID)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(messages) != 5 {
		t.Fatalf("Expected 5 messages, got %d", len(messages))
	}
	// Insertion order holds even when appends land in the same second.
	for i, m := range messages {
		if m.Content != fmt.Sprintf("message %d", i) {
			t.Errorf("Expected message %d at position %d, got %q", i, i, m.Content)
		}
	}

	if _, err := repo.AppendMessage(ctx, "missing", MessageInput{Role: domain.RoleUser, Content: "x"}); !errdefs.IsNotFound(err) {
		t.Errorf("Expected NotFound for missing session, got %v", err)
	}
}

func TestAppendMessageToolPayloads(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	session, err := repo.CreateChatSession(ctx, "")
	if err != nil {
		t.Fatalf("CreateChatSession failed: %v", err)
	}

	calls := `[{"callId":"c1","toolName":"searchPlants"}]`
	msg, err := repo.AppendMessage(ctx, session.ID, MessageInput{
		Role:      domain.RoleAssistant,
		Content:   "Found it.",
		ToolCalls: calls,
	})
	if err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	messages, err := repo.ListMessages(ctx, session.ID)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messages))
	}
	if messages[0].ID != msg.ID || messages[0].ToolCalls != calls {
		t.Errorf("Expected tool calls round-tripped, got %q", messages[0].ToolCalls)
	}
	if messages[0].ToolResults != "" {
		t.Errorf("Expected empty tool results, got %q", messages[0].ToolResults)
	}
}

func TestLatestSessionWithMessages(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	// No sessions at all.
	latest, err := repo.LatestSessionWithMessages(ctx)
	if err != nil {
		t.Fatalf("LatestSessionWithMessages failed: %v", err)
	}
	if latest != nil {
		t.Errorf("Expected nil with no sessions, got %+v", latest)
	}

	// An empty session does not count.
	_, err = repo.CreateChatSession(ctx, "empty")
	if err != nil {
		t.Fatalf("CreateChatSession failed: %v", err)
	}
	latest, err = repo.LatestSessionWithMessages(ctx)
	if err != nil {
		t.Fatalf("LatestSessionWithMessages failed: %v", err)
	}
	if latest != nil {
		t.Errorf("Expected nil with only empty sessions, got %+v", latest)
	}

	active, err := repo.CreateChatSession(ctx, "active")
	if err != nil {
		t.Fatalf("CreateChatSession failed: %v", err)
	}
	if _, err := repo.AppendMessage(ctx, active.ID, MessageInput{Role: domain.RoleUser, Content: "hi"}); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	latest, err = repo.LatestSessionWithMessages(ctx)
	if err != nil {
		t.Fatalf("LatestSessionWithMessages failed: %v", err)
	}
	if latest == nil || latest.ID != active.ID {
		t.Errorf("Expected session %s, got %+v", active.ID, latest)
	}
}

func TestUpdateSessionSummary(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	session, err := repo.CreateChatSession(ctx, "")
	if err != nil {
		t.Fatalf("CreateChatSession failed: %v", err)
	}

	if err := repo.UpdateSessionSummary(ctx, session.ID, "talked about tomatoes"); err != nil {
		t.Fatalf("UpdateSessionSummary failed: %v", err)
	}

	got, err := repo.GetChatSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("GetChatSession failed: %v", err)
	}
	if got.Summary == nil || *got.Summary != "talked about tomatoes" {
		t.Errorf("Expected stored summary, got %v", got.Summary)
	}

	if err := repo.UpdateSessionSummary(ctx, "missing", "x"); !errdefs.IsNotFound(err) {
		t.Errorf("Expected NotFound for missing session, got %v", err)
	}
}

func TestListChatSessionsOrder(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"first", "second"} {
		if _, err := repo.CreateChatSession(ctx, title); err != nil {
			t.Fatalf("CreateChatSession(%s) failed: %v", title, err)
		}
	}

	sessions, err := repo.ListChatSessions(ctx)
	if err != nil {
		t.Fatalf("ListChatSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(sessions))
	}
	// Ties on updated_at break by insertion order, newest first.
	if sessions[0].Title != "second" || sessions[1].Title != "first" {
		t.Errorf("Expected newest session first, got %q then %q", sessions[0].Title, sessions[1].Title)
	}
}
