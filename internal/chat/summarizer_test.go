package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gardenai/internal/domain"
	"gardenai/internal/ollama"
)

// fakeOllama serves the non-streaming chat endpoint with a canned reply.
func fakeOllama(t *testing.T, reply string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		if status >= 400 {
			_ = json.NewEncoder(w).Encode(map[string]string{"error": reply})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": reply},
			"done":    true,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSummarizeReturnsModelText(t *testing.T) {
	t.Parallel()
	srv := fakeOllama(t, "The user planned tomato plantings.", http.StatusOK)

	s := NewSummarizer(ollama.New(ollama.Config{BaseURL: srv.URL}))
	got := s.Summarize(context.Background(), []*domain.ChatMessage{
		{Role: domain.RoleUser, Content: "add a tomato"},
		{Role: domain.RoleAssistant, Content: "done"},
	})
	if got != "The user planned tomato plantings." {
		t.Errorf("Expected model summary, got %q", got)
	}
}

func TestSummarizeFallsBackOnError(t *testing.T) {
	t.Parallel()
	srv := fakeOllama(t, "boom", http.StatusInternalServerError)

	s := NewSummarizer(ollama.New(ollama.Config{BaseURL: srv.URL}))
	got := s.Summarize(context.Background(), []*domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hi"},
	})
	if got != FallbackSummary {
		t.Errorf("Expected fallback summary, got %q", got)
	}
}

func TestSummarizeFallsBackOnEmptyReply(t *testing.T) {
	t.Parallel()
	srv := fakeOllama(t, "   ", http.StatusOK)

	s := NewSummarizer(ollama.New(ollama.Config{BaseURL: srv.URL}))
	got := s.Summarize(context.Background(), []*domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hi"},
	})
	if got != FallbackSummary {
		t.Errorf("Expected fallback for blank reply, got %q", got)
	}
}

func TestSummarizeExcludesToolMessages(t *testing.T) {
	t.Parallel()

	var transcript string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		for _, m := range payload.Messages {
			if m.Role == domain.RoleUser {
				transcript = m.Content
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "ok"},
			"done":    true,
		})
	}))
	t.Cleanup(srv.Close)

	s := NewSummarizer(ollama.New(ollama.Config{BaseURL: srv.URL}))
	s.Summarize(context.Background(), []*domain.ChatMessage{
		{Role: domain.RoleUser, Content: "search for basil"},
		{Role: "tool", Content: `{"success":true}`},
		{Role: domain.RoleAssistant, Content: "found it"},
	})

	if !strings.Contains(transcript, "user: search for basil") {
		t.Errorf("Expected user line in transcript, got %q", transcript)
	}
	if !strings.Contains(transcript, "assistant: found it") {
		t.Errorf("Expected assistant line in transcript, got %q", transcript)
	}
	if strings.Contains(transcript, "success") {
		t.Errorf("Expected tool message excluded, got %q", transcript)
	}
}
