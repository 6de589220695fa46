package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"gardenai/internal/agent"
	"gardenai/internal/domain"
	"gardenai/internal/ollama"
	"gardenai/internal/store"
)

// streamingOllama serves one scripted NDJSON chat stream per request.
func streamingOllama(t *testing.T, lines ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, line := range lines {
			fmt.Fprintln(w, line)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newConversationServer(t *testing.T, repo store.Repository, modelURL string) *httptest.Server {
	t.Helper()
	llm := ollama.New(ollama.Config{BaseURL: modelURL, Timeout: 5 * time.Second})
	builder := NewBuilder(repo)
	summarizer := NewSummarizer(llm)
	orchestrator := agent.NewOrchestrator(repo, llm)
	h := NewWebSocketHandler(repo, builder, summarizer, orchestrator)

	srv := httptest.NewServer(http.HandlerFunc(h.HandleConversation))
	t.Cleanup(srv.Close)
	return srv
}

func dialConversation(t *testing.T, ctx context.Context, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.Dial(ctx, strings.Replace(url, "http", "ws", 1), nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	t.Cleanup(func() { _ = ws.Close(websocket.StatusNormalClosure, "test done") })
	return ws
}

func readServerMessage(t *testing.T, ctx context.Context, ws *websocket.Conn) *wsServerMessage {
	t.Helper()
	_, raw, err := ws.Read(ctx)
	if err != nil {
		t.Fatalf("websocket read failed: %v", err)
	}
	var msg wsServerMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("Failed to decode server message %s: %v", raw, err)
	}
	return &msg
}

func TestConversationBootstrapFreshSession(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	model := streamingOllama(t, `{"done":true}`)
	srv := newConversationServer(t, repo, model.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ws := dialConversation(t, ctx, srv.URL)
	init := readServerMessage(t, ctx, ws)
	if init.Type != "session" {
		t.Fatalf("Expected session message first, got %q", init.Type)
	}
	if init.Session == nil || init.Session.Title != domain.DefaultSessionTitle {
		t.Errorf("Expected a fresh default session, got %+v", init.Session)
	}
	if len(init.Messages) != 0 {
		t.Errorf("Expected empty history, got %d messages", len(init.Messages))
	}
}

func TestConversationResumesRequestedSession(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	ctx := context.Background()

	session, err := repo.CreateChatSession(ctx, "resumed")
	if err != nil {
		t.Fatalf("CreateChatSession failed: %v", err)
	}
	if _, err := repo.AppendMessage(ctx, session.ID, store.MessageInput{
		Role: domain.RoleUser, Content: "earlier message",
	}); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	model := streamingOllama(t, `{"done":true}`)
	srv := newConversationServer(t, repo, model.URL)

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ws := dialConversation(t, dialCtx, srv.URL+"?session_id="+session.ID)
	init := readServerMessage(t, dialCtx, ws)
	if init.Session == nil || init.Session.ID != session.ID {
		t.Fatalf("Expected session %s, got %+v", session.ID, init.Session)
	}
	if len(init.Messages) != 1 || init.Messages[0].Content != "earlier message" {
		t.Errorf("Expected prior history replayed, got %+v", init.Messages)
	}
}

func TestConversationTurnStreamsAndPersists(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	model := streamingOllama(t,
		`{"message":{"role":"assistant","content":"Happy planting!"},"done":false}`,
		`{"done":true}`,
	)
	srv := newConversationServer(t, repo, model.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ws := dialConversation(t, ctx, srv.URL)
	init := readServerMessage(t, ctx, ws)
	sessionID := init.Session.ID

	out, err := json.Marshal(wsClientMessage{Type: "user_message", Content: "any tips?"})
	if err != nil {
		t.Fatalf("Failed to marshal client message: %v", err)
	}
	if err := ws.Write(ctx, websocket.MessageText, out); err != nil {
		t.Fatalf("websocket write failed: %v", err)
	}

	// Drain events until the turn's done marker.
	var sawText bool
	for {
		msg := readServerMessage(t, ctx, ws)
		if msg.Type != "event" || msg.Event == nil {
			continue
		}
		if msg.Event.Type == agent.EventTextDelta && msg.Event.Text == "Happy planting!" {
			sawText = true
		}
		if msg.Event.Type == agent.EventDone {
			break
		}
	}
	if !sawText {
		t.Error("Expected the assistant text streamed to the client")
	}

	// Both the user and assistant messages are persisted after settle.
	deadline := time.Now().Add(3 * time.Second)
	for {
		messages, err := repo.ListMessages(ctx, sessionID)
		if err != nil {
			t.Fatalf("ListMessages failed: %v", err)
		}
		if len(messages) == 2 {
			if messages[0].Role != domain.RoleUser || messages[1].Role != domain.RoleAssistant {
				t.Errorf("Expected user then assistant, got %s then %s", messages[0].Role, messages[1].Role)
			}
			if messages[1].Content != "Happy planting!" {
				t.Errorf("Expected assistant content persisted, got %q", messages[1].Content)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("Expected 2 persisted messages, got %d", len(messages))
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestConversationNavigationEvent(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	// One tool round that navigates, then a text round.
	var call int
	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call++
		if call == 1 {
			fmt.Fprintln(w, `{"message":{"role":"assistant","tool_calls":[{"function":{"name":"navigateTo","arguments":{"page":"seeds"}}}]},"done":false}`)
			fmt.Fprintln(w, `{"done":true}`)
			return
		}
		fmt.Fprintln(w, `{"message":{"role":"assistant","content":"Here is your seed inventory."},"done":false}`)
		fmt.Fprintln(w, `{"done":true}`)
	}))
	t.Cleanup(model.Close)

	srv := newConversationServer(t, repo, model.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ws := dialConversation(t, ctx, srv.URL)
	readServerMessage(t, ctx, ws) // session bootstrap

	out, err := json.Marshal(wsClientMessage{Type: "user_message", Content: "show my seeds"})
	if err != nil {
		t.Fatalf("Failed to marshal client message: %v", err)
	}
	if err := ws.Write(ctx, websocket.MessageText, out); err != nil {
		t.Fatalf("websocket write failed: %v", err)
	}

	var navigated string
	for {
		msg := readServerMessage(t, ctx, ws)
		if msg.Type == "navigate" {
			navigated = msg.Path
		}
		if msg.Type == "event" && msg.Event != nil && msg.Event.Type == agent.EventDone {
			break
		}
	}
	if navigated != "/seeds" {
		t.Errorf("Expected navigation to /seeds, got %q", navigated)
	}
}
