package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"

	"gardenai/internal/agent"
	"gardenai/internal/domain"
	"gardenai/internal/store"
)

// WebSocketHandler owns one reconciliation loop per connected conversation.
// The client sends user messages and stop signals; the server streams turn
// events back and handles persistence, navigation, and summarization.
type WebSocketHandler struct {
	repo         store.Repository
	builder      *Builder
	summarizer   *Summarizer
	orchestrator *agent.Orchestrator
}

// NewWebSocketHandler wires the conversation channel handler.
func NewWebSocketHandler(repo store.Repository, builder *Builder, summarizer *Summarizer, orchestrator *agent.Orchestrator) *WebSocketHandler {
	return &WebSocketHandler{
		repo:         repo,
		builder:      builder,
		summarizer:   summarizer,
		orchestrator: orchestrator,
	}
}

type wsClientMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

type wsServerMessage struct {
	Type     string                `json:"type"`
	Session  *domain.ChatSession   `json:"session,omitempty"`
	Messages []*domain.ChatMessage `json:"messages,omitempty"`
	Event    *agent.Event          `json:"event,omitempty"`
	Path     string                `json:"path,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// conn serializes writes to one websocket.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(ctx context.Context, msg *wsServerMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.Write(ctx, websocket.MessageText, data)
}

// HandleConversation handles GET /ws/chat. The session is resumed from the
// session_id query parameter, falling back to the most recent non-empty
// session, falling back to a fresh one.
func (h *WebSocketHandler) HandleConversation(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("failed to accept websocket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "conversation ended"); closeErr != nil {
			slog.Debug("failed to close websocket", "error", closeErr)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &conn{ws: ws}

	session, err := h.resolveSession(ctx, r.URL.Query().Get("session_id"))
	if err != nil {
		slog.Error("failed to resolve chat session", "error", err)
		_ = c.send(ctx, &wsServerMessage{Type: "error", Error: "could not open session"})
		return
	}

	history, err := h.repo.ListMessages(ctx, session.ID)
	if err != nil {
		slog.Error("failed to load session history", "session_id", session.ID, "error", err)
		_ = c.send(ctx, &wsServerMessage{Type: "error", Error: "could not load history"})
		return
	}
	if err := c.send(ctx, &wsServerMessage{Type: "session", Session: session, Messages: history}); err != nil {
		slog.Debug("client gone before init", "error", err)
		return
	}

	rec := NewReconciler(h.repo, h.builder, h.summarizer, session.ID)
	slog.Info("conversation channel open", "session_id", session.ID, "history_count", len(history))

	var turnCancel context.CancelFunc
	var turnWG sync.WaitGroup
	defer func() {
		if turnCancel != nil {
			turnCancel()
		}
		turnWG.Wait()
		rec.Wait()
	}()

	for {
		_, raw, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("websocket closed by client", "session_id", session.ID)
			} else {
				slog.Warn("websocket read error", "session_id", session.ID, "error", err)
			}
			return
		}

		var msg wsClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			_ = c.send(ctx, &wsServerMessage{Type: "error", Error: "malformed message"})
			continue
		}

		switch msg.Type {
		case "stop":
			if turnCancel != nil {
				turnCancel()
			}
		case "user_message":
			if msg.Content == "" {
				continue
			}
			// One turn at a time per conversation.
			if turnCancel != nil {
				turnCancel()
				turnWG.Wait()
			}
			turnCtx, cancelTurn := context.WithCancel(ctx)
			turnCancel = cancelTurn
			turnWG.Add(1)
			go func(content string) {
				defer turnWG.Done()
				h.runTurn(turnCtx, c, rec, content)
			}(msg.Content)
		default:
			slog.Debug("ignoring unknown client message", "type", msg.Type)
		}
	}
}

func (h *WebSocketHandler) resolveSession(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	if sessionID != "" {
		return h.repo.GetChatSession(ctx, sessionID)
	}
	session, err := h.repo.LatestSessionWithMessages(ctx)
	if err != nil {
		return nil, err
	}
	if session != nil {
		return session, nil
	}
	return h.repo.CreateChatSession(ctx, "")
}

// runTurn persists the user message, streams one agent turn back over the
// socket, drives the reconciler, and settles persistence when the stream
// ends. A cancelled turn still settles whatever completed.
func (h *WebSocketHandler) runTurn(ctx context.Context, c *conn, rec *Reconciler, content string) {
	userMsg, err := h.repo.AppendMessage(ctx, rec.SessionID(), store.MessageInput{
		Role:    domain.RoleUser,
		Content: content,
	})
	if err != nil {
		slog.Error("failed to persist user message", "session_id", rec.SessionID(), "error", err)
		_ = c.send(ctx, &wsServerMessage{Type: "error", Error: "could not save message"})
		return
	}
	rec.TrackUserMessage(userMsg.ID)

	snap, err := h.builder.GetContext(ctx, rec.SessionID())
	if err != nil {
		slog.Error("failed to build turn context", "session_id", rec.SessionID(), "error", err)
		_ = c.send(ctx, &wsServerMessage{Type: "error", Error: "could not build context"})
		return
	}

	history := make([]agent.HistoryMessage, 0, len(snap.RecentMessages))
	for _, m := range snap.RecentMessages {
		history = append(history, agent.HistoryMessage{Role: m.Role, Content: m.Content})
	}
	var summary string
	if snap.Summary != nil {
		summary = *snap.Summary
	}

	events, err := h.orchestrator.RunTurn(ctx, history, summary)
	if err != nil {
		slog.Error("turn failed to start", "session_id", rec.SessionID(), "error", err)
		_ = c.send(ctx, &wsServerMessage{Type: "error", Error: err.Error()})
		return
	}

	for ev, err := range events {
		if err != nil {
			slog.Error("turn failed mid-stream", "session_id", rec.SessionID(), "error", err)
			_ = c.send(ctx, &wsServerMessage{Type: "error", Error: err.Error()})
			break
		}
		if sendErr := c.send(ctx, &wsServerMessage{Type: "event", Event: ev}); sendErr != nil {
			slog.Debug("client gone mid-turn", "error", sendErr)
			break
		}
		if path := rec.Observe(ev); path != "" {
			if sendErr := c.send(ctx, &wsServerMessage{Type: "navigate", Path: path}); sendErr != nil {
				slog.Debug("client gone on navigate", "error", sendErr)
				break
			}
		}
	}

	// Persist on settle, even after a stop: completed tool calls stand.
	settleCtx := context.WithoutCancel(ctx)
	if _, err := rec.Settle(settleCtx); err != nil {
		slog.Error("failed to settle turn", "session_id", rec.SessionID(), "error", err)
	}
}
