package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"gardenai/internal/agent"
	"gardenai/internal/domain"
	"gardenai/internal/store"
)

// routeMap maps page names to client paths.
var routeMap = map[string]string{
	"dashboard": "/",
	"plants":    "/plants",
	"seeds":     "/seeds",
	"garden":    "/garden",
	"calendar":  "/calendar",
	"chat":      "/chat",
}

// ResolveNavigation turns a navigateTo payload into a client path. An
// explicit plant ID wins over a seed ID, which wins over the page name.
// Unknown pages fall back to the dashboard path silently.
func ResolveNavigation(page, plantID, seedID string) string {
	if plantID != "" {
		return "/plants/" + plantID
	}
	if seedID != "" {
		return "/seeds/" + seedID
	}
	if path, ok := routeMap[page]; ok {
		return path
	}
	return "/"
}

// Reconciler folds a turn's event stream into exactly-once side effects:
// navigation intents fire on the first terminal observation of each tool
// invocation, and completed assistant messages are persisted once streaming
// settles. One reconciler serves one conversation.
type Reconciler struct {
	repo       store.Repository
	builder    *Builder
	summarizer *Summarizer

	sessionID    string
	saved        map[string]struct{}
	handled      map[string]struct{}
	sinceSummary int
	summaryWG    sync.WaitGroup

	// Per-turn accumulation, cleared on Settle.
	text        strings.Builder
	textMsgID   string
	toolCalls   []*agent.ToolInvocation
	toolResults []*agent.ToolInvocation
}

// NewReconciler creates the per-conversation reconciliation state.
func NewReconciler(repo store.Repository, builder *Builder, summarizer *Summarizer, sessionID string) *Reconciler {
	return &Reconciler{
		repo:       repo,
		builder:    builder,
		summarizer: summarizer,
		sessionID:  sessionID,
		saved:      map[string]struct{}{},
		handled:    map[string]struct{}{},
	}
}

// SessionID returns the conversation this reconciler serves.
func (r *Reconciler) SessionID() string {
	return r.sessionID
}

// Wait blocks until any in-flight background summarization has finished.
func (r *Reconciler) Wait() {
	r.summaryWG.Wait()
}

// invocationKey identifies a tool invocation observation. The call ID is
// preferred; when absent the key is derived from stable event content so a
// replayed observation maps back to the same key.
func invocationKey(ev *agent.Event) string {
	if ev.Call == nil {
		return fmt.Sprintf("%s:%s", ev.MessageID, ev.Type)
	}
	if ev.Call.CallID != "" {
		return ev.Call.CallID
	}
	return fmt.Sprintf("%s:%s:%s:%s:%s", ev.MessageID, ev.Type, ev.Call.State, ev.Call.Name, ev.Call.Args)
}

// Observe consumes one turn event. It returns a non-empty navigation path
// when a navigateTo invocation first reaches its terminal state; replayed
// observations of the same invocation return "".
func (r *Reconciler) Observe(ev *agent.Event) string {
	switch ev.Type {
	case agent.EventTextDelta:
		r.textMsgID = ev.MessageID
		r.text.WriteString(ev.Text)

	case agent.EventToolCall:
		if ev.Call != nil {
			r.toolCalls = append(r.toolCalls, ev.Call)
		}

	case agent.EventToolResult:
		if ev.Call == nil || ev.Call.State != agent.StateOutputAvailable {
			return ""
		}
		key := invocationKey(ev)
		if _, done := r.handled[key]; done {
			return ""
		}
		r.handled[key] = struct{}{}
		r.toolResults = append(r.toolResults, ev.Call)

		if ev.Call.Name == "navigateTo" {
			return navigationPath(ev.Call.Output)
		}
	}
	return ""
}

func navigationPath(output json.RawMessage) string {
	var payload struct {
		Success    bool `json:"success"`
		NavigateTo struct {
			Page    string `json:"page"`
			PlantID string `json:"plantId"`
			SeedID  string `json:"seedId"`
		} `json:"navigateTo"`
	}
	if err := json.Unmarshal(output, &payload); err != nil || !payload.Success {
		return ""
	}
	n := payload.NavigateTo
	return ResolveNavigation(n.Page, n.PlantID, n.SeedID)
}

// TrackUserMessage records an already-persisted user message so it counts
// toward the summarization trigger.
func (r *Reconciler) TrackUserMessage(messageID string) {
	r.saved[messageID] = struct{}{}
	r.sinceSummary++
}

// Settle persists the turn's accumulated assistant message once streaming
// has finished. Tool-only turns with no text produce no row. After a
// successful persist it checks the summarization trigger.
func (r *Reconciler) Settle(ctx context.Context) (*domain.ChatMessage, error) {
	defer r.resetTurn()

	content := r.text.String()
	if strings.TrimSpace(content) == "" && len(r.toolResults) == 0 {
		return nil, nil
	}
	if strings.TrimSpace(content) == "" {
		// Tool-only message: no persisted row, but effects were real.
		return nil, nil
	}
	if r.textMsgID != "" {
		if _, done := r.saved[r.textMsgID]; done {
			return nil, nil
		}
	}

	toolCalls, err := agent.MarshalInvocations(r.toolCalls)
	if err != nil {
		return nil, err
	}
	toolResults, err := agent.MarshalInvocations(r.toolResults)
	if err != nil {
		return nil, err
	}

	msg, err := r.repo.AppendMessage(ctx, r.sessionID, store.MessageInput{
		Role:        domain.RoleAssistant,
		Content:     content,
		ToolCalls:   toolCalls,
		ToolResults: toolResults,
	})
	if err != nil {
		return nil, fmt.Errorf("persist assistant message: %w", err)
	}

	if r.textMsgID != "" {
		r.saved[r.textMsgID] = struct{}{}
	}
	r.saved[msg.ID] = struct{}{}
	r.sinceSummary++

	r.maybeSummarize(ctx)
	return msg, nil
}

func (r *Reconciler) resetTurn() {
	r.text.Reset()
	r.textMsgID = ""
	r.toolCalls = nil
	r.toolResults = nil
}

// maybeSummarize kicks off background summarization when enough new messages
// accumulated since the last run and the session is past the window
// threshold. Concurrent runs for the same session are not guarded; the last
// write wins.
func (r *Reconciler) maybeSummarize(ctx context.Context) {
	if r.sinceSummary < resummarizeInterval {
		return
	}

	messages, err := r.repo.ListMessages(ctx, r.sessionID)
	if err != nil {
		slog.Warn("summarization check failed", "session_id", r.sessionID, "error", err)
		return
	}
	if len(messages) <= summaryThreshold {
		return
	}
	r.sinceSummary = 0

	sessionID := r.sessionID
	r.summaryWG.Add(1)
	go func() {
		defer r.summaryWG.Done()
		bgCtx := context.WithoutCancel(ctx)

		snap, err := r.builder.GetContext(bgCtx, sessionID)
		if err != nil {
			slog.Error("background summarization: context load failed", "session_id", sessionID, "error", err)
			return
		}
		if !snap.NeedsSummarization {
			return
		}

		summary := r.summarizer.Summarize(bgCtx, snap.OlderMessages)
		if err := r.repo.UpdateSessionSummary(bgCtx, sessionID, summary); err != nil {
			slog.Error("background summarization: store failed", "session_id", sessionID, "error", err)
			return
		}
		slog.Info("session summary refreshed", "session_id", sessionID, "older_count", len(snap.OlderMessages))
	}()
}
