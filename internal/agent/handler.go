package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"gardenai/internal/ollama"
)

// maxRequestBodySize caps chat request bodies (1MB).
const maxRequestBodySize = 1 << 20

// Operator guidance surfaced with model backend failures.
const (
	errOllamaUnreachable = "Could not connect to Ollama. Make sure it's running on localhost:11434"
	errModelMissing      = "Model not found. Run `ollama pull qwen2.5` to download it"
)

// Handler serves the streaming chat turn endpoint.
type Handler struct {
	orchestrator *Orchestrator
}

// NewHandler creates the chat turn handler.
func NewHandler(orchestrator *Orchestrator) *Handler {
	return &Handler{orchestrator: orchestrator}
}

type turnRequest struct {
	Messages json.RawMessage `json:"messages"`
	Summary  string          `json:"summary"`
}

// HandleChat handles POST /api/chat. The request carries the message history
// and an optional rolling summary; the response is an SSE stream of turn
// events. Errors before the first event map to distinct status codes; the
// stream, once started, carries failures as error events.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The value must literally be a JSON array; null also decodes into a
	// nil slice without error.
	raw := bytes.TrimSpace(req.Messages)
	var history []HistoryMessage
	if len(raw) == 0 || raw[0] != '[' || json.Unmarshal(raw, &history) != nil {
		slog.Warn("chat request rejected: messages is not an array")
		writeJSONError(w, http.StatusBadRequest, "messages must be an array")
		return
	}

	slog.Info("chat request received", "message_count", len(history))

	events, err := h.orchestrator.RunTurn(r.Context(), history, req.Summary)
	if err != nil {
		writeTurnError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for event, err := range events {
		if err != nil {
			// Headers are already committed; surface as an in-stream
			// error event instead of a status code.
			slog.Error("turn failed mid-stream", "error", err)
			data, _ := json.Marshal(&Event{Type: EventError, Err: turnErrorMessage(err)})
			writeSSE(w, EventError, string(data)) //nolint:errcheck
			flusher.Flush()
			return
		}

		data, merr := json.Marshal(event)
		if merr != nil {
			slog.Error("failed to marshal turn event", "error", merr)
			continue
		}
		if werr := writeSSE(w, event.Type, string(data)); werr != nil {
			slog.Debug("client disconnected mid-stream", "error", werr)
			return
		}
		flusher.Flush()
	}
}

func writeSSE(w io.Writer, event, data string) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

// writeTurnError maps model backend failures to distinct status codes with
// actionable guidance.
func writeTurnError(w http.ResponseWriter, err error) {
	switch {
	case ollama.IsConnectionError(err):
		slog.Error("ollama connection failed, is it running?", "error", err)
		writeJSONError(w, http.StatusServiceUnavailable, errOllamaUnreachable)
	case ollama.IsModelNotFoundError(err):
		slog.Error("model not found", "error", err)
		writeJSONError(w, http.StatusNotFound, errModelMissing)
	default:
		slog.Error("chat request failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func turnErrorMessage(err error) string {
	switch {
	case ollama.IsConnectionError(err):
		return errOllamaUnreachable
	case ollama.IsModelNotFoundError(err):
		return errModelMissing
	default:
		return "Internal server error"
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}
