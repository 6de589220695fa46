// Package ollama is a minimal client for the Ollama chat API. It speaks the
// NDJSON streaming protocol of POST /api/chat and exposes tool calling via
// OpenAI-compatible tool definitions.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
)

// Defaults matching a local Ollama install.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "qwen2.5"
)

// Config configures the client.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client talks to a single Ollama server.
type Client struct {
	client  *http.Client
	baseURL string
	model   string
}

// New creates a client, filling in defaults for empty config fields.
func New(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		model:   model,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Message is one entry in the chat transcript sent to the model.
type Message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	ToolName  string     `json:"tool_name,omitempty"`
}

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	ID       string       `json:"id,omitempty"`
	Type     string       `json:"type,omitempty"`
	Function ToolFunction `json:"function"`
}

// ToolFunction carries the function name and raw JSON arguments.
type ToolFunction struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Chunk is one unit of a streamed completion. Exactly one of Text, ToolCall,
// Done, or Error is meaningful per chunk.
type Chunk struct {
	Text     string
	ToolCall *ToolCall
	Done     bool
	Error    error
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []Message     `json:"messages"`
	Tools    []openai.Tool `json:"tools,omitempty"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message *Message `json:"message"`
	Done    bool     `json:"done"`
	Error   string   `json:"error"`
}

// ChatStream sends a streaming chat request. The returned channel is closed
// after a Done or Error chunk. Callers must drain the channel.
func (c *Client) ChatStream(ctx context.Context, messages []Message, tools []openai.Tool) (<-chan *Chunk, error) {
	payload := chatRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    tools,
		Stream:   true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama request: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close() //nolint:errcheck
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return nil, fmt.Errorf("ollama status %d: %s", resp.StatusCode, strings.TrimSpace(string(errBody)))
	}

	chunks := make(chan *Chunk)
	go c.streamResponse(ctx, resp.Body, chunks)
	return chunks, nil
}

func (c *Client) streamResponse(ctx context.Context, body io.ReadCloser, out chan *Chunk) {
	defer close(out)
	defer body.Close() //nolint:errcheck

	scanner := bufio.NewScanner(body)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	// Ollama may repeat a tool call across NDJSON lines; emit each once.
	emitted := map[string]struct{}{}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var resp chatResponse
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			sendChunk(ctx, out, &Chunk{Error: fmt.Errorf("decode ollama response: %w", err), Done: true})
			return
		}
		if resp.Error != "" {
			sendChunk(ctx, out, &Chunk{Error: errors.New(resp.Error), Done: true})
			return
		}
		if resp.Message != nil {
			if resp.Message.Content != "" {
				if !sendChunk(ctx, out, &Chunk{Text: resp.Message.Content}) {
					return
				}
			}
			for _, tc := range resp.Message.ToolCalls {
				key := toolCallKey(tc)
				if key == "" {
					key = uuid.NewString()
				}
				if _, ok := emitted[key]; ok {
					continue
				}
				emitted[key] = struct{}{}

				call := tc
				if call.ID == "" {
					call.ID = uuid.NewString()
				}
				if len(call.Function.Arguments) == 0 {
					call.Function.Arguments = json.RawMessage(`{}`)
				}
				if !sendChunk(ctx, out, &Chunk{ToolCall: &call}) {
					return
				}
			}
		}
		if resp.Done {
			sendChunk(ctx, out, &Chunk{Done: true})
			return
		}
	}

	if err := scanner.Err(); err != nil {
		sendChunk(ctx, out, &Chunk{Error: fmt.Errorf("read ollama stream: %w", err), Done: true})
	}
}

// sendChunk delivers one chunk unless the request context ends first, so an
// abandoned stream never pins the reader goroutine on a blocked send.
func sendChunk(ctx context.Context, out chan<- *Chunk, chunk *Chunk) bool {
	select {
	case out <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

// Chat sends a non-streaming chat request and returns the full reply text.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	payload := chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= http.StatusBadRequest {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return "", fmt.Errorf("ollama status %d: %s", resp.StatusCode, strings.TrimSpace(string(errBody)))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	if chatResp.Error != "" {
		return "", errors.New(chatResp.Error)
	}
	if chatResp.Message == nil {
		return "", errors.New("ollama returned no message")
	}
	return chatResp.Message.Content, nil
}

func toolCallKey(tc ToolCall) string {
	if id := strings.TrimSpace(tc.ID); id != "" {
		return id
	}
	name := strings.TrimSpace(tc.Function.Name)
	args := strings.TrimSpace(string(tc.Function.Arguments))
	if name == "" && args == "" {
		return ""
	}
	return name + ":" + args
}

// IsConnectionError reports whether err looks like a failure to reach the
// Ollama server at all.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "ECONNREFUSED")
}

// IsModelNotFoundError reports whether err indicates the configured model is
// not available on the server.
func IsModelNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "model") &&
		(strings.Contains(msg, "not found") || strings.Contains(msg, "not available"))
}
