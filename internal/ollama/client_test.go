package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func streamServer(t *testing.T, lines ...string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, line := range lines {
			fmt.Fprintln(w, line)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func collect(t *testing.T, chunks <-chan *Chunk) []*Chunk {
	t.Helper()
	var out []*Chunk
	for c := range chunks {
		out = append(out, c)
	}
	return out
}

func TestChatStreamText(t *testing.T) {
	t.Parallel()
	srv := streamServer(t,
		`{"message":{"role":"assistant","content":"Hello"},"done":false}`,
		`{"message":{"role":"assistant","content":" there"},"done":false}`,
		`{"message":{"role":"assistant","content":""},"done":true}`,
	)

	c := New(Config{BaseURL: srv.URL})
	chunks, err := c.ChatStream(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("ChatStream failed: %v", err)
	}

	got := collect(t, chunks)
	if len(got) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(got))
	}
	if got[0].Text != "Hello" || got[1].Text != " there" {
		t.Errorf("Expected text chunks, got %q %q", got[0].Text, got[1].Text)
	}
	if !got[2].Done {
		t.Error("Expected final chunk to be Done")
	}
}

func TestChatStreamAbandonedConsumerUnblocks(t *testing.T) {
	t.Parallel()
	lines := make([]string, 0, 101)
	for i := 0; i < 100; i++ {
		lines = append(lines, `{"message":{"role":"assistant","content":"chunk"},"done":false}`)
	}
	lines = append(lines, `{"done":true}`)
	srv := streamServer(t, lines...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := New(Config{BaseURL: srv.URL})
	chunks, err := c.ChatStream(ctx, []Message{{Role: "user", Content: "hi"}}, nil)
	if err != nil {
		t.Fatalf("ChatStream failed: %v", err)
	}

	// Read one chunk, then walk away. Cancellation must let the reader
	// goroutine finish and close the channel instead of blocking on a send.
	if _, ok := <-chunks; !ok {
		t.Fatal("Expected at least one chunk before cancel")
	}
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-chunks:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("Expected the stream channel to close after cancellation")
		}
	}
}

func TestChatStreamDedupesRepeatedToolCalls(t *testing.T) {
	t.Parallel()
	// Ollama repeats the same tool call across lines; it must surface once.
	call := `{"function":{"name":"searchPlants","arguments":{"query":"basil"}}}`
	srv := streamServer(t,
		`{"message":{"role":"assistant","content":"","tool_calls":[`+call+`]},"done":false}`,
		`{"message":{"role":"assistant","content":"","tool_calls":[`+call+`]},"done":false}`,
		`{"done":true}`,
	)

	c := New(Config{BaseURL: srv.URL})
	chunks, err := c.ChatStream(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("ChatStream failed: %v", err)
	}

	var calls []*ToolCall
	for chunk := range chunks {
		if chunk.ToolCall != nil {
			calls = append(calls, chunk.ToolCall)
		}
	}
	if len(calls) != 1 {
		t.Fatalf("Expected 1 deduplicated tool call, got %d", len(calls))
	}
	if calls[0].Function.Name != "searchPlants" {
		t.Errorf("Expected searchPlants, got %s", calls[0].Function.Name)
	}
	if calls[0].ID == "" {
		t.Error("Expected a generated call ID")
	}
}

func TestChatStreamDistinctToolCalls(t *testing.T) {
	t.Parallel()
	srv := streamServer(t,
		`{"message":{"role":"assistant","tool_calls":[{"function":{"name":"getLocations","arguments":{}}}]},"done":false}`,
		`{"message":{"role":"assistant","tool_calls":[{"function":{"name":"getDashboardSummary","arguments":{}}}]},"done":false}`,
		`{"done":true}`,
	)

	c := New(Config{BaseURL: srv.URL})
	chunks, err := c.ChatStream(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("ChatStream failed: %v", err)
	}

	var names []string
	for chunk := range chunks {
		if chunk.ToolCall != nil {
			names = append(names, chunk.ToolCall.Function.Name)
		}
	}
	if len(names) != 2 || names[0] != "getLocations" || names[1] != "getDashboardSummary" {
		t.Errorf("Expected two distinct tool calls, got %v", names)
	}
}

func TestChatStreamInBodyError(t *testing.T) {
	t.Parallel()
	srv := streamServer(t, `{"error":"model exploded"}`)

	c := New(Config{BaseURL: srv.URL})
	chunks, err := c.ChatStream(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("ChatStream failed: %v", err)
	}

	got := collect(t, chunks)
	if len(got) != 1 || got[0].Error == nil {
		t.Fatalf("Expected a single error chunk, got %+v", got)
	}
	if got[0].Error.Error() != "model exploded" {
		t.Errorf("Expected error text passed through, got %q", got[0].Error)
	}
}

func TestChatStreamHTTPError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model 'qwen2.5' not found"}`, http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL})
	_, err := c.ChatStream(context.Background(), nil, nil)
	if err == nil {
		t.Fatal("Expected an error for HTTP 404")
	}
	if !IsModelNotFoundError(err) {
		t.Errorf("Expected model-not-found classification, got %v", err)
	}
}

func TestChatNonStreaming(t *testing.T) {
	t.Parallel()
	srv := streamServer(t, `{"message":{"role":"assistant","content":"summary text"},"done":true}`)

	c := New(Config{BaseURL: srv.URL})
	got, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "summarize"}})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if got != "summary text" {
		t.Errorf("Expected summary text, got %q", got)
	}
}

func TestErrorClassifiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err          error
		connection   bool
		modelMissing bool
	}{
		{nil, false, false},
		{errors.New("dial tcp 127.0.0.1:11434: connect: connection refused"), true, false},
		{errors.New("dial tcp: lookup ollama.local: no such host"), true, false},
		{errors.New(`ollama status 404: {"error":"model 'qwen2.5' not found"}`), false, true},
		{errors.New("model llama3 is not available"), false, true},
		{errors.New("some other failure"), false, false},
	}
	for _, tt := range tests {
		if got := IsConnectionError(tt.err); got != tt.connection {
			t.Errorf("IsConnectionError(%v) = %v, expected %v", tt.err, got, tt.connection)
		}
		if got := IsModelNotFoundError(tt.err); got != tt.modelMissing {
			t.Errorf("IsModelNotFoundError(%v) = %v, expected %v", tt.err, got, tt.modelMissing)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	c := New(Config{})
	if c.baseURL != DefaultBaseURL {
		t.Errorf("Expected default base URL, got %s", c.baseURL)
	}
	if c.Model() != DefaultModel {
		t.Errorf("Expected default model, got %s", c.Model())
	}

	c = New(Config{BaseURL: "http://example.com/", Model: " custom "})
	if c.baseURL != "http://example.com" {
		t.Errorf("Expected trimmed base URL, got %s", c.baseURL)
	}
	if c.Model() != "custom" {
		t.Errorf("Expected trimmed model, got %s", c.Model())
	}
}
