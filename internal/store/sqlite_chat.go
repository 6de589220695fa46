package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gardenai/internal/domain"
	"gardenai/internal/shared"
)

const sessionColumns = `id, title, summary, created_at, updated_at`

func scanSession(row interface{ Scan(...any) error }) (*domain.ChatSession, error) {
	var cs domain.ChatSession
	var summary sql.NullString
	var createdAt, updatedAt int64

	if err := row.Scan(&cs.ID, &cs.Title, &summary, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if summary.Valid {
		cs.Summary = &summary.String
	}
	cs.CreatedAt = time.Unix(createdAt, 0)
	cs.UpdatedAt = time.Unix(updatedAt, 0)
	return &cs, nil
}

// CreateChatSession creates a new conversation thread. An empty title gets
// the default.
func (s *SQLiteStore) CreateChatSession(ctx context.Context, title string) (*domain.ChatSession, error) {
	if title == "" {
		title = domain.DefaultSessionTitle
	}
	now := time.Now()
	cs := &domain.ChatSession{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_sessions (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		cs.ID, cs.Title, now.Unix(), now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("create chat session: %w", err)
	}
	return cs, nil
}

// GetChatSession retrieves a session by ID.
func (s *SQLiteStore) GetChatSession(ctx context.Context, id string) (*domain.ChatSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM chat_sessions WHERE id = ?`, id)
	cs, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, notFound("chat session", id)
	}
	if err != nil {
		return nil, fmt.Errorf("scan chat session: %w", err)
	}
	return cs, nil
}

// ListChatSessions returns all sessions, most recently active first.
func (s *SQLiteStore) ListChatSessions(ctx context.Context) ([]*domain.ChatSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM chat_sessions ORDER BY updated_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("query chat sessions: %w", err)
	}
	defer closeRows(rows, "chat sessions")

	var sessions []*domain.ChatSession
	for rows.Next() {
		cs, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chat session: %w", err)
		}
		sessions = append(sessions, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat sessions: %w", err)
	}
	return sessions, nil
}

// LatestSessionWithMessages returns the most recently active session that has
// at least one message, or nil when every session is empty.
func (s *SQLiteStore) LatestSessionWithMessages(ctx context.Context) (*domain.ChatSession, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM chat_sessions cs
		WHERE EXISTS (SELECT 1 FROM chat_messages m WHERE m.session_id = cs.id)
		ORDER BY cs.updated_at DESC, cs.rowid DESC
		LIMIT 1`)
	cs, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan latest session: %w", err)
	}
	return cs, nil
}

// AppendMessage persists a message and bumps the session's updated_at in one
// transaction. The session must exist.
func (s *SQLiteStore) AppendMessage(ctx context.Context, sessionID string, msg MessageInput) (*domain.ChatMessage, error) {
	if _, err := s.GetChatSession(ctx, sessionID); err != nil {
		return nil, err
	}

	now := time.Now()
	cm := &domain.ChatMessage{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		Role:        msg.Role,
		Content:     msg.Content,
		ToolCalls:   msg.ToolCalls,
		ToolResults: msg.ToolResults,
		CreatedAt:   now,
	}

	err := s.withSessionRetry(ctx, "append message", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

		_, err = tx.ExecContext(ctx, `
			INSERT INTO chat_messages (id, session_id, role, content, tool_calls, tool_results, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			cm.ID, cm.SessionID, cm.Role, cm.Content,
			nullStr(cm.ToolCalls), nullStr(cm.ToolResults), now.Unix(),
		)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE chat_sessions SET updated_at = ? WHERE id = ?`, now.Unix(), sessionID)
		if err != nil {
			return fmt.Errorf("touch session: %w", err)
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return cm, nil
}

// ListMessages returns a session's messages in insertion order.
func (s *SQLiteStore) ListMessages(ctx context.Context, sessionID string) ([]*domain.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, tool_calls, tool_results, created_at
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY created_at ASC, rowid ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer closeRows(rows, "chat messages")

	var messages []*domain.ChatMessage
	for rows.Next() {
		var cm domain.ChatMessage
		var toolCalls, toolResults sql.NullString
		var createdAt int64
		err := rows.Scan(&cm.ID, &cm.SessionID, &cm.Role, &cm.Content,
			&toolCalls, &toolResults, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		cm.ToolCalls = toolCalls.String
		cm.ToolResults = toolResults.String
		cm.CreatedAt = time.Unix(createdAt, 0)
		messages = append(messages, &cm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

// UpdateSessionSummary stores the rolling summary for a session.
func (s *SQLiteStore) UpdateSessionSummary(ctx context.Context, sessionID, summary string) error {
	return s.withSessionRetry(ctx, "update session summary", func() error {
		res, err := s.db.ExecContext(ctx,
			`UPDATE chat_sessions SET summary = ?, updated_at = ? WHERE id = ?`,
			summary, time.Now().Unix(), sessionID,
		)
		if err != nil {
			return fmt.Errorf("update summary: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return notFound("chat session", sessionID)
		}
		return nil
	})
}

// withSessionRetry serializes chat writes and retries SQLITE_BUSY failures
// with exponential backoff (100ms, 200ms, 400ms).
func (s *SQLiteStore) withSessionRetry(ctx context.Context, op string, fn func() error) error {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if shared.IsSQLiteConflictError(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i)
			slog.Debug("chat write hit SQLITE_BUSY, retrying",
				"op", op,
				"attempt", i+1,
				"delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		break
	}
	return fmt.Errorf("%s: %w", op, err)
}
