package chatlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/labease/labease-platform/internal/catalog"
)

// PostgresRepository stores the chat log in the relational database.
type PostgresRepository struct {
	pool catalog.PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool catalog.PgxPool) *PostgresRepository {
	if pool == nil {
		panic("chatlog: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// SaveMessage inserts one turn.
func (r *PostgresRepository) SaveMessage(ctx context.Context, m *ChatMessage) error {
	query := `
		INSERT INTO chat_messages (session_id, user_message, bot_response, stage)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		m.SessionID,
		m.UserMessage,
		m.BotResponse,
		m.Stage,
	).Scan(&m.ID, &m.CreatedAt); err != nil {
		return fmt.Errorf("chatlog: insert message failed: %w", err)
	}
	return nil
}

// RecentMessages returns the session's last turns, oldest first.
func (r *PostgresRepository) RecentMessages(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error) {
	query := `
		SELECT id, session_id, user_message, bot_response, stage, created_at
		FROM (
			SELECT id, session_id, user_message, bot_response, stage, created_at
			FROM chat_messages
			WHERE session_id = $1
			ORDER BY id DESC
			LIMIT $2
		) latest
		ORDER BY id ASC
	`
	rows, err := r.pool.Query(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("chatlog: query messages failed: %w", err)
	}
	defer rows.Close()

	var out []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.UserMessage, &m.BotResponse, &m.Stage, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("chatlog: scan message failed: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chatlog: iterate messages failed: %w", err)
	}
	return out, nil
}

// SaveRecommendation inserts one snapshot. The suggested tests are
// stored as a JSONB document, exactly as shown to the user.
func (r *PostgresRepository) SaveRecommendation(ctx context.Context, rec *Recommendation) error {
	tests, err := json.Marshal(rec.Tests)
	if err != nil {
		return fmt.Errorf("chatlog: marshal recommendation failed: %w", err)
	}
	query := `
		INSERT INTO ai_recommendations (session_id, symptoms, tests)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		rec.SessionID,
		rec.Symptoms,
		tests,
	).Scan(&rec.ID, &rec.CreatedAt); err != nil {
		return fmt.Errorf("chatlog: insert recommendation failed: %w", err)
	}
	return nil
}

// RecentRecommendations returns the latest snapshots, newest first.
func (r *PostgresRepository) RecentRecommendations(ctx context.Context, limit int) ([]Recommendation, error) {
	query := `
		SELECT id, session_id, symptoms, tests, created_at
		FROM ai_recommendations
		ORDER BY id DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("chatlog: query recommendations failed: %w", err)
	}
	defer rows.Close()

	var out []Recommendation
	for rows.Next() {
		var (
			rec  Recommendation
			blob []byte
		)
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Symptoms, &blob, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("chatlog: scan recommendation failed: %w", err)
		}
		if err := json.Unmarshal(blob, &rec.Tests); err != nil {
			return nil, fmt.Errorf("chatlog: decode recommendation failed: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chatlog: iterate recommendations failed: %w", err)
	}
	return out, nil
}
