package contact

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/labease/labease-platform/internal/catalog"
)

// PostgresRepository stores contact messages in the relational
// database.
type PostgresRepository struct {
	pool catalog.PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool catalog.PgxPool) *PostgresRepository {
	if pool == nil {
		panic("contact: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Create inserts a new message row.
func (r *PostgresRepository) Create(ctx context.Context, m *Message) error {
	query := `
		INSERT INTO contact_messages (name, email, phone, message, lab_id, recipient_admin)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, sent_at
	`
	if err := r.pool.QueryRow(ctx, query,
		m.Name,
		m.Email,
		m.Phone,
		m.Body,
		m.LabID,
		m.RecipientAdmin,
	).Scan(&m.ID, &m.SentAt); err != nil {
		return fmt.Errorf("contact: insert failed: %w", err)
	}
	return nil
}

// ListForLab returns a lab's messages, newest first.
func (r *PostgresRepository) ListForLab(ctx context.Context, labID int64) ([]Message, error) {
	return r.list(ctx, `
		SELECT id, name, email, phone, message, lab_id, recipient_admin, sent_at
		FROM contact_messages
		WHERE lab_id = $1
		ORDER BY sent_at DESC
	`, labID)
}

// ListForAdmin returns admin-addressed messages, newest first.
func (r *PostgresRepository) ListForAdmin(ctx context.Context) ([]Message, error) {
	return r.list(ctx, `
		SELECT id, name, email, phone, message, lab_id, recipient_admin, sent_at
		FROM contact_messages
		WHERE recipient_admin = true
		ORDER BY sent_at DESC
	`)
}

// DeleteForLab removes one of the lab's messages.
func (r *PostgresRepository) DeleteForLab(ctx context.Context, id, labID int64) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM contact_messages
		WHERE id = $1 AND lab_id = $2
	`, id, labID)
	if err != nil {
		return fmt.Errorf("contact: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]Message, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("contact: query failed: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("contact: scan failed: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("contact: iterate failed: %w", err)
	}
	return out, nil
}

func scanMessage(row pgx.Row) (*Message, error) {
	var m Message
	if err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Email,
		&m.Phone,
		&m.Body,
		&m.LabID,
		&m.RecipientAdmin,
		&m.SentAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}
