package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/labease/labease-platform/internal/catalog"
)

// PostgresRepository stores bookings in the relational database.
type PostgresRepository struct {
	pool catalog.PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool catalog.PgxPool) *PostgresRepository {
	if pool == nil {
		panic("booking: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Create inserts a new booking row.
func (r *PostgresRepository) Create(ctx context.Context, b *Booking) error {
	query := `
		INSERT INTO bookings (code, patient_name, email, phone, test_id, lab_id, appointment, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		strings.ToUpper(b.Code),
		b.PatientName,
		b.Email,
		b.Phone,
		b.TestID,
		b.LabID,
		b.Appointment,
		b.Notes,
		string(b.Status),
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrCodeExists
		}
		return fmt.Errorf("booking: insert failed: %w", err)
	}
	return nil
}

// GetByCode fetches a booking by its code.
func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (*Booking, error) {
	query := `
		SELECT id, code, patient_name, email, phone, test_id, lab_id, appointment, notes, status, created_at, updated_at
		FROM bookings
		WHERE code = $1
	`
	b, err := scanBooking(r.pool.QueryRow(ctx, query, strings.ToUpper(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("booking: select failed: %w", err)
	}
	return b, nil
}

// ExistsCode reports whether the code is taken.
func (r *PostgresRepository) ExistsCode(ctx context.Context, code string) (bool, error) {
	var one int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM bookings WHERE code = $1`, strings.ToUpper(code)).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("booking: exists check failed: %w", err)
	}
	return true, nil
}

// UpdateSchedule changes the appointment time and notes.
func (r *PostgresRepository) UpdateSchedule(ctx context.Context, code string, at time.Time, notes string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings
		SET appointment = $2, notes = $3, updated_at = now()
		WHERE code = $1
	`, strings.ToUpper(code), at, notes)
	if err != nil {
		return fmt.Errorf("booking: update schedule failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// SetStatus records a status change.
func (r *PostgresRepository) SetStatus(ctx context.Context, code string, status Status) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings
		SET status = $2, updated_at = now()
		WHERE code = $1
	`, strings.ToUpper(code), string(status))
	if err != nil {
		return fmt.Errorf("booking: set status failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// ListByLab returns a lab's bookings, newest first.
func (r *PostgresRepository) ListByLab(ctx context.Context, labID int64) ([]Booking, error) {
	query := `
		SELECT id, code, patient_name, email, phone, test_id, lab_id, appointment, notes, status, created_at, updated_at
		FROM bookings
		WHERE lab_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, labID)
	if err != nil {
		return nil, fmt.Errorf("booking: query failed: %w", err)
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("booking: scan failed: %w", err)
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("booking: iterate failed: %w", err)
	}
	return out, nil
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var (
		b      Booking
		status string
	)
	if err := row.Scan(
		&b.ID,
		&b.Code,
		&b.PatientName,
		&b.Email,
		&b.Phone,
		&b.TestID,
		&b.LabID,
		&b.Appointment,
		&b.Notes,
		&status,
		&b.CreatedAt,
		&b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	b.Status = Status(status)
	return &b, nil
}
