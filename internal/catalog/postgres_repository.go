package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// PgxPool is the subset of pgxpool.Pool the repositories use.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores the catalog in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// CreateTest inserts a new test row.
func (r *PostgresRepository) CreateTest(ctx context.Context, t *Test) error {
	query := `
		INSERT INTO tests (name, description, price)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := r.pool.QueryRow(ctx, query, t.Name, t.Description, nullDecimal(t.Price)).Scan(&t.ID); err != nil {
		return fmt.Errorf("catalog: insert test failed: %w", err)
	}
	return nil
}

// CreateLab inserts a new lab row.
func (r *PostgresRepository) CreateLab(ctx context.Context, l *Lab) error {
	query := `
		INSERT INTO labs (name, address, city, state, zip_code, contact_email, contact_phone, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	if err := r.pool.QueryRow(ctx, query,
		l.Name,
		l.Address,
		l.City,
		l.State,
		l.ZipCode,
		l.ContactEmail,
		l.ContactPhone,
		l.Latitude,
		l.Longitude,
	).Scan(&l.ID); err != nil {
		return fmt.Errorf("catalog: insert lab failed: %w", err)
	}
	return nil
}

// CreateOffering links a lab to a test.
func (r *PostgresRepository) CreateOffering(ctx context.Context, o *Offering) error {
	query := `
		INSERT INTO lab_offerings (lab_id, test_id, description, price)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.pool.Exec(ctx, query, o.LabID, o.TestID, o.Description, nullDecimal(o.Price)); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateOffering
		}
		return fmt.Errorf("catalog: insert offering failed: %w", err)
	}
	return nil
}

// GetTest fetches a test by ID.
func (r *PostgresRepository) GetTest(ctx context.Context, id int64) (*Test, error) {
	query := `
		SELECT id, name, description, price
		FROM tests
		WHERE id = $1
	`
	t, err := scanTest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("catalog: select test failed: %w", err)
	}
	return t, nil
}

// GetLab fetches a lab by ID.
func (r *PostgresRepository) GetLab(ctx context.Context, id int64) (*Lab, error) {
	query := `
		SELECT id, name, address, city, state, zip_code, contact_email, contact_phone, latitude, longitude
		FROM labs
		WHERE id = $1
	`
	l, err := scanLab(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLabNotFound
		}
		return nil, fmt.Errorf("catalog: select lab failed: %w", err)
	}
	return l, nil
}

// GetOffering fetches the lab/test link.
func (r *PostgresRepository) GetOffering(ctx context.Context, labID, testID int64) (*Offering, error) {
	query := `
		SELECT lab_id, test_id, description, price
		FROM lab_offerings
		WHERE lab_id = $1 AND test_id = $2
	`
	var (
		o     Offering
		price decimal.NullDecimal
	)
	if err := r.pool.QueryRow(ctx, query, labID, testID).Scan(&o.LabID, &o.TestID, &o.Description, &price); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("catalog: select offering failed: %w", err)
	}
	if price.Valid {
		o.Price = &price.Decimal
	}
	return &o, nil
}

// ListTests returns every test ordered by ID.
func (r *PostgresRepository) ListTests(ctx context.Context) ([]Test, error) {
	query := `
		SELECT id, name, description, price
		FROM tests
		ORDER BY id
	`
	return r.queryTests(ctx, query)
}

// ListLabs returns every lab ordered by ID.
func (r *PostgresRepository) ListLabs(ctx context.Context) ([]Lab, error) {
	query := `
		SELECT id, name, address, city, state, zip_code, contact_email, contact_phone, latitude, longitude
		FROM labs
		ORDER BY id
	`
	return r.queryLabs(ctx, query)
}

// SearchTests matches tests by name or description, case-insensitively.
func (r *PostgresRepository) SearchTests(ctx context.Context, q string, limit int) ([]Test, error) {
	query := `
		SELECT id, name, description, price
		FROM tests
		WHERE name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%'
		ORDER BY id
		LIMIT $2
	`
	return r.queryTests(ctx, query, q, limit)
}

// SearchLabs matches labs by name, city, state or address, case-insensitively.
func (r *PostgresRepository) SearchLabs(ctx context.Context, q string, limit int) ([]Lab, error) {
	query := `
		SELECT id, name, address, city, state, zip_code, contact_email, contact_phone, latitude, longitude
		FROM labs
		WHERE name ILIKE '%' || $1 || '%'
		   OR city ILIKE '%' || $1 || '%'
		   OR state ILIKE '%' || $1 || '%'
		   OR address ILIKE '%' || $1 || '%'
		ORDER BY id
		LIMIT $2
	`
	return r.queryLabs(ctx, query, q, limit)
}

// PricedTests returns priced tests, cheapest first.
func (r *PostgresRepository) PricedTests(ctx context.Context, limit int) ([]Test, error) {
	query := `
		SELECT id, name, description, price
		FROM tests
		WHERE price IS NOT NULL
		ORDER BY price ASC, id
		LIMIT $1
	`
	return r.queryTests(ctx, query, limit)
}

// LabsForTest returns the labs offering the test.
func (r *PostgresRepository) LabsForTest(ctx context.Context, testID int64) ([]Lab, error) {
	query := `
		SELECT l.id, l.name, l.address, l.city, l.state, l.zip_code, l.contact_email, l.contact_phone, l.latitude, l.longitude
		FROM labs l
		JOIN lab_offerings o ON o.lab_id = l.id
		WHERE o.test_id = $1
		ORDER BY l.id
	`
	return r.queryLabs(ctx, query, testID)
}

func (r *PostgresRepository) queryTests(ctx context.Context, query string, args ...any) ([]Test, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: query tests failed: %w", err)
	}
	defer rows.Close()

	var out []Test
	for rows.Next() {
		t, err := scanTest(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan test failed: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate tests failed: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) queryLabs(ctx context.Context, query string, args ...any) ([]Lab, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: query labs failed: %w", err)
	}
	defer rows.Close()

	var out []Lab
	for rows.Next() {
		l, err := scanLab(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan lab failed: %w", err)
		}
		out = append(out, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate labs failed: %w", err)
	}
	return out, nil
}

func scanTest(row pgx.Row) (*Test, error) {
	var (
		t     Test
		price decimal.NullDecimal
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &price); err != nil {
		return nil, err
	}
	if price.Valid {
		t.Price = &price.Decimal
	}
	return &t, nil
}

func scanLab(row pgx.Row) (*Lab, error) {
	var l Lab
	if err := row.Scan(
		&l.ID,
		&l.Name,
		&l.Address,
		&l.City,
		&l.State,
		&l.ZipCode,
		&l.ContactEmail,
		&l.ContactPhone,
		&l.Latitude,
		&l.Longitude,
	); err != nil {
		return nil, err
	}
	return &l, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
