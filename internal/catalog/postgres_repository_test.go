package catalog

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestPostgresCreateTest(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PostgresRepository{pool: mock}
	price := decimal.RequireFromString("25.00")
	mock.ExpectQuery("INSERT INTO tests").
		WithArgs("CBC", "blood count", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	test := &Test{Name: "CBC", Description: "blood count", Price: &price}
	require.NoError(t, repo.CreateTest(context.Background(), test))
	require.Equal(t, int64(7), test.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetTestNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PostgresRepository{pool: mock}
	mock.ExpectQuery("SELECT id, name, description, price").
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description", "price"}))

	_, err = repo.GetTest(context.Background(), 42)
	require.ErrorIs(t, err, ErrTestNotFound)
}

func TestPostgresPricedTests(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PostgresRepository{pool: mock}
	rows := pgxmock.NewRows([]string{"id", "name", "description", "price"}).
		AddRow(int64(1), "CBC", "", decimal.NullDecimal{Decimal: decimal.RequireFromString("25.00"), Valid: true}).
		AddRow(int64(2), "Lipid Panel", "", decimal.NullDecimal{Decimal: decimal.RequireFromString("40.00"), Valid: true})
	mock.ExpectQuery("SELECT id, name, description, price").
		WithArgs(10).
		WillReturnRows(rows)

	out, err := repo.PricedTests(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "CBC", out[0].Name)
	require.True(t, out[0].Price.Equal(decimal.RequireFromString("25.00")))
}

func TestPostgresLabsForTest(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &PostgresRepository{pool: mock}
	rows := pgxmock.NewRows([]string{"id", "name", "address", "city", "state", "zip_code", "contact_email", "contact_phone", "latitude", "longitude"}).
		AddRow(int64(3), "City Diagnostics", "1 Main St", "Springfield", "IL", "62701", "city@example.com", "555-0100", (*float64)(nil), (*float64)(nil))
	mock.ExpectQuery("SELECT l.id, l.name").
		WithArgs(int64(1)).
		WillReturnRows(rows)

	labs, err := repo.LabsForTest(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, labs, 1)
	require.Equal(t, "City Diagnostics", labs[0].Name)
}
