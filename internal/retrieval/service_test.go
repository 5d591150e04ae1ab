package retrieval

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/labease/labease-platform/internal/catalog"
)

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newCatalog(t *testing.T) *catalog.InMemoryRepository {
	t.Helper()
	repo := catalog.NewInMemoryRepository()
	ctx := context.Background()

	tests := []catalog.Test{
		{Name: "Complete Blood Count (CBC)", Description: "Measures blood cells", Price: price("25.00")},
		{Name: "Blood Glucose Test", Description: "Fasting blood sugar", Price: price("15.00")},
		{Name: "Thyroid Function Test", Description: "TSH, T3 and T4", Price: price("35.00")},
		{Name: "Lipid Panel", Description: "Cholesterol levels", Price: price("40.00")},
		{Name: "Liver Function Test", Description: "ALT, AST and bilirubin", Price: price("45.00")},
		{Name: "Allergy Screening", Description: "Common allergens"},
	}
	for i := range tests {
		require.NoError(t, repo.CreateTest(ctx, &tests[i]))
	}

	labs := []catalog.Lab{
		{Name: "City Diagnostics", City: "Springfield", State: "IL"},
		{Name: "HealthFirst Labs", City: "Shelbyville", State: "IL"},
	}
	for i := range labs {
		require.NoError(t, repo.CreateLab(ctx, &labs[i]))
	}
	require.NoError(t, repo.CreateOffering(ctx, &catalog.Offering{LabID: 1, TestID: 1}))
	require.NoError(t, repo.CreateOffering(ctx, &catalog.Offering{LabID: 2, TestID: 1}))
	return repo
}

func TestTestsDirectMatch(t *testing.T) {
	svc := NewService(newCatalog(t))
	out, err := svc.Tests(context.Background(), "thyroid", 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "Thyroid Function Test", out[0].Name)
}

func TestTestsTokenFallback(t *testing.T) {
	svc := NewService(newCatalog(t))
	// No test matches the whole phrase; the token "glucose" should hit.
	out, err := svc.Tests(context.Background(), "do you have glucose checks", 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "Blood Glucose Test", out[0].Name)
}

func TestTestsShortTokensIgnored(t *testing.T) {
	svc := NewService(newCatalog(t))
	out, err := svc.Tests(context.Background(), "a to the of", 0)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestTestsByPriceBloodFastPath(t *testing.T) {
	svc := NewService(newCatalog(t))
	out, err := svc.TestsByPrice(context.Background(), "how much is a blood test")
	require.NoError(t, err)
	require.NotEmpty(t, out)
	require.Equal(t, "Complete Blood Count (CBC)", out[0].Name)
	for _, test := range out {
		require.True(t, test.HasPrice())
	}
}

func TestTestsByPricePatternMatch(t *testing.T) {
	svc := NewService(newCatalog(t))
	out, err := svc.TestsByPrice(context.Background(), "thyroid test cost")
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "Thyroid Function Test", out[0].Name)
}

func TestTestsByPriceFallbackCheapestFirst(t *testing.T) {
	svc := NewService(newCatalog(t))
	out, err := svc.TestsByPrice(context.Background(), "how much")
	require.NoError(t, err)
	require.Len(t, out, 5)
	require.Equal(t, "Blood Glucose Test", out[0].Name)
	require.Equal(t, "Complete Blood Count (CBC)", out[1].Name)
}

func TestTestsByPriceExcludesUnpriced(t *testing.T) {
	svc := NewService(newCatalog(t))
	out, err := svc.TestsByPrice(context.Background(), "allergy screening cost")
	require.NoError(t, err)
	// The only allergy test has no price, so the cheapest-first
	// fallback kicks in.
	require.NotEmpty(t, out)
	for _, test := range out {
		require.True(t, test.HasPrice())
	}
}

func TestTestsForSymptoms(t *testing.T) {
	svc := NewService(newCatalog(t))
	out, err := svc.TestsForSymptoms(context.Background(), "I feel tired all the time")
	require.NoError(t, err)
	require.NotEmpty(t, out)
	require.Equal(t, "Thyroid Function Test", out[0].Name)
}

func TestTestsForSymptomsDeduplicates(t *testing.T) {
	svc := NewService(newCatalog(t))
	// "diabetes" and "blood sugar" both map to glucose keywords.
	out, err := svc.TestsForSymptoms(context.Background(), "diabetes and high blood sugar")
	require.NoError(t, err)
	seen := map[int64]bool{}
	for _, test := range out {
		require.False(t, seen[test.ID], "test %d returned twice", test.ID)
		seen[test.ID] = true
	}
}

func TestLabsByLocation(t *testing.T) {
	svc := NewService(newCatalog(t))
	out, err := svc.Labs(context.Background(), "springfield", 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "City Diagnostics", out[0].Name)
}

func TestTestInfoFormatsPriceAndLabs(t *testing.T) {
	repo := newCatalog(t)
	svc := NewService(repo)
	ctx := context.Background()

	cbc, err := repo.GetTest(ctx, 1)
	require.NoError(t, err)

	info, err := svc.TestInfo(ctx, *cbc)
	require.NoError(t, err)
	require.Equal(t, "25.00", info.Price)
	require.Equal(t, []string{"City Diagnostics", "HealthFirst Labs"}, info.Labs)

	allergy, err := repo.GetTest(ctx, 6)
	require.NoError(t, err)
	info, err = svc.TestInfo(ctx, *allergy)
	require.NoError(t, err)
	require.Equal(t, "Price not available", info.Price)
	require.Empty(t, info.Labs)
}
