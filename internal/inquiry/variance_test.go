package inquiry

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProrate(t *testing.T) {
	month := Span{From: day(t, "2024-03-01"), To: day(t, "2024-03-31")}
	assertDecimal(t, "100", Prorate(dec("1200"), month))

	quarter := Span{From: day(t, "2024-01-01"), To: day(t, "2024-03-31")}
	assertDecimal(t, "300", Prorate(dec("1200"), quarter))

	year := Span{From: day(t, "2024-01-01"), To: day(t, "2024-12-31")}
	assertDecimal(t, "1000", Prorate(dec("1000"), year))
}

func TestVarianceEngine(t *testing.T) {
	budgets := &memoryBudgets{amounts: map[budgetRef]decimal.Decimal{
		{"1100 - Cash", "Main - AC", 2024}:  dec("1200"),
		{"1100 - Cash", "", 2024}:           dec("2400"),
		{"4000 - Sales", "Main - AC", 2024}: decimal.Zero,
	}}
	engine := NewVarianceEngine(budgets, 2024)
	ctx := context.Background()
	month := Span{From: day(t, "2024-01-01"), To: day(t, "2024-01-31")}

	v, err := engine.Variance(ctx, "1100 - Cash", "Main - AC", dec("250"), month)
	require.NoError(t, err)
	assertDecimal(t, "150", v)

	v, err = engine.Variance(ctx, "1100 - Cash", "", dec("250"), month)
	require.NoError(t, err)
	assertDecimal(t, "50", v, "budget without cost center")

	v, err = engine.Variance(ctx, "4000 - Sales", "Main - AC", dec("-75.5"), month)
	require.NoError(t, err)
	assertDecimal(t, "-75.5", v, "zero budget")

	v, err = engine.Variance(ctx, "9999 - Unknown", "Main - AC", dec("42"), month)
	require.NoError(t, err)
	assertDecimal(t, "42", v, "missing budget")

	_, err = engine.Variance(ctx, "1100 - Cash", "Main - AC", dec("1"), month)
	require.NoError(t, err)
	assert.Len(t, budgets.lookups, 4)
	assert.Equal(t, 2024, engine.FiscalYear())
}

func TestVarianceEngineWrapsStoreErrors(t *testing.T) {
	boom := errors.New("budget table locked")
	engine := NewVarianceEngine(&memoryBudgets{err: boom}, 2024)
	_, err := engine.Variance(context.Background(), "1100 - Cash", "", dec("1"), Span{From: day(t, "2024-01-01"), To: day(t, "2024-01-31")})
	require.ErrorIs(t, err, ErrDataSource)
	require.ErrorIs(t, err, boom)
}
