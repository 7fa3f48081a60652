package inquiry

import (
	"context"

	"github.com/shopspring/decimal"
)

var twelve = decimal.NewFromInt(12)

type budgetKey struct {
	account    string
	costCenter string
}

type budgetHit struct {
	amount decimal.Decimal
	found  bool
}

// VarianceEngine compares actual balances with prorated annual budgets. One
// engine serves a single report run and memoises budget lookups; it is not
// safe for concurrent use.
type VarianceEngine struct {
	budgets    BudgetStore
	fiscalYear int
	memo       map[budgetKey]budgetHit
}

// NewVarianceEngine binds budget lookups to fiscalYear.
func NewVarianceEngine(budgets BudgetStore, fiscalYear int) *VarianceEngine {
	return &VarianceEngine{budgets: budgets, fiscalYear: fiscalYear, memo: make(map[budgetKey]budgetHit)}
}

// FiscalYear is the year budgets are read for.
func (v *VarianceEngine) FiscalYear() int { return v.fiscalYear }

// Prorate spreads an annual budget evenly over the months the span covers.
func Prorate(total decimal.Decimal, span Span) decimal.Decimal {
	return total.Mul(decimal.NewFromInt(int64(span.MonthsCovered()))).Div(twelve)
}

// Variance returns balance minus the budget prorated to span. A missing or
// zero budget yields the balance itself.
func (v *VarianceEngine) Variance(ctx context.Context, account, costCenter string, balance decimal.Decimal, span Span) (decimal.Decimal, error) {
	hit, err := v.lookup(ctx, account, costCenter)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !hit.found || hit.amount.IsZero() {
		return balance, nil
	}
	return balance.Sub(Prorate(hit.amount, span)), nil
}

func (v *VarianceEngine) lookup(ctx context.Context, account, costCenter string) (budgetHit, error) {
	key := budgetKey{account: account, costCenter: costCenter}
	if hit, ok := v.memo[key]; ok {
		return hit, nil
	}
	amount, found, err := v.budgets.AnnualBudget(ctx, account, costCenter, v.fiscalYear)
	if err != nil {
		return budgetHit{}, dataSourceError("annual budget", err)
	}
	hit := budgetHit{amount: amount, found: found}
	v.memo[key] = hit
	return hit, nil
}
