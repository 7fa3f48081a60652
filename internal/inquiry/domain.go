// Package inquiry builds the Account Inquiry report: ledger activity bucketed
// by month, quarter or year with optional budget variance.
package inquiry

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/custom-accounting/internal/platform/httpx"
)

// DateLayout is the wire format of report dates.
const DateLayout = "2006-01-02"

var (
	// ErrValidation marks user input the report cannot run with.
	ErrValidation = fmt.Errorf("inquiry: %w", httpx.ErrValidation)
	// ErrDataSource marks ledger, budget or directory failures.
	ErrDataSource = fmt.Errorf("inquiry: %w", httpx.ErrUnavailable)
)

// GroupBy selects the period bucket size.
type GroupBy string

const (
	GroupByMonth   GroupBy = "Month"
	GroupByQuarter GroupBy = "Quarter"
	GroupByYear    GroupBy = "Year"
)

// CurrencyType selects between period-local and year-to-date figures.
type CurrencyType string

const (
	CurrencyTypeTotalEntered CurrencyType = "Total Entered"
	CurrencyTypePTD          CurrencyType = "PTD Converted"
	CurrencyTypeYTD          CurrencyType = "YTD Converted"
)

// IsYTD reports whether rows show cumulative year-to-date figures.
func (c CurrencyType) IsYTD() bool { return c == CurrencyTypeYTD }

// Factor is the display scale of monetary fields.
type Factor string

const (
	FactorUnits     Factor = "Units"
	FactorThousands Factor = "Thousands"
	FactorMillions  Factor = "Millions"
	FactorBillions  Factor = "Billions"
)

// Exponent returns the power of ten amounts are divided by. Unknown factors
// display units.
func (f Factor) Exponent() int32 {
	switch f {
	case FactorThousands:
		return 3
	case FactorMillions:
		return 6
	case FactorBillions:
		return 9
	default:
		return 0
	}
}

// Filters are the inputs of one report run.
type Filters struct {
	Company      string       `json:"company" validate:"required"`
	FromDate     string       `json:"from_date" validate:"required,datetime=2006-01-02"`
	ToDate       string       `json:"to_date" validate:"required,datetime=2006-01-02"`
	GroupBy      GroupBy      `json:"group_by" validate:"omitempty,oneof=Month Quarter Year"`
	Account      string       `json:"account,omitempty"`
	CostCenter   string       `json:"cost_center,omitempty"`
	Location     string       `json:"location,omitempty"`
	Currency     string       `json:"currency,omitempty"`
	VoucherType  string       `json:"voucher_type,omitempty"`
	CurrencyType CurrencyType `json:"currency_type,omitempty"`
	Factor       Factor       `json:"factor,omitempty"`
	ShowVariance bool         `json:"show_variance,omitempty"`
	ShowSummary  bool         `json:"show_summary,omitempty"`
}

// Span is an inclusive range of calendar days.
type Span struct {
	From time.Time
	To   time.Time
}

// Contains reports whether day falls inside the span.
func (s Span) Contains(day time.Time) bool {
	return !day.Before(s.From) && !day.After(s.To)
}

// MonthsCovered counts the calendar months touched by the span.
func (s Span) MonthsCovered() int {
	return (s.To.Year()-s.From.Year())*12 + int(s.To.Month()-s.From.Month()) + 1
}

// Totals is a debit and credit pair.
type Totals struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// Add returns the element-wise sum.
func (t Totals) Add(o Totals) Totals {
	return Totals{Debit: t.Debit.Add(o.Debit), Credit: t.Credit.Add(o.Credit)}
}

// Balance returns debit minus credit.
func (t Totals) Balance() decimal.Decimal { return t.Debit.Sub(t.Credit) }

// Balance is one grouped ledger aggregate.
type Balance struct {
	Account    string
	CostCenter string
	Location   string
	Currency   string
	Totals
}

// Entry is a posted general ledger line.
type Entry struct {
	ID          int64           `json:"id"`
	PostingDate time.Time       `json:"posting_date"`
	Account     string          `json:"account"`
	CostCenter  string          `json:"cost_center,omitempty"`
	Location    string          `json:"location,omitempty"`
	Currency    string          `json:"account_currency,omitempty"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	VoucherType string          `json:"voucher_type,omitempty"`
	VoucherNo   string          `json:"voucher_no,omitempty"`
}

// EntryQuery selects ledger lines for the general ledger drill-down.
type EntryQuery struct {
	Company    string `json:"company" validate:"required"`
	Account    string `json:"account" validate:"required"`
	FromDate   string `json:"from_date" validate:"required,datetime=2006-01-02"`
	ToDate     string `json:"to_date" validate:"required,datetime=2006-01-02"`
	CostCenter string `json:"cost_center,omitempty"`
	Location   string `json:"location,omitempty"`
	Currency   string `json:"currency,omitempty"`
	Limit      int    `json:"limit,omitempty" validate:"gte=0,lte=5000"`
}

// LocationOption is a location selectable in the report filter.
type LocationOption struct {
	Name         string `json:"name"`
	LocationName string `json:"location_name,omitempty"`
}

// Ledger runs aggregate queries over posted entries.
type Ledger interface {
	SumActivity(ctx context.Context, scope Scope, span Span) (Totals, error)
	SumByDimension(ctx context.Context, scope Scope, span Span) ([]Balance, error)
}

// BudgetStore resolves annual budgets. found is false when no allocation
// exists for the key.
type BudgetStore interface {
	AnnualBudget(ctx context.Context, account, costCenter string, fiscalYear int) (amount decimal.Decimal, found bool, err error)
}

// Directory answers cost center and location membership questions. Missing
// records yield empty values, not errors.
type Directory interface {
	LeafCostCenters(ctx context.Context, company, location string) ([]string, error)
	CostCenterLocation(ctx context.Context, costCenter string) (string, error)
}

func dataSourceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDataSource, op, err)
}
