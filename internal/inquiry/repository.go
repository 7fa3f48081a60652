package inquiry

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/custom-accounting/internal/platform/resilience"
)

// Querier is the subset of pgxpool.Pool the store needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore reads ledger, budget and directory data from Postgres. Every
// query passes through the circuit breaker.
type PostgresStore struct {
	db      Querier
	breaker *resilience.Breaker
}

// NewPostgresStore constructs the store. A nil breaker disables tripping.
func NewPostgresStore(db Querier, breaker *resilience.Breaker) *PostgresStore {
	return &PostgresStore{db: db, breaker: breaker}
}

// SumActivity returns the debit and credit totals inside span.
func (s *PostgresStore) SumActivity(ctx context.Context, scope Scope, span Span) (Totals, error) {
	where := ComposePredicates(scope, span)
	query := `SELECT COALESCE(SUM(debit), 0), COALESCE(SUM(credit), 0) FROM gl_entries WHERE ` + where.SQL()
	var t Totals
	err := s.breaker.Do(func() error {
		return s.db.QueryRow(ctx, query, where.Args()...).Scan(&t.Debit, &t.Credit)
	})
	if err != nil {
		return Totals{}, fmt.Errorf("sum activity: %w", err)
	}
	return t, nil
}

// SumByDimension groups totals inside span by account, cost center, location
// and currency. Only groups with entries are returned.
func (s *PostgresStore) SumByDimension(ctx context.Context, scope Scope, span Span) ([]Balance, error) {
	where := ComposePredicates(scope, span)
	query := `SELECT account, COALESCE(cost_center, ''), COALESCE(location, ''), COALESCE(account_currency, ''),
		SUM(debit), SUM(credit)
		FROM gl_entries
		WHERE ` + where.SQL() + `
		GROUP BY account, cost_center, location, account_currency
		ORDER BY account, cost_center NULLS FIRST, location NULLS FIRST, account_currency NULLS FIRST`
	var out []Balance
	err := s.breaker.Do(func() error {
		rows, err := s.db.Query(ctx, query, where.Args()...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var b Balance
			if err := rows.Scan(&b.Account, &b.CostCenter, &b.Location, &b.Currency, &b.Debit, &b.Credit); err != nil {
				return err
			}
			out = append(out, b)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("sum by dimension: %w", err)
	}
	return out, nil
}

// AnnualBudget sums budget allocations for the account. An empty cost center
// matches budgets recorded without one.
func (s *PostgresStore) AnnualBudget(ctx context.Context, account, costCenter string, fiscalYear int) (decimal.Decimal, bool, error) {
	const query = `SELECT COALESCE(SUM(ba.budget_amount), 0), COUNT(ba.id)
		FROM budget_accounts ba
		JOIN budgets b ON b.name = ba.budget
		WHERE ba.account = $1
		  AND b.cost_center IS NOT DISTINCT FROM NULLIF($2, '')
		  AND b.fiscal_year = $3`
	var (
		total decimal.Decimal
		count int64
	)
	err := s.breaker.Do(func() error {
		return s.db.QueryRow(ctx, query, account, costCenter, fiscalYear).Scan(&total, &count)
	})
	if err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("annual budget: %w", err)
	}
	return total, count > 0, nil
}

// LeafCostCenters lists non-group cost centers attached to location.
func (s *PostgresStore) LeafCostCenters(ctx context.Context, company, location string) ([]string, error) {
	const query = `SELECT name FROM cost_centers
		WHERE company = $1 AND location = $2 AND is_group = FALSE
		ORDER BY name`
	var names []string
	err := s.breaker.Do(func() error {
		rows, err := s.db.Query(ctx, query, company, location)
		if err != nil {
			return err
		}
		names, err = pgx.CollectRows(rows, pgx.RowTo[string])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("leaf cost centers: %w", err)
	}
	return names, nil
}

// CostCenterLocation returns the cost center's location, or "" when either is
// missing.
func (s *PostgresStore) CostCenterLocation(ctx context.Context, costCenter string) (string, error) {
	var location string
	err := s.breaker.Do(func() error {
		err := s.db.QueryRow(ctx, `SELECT COALESCE(location, '') FROM cost_centers WHERE name = $1`, costCenter).Scan(&location)
		if errors.Is(err, pgx.ErrNoRows) {
			location = ""
			return nil
		}
		return err
	})
	if err != nil {
		return "", fmt.Errorf("cost center location: %w", err)
	}
	return location, nil
}

// ListEntries returns ledger lines for the drill-down, oldest first.
func (s *PostgresStore) ListEntries(ctx context.Context, q EntryQuery, span Span) ([]Entry, error) {
	where := &Predicates{}
	where.Eq("company", q.Company)
	where.Eq("account", q.Account)
	where.Between("posting_date", span.From, span.To)
	if q.CostCenter != "" {
		where.Eq("cost_center", q.CostCenter)
	}
	if q.Location != "" {
		where.Eq("location", q.Location)
	}
	if q.Currency != "" {
		where.Eq("account_currency", q.Currency)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 500
	}
	query := `SELECT id, posting_date, account, COALESCE(cost_center, ''), COALESCE(location, ''),
		COALESCE(account_currency, ''), debit, credit, COALESCE(voucher_type, ''), COALESCE(voucher_no, '')
		FROM gl_entries
		WHERE ` + where.SQL() + fmt.Sprintf(`
		ORDER BY posting_date, id
		LIMIT %d`, limit)

	var out []Entry
	err := s.breaker.Do(func() error {
		rows, err := s.db.Query(ctx, query, where.Args()...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var e Entry
			if err := rows.Scan(&e.ID, &e.PostingDate, &e.Account, &e.CostCenter, &e.Location,
				&e.Currency, &e.Debit, &e.Credit, &e.VoucherType, &e.VoucherNo); err != nil {
				return err
			}
			out = append(out, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return out, nil
}

// LocationOptions lists the company's locations, narrowed to the cost
// center's own location when one is given.
func (s *PostgresStore) LocationOptions(ctx context.Context, company, costCenter string) ([]LocationOption, error) {
	where := &Predicates{}
	where.Eq("l.company", company)
	if costCenter != "" {
		p := where.bind(costCenter)
		where.clauses = append(where.clauses, "l.name = (SELECT location FROM cost_centers WHERE name = "+p+")")
	}
	query := `SELECT l.name, COALESCE(l.location_name, '') FROM locations l WHERE ` + where.SQL() + ` ORDER BY l.name`
	var out []LocationOption
	err := s.breaker.Do(func() error {
		rows, err := s.db.Query(ctx, query, where.Args()...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var o LocationOption
			if err := rows.Scan(&o.Name, &o.LocationName); err != nil {
				return err
			}
			out = append(out, o)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("location options: %w", err)
	}
	return out, nil
}
