package accounting

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/custom-accounting/internal/platform/db"
)

const uniqueViolation = "23505"

// PostgresRepository persists the hierarchy in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the Postgres repository.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Chart loads the company with its locations, cost centers and accounts. An
// unknown company yields an empty chart without abbreviation.
func (r *PostgresRepository) Chart(ctx context.Context, company string) (Chart, error) {
	chart := Chart{Company: Company{Name: company}}

	err := r.pool.QueryRow(ctx, `SELECT COALESCE(abbr, '') FROM companies WHERE name = $1`, company).Scan(&chart.Company.Abbr)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Chart{}, fmt.Errorf("load company: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT name, COALESCE(location_name, ''), COALESCE(location_number, ''),
		COALESCE(account_number, ''), COALESCE(company, '')
		FROM locations WHERE company = $1 ORDER BY name`, company)
	if err != nil {
		return Chart{}, fmt.Errorf("load locations: %w", err)
	}
	chart.Locations, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (Location, error) {
		var l Location
		err := row.Scan(&l.Name, &l.LocationName, &l.LocationNumber, &l.AccountNumber, &l.Company)
		return l, err
	})
	if err != nil {
		return Chart{}, fmt.Errorf("scan locations: %w", err)
	}

	rows, err = r.pool.Query(ctx, `SELECT name, company, COALESCE(parent_cost_center, ''), is_group, COALESCE(location, '')
		FROM cost_centers WHERE company = $1 ORDER BY name`, company)
	if err != nil {
		return Chart{}, fmt.Errorf("load cost centers: %w", err)
	}
	chart.CostCenters, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (CostCenter, error) {
		var cc CostCenter
		err := row.Scan(&cc.Name, &cc.Company, &cc.Parent, &cc.IsGroup, &cc.Location)
		return cc, err
	})
	if err != nil {
		return Chart{}, fmt.Errorf("scan cost centers: %w", err)
	}

	rows, err = r.pool.Query(ctx, `SELECT name, account_name, COALESCE(account_number, ''), company,
		COALESCE(parent_account, ''), is_group, COALESCE(account_currency, ''),
		COALESCE(location, ''), COALESCE(cost_center, '')
		FROM accounts WHERE company = $1 ORDER BY name`, company)
	if err != nil {
		return Chart{}, fmt.Errorf("load accounts: %w", err)
	}
	chart.Accounts, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (Account, error) {
		var a Account
		err := row.Scan(&a.Name, &a.AccountName, &a.AccountNumber, &a.Company, &a.Parent,
			&a.IsGroup, &a.Currency, &a.Location, &a.CostCenter)
		return a, err
	})
	if err != nil {
		return Chart{}, fmt.Errorf("scan accounts: %w", err)
	}
	return chart, nil
}

// Companies lists all companies by name.
func (r *PostgresRepository) Companies(ctx context.Context) ([]Company, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, COALESCE(abbr, '') FROM companies ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Company, error) {
		var c Company
		err := row.Scan(&c.Name, &c.Abbr)
		return c, err
	})
}

// WithTx runs fn inside a read-committed transaction.
func (r *PostgresRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r txRepository) InsertAccount(ctx context.Context, a Account) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO accounts
		(name, account_name, account_number, company, parent_account, is_group, account_currency, location, cost_center)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, NULLIF($8, ''), NULLIF($9, ''))`,
		a.Name, a.AccountName, a.AccountNumber, a.Company, a.Parent, a.IsGroup, a.Currency, a.Location, a.CostCenter)
	return mapWriteError(err)
}

func (r txRepository) InsertLocation(ctx context.Context, l Location) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO locations (name, location_name, location_number, account_number, company)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))`,
		l.Name, l.LocationName, l.LocationNumber, l.AccountNumber, l.Company)
	return mapWriteError(err)
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}
