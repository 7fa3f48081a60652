package inquiry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	statusOK         = "ok"
	statusInvalid    = "invalid"
	statusDataSource = "data_source"
	statusError      = "error"
)

// Engine runs account inquiry reports.
type Engine struct {
	ledger      Ledger
	budgets     BudgetStore
	directory   Directory
	logger      *slog.Logger
	metrics     *Metrics
	concurrency int
}

// Option customises an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics attaches run metrics.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithConcurrency bounds the number of periods fetched in parallel.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// NewEngine wires the engine to its data sources.
func NewEngine(ledger Ledger, budgets BudgetStore, directory Directory, opts ...Option) *Engine {
	e := &Engine{
		ledger:      ledger,
		budgets:     budgets,
		directory:   directory,
		logger:      slog.Default(),
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// periodResult holds the fetched aggregates of one period.
type periodResult struct {
	activity Totals
	groups   []Balance
}

// Execute validates the filters and builds the report. Any data source
// failure aborts the run; no partial report is returned.
func (e *Engine) Execute(ctx context.Context, filters Filters) (Report, error) {
	started := time.Now()
	runID := uuid.NewString()
	logger := e.logger.With(
		slog.String("run_id", runID),
		slog.String("company", filters.Company),
	)

	report, run, err := e.execute(ctx, filters)
	logger = logger.With(slog.String("group_by", string(run.groupBy)))
	status := statusOK
	switch {
	case err == nil:
	case errors.Is(err, ErrValidation):
		status = statusInvalid
	case errors.Is(err, ErrDataSource):
		status = statusDataSource
	default:
		status = statusError
	}
	e.metrics.observe(run.groupBy, run.periods, started, status)
	if err != nil {
		logger.Warn("account inquiry failed", slog.String("status", status), slog.Any("error", err))
		return Report{}, err
	}
	report.RunID = runID
	logger.Info("account inquiry completed",
		slog.Int("periods", run.periods),
		slog.Int("rows", len(report.Rows)),
		slog.Duration("duration", time.Since(started)),
	)
	return report, nil
}

// runInfo describes a run after its filters were normalized.
type runInfo struct {
	groupBy GroupBy
	periods int
}

func (e *Engine) execute(ctx context.Context, filters Filters) (Report, runInfo, error) {
	run := runInfo{groupBy: filters.GroupBy}
	r, err := validateFilters(ctx, filters, e.directory)
	if err != nil {
		return Report{}, run, err
	}
	f := r.filters
	run.groupBy = f.GroupBy

	var leaves []string
	if f.CostCenter == "" && f.Location != "" {
		leaves, err = e.directory.LeafCostCenters(ctx, f.Company, f.Location)
		if err != nil {
			return Report{}, run, dataSourceError("leaf cost centers", err)
		}
	}
	scope := ResolveScope(f, leaves)
	periods := BuildPeriods(r.from, r.to, f.GroupBy)
	run.periods = len(periods)

	results, err := e.fetch(ctx, scope, periods, f.CurrencyType)
	if err != nil {
		return Report{}, run, err
	}

	var variance *VarianceEngine
	if f.ShowVariance {
		// budgets are read for the year the report starts in, whatever the period
		variance = NewVarianceEngine(e.budgets, r.from.Year())
	}

	rows := make([]Row, 0, len(periods)*4+2)
	var (
		grand      Amounts
		lastHeader HeaderRow
	)
	grand.Variance = nullIf(f.ShowVariance)
	for i, period := range periods {
		header, details, err := e.fold(ctx, period, results[i], f, variance)
		if err != nil {
			return Report{}, run, err
		}
		rows = append(rows, header)
		for _, d := range details {
			rows = append(rows, d)
		}

		grand.Debit = grand.Debit.Add(results[i].activity.Debit)
		grand.Credit = grand.Credit.Add(results[i].activity.Credit)
		if f.ShowVariance {
			grand.Variance.Decimal = grand.Variance.Decimal.Add(header.Variance.Decimal)
		}
		lastHeader = header
	}
	grand.Balance = grand.Debit.Sub(grand.Credit)
	if f.CurrencyType.IsYTD() && len(periods) > 0 {
		grand = lastHeader.Amounts
	}

	exp := f.Factor.Exponent()
	for i := range rows {
		rows[i] = rows[i].Scale(exp)
	}
	if f.ShowSummary {
		rows = append(rows, BlankRow{}, TotalRow{Amounts: grand}.Scale(exp))
	}

	return Report{Columns: Columns(f), Rows: rows}, run, nil
}

// fetch queries every period concurrently. Results are stored by period index
// so folding stays in chronological order.
func (e *Engine) fetch(ctx context.Context, scope Scope, periods []Period, ct CurrencyType) ([]periodResult, error) {
	results := make([]periodResult, len(periods))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, period := range periods {
		g.Go(func() error {
			activity, err := e.ledger.SumActivity(gctx, scope, period.Span())
			if err != nil {
				return dataSourceError("period activity", err)
			}
			groups, err := e.ledger.SumByDimension(gctx, scope, period.DisplaySpan(ct))
			if err != nil {
				return dataSourceError("period balances", err)
			}
			results[i] = periodResult{activity: activity, groups: groups}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// fold turns one period's aggregates into its header and detail rows.
func (e *Engine) fold(ctx context.Context, period Period, res periodResult, f Filters, variance *VarianceEngine) (HeaderRow, []DetailRow, error) {
	span := period.DisplaySpan(f.CurrencyType)
	header := HeaderRow{Period: period, Span: span}
	header.Variance = nullIf(f.ShowVariance)

	details := make([]DetailRow, 0, len(res.groups))
	var sum Totals
	for _, g := range res.groups {
		d := DetailRow{
			Period:     period,
			Span:       span,
			Account:    g.Account,
			CostCenter: g.CostCenter,
			Location:   g.Location,
			Currency:   g.Currency,
			Amounts:    amountsOf(g.Totals),
		}
		if variance != nil {
			v, err := variance.Variance(ctx, d.Account, d.CostCenter, d.Balance, span)
			if err != nil {
				return HeaderRow{}, nil, err
			}
			d.Variance = nullValue(v)
			header.Variance.Decimal = header.Variance.Decimal.Add(v)
		}
		sum = sum.Add(g.Totals)
		details = append(details, d)
	}
	header.Debit, header.Credit, header.Balance = sum.Debit, sum.Credit, sum.Balance()
	return header, details, nil
}
