package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/custom-accounting/internal/accounting"
	jobmetrics "github.com/odyssey-erp/custom-accounting/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

const companyWarmTimeout = 20 * time.Second

// TreeWarmer is the hierarchy service surface used by the warmup job.
type TreeWarmer interface {
	Companies(ctx context.Context) ([]accounting.Company, error)
	WarmTrees(ctx context.Context, company string) (costCenters, accounts int, err error)
}

// TreeWarmupJob pre-populates tree caches for every company.
type TreeWarmupJob struct {
	Warmer  TreeWarmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewTreeWarmupJob wires dependencies for the warmup handler.
func NewTreeWarmupJob(warmer TreeWarmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *TreeWarmupJob {
	return &TreeWarmupJob{Warmer: warmer, Logger: logger, Metrics: metrics}
}

// Handle processes tree warmup tasks.
func (j *TreeWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Warmer == nil {
		return errors.New("tree warmup: handler not configured")
	}
	var payload TreeWarmupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	tracker := j.metrics().Track(TaskTreeWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	start := time.Now()
	logger.Info("starting tree warmup", slog.String("company", payload.Company))

	companies := []string{payload.Company}
	if payload.Company == "" {
		list, err := j.Warmer.Companies(ctx)
		if err != nil {
			resultErr = err
			logger.Error("load companies", slog.Any("error", err))
			return resultErr
		}
		companies = companies[:0]
		for _, c := range list {
			companies = append(companies, c.Name)
		}
	}
	if len(companies) == 0 {
		logger.Info("no companies discovered for warmup")
		return resultErr
	}

	for _, company := range companies {
		if err := j.warmCompany(ctx, company); err != nil {
			resultErr = err
			logger.Error("warm company", slog.String("company", company), slog.Any("error", err))
			return resultErr
		}
	}

	logger.Info("completed tree warmup", slog.Int("companies", len(companies)), slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *TreeWarmupJob) warmCompany(ctx context.Context, company string) error {
	ctx, cancel := context.WithTimeout(ctx, companyWarmTimeout)
	defer cancel()

	costCenters, accounts, err := j.Warmer.WarmTrees(ctx, company)
	if err != nil {
		return err
	}
	m := j.metrics()
	m.AddWarmed(company, "cost_center", costCenters)
	m.AddWarmed(company, "account", accounts)
	return nil
}

func (j *TreeWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTreeWarmup))
	}
	return slog.Default().With(slog.String("job", TaskTreeWarmup))
}

func (j *TreeWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
