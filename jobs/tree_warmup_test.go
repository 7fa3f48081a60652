package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/custom-accounting/internal/accounting"
	jobmetrics "github.com/odyssey-erp/custom-accounting/internal/jobs"
)

type stubWarmer struct {
	companies []accounting.Company
	listErr   error
	warmErr   error
	warmed    []string
}

func (s *stubWarmer) Companies(context.Context) ([]accounting.Company, error) {
	return s.companies, s.listErr
}

func (s *stubWarmer) WarmTrees(_ context.Context, company string) (int, int, error) {
	if s.warmErr != nil {
		return 0, 0, s.warmErr
	}
	s.warmed = append(s.warmed, company)
	return 5, 3, nil
}

func TestTreeWarmupWarmsEveryCompany(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)
	warmer := &stubWarmer{companies: []accounting.Company{{Name: "ACME"}, {Name: "Globex", Abbr: "GX"}}}
	job := NewTreeWarmupJob(warmer, nil, metrics)

	task, err := NewTreeWarmupTask(TreeWarmupPayload{})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, []string{"ACME", "Globex"}, warmer.warmed)

	count, err := testutil.GatherAndCount(reg, "accounting_tree_nodes_warmed_total")
	require.NoError(t, err)
	require.Equal(t, 4, count)
	runs, err := testutil.GatherAndCount(reg, "accounting_jobs_total")
	require.NoError(t, err)
	require.Equal(t, 1, runs)
}

func TestTreeWarmupSingleCompany(t *testing.T) {
	warmer := &stubWarmer{listErr: errors.New("should not list")}
	job := NewTreeWarmupJob(warmer, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewTreeWarmupTask(TreeWarmupPayload{Company: "ACME"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, []string{"ACME"}, warmer.warmed)
}

func TestTreeWarmupFailures(t *testing.T) {
	metrics := jobmetrics.NewMetrics(prometheus.NewRegistry())

	job := NewTreeWarmupJob(&stubWarmer{listErr: errors.New("db down")}, nil, metrics)
	err := job.Handle(context.Background(), asynq.NewTask(TaskTreeWarmup, nil))
	require.EqualError(t, err, "db down")

	job = NewTreeWarmupJob(&stubWarmer{companies: []accounting.Company{{Name: "ACME"}}, warmErr: errors.New("redis down")}, nil, metrics)
	err = job.Handle(context.Background(), asynq.NewTask(TaskTreeWarmup, nil))
	require.EqualError(t, err, "redis down")

	err = job.Handle(context.Background(), asynq.NewTask(TaskTreeWarmup, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	var nilJob *TreeWarmupJob
	require.Error(t, nilJob.Handle(context.Background(), asynq.NewTask(TaskTreeWarmup, nil)))
}

func TestHealthWithoutInspector(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(nil, nil).MountRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var health QueueHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, QueueDefault, health.Queue)
	require.Zero(t, health.Pending)
}
