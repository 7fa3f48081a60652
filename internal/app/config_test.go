package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 4, cfg.InquiryPeriodConcurrency)
	assert.Equal(t, 10*time.Minute, cfg.TreeCacheTTL)
	assert.Equal(t, uint32(5), cfg.LedgerBreakerFailures)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigRejectsBadConcurrency(t *testing.T) {
	t.Setenv("INQUIRY_PERIOD_CONCURRENCY", "0")
	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INQUIRY_PERIOD_CONCURRENCY")
}

func TestLoadConfigSplitsOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfigWorkerSettings(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.WorkerConcurrency)
	assert.Equal(t, ":9091", cfg.WorkerMetricsAddr)

	t.Setenv("WORKER_CONCURRENCY", "8")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.WorkerConcurrency)

	t.Setenv("WORKER_CONCURRENCY", "65")
	_, err = LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WORKER_CONCURRENCY")
}
