package inquiry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records report run outcomes.
type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	periods  prometheus.Histogram
}

// NewMetrics registers the inquiry collectors.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inquiry_runs_total",
		Help: "Account inquiry runs partitioned by outcome.",
	}, []string{"status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inquiry_run_duration_seconds",
		Help:    "Account inquiry run latency by grouping.",
		Buckets: prometheus.DefBuckets,
	}, []string{"group_by"})
	periods := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "inquiry_run_periods",
		Help:    "Number of periods per account inquiry run.",
		Buckets: []float64{1, 3, 6, 12, 24, 48, 120},
	})
	registerer.MustRegister(runs, duration, periods)
	return &Metrics{runs: runs, duration: duration, periods: periods}
}

func (m *Metrics) observe(groupBy GroupBy, periods int, started time.Time, status string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(status).Inc()
	if status == statusOK {
		m.duration.WithLabelValues(string(groupBy)).Observe(time.Since(started).Seconds())
		m.periods.Observe(float64(periods))
	}
}
