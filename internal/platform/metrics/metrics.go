// Package metrics exposes price sync metrics to Prometheus.
package metrics

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stock_portfolio/internal/feature/holdings/domain/entity"
	"stock_portfolio/internal/feature/holdings/usecase"
)

// SyncMetrics holds the collectors updated after every sync run.
type SyncMetrics struct {
	RunsTotal       prometheus.Counter
	HoldingsUpdated prometheus.Counter
	HoldingsFailed  *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	LastRunUnix     prometheus.Gauge
}

// NewSyncMetrics creates the collectors and registers them with reg.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	m := &SyncMetrics{
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stock",
			Subsystem: "price_sync",
			Name:      "runs_total",
			Help:      "Total completed price sync runs",
		}),
		HoldingsUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stock",
			Subsystem: "price_sync",
			Name:      "holdings_updated_total",
			Help:      "Holdings whose current price was refreshed",
		}),
		HoldingsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stock",
			Subsystem: "price_sync",
			Name:      "holdings_failed_total",
			Help:      "Holdings whose price could not be refreshed, by failure reason",
		}, []string{"reason"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stock",
			Subsystem: "price_sync",
			Name:      "run_duration_seconds",
			Help:      "Duration of a full price sync run in seconds",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}),
		LastRunUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stock",
			Subsystem: "price_sync",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time at which the last sync run finished",
		}),
	}
	reg.MustRegister(m.RunsTotal, m.HoldingsUpdated, m.HoldingsFailed, m.RunDuration, m.LastRunUnix)
	return m
}

// Observe updates the collectors from a finished run.
func (m *SyncMetrics) Observe(report entity.SyncReport) {
	m.RunsTotal.Inc()
	m.HoldingsUpdated.Add(float64(report.Updated))
	for _, f := range report.Failures {
		reason := f.Reason
		if reason == "" {
			reason = entity.ReasonStore
		}
		m.HoldingsFailed.WithLabelValues(reason).Inc()
	}
	m.RunDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	m.LastRunUnix.Set(float64(report.FinishedAt.Unix()))
}

// InstrumentedRecorder decorates a SyncRecorder, updating SyncMetrics on
// every recorded run before delegating to the inner recorder.
type InstrumentedRecorder struct {
	inner   usecase.SyncRecorder
	metrics *SyncMetrics
}

var _ usecase.SyncRecorder = (*InstrumentedRecorder)(nil)

// NewInstrumentedRecorder wraps inner with metrics.
func NewInstrumentedRecorder(inner usecase.SyncRecorder, m *SyncMetrics) *InstrumentedRecorder {
	return &InstrumentedRecorder{inner: inner, metrics: m}
}

func (r *InstrumentedRecorder) RecordRun(ctx context.Context, report entity.SyncReport) error {
	r.metrics.Observe(report)
	return r.inner.RecordRun(ctx, report)
}

func (r *InstrumentedRecorder) LastRun(ctx context.Context) (*entity.SyncReport, error) {
	return r.inner.LastRun(ctx)
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}
