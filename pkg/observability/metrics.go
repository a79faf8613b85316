package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/cascade/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cascade"

// Metrics holds the collectors updated by the engine hooks.
type Metrics struct {
	RunsTotal         *prometheus.CounterVec
	ActiveRuns        prometheus.Gauge
	LoopDuration      prometheus.Histogram
	ReactionsAdmitted prometheus.Counter
	PoolSize          prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg. A nil
// registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of finished cascade runs, by termination reason.",
			},
			[]string{"reason"},
		),
		ActiveRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_runs",
			Help:      "Number of cascade runs in flight.",
		}),
		LoopDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "loop_duration_seconds",
			Help:      "Duration of a single cascade loop, queries included.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		ReactionsAdmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reactions_admitted_total",
			Help:      "Total number of reactions admitted across all runs.",
		}),
		PoolSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pool_size",
			Help:      "Nuclide pool size observed after each loop.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.RunsTotal, m.ActiveRuns, m.LoopDuration, m.ReactionsAdmitted, m.PoolSize)
	}
	return m
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnRunStart: func(_ context.Context, _ *domain.RunEvent) {
			m.ActiveRuns.Inc()
		},
		OnLoop: func(_ context.Context, e *domain.LoopEvent) {
			m.LoopDuration.Observe(e.Duration.Seconds())
			m.ReactionsAdmitted.Add(float64(e.Admitted))
			m.PoolSize.Observe(float64(e.PoolSize))
		},
		OnRunDone: func(_ context.Context, e *domain.DoneEvent) {
			m.ActiveRuns.Dec()
			m.RunsTotal.WithLabelValues(string(e.Reason)).Inc()
		},
	}
}

// LogHooks returns hooks that log run boundaries at info level and loops at debug level.
func LogHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "run_start", "run_id", e.RunID, "params", e.Params.String())
		},
		OnLoop: func(ctx context.Context, e *domain.LoopEvent) {
			logger.DebugContext(ctx, "loop",
				"run_id", e.RunID,
				"loop", e.LoopIndex,
				"pool", e.PoolSize,
				"admitted", e.Admitted,
				"new_nuclides", e.NewNuclides,
			)
		},
		OnRunDone: func(ctx context.Context, e *domain.DoneEvent) {
			attrs := []any{
				"run_id", e.RunID,
				"reason", e.Reason,
				"loops", e.LoopsExecuted,
				"reactions", e.Reactions,
				"elapsed", e.Elapsed,
			}
			if e.Err != nil {
				logger.ErrorContext(ctx, "run_done", append(attrs, "error", e.Err)...)
				return
			}
			logger.InfoContext(ctx, "run_done", attrs...)
		},
	}
}
