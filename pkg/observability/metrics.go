package observability

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aretw0/tortuga/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine collectors.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	undos    *prometheus.CounterVec
	prompts  *prometheus.CounterVec
	wait     *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tortuga_requests_total",
			Help: "Draw requests completed, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tortuga_request_duration_seconds",
			Help:    "Time from accepting a draw request to answering it, animation included.",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"kind"}),
		undos: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tortuga_undos_total",
			Help: "Undo operations, by the kind of request undone.",
		}, []string{"kind"}),
		prompts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tortuga_prompts_total",
			Help: "Input prompts answered, by kind and whether they were cancelled.",
		}, []string{"kind", "cancelled"}),
		wait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tortuga_prompt_wait_seconds",
			Help:    "Time a script waited for a human to answer.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}, []string{"kind"}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration, m.undos, m.prompts, m.wait} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnApply: func(_ context.Context, e *domain.ApplyEvent) {
			outcome := "ok"
			if e.Err != nil {
				outcome = "error"
			}
			m.requests.WithLabelValues(e.Request, outcome).Inc()
			m.duration.WithLabelValues(e.Request).Observe(e.Duration.Seconds())
		},
		OnUndo: func(_ context.Context, e *domain.UndoEvent) {
			m.undos.WithLabelValues(e.Request).Inc()
		},
		OnInput: func(_ context.Context, e *domain.InputEvent) {
			kind := string(e.Kind)
			m.prompts.WithLabelValues(kind, strconv.FormatBool(e.Cancelled)).Inc()
			m.wait.WithLabelValues(kind).Observe(e.Wait.Seconds())
		},
	}
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
