package monitoring

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/GriffinCanCode/apimanager/internal/shared/id"
	"github.com/GriffinCanCode/apimanager/internal/shared/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// ExemplarLabel names the request ID on duration exemplars
const ExemplarLabel = "request_id"

// Metrics holds all Prometheus metrics
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry

	// Snapshot for summaries - track current values
	snapshot MetricsSnapshot
	mu       sync.RWMutex
}

// MetricsSnapshot holds current metric values
type MetricsSnapshot struct {
	TotalRequests int64
	TotalFailures int64
	TotalOffline  int64
	TotalDuration float64 // sum of all request durations in seconds
	LastRequestID id.RequestID
}

// AverageDuration returns the mean request duration
func (s MetricsSnapshot) AverageDuration() time.Duration {
	if s.TotalRequests == 0 {
		return 0
	}
	return time.Duration(s.TotalDuration / float64(s.TotalRequests) * float64(time.Second))
}

// NewMetrics creates a new metrics collector with its own registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apimanager_requests_total",
				Help: "Total number of API requests by outcome",
			},
			[]string{"method", "outcome", "status_class"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "apimanager_request_duration_seconds",
				Help:    "API request duration in seconds, from call to completion",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"method", "outcome"},
		),
	}
}

// ObserveRequest records one finished request. The request ID in ctx, if
// any, becomes the exemplar of the duration observation.
func (m *Metrics) ObserveRequest(ctx context.Context, method types.Method, status int, err *types.Error, elapsed time.Duration) {
	outcome := Outcome(err)
	m.RequestsTotal.WithLabelValues(method.String(), outcome, StatusClass(status)).Inc()

	rid, traced := id.FromContext(ctx)
	histogram := m.RequestDuration.WithLabelValues(method.String(), outcome)
	if eo, ok := histogram.(prometheus.ExemplarObserver); ok && traced {
		eo.ObserveWithExemplar(elapsed.Seconds(), prometheus.Labels{ExemplarLabel: rid.String()})
	} else {
		histogram.Observe(elapsed.Seconds())
	}

	m.mu.Lock()
	if traced {
		m.snapshot.LastRequestID = rid
	}
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += elapsed.Seconds()
	if err != nil {
		m.snapshot.TotalFailures++
		if err.Kind == types.KindOffline {
			m.snapshot.TotalOffline++
		}
	}
	m.mu.Unlock()
}

// Snapshot returns a copy of the running totals
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Registry returns the registry the metrics are registered in
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteText writes every metric in the Prometheus text format
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := enc.Encode(family); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	return nil
}

// Outcome is the outcome label for err
func Outcome(err *types.Error) string {
	if err == nil {
		return "ok"
	}
	return err.Kind.String()
}

// StatusClass is the status_class label for status
func StatusClass(status int) string {
	switch {
	case status == types.StatusOffline:
		return "offline"
	case status >= 100 && status < 600:
		return fmt.Sprintf("%dxx", status/100)
	default:
		return "none"
	}
}
