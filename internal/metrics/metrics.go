package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Handler bundles the scan and render instruments. Each Handler carries its
// own registry so tests can build one per case without collisions.
type Handler struct {
	Registry *prometheus.Registry

	ScansTotal        prometheus.Counter
	ScanWarningsTotal prometheus.Counter
	ScanDuration      prometheus.Histogram
	RendersTotal      *prometheus.CounterVec
	RenderDuration    prometheus.Histogram
}

// New builds and registers the instruments under the given namespace.
func New(namespace string) (*Handler, error) {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Handler{
		Registry: registry,
		ScansTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "The total number of directory scans performed",
		}),
		ScanWarningsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_warnings_total",
			Help:      "The total number of scan warnings accumulated",
		}),
		ScanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "The duration of directory scans",
			Buckets:   prometheus.DefBuckets,
		}),
		RendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "The total number of view renders by trigger",
		}, []string{"trigger"}),
		RenderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "The duration of view renders",
			Buckets:   prometheus.DefBuckets,
		}),
	}, nil
}

// ObserveScan records one completed scan.
func (h *Handler) ObserveScan(duration time.Duration, warnings int) {
	h.ScansTotal.Inc()
	h.ScanWarningsTotal.Add(float64(warnings))
	h.ScanDuration.Observe(duration.Seconds())
}

// ObserveRender records one completed render pass.
func (h *Handler) ObserveRender(duration time.Duration, trigger string) {
	h.RendersTotal.WithLabelValues(trigger).Inc()
	h.RenderDuration.Observe(duration.Seconds())
}
