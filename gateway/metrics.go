package gateway

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erraggy/oasguard/contract"
)

// Metrics tracks validation statistics per API.
//
// Metrics:
//   - oasguard_validation_messages_total: validated messages by api, method, template, direction, result
//   - oasguard_validation_violations_total: violations by api, method, template, direction, location
//   - oasguard_validation_duration_seconds: time spent validating one message
type Metrics struct {
	registry *prometheus.Registry

	messages   *prometheus.CounterVec
	violations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with registry. A nil
// registry gets a fresh one.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: registry,
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "oasguard",
				Subsystem: "validation",
				Name:      "messages_total",
				Help:      "Total number of validated messages",
			},
			[]string{"api", "method", "template", "direction", "result"},
		),
		violations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "oasguard",
				Subsystem: "validation",
				Name:      "violations_total",
				Help:      "Total number of contract violations by location",
			},
			[]string{"api", "method", "template", "direction", "location"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "oasguard",
				Subsystem: "validation",
				Name:      "duration_seconds",
				Help:      "Time spent validating one message",
				Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 14), // 50µs to ~400ms
			},
			[]string{"api", "direction"},
		),
	}
	registry.MustRegister(m.messages, m.violations, m.duration)
	return m
}

// Observe records one validated message.
func (m *Metrics) Observe(api, method, template string, dir contract.Direction, errs contract.Errors, elapsed time.Duration) {
	if m == nil {
		return
	}
	direction := dir.String()
	if template == "" {
		template = "unmatched"
	}
	result := "valid"
	if !errs.Empty() {
		result = "invalid"
	}
	m.messages.WithLabelValues(api, method, template, direction, result).Inc()
	for _, e := range errs {
		m.violations.WithLabelValues(api, method, template, direction, metricLocation(e.Context().Key())).Inc()
	}
	m.duration.WithLabelValues(api, direction).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// metricLocation replaces array indexes in a location key with "*" to keep
// the number of label values bounded by the document.
func metricLocation(key string) string {
	base, pointer, ok := strings.Cut(key, "#")
	if !ok {
		return key
	}
	segments := strings.Split(pointer, "/")
	for i, seg := range segments {
		if seg != "" && isDigits(seg) {
			segments[i] = "*"
		}
	}
	return base + "#" + strings.Join(segments, "/")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
