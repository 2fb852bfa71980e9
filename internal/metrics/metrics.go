// Package metrics holds the prometheus collectors of the API gateway.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gateway groups outbound request metrics. A nil *Gateway records nothing.
type Gateway struct {
	inFlight prometheus.Gauge
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	forced   prometheus.Counter
}

// NewGateway creates the collectors and registers them on reg.
// A nil reg uses a private registry so tests can build several gateways.
func NewGateway(reg prometheus.Registerer) *Gateway {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Gateway{
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "newsadmin_api_in_flight_requests",
			Help: "In-flight backend requests.",
		}),
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsadmin_api_requests_total",
			Help: "Total number of backend requests.",
		}, []string{"method", "resource", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newsadmin_api_request_duration_seconds",
			Help:    "Backend request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "resource", "status"}),
		forced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsadmin_forced_logouts_total",
			Help: "Sessions terminated because of token expiry or repeated 401s.",
		}),
	}
	reg.MustRegister(m.inFlight, m.total, m.duration, m.forced)
	return m
}

// Start marks a request in flight and returns the function that records its outcome.
func (m *Gateway) Start(method, resource string) func(status int) {
	if m == nil {
		return func(int) {}
	}
	m.inFlight.Inc()
	start := time.Now()
	return func(status int) {
		code := strconv.Itoa(status)
		m.duration.WithLabelValues(method, resource, code).Observe(time.Since(start).Seconds())
		m.total.WithLabelValues(method, resource, code).Inc()
		m.inFlight.Dec()
	}
}

// ForcedLogout counts one forced session termination.
func (m *Gateway) ForcedLogout() {
	if m == nil {
		return
	}
	m.forced.Inc()
}

// Handler exposes the given gatherer over HTTP.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
