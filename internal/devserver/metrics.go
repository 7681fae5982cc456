package devserver

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics are registered on a per-server registry so several servers (or
// tests) can coexist in one process.
type metrics struct {
	registry *prometheus.Registry
	clients  prometheus.Gauge
	signals  *prometheus.CounterVec
	requests *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shaderbox",
			Subsystem: "devserver",
			Name:      "clients",
			Help:      "Connected dev socket clients.",
		}),
		signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shaderbox",
			Subsystem: "devserver",
			Name:      "signals_total",
			Help:      "Signals queued to dev socket clients.",
		}, []string{"signal"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shaderbox",
			Subsystem: "devserver",
			Name:      "requests_total",
			Help:      "HTTP requests served, by status class.",
		}, []string{"code"}),
	}
	m.registry.MustRegister(m.clients, m.signals, m.requests)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument counts responses by status class ("2xx", "4xx", ...).
func (m *metrics) instrument(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		m.requests.WithLabelValues(strconv.Itoa(rec.status/100) + "xx").Inc()
	}
}
