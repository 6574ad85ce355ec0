package middlewares

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsOnce sync.Once

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	gateDecisionsTotal  *prometheus.CounterVec
)

func initMetrics(reg prometheus.Registerer) {
	metricsOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total de requests procesados",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		gateDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_decisions_total",
			Help: "Decisiones de la puerta de autenticación",
		}, []string{"outcome"}) // exempt | authenticated | unauthorized

		reg.MustRegister(httpRequestsTotal, httpRequestDuration, gateDecisionsTotal)
	})
}

// MetricsHandler retorna el handler para /metrics e inicializa los counters.
func MetricsHandler() http.Handler {
	initMetrics(nil)
	return promhttp.Handler()
}

// WithMetrics mide cada request. Usa el path del pattern ruteado cuando está
// disponible para no explotar la cardinalidad.
func WithMetrics() Middleware {
	initMetrics(nil)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			path := r.URL.Path
			httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

func countGateDecision(outcome string) {
	if gateDecisionsTotal != nil {
		gateDecisionsTotal.WithLabelValues(outcome).Inc()
	}
}
