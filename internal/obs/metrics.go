// metrics.go -- Prometheus metrics for the claim/grant flow.
package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Claim outcomes.
const (
	ClaimRedirected  = "redirected"
	ClaimInvalidRole = "invalid_role"
)

// Grant outcomes.
const (
	GrantGranted        = "granted"
	GrantInvalidSession = "invalid_session"
	GrantExpiredCode    = "expired_code"
	GrantUpstreamError  = "upstream_error"
)

var (
	claimsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roleclaim_claims_total",
			Help: "Claim requests by outcome.",
		},
		[]string{"result"},
	)

	grantsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roleclaim_grants_total",
			Help: "Callback grant attempts by outcome.",
		},
		[]string{"result"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	prometheus.MustRegister(claimsTotal, grantsTotal, httpRequestsTotal, httpRequestDuration)
}

// CountClaim records one /claim outcome.
func CountClaim(result string) {
	claimsTotal.WithLabelValues(result).Inc()
}

// CountGrant records one /callback outcome.
func CountGrant(result string) {
	grantsTotal.WithLabelValues(result).Inc()
}

// Handler serves the Prometheus exposition endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument wraps next with request count and latency measurement.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		status := strconv.Itoa(sw.code)
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
	})
}

// statusWriter captures the response code for labeling.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
