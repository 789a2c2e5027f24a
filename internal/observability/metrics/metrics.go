package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "standardauth_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "standardauth_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "standardauth_login_attempts_total",
		Help: "Count of login attempts by result",
	}, []string{"result"})

	accountOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "standardauth_account_operations_total",
		Help: "Count of account lifecycle operations by operation and result",
	}, []string{"operation", "result"})

	orphansSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "standardauth_orphaned_accounts_swept_total",
		Help: "Accounts removed by the orphan housekeeping sweep",
	})
)

// ObserveHTTPRequest records an HTTP request metric.
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveLogin increments the login counter for the given result
// ("success" or "failure").
func ObserveLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// ObserveAccountOperation increments the lifecycle counter, e.g.
// ("register", "success") or ("delete", "denied").
func ObserveAccountOperation(operation, result string) {
	accountOperations.WithLabelValues(operation, result).Inc()
}

// AddOrphansSwept adds the removed-row count from a housekeeping sweep.
func AddOrphansSwept(count int64) {
	if count > 0 {
		orphansSwept.Add(float64(count))
	}
}
