package http

import (
	"net/http"
	"time"

	"github.com/aurorahq/standardauth/internal/auth/store"
	"github.com/aurorahq/standardauth/pkg/httpx"
)

// ReadyzHandler is the readiness probe. It checks database connectivity and
// returns 503 while the service cannot do useful work.
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &HealthChecks{Database: "ok"}
		status := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
