package http

import (
	"net/http"
	"time"

	"github.com/aurorahq/standardauth/pkg/httpx"
)

// HealthResponse is the body returned by the health probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency status on the readiness probe.
type HealthChecks struct {
	Database string `json:"database"`
}

// LivezHandler is the liveness probe. It returns 200 whenever the process is
// up, regardless of dependency health.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
