package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/backoffice/pkg/authsdk"
	"github.com/aussiebroadwan/backoffice/pkg/httpx"
)

// Pinger is anything ReadyzHandler can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyzHandler reports 503 when the database or the token cache is
// unreachable.
func ReadyzHandler(startTime time.Time, version string, db, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{
			Database: "ok",
			Cache:    "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if err := cache.Ping(ctx); err != nil {
			checks.Cache = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, authsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
