package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"infinite-experiment/clanhall/internal/models/dtos"
)

// Pinger is anything the health check can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthCheckHandler handles GET /healthCheck
//
// @Summary Health check
// @Description Verifies the server and its store are reachable.
// @Tags Misc
// @Success 200 {object} dtos.HealthCheckResp
// @Failure 503 {object} dtos.HealthCheckResp
// @Router /healthCheck [get]
func HealthCheckHandler(checks map[string]Pinger, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		deps := make(map[string]dtos.DependencyStatus, len(checks))
		overallStatus := "ok"
		for name, check := range checks {
			start := time.Now()
			status := dtos.DependencyStatus{Status: "ok", Details: "reachable"}
			if err := check.Ping(ctx); err != nil {
				status = dtos.DependencyStatus{Status: "down", Details: err.Error()}
				overallStatus = "down"
			}
			status.Latency = time.Since(start).Round(time.Microsecond).String()
			deps[name] = status
		}

		resp := dtos.HealthCheckResp{
			Dependencies: deps,
			Status:       overallStatus,
			UpSince:      upSince,
			Uptime:       time.Since(upSince).Round(time.Second).String(),
		}

		code := http.StatusOK
		if overallStatus != "ok" {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HealthChecks returns the probes for the configured dependencies.
func (d *Dependencies) HealthChecks() map[string]Pinger {
	checks := map[string]Pinger{"store": d.Store}
	if d.Redis != nil {
		checks["redis"] = pingFunc(func(ctx context.Context) error {
			return d.Redis.Ping(ctx).Err()
		})
	}
	return checks
}
