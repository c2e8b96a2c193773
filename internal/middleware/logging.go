package middleware

import (
	"net/http"
	"time"

	"infinite-experiment/clanhall/internal/auth"
	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/logging"
)

// Logging writes one access log entry per request. Headers are not logged
// since they carry the API key; the tenant and actor ids are.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		start := time.Now()
		next.ServeHTTP(rec, r)

		logger := logging.WithRequest(
			auth.GetRequestID(r.Context()),
			r.Header.Get(constants.HeaderServerID),
			r.Header.Get(constants.HeaderDiscordID),
		)
		fields := []interface{}{
			"method", r.Method,
			"endpoint", routePattern(r),
			"status_code", rec.statusCode,
			"bytes", rec.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case rec.statusCode >= http.StatusInternalServerError:
			logger.Errorw("HTTP request failed", fields...)
		case r.URL.Path == "/healthCheck":
			logger.Debugw("HTTP request completed", fields...)
		default:
			logger.Infow("HTTP request completed", fields...)
		}
	})
}
