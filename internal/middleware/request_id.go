package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"infinite-experiment/clanhall/internal/auth"
	"infinite-experiment/clanhall/internal/constants"
)

// RequestIDMiddleware reuses the caller's X-Request-Id or mints one, and
// echoes it on the response.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(constants.HeaderRequestID)
		if requestID == "" {
			requestID = "req-" + uuid.NewString()
		}

		ctx := auth.SetRequestID(r.Context(), requestID)
		w.Header().Set(constants.HeaderRequestID, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
