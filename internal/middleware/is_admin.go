package middleware

import (
	"net/http"
	"time"

	"infinite-experiment/clanhall/internal/auth"
	"infinite-experiment/clanhall/internal/common"
	"infinite-experiment/clanhall/internal/constants"
)

// IsAdminMiddleware lets through callers the bot reports as guild
// administrators.
func IsAdminMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			claims := auth.GetUserClaims(r.Context())

			if claims == nil || !claims.IsAdmin() {
				common.RespondError(w, time.Now(), nil, constants.MsgAdminRequired, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
