package api

import (
	"net/http"
	"time"

	"infinite-experiment/clanhall/internal/common"
	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/services"
)

type Handlers struct {
	deps *Dependencies
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		deps: deps,
	}
}

type actorHandler func(w http.ResponseWriter, r *http.Request, initTime time.Time, actor services.Actor)

// withActor resolves the caller from the auth claims before running fn.
func withActor(fn actorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		actor, ok := actorFrom(r)
		if !ok {
			common.RespondError(w, initTime, nil, constants.MsgMissingClaims, http.StatusUnauthorized)
			return
		}
		fn(w, r, initTime, actor)
	}
}
