package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"infinite-experiment/clanhall/internal/auth"
	"infinite-experiment/clanhall/internal/common"
	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/db/repositories"
	"infinite-experiment/clanhall/internal/logging"
	"infinite-experiment/clanhall/internal/metrics"
	"infinite-experiment/clanhall/internal/models"
)

// KeyLookup resolves an API key. *repositories.KeysRepo satisfies it.
type KeyLookup interface {
	GetStatus(ctx context.Context, key string) (*models.ApiKey, error)
}

var errInactiveKey = errors.New("inactive api key")

// AuthMiddleware checks X-API-Key and turns the bot's tenant and actor
// headers into claims. Active keys are cached for ttl, so a revoked key keeps
// working until its entry expires.
func AuthMiddleware(keys KeyLookup, cache common.CacheInterface, ttl time.Duration, metricsReg *metrics.MetricsRegistry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			initTime := time.Now()

			apiKey := r.Header.Get(constants.HeaderAPIKey)
			if apiKey == "" {
				common.RespondError(w, initTime, nil, constants.MsgMissingAPIKey, http.StatusUnauthorized)
				return
			}

			label, err := lookupKey(r.Context(), keys, cache, ttl, metricsReg, apiKey)
			if err != nil {
				if !errors.Is(err, repositories.ErrKeyNotFound) && !errors.Is(err, errInactiveKey) {
					logging.Error("API key lookup failed", "error", err)
				}
				common.RespondError(w, initTime, nil, constants.MsgInvalidAPIKey, http.StatusUnauthorized)
				return
			}

			claims := auth.MakeClaimsFromRequest(r, label)
			if claims.GuildID().IsZero() || claims.UserID().IsZero() {
				common.RespondError(w, initTime, nil, constants.MsgMissingTenantHeader, http.StatusBadRequest)
				return
			}

			ctx := auth.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func lookupKey(ctx context.Context, keys KeyLookup, cache common.CacheInterface, ttl time.Duration, metricsReg *metrics.MetricsRegistry, apiKey string) (string, error) {
	load := func() (any, error) {
		key, err := keys.GetStatus(ctx, apiKey)
		if err != nil {
			return nil, err
		}
		if !key.Active {
			return nil, errInactiveKey
		}
		return key.Label, nil
	}
	if cache == nil {
		val, err := load()
		if err != nil {
			return "", err
		}
		return val.(string), nil
	}

	loaded := false
	val, err := cache.GetOrSet(string(constants.CachePrefixAPIKey)+apiKey, ttl, func() (any, error) {
		loaded = true
		return load()
	})
	if metricsReg != nil {
		counter := metricsReg.CacheHitsTotal
		if loaded {
			counter = metricsReg.CacheMissesTotal
		}
		counter.WithLabelValues(string(constants.CachePrefixAPIKey)).Inc()
	}
	if err != nil {
		return "", err
	}
	label, _ := val.(string)
	return label, nil
}
