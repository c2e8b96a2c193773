package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/clanhall/internal/auth"
	"infinite-experiment/clanhall/internal/common"
	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/db/repositories"
	"infinite-experiment/clanhall/internal/metrics"
	"infinite-experiment/clanhall/internal/models"
)

type fakeKeys struct {
	keys  map[string]models.ApiKey
	calls int
}

func (f *fakeKeys) GetStatus(ctx context.Context, key string) (*models.ApiKey, error) {
	f.calls++
	k, ok := f.keys[key]
	if !ok {
		return nil, repositories.ErrKeyNotFound
	}
	return &k, nil
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func newFakeKeys() *fakeKeys {
	return &fakeKeys{keys: map[string]models.ApiKey{
		"good":    {Key: "good", Label: "bot", Active: true},
		"revoked": {Key: "revoked", Label: "old", Active: false},
	}}
}

func claimsEcho(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetUserClaims(r.Context())
		require.NotNil(t, claims)
		w.Write([]byte(string(claims.GuildID()) + "/" + string(claims.UserID())))
	})
}

func authedRequest(key string) *http.Request {
	req := httptest.NewRequest("GET", "/api/v1/clans/me", nil)
	if key != "" {
		req.Header.Set(constants.HeaderAPIKey, key)
	}
	req.Header.Set(constants.HeaderServerID, "g1")
	req.Header.Set(constants.HeaderDiscordID, "u1")
	return req
}

func TestAuthMiddleware(t *testing.T) {
	keys := newFakeKeys()
	cache := common.NewCacheService(time.Minute, time.Minute)
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	handler := AuthMiddleware(keys, cache, time.Minute, reg)(claimsEcho(t))

	tests := []struct {
		name   string
		key    string
		status int
	}{
		{"missing key", "", http.StatusUnauthorized},
		{"unknown key", "nope", http.StatusUnauthorized},
		{"inactive key", "revoked", http.StatusUnauthorized},
		{"active key", "good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, authedRequest(tt.key))
			assert.Equal(t, tt.status, rr.Code)
		})
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, authedRequest("good"))
	assert.Equal(t, "g1/u1", rr.Body.String())

	// the second "good" request is served from the cache
	assert.Equal(t, 3, keys.calls)
	assert.Equal(t, float64(1), counterValue(t, reg.CacheHitsTotal.WithLabelValues(string(constants.CachePrefixAPIKey))))
}

func TestAuthMiddleware_MissingTenantHeaders(t *testing.T) {
	handler := AuthMiddleware(newFakeKeys(), nil, time.Minute, nil)(claimsEcho(t))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(constants.HeaderAPIKey, "good")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestIsAdminMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	handler := IsAdminMiddleware()(ok)

	for _, admin := range []bool{false, true} {
		req := httptest.NewRequest("POST", "/api/v1/admin/setup", nil)
		req = req.WithContext(auth.SetUserClaims(req.Context(), &auth.APIKeyClaims{AdminVal: admin}))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if admin {
			assert.Equal(t, http.StatusNoContent, rr.Code)
		} else {
			assert.Equal(t, http.StatusForbidden, rr.Code)
		}
	}
}

func TestRateLimiter_PerKey(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2)
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	send := func(key string) int {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set(constants.HeaderAPIKey, key)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("a"))
	assert.Equal(t, http.StatusOK, send("a"))
	assert.Equal(t, http.StatusTooManyRequests, send("a"))
	assert.Equal(t, http.StatusOK, send("b"), "other keys have their own bucket")
}

func TestRateLimiter_WhitelistedIP(t *testing.T) {
	limiter := NewRateLimiter(0.001, 1)
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "127.0.0.1:5555"
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(MetricsMiddleware(reg))
	r.Get("/api/v1/admin/users/{userId}/reset", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, auth.GetRequestID(r.Context()))
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/admin/users/12345/reset", nil))

	assert.NotEmpty(t, rr.Header().Get(constants.HeaderRequestID))
	count := counterValue(t, reg.HTTPRequestsTotal.WithLabelValues("/api/v1/admin/users/{userId}/reset", "GET", "200"))
	assert.Equal(t, float64(1), count)
}

func TestNormalizeEndpoint(t *testing.T) {
	assert.Equal(t, "/api/v1/admin/users/{id}/reset", NormalizeEndpoint("/api/v1/admin/users/123456789012345678/reset"))
	assert.Equal(t, "/x/{id}", NormalizeEndpoint("/x/3f2504e0-4f89-11d3-9a0c-0305e82c3301"))
	assert.Equal(t, "/api/v1/clans/me", NormalizeEndpoint("/api/v1/clans/me"))
}
