package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/clanhall/internal/api"
	"infinite-experiment/clanhall/internal/config"
	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/models/dtos"
)

func newTestRouter(t *testing.T, burst int) (http.Handler, string) {
	t.Helper()
	specs := &config.EnvSpec{
		StoreBackend:       config.BackendMemory,
		ActionTokenSecret:  "test-secret",
		ActionTokenTTL:     time.Hour,
		KeyCacheTTL:        time.Minute,
		RateLimitPerSecond: 1,
		RateLimitBurst:     burst,
		CORSOrigins:        "*",
	}
	deps, err := api.InitDependencies(context.Background(), specs, prometheus.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(func() { deps.Close() })

	key, err := deps.Repo.Keys.Create(context.Background(), "test-bot")
	require.NoError(t, err)
	return RegisterRoutes(deps), key.Key
}

func request(t *testing.T, h http.Handler, method, path, apiKey, userID string, admin bool, body string) (*httptest.ResponseRecorder, dtos.APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set(constants.HeaderAPIKey, apiKey)
	}
	req.Header.Set(constants.HeaderServerID, "guild-1")
	if userID != "" {
		req.Header.Set(constants.HeaderDiscordID, userID)
	}
	if admin {
		req.Header.Set(constants.HeaderDiscordAdmin, "true")
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var resp dtos.APIResponse
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	}
	return rr, resp
}

func TestHealthCheckIsPublic(t *testing.T) {
	h, _ := newTestRouter(t, 100)

	rr, _ := request(t, h, "GET", "/healthCheck", "", "", false, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(constants.HeaderRequestID))
}

func TestAPIRequiresKey(t *testing.T) {
	h, key := newTestRouter(t, 100)

	rr, _ := request(t, h, "GET", "/api/v1/clans", "", "A", false, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, _ = request(t, h, "GET", "/api/v1/clans", "ck_wrong", "A", false, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, _ = request(t, h, "GET", "/api/v1/clans", key, "", false, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, resp := request(t, h, "GET", "/api/v1/clans", key, "A", false, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", resp.Status)
}

func TestAdminRoutesNeedAdminFlag(t *testing.T) {
	h, key := newTestRouter(t, 100)

	rr, _ := request(t, h, "POST", "/api/v1/admin/setup", key, "A", false, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, resp := request(t, h, "POST", "/api/v1/admin/setup", key, "A", true, `{"log_channel_id":"log"}`)
	require.Equal(t, http.StatusOK, rr.Code, resp.Message)
}

func TestClanLifecycleOverHTTP(t *testing.T) {
	h, key := newTestRouter(t, 100)

	rr, resp := request(t, h, "POST", "/api/v1/admin/setup", key, "admin", true, `{"log_channel_id":"log"}`)
	require.Equal(t, http.StatusOK, rr.Code, resp.Message)

	rr, resp = request(t, h, "POST", "/api/v1/clans", key, "A", false, `{"name":"Night Owls"}`)
	require.Equal(t, http.StatusCreated, rr.Code, resp.Message)
	tag := resp.Data.(map[string]any)["tag"].(string)

	rr, resp = request(t, h, "POST", "/api/v1/clans/invite", key, "A", false, `{"user_id":"B"}`)
	require.Equal(t, http.StatusOK, rr.Code, resp.Message)

	rr, resp = request(t, h, "POST", "/api/v1/clans/invite/accept", key, "B", false, "")
	require.Equal(t, http.StatusOK, rr.Code, resp.Message)

	rr, resp = request(t, h, "PUT", "/api/v1/admin/clans/"+tag+"/bounty", key, "admin", true, `{"bounty":250}`)
	require.Equal(t, http.StatusOK, rr.Code, resp.Message)

	rr, resp = request(t, h, "GET", "/api/v1/clans/me", key, "B", false, "")
	require.Equal(t, http.StatusOK, rr.Code, resp.Message)
	info := resp.Data.(map[string]any)
	assert.Equal(t, float64(250), info["clan"].(map[string]any)["bounty"])

	rr, resp = request(t, h, "POST", "/api/v1/admin/clans/"+tag+"/force-disband", key, "admin", true, "")
	require.Equal(t, http.StatusOK, rr.Code, resp.Message)
	assert.Equal(t, float64(2), resp.Data.(map[string]any)["users_reset"])

	rr, _ = request(t, h, "GET", "/api/v1/clans/me", key, "B", false, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRateLimit(t *testing.T) {
	h, key := newTestRouter(t, 2)

	for i := 0; i < 2; i++ {
		rr, _ := request(t, h, "GET", "/api/v1/clans", key, "A", false, "")
		require.Equal(t, http.StatusOK, rr.Code)
	}
	rr, _ := request(t, h, "GET", "/api/v1/clans", key, "A", false, "")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}
