package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"infinite-experiment/clanhall/internal/constants"
	"infinite-experiment/clanhall/internal/models"
)

func newTestProvider(url string) *PlatformProvider {
	p := NewPlatformProvider(url, "test-key", 0)
	p.Client = &http.Client{}
	return p
}

func TestPlatformProvider_CreateClanAssets_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST request, got %s", r.Method)
		}
		if r.URL.Path != "/guilds/g1/clans" {
			t.Errorf("Expected path /guilds/g1/clans, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Expected bearer auth, got %q", got)
		}

		var req models.ClanAssetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ClanTag != "REDTEA" {
			t.Errorf("Expected tag REDTEA, got %s", req.ClanTag)
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(models.ClanAssets{RoleID: "r1", TextChannelID: "c1"})
	}))
	defer server.Close()

	provider := newTestProvider(server.URL)
	assets, err := provider.CreateClanAssets(context.Background(), models.ClanAssetRequest{
		GuildID:  "g1",
		ClanName: "Red Team",
		ClanTag:  "REDTEA",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if assets.RoleID != "r1" || assets.TextChannelID != "c1" {
		t.Errorf("Unexpected assets %+v", assets)
	}
}

func TestPlatformProvider_CreateClanAssets_EmptyName(t *testing.T) {
	provider := newTestProvider("http://unused")

	_, err := provider.CreateClanAssets(context.Background(), models.ClanAssetRequest{GuildID: "g1"})

	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Code != constants.ErrCodeInvalidDataFormat {
		t.Fatalf("Expected invalid data error, got %v", err)
	}
}

func TestPlatformProvider_GrantRoles(t *testing.T) {
	var gotPath string
	var body roleChangeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	provider := newTestProvider(server.URL)
	if err := provider.GrantRoles(context.Background(), "g1", "u1", "r1", "r2"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotPath != "/guilds/g1/members/u1/roles/grant" {
		t.Errorf("Unexpected path %s", gotPath)
	}
	if len(body.RoleIDs) != 2 {
		t.Errorf("Expected 2 roles, got %v", body.RoleIDs)
	}
}

func TestPlatformProvider_NoRolesSkipsRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	provider := newTestProvider(server.URL)
	if err := provider.RevokeRoles(context.Background(), "g1", "u1"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if called {
		t.Error("Expected no request for an empty role list")
	}
}

func TestPlatformProvider_HTTPErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode string
	}{
		{"unauthorized", http.StatusUnauthorized, constants.ErrCodeInvalidAPIKey},
		{"not found", http.StatusNotFound, constants.ErrCodeResourceNotFound},
		{"rate limited", http.StatusTooManyRequests, constants.ErrCodeRateLimited},
		{"bad request", http.StatusBadRequest, constants.ErrCodeInvalidDataFormat},
		{"server error", http.StatusBadGateway, constants.ErrCodeNetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte("nope"))
			}))
			defer server.Close()

			provider := newTestProvider(server.URL)
			err := provider.SetClanColor(context.Background(), "g1", "r1", "#FF0000")

			var pe *ProviderError
			if !errors.As(err, &pe) {
				t.Fatalf("Expected ProviderError, got %v", err)
			}
			if pe.Code != tt.wantCode {
				t.Errorf("Expected code %s, got %s", tt.wantCode, pe.Code)
			}
			if pe.Status != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, pe.Status)
			}
		})
	}
}

func TestPlatformProvider_DeleteClanAssets_AlreadyGone(t *testing.T) {
	status := http.StatusNotFound
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/guilds/g1/clans/delete" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(status)
	}))
	defer server.Close()

	provider := newTestProvider(server.URL)
	if err := provider.DeleteClanAssets(context.Background(), "g1", models.ClanAssets{RoleID: "r1"}); err != nil {
		t.Fatalf("Expected 404 to count as deleted, got %v", err)
	}

	status = http.StatusInternalServerError
	err := provider.DeleteClanAssets(context.Background(), "g1", models.ClanAssets{RoleID: "r1"})
	if !HasCode(err, constants.ErrCodeNetworkError) {
		t.Fatalf("Expected network error, got %v", err)
	}
}

func TestPlatformProvider_NotConfigured(t *testing.T) {
	provider := newTestProvider("")

	_, err := provider.SetupGuild(context.Background(), "g1")

	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Code != constants.ErrCodeNotConfigured {
		t.Fatalf("Expected not configured error, got %v", err)
	}
}

func TestGuildPath_EscapesSegments(t *testing.T) {
	got := guildPath("g/1", "members", "u 1")
	if got != "/guilds/g%2F1/members/u%201" {
		t.Errorf("Unexpected path %s", got)
	}
}
