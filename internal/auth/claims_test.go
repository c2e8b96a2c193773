package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"infinite-experiment/clanhall/internal/constants"
)

func TestMakeClaimsFromRequest(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/v1/clans/me", nil)
	req.Header.Set(constants.HeaderServerID, " guild-1 ")
	req.Header.Set(constants.HeaderDiscordID, "user-1")
	req.Header.Set(constants.HeaderDiscordAdmin, "true")

	claims := MakeClaimsFromRequest(req, "bot")

	if claims.GuildID() != "guild-1" {
		t.Errorf("Expected guild-1, got %q", claims.GuildID())
	}
	if claims.UserID() != "user-1" {
		t.Errorf("Expected user-1, got %q", claims.UserID())
	}
	if !claims.IsAdmin() {
		t.Error("Expected admin")
	}
	if claims.KeyLabel() != "bot" || claims.Source() != "API_KEY" {
		t.Errorf("Unexpected claims %+v", claims)
	}
}

func TestMakeClaimsFromRequest_AdminHeaderGarbage(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(constants.HeaderDiscordAdmin, "yes please")

	if MakeClaimsFromRequest(req, "").IsAdmin() {
		t.Error("Expected non-admin for unparseable header")
	}
}

func TestUserClaimsContext(t *testing.T) {
	ctx := context.Background()
	if GetUserClaims(ctx) != nil {
		t.Fatal("Expected no claims")
	}

	ctx = SetUserClaims(ctx, &APIKeyClaims{DiscordUserIDVal: "u1"})
	ctx = SetRequestID(ctx, "req-1")

	if got := GetUserClaims(ctx); got == nil || got.UserID() != "u1" {
		t.Errorf("Unexpected claims %v", got)
	}
	if GetRequestID(ctx) != "req-1" {
		t.Errorf("Unexpected request id %q", GetRequestID(ctx))
	}
}
