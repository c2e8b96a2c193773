package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"infinite-experiment/clanhall/internal/models"
)

// ActionKind names what a signed action token resolves.
type ActionKind string

const (
	ActionInviteAccept   ActionKind = "invite:accept"
	ActionInviteDecline  ActionKind = "invite:decline"
	ActionDisbandApprove ActionKind = "disband:approve"
	ActionDisbandDeny    ActionKind = "disband:deny"
)

func (k ActionKind) Valid() bool {
	switch k {
	case ActionInviteAccept, ActionInviteDecline, ActionDisbandApprove, ActionDisbandDeny:
		return true
	}
	return false
}

const usedTokenPrefix = "USEDTOKEN_"

var (
	ErrInvalidActionToken = errors.New("invalid action token")
	ErrActionTokenUsed    = errors.New("action token already used")
)

// ActionClaims is the verified content of an action token.
type ActionClaims struct {
	Action    ActionKind
	GuildID   models.ID
	ClanID    models.ID
	SubjectID models.ID
	TokenID   string
	ExpiresAt time.Time
}

// ActionSigner issues and verifies the tokens behind the approve/deny and
// accept/decline buttons.
type ActionSigner struct {
	secretKey []byte
	ttl       time.Duration
	used      CacheInterface
	now       func() time.Time
}

// NewActionSigner creates a signer. used may be nil, in which case tokens are
// not tracked after resolution.
func NewActionSigner(secretKey []byte, ttl time.Duration, used CacheInterface) *ActionSigner {
	return &ActionSigner{
		secretKey: secretKey,
		ttl:       ttl,
		used:      used,
		now:       time.Now,
	}
}

// Issue signs a token for action. subjectID is the invitee for invite actions
// and empty for disband actions.
func (s *ActionSigner) Issue(action ActionKind, guildID, clanID, subjectID models.ID) (string, error) {
	if !action.Valid() {
		return "", fmt.Errorf("unknown action %q", action)
	}
	now := s.now()
	claims := jwt.MapClaims{
		"act": string(action),
		"gid": guildID.String(),
		"cid": clanID.String(),
		"sub": subjectID.String(),
		"jti": uuid.New().String(),
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify checks signature, expiry and prior use. A used token still returns
// its claims alongside ErrActionTokenUsed.
func (s *ActionSigner) Verify(ctx context.Context, tokenString string) (*ActionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidActionToken, err)
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidActionToken
	}

	str := func(key string) string {
		v, _ := (*claims)[key].(string)
		return v
	}
	out := &ActionClaims{
		Action:    ActionKind(str("act")),
		GuildID:   models.ID(str("gid")),
		ClanID:    models.ID(str("cid")),
		SubjectID: models.ID(str("sub")),
		TokenID:   str("jti"),
	}
	if !out.Action.Valid() || out.GuildID.IsZero() || out.ClanID.IsZero() || out.TokenID == "" {
		return nil, fmt.Errorf("%w: missing claims", ErrInvalidActionToken)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}

	if s.IsUsed(out.TokenID) {
		return out, ErrActionTokenUsed
	}
	return out, nil
}

// MarkUsed remembers the token until it would have expired anyway.
func (s *ActionSigner) MarkUsed(claims *ActionClaims) {
	if s.used == nil || claims == nil {
		return
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return
	}
	s.used.Set(usedTokenPrefix+claims.TokenID, true, ttl)
}

func (s *ActionSigner) IsUsed(tokenID string) bool {
	if s.used == nil {
		return false
	}
	_, found := s.used.Get(usedTokenPrefix + tokenID)
	return found
}
