package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner(now time.Time) *ActionSigner {
	s := NewActionSigner([]byte("secret"), time.Hour, NewCacheService(time.Hour, time.Minute))
	s.now = func() time.Time { return now }
	return s
}

func TestActionSigner_RoundTrip(t *testing.T) {
	now := time.Now()
	s := newTestSigner(now)

	token, err := s.Issue(ActionInviteAccept, "guild", "clan", "user")
	require.NoError(t, err)

	claims, err := s.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, ActionInviteAccept, claims.Action)
	assert.EqualValues(t, "guild", claims.GuildID)
	assert.EqualValues(t, "clan", claims.ClanID)
	assert.EqualValues(t, "user", claims.SubjectID)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, now.Add(time.Hour), claims.ExpiresAt, time.Second)
}

func TestActionSigner_SingleUse(t *testing.T) {
	s := newTestSigner(time.Now())
	token, err := s.Issue(ActionDisbandApprove, "guild", "clan", "")
	require.NoError(t, err)

	claims, err := s.Verify(context.Background(), token)
	require.NoError(t, err)
	s.MarkUsed(claims)

	again, err := s.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrActionTokenUsed)
	require.NotNil(t, again)
	assert.Equal(t, ActionDisbandApprove, again.Action)
	assert.Equal(t, claims.TokenID, again.TokenID)
}

func TestActionSigner_Rejects(t *testing.T) {
	now := time.Now()
	s := newTestSigner(now)

	t.Run("expired", func(t *testing.T) {
		token, err := s.Issue(ActionDisbandDeny, "guild", "clan", "")
		require.NoError(t, err)
		later := newTestSigner(now.Add(2 * time.Hour))
		_, err = later.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidActionToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewActionSigner([]byte("other"), time.Hour, nil)
		token, err := other.Issue(ActionDisbandDeny, "guild", "clan", "")
		require.NoError(t, err)
		_, err = s.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidActionToken)
	})

	t.Run("unknown action", func(t *testing.T) {
		_, err := s.Issue(ActionKind("clan:explode"), "guild", "clan", "")
		assert.Error(t, err)

		forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"act": "clan:explode", "gid": "guild", "cid": "clan", "jti": "x",
			"exp": now.Add(time.Hour).Unix(),
		})
		token, err := forged.SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = s.Verify(context.Background(), token)
		assert.True(t, errors.Is(err, ErrInvalidActionToken))
	})
}
