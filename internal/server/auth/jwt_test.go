package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whispervault/whispervault/internal/common"
)

var secret = []byte("test-secret")

func TestChallengeToken_RoundTrip(t *testing.T) {
	tok, err := GenerateChallengeToken("user-1", secret, time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.True(t, claims.TwoFA)
}

func TestSessionToken_RoundTrip(t *testing.T) {
	tok, err := GenerateSessionToken("user-2", secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-2", claims.UserID)
	assert.False(t, claims.TwoFA)
}

func TestParseToken_WrongSecret(t *testing.T) {
	tok, err := GenerateSessionToken("user-3", secret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, []byte("other-secret"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseToken_Expired(t *testing.T) {
	tok, err := GenerateChallengeToken("user-4", secret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(tok, secret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := ParseToken("not.a.jwt", secret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
