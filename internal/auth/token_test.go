package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akovardin/securepass/internal/common"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateSessionToken("alice", "jti-1", secret, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseSessionToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Owner)
	assert.Equal(t, "jti-1", claims.ID)
}

func TestParseSessionToken_WrongSecret(t *testing.T) {
	token, err := GenerateSessionToken("alice", "jti-1", []byte("secret-a"), time.Minute)
	require.NoError(t, err)

	_, err = ParseSessionToken(token, []byte("secret-b"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseSessionToken_Expired(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateSessionToken("alice", "jti-1", secret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseSessionToken(token, secret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseSessionToken_Garbage(t *testing.T) {
	_, err := ParseSessionToken("not-a-token", []byte("secret"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
