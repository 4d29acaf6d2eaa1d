package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenManager() TokenManager {
	return NewTokenManager([]byte("access-secret"), []byte("refresh-secret"), time.Hour, 24*time.Hour)
}

func TestGenerateTokenPair_TokensAreUniquePerCall(t *testing.T) {
	tm := newTestTokenManager()

	// Two pairs issued back to back land in the same second; they must still
	// differ, or refresh rotation stores the "new" session under the hash of
	// the token it was supposed to revoke.
	first, err := tm.GenerateTokenPair("user-1", "a@example.com", "alice", "user")
	require.NoError(t, err)
	second, err := tm.GenerateTokenPair("user-1", "a@example.com", "alice", "user")
	require.NoError(t, err)

	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
}

func TestValidateAccessToken_RoundTrip(t *testing.T) {
	tm := newTestTokenManager()

	pair, err := tm.GenerateTokenPair("user-1", "a@example.com", "alice", "user")
	require.NoError(t, err)

	claims, err := tm.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateAccessToken_RejectsRefreshToken(t *testing.T) {
	tm := newTestTokenManager()

	pair, err := tm.GenerateTokenPair("user-1", "a@example.com", "alice", "user")
	require.NoError(t, err)

	// Refresh tokens are signed with a different secret.
	_, err = tm.ValidateAccessToken(pair.RefreshToken)
	assert.Error(t, err)
}
