package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, err := svc.Issue("user:alice", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user:alice", identity.UserID)
	assert.Equal(t, "alice", identity.Name)
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute)

	token, err := svc.Issue("user:alice", "alice")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenService_Malformed(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q should be rejected", token)
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-one", time.Hour)
	verifier := NewTokenService("secret-two", time.Hour)

	token, err := issuer.Issue("user:alice", "alice")
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, len(hash) > 0)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := ComparePassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ComparePassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestComparePassword_InvalidHash(t *testing.T) {
	_, err := ComparePassword("whatever", "not-a-hash")
	assert.Error(t, err)
}
