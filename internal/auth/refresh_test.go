package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshTokenRoundTrip(t *testing.T) {
	raw, selector, verifierHash, err := NewRefreshToken()
	require.NoError(t, err)

	gotSelector, verifier, err := SplitRefreshToken(raw)
	require.NoError(t, err)

	assert.Equal(t, selector, gotSelector)
	assert.True(t, MatchRefreshToken(verifierHash, verifier))
	assert.False(t, MatchRefreshToken(verifierHash, verifier+"x"))
}

func TestRefreshTokensAreUnique(t *testing.T) {
	first, firstSelector, _, err := NewRefreshToken()
	require.NoError(t, err)

	second, secondSelector, _, err := NewRefreshToken()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, firstSelector, secondSelector)
}

func TestSplitRefreshToken_Malformed(t *testing.T) {
	for _, raw := range []string{"", "no-separator", ".verifier-only", "selector-only."} {
		_, _, err := SplitRefreshToken(raw)
		assert.Error(t, err, "expected rejection of %q", raw)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	require.NoError(t, InitJWTSecret())

	tokenString, err := GenerateJWT(7, 12345)
	require.NoError(t, err)

	token, err := VerifyJWT(tokenString)
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(7), claims["user_id"])
	assert.Equal(t, float64(12345), claims["kakao_id"])
}

func TestVerifyJWT_RejectsTampering(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	require.NoError(t, InitJWTSecret())

	tokenString, err := GenerateJWT(7, 12345)
	require.NoError(t, err)

	_, err = VerifyJWT(tokenString + "x")
	assert.Error(t, err)
}
