package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strefethen/yamaha-hub-go/internal/config"
)

func testJWTConfig() config.Config {
	return config.Config{
		JWTSecret:                "test-secret",
		JWTAccessTokenExpirySec:  900,
		JWTRefreshTokenExpirySec: 86400,
	}
}

func TestGenerateAndVerifyTokenPair(t *testing.T) {
	cfg := testJWTConfig()
	pair, err := GenerateTokenPair(cfg, TokenPayload{Sub: "device-1", DeviceName: "Kitchen iPad"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 900, pair.ExpiresInSec)

	access, err := VerifyToken(cfg, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "device-1", access.Sub)
	assert.Equal(t, "Kitchen iPad", access.DeviceName)
	assert.Equal(t, TokenTypeAccess, access.Type)

	refresh, err := VerifyToken(cfg, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refresh.Type)
}

func TestRefreshAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	pair, err := GenerateTokenPair(cfg, TokenPayload{Sub: "device-1", DeviceName: "Kitchen iPad"})
	require.NoError(t, err)

	accessToken, expiresIn, err := RefreshAccessToken(cfg, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, 900, expiresIn)

	payload, err := VerifyToken(cfg, accessToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAccess, payload.Type)
	assert.Equal(t, "device-1", payload.Sub)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	pair, err := GenerateTokenPair(cfg, TokenPayload{Sub: "device-1", DeviceName: "Kitchen iPad"})
	require.NoError(t, err)

	_, _, err = RefreshAccessToken(cfg, pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenType)
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
	cfg := testJWTConfig()
	pair, err := GenerateTokenPair(cfg, TokenPayload{Sub: "device-1", DeviceName: "Kitchen iPad"})
	require.NoError(t, err)

	_, err = VerifyToken(cfg, pair.AccessToken+"x")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	otherSecret := cfg
	otherSecret.JWTSecret = "different-secret"
	_, err = VerifyToken(otherSecret, pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.JWTAccessTokenExpirySec = -60

	pair, err := GenerateTokenPair(cfg, TokenPayload{Sub: "device-1", DeviceName: "Kitchen iPad"})
	require.NoError(t, err)

	_, err = VerifyToken(cfg, pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	_, err := VerifyToken(testJWTConfig(), "not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
