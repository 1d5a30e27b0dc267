package server

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonathan/interview-coach/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func setupTestJWTService(_ *testing.T, expirationHours int) *JWTService {
	cfg := &config.JWTConfig{
		Secret:          testJWTSecret,
		ExpirationHours: expirationHours,
		Issuer:          config.DefaultJWTIssuer,
	}
	return NewJWTService(cfg)
}

func TestJWTService_GenerateToken(t *testing.T) {
	service := setupTestJWTService(t, 24)
	userID := uuid.New()

	token, err := service.GenerateToken(userID)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3, "JWT should have 3 parts separated by dots")

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, config.DefaultJWTIssuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestJWTService_UniqueTokens(t *testing.T) {
	service := setupTestJWTService(t, 24)
	userID := uuid.New()

	token1, err := service.GenerateToken(userID)
	require.NoError(t, err)
	token2, err := service.GenerateToken(userID)
	require.NoError(t, err)

	assert.NotEqual(t, token1, token2, "every token carries its own jti")
}

func TestJWTService_ValidateToken_Expired(t *testing.T) {
	service := setupTestJWTService(t, 1)
	token, err := service.GenerateToken(uuid.New())
	require.NoError(t, err)

	service.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = service.ValidateToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTService_ValidateToken_Rejects(t *testing.T) {
	service := setupTestJWTService(t, 24)
	userID := uuid.New()

	otherSecret := NewJWTService(&config.JWTConfig{Secret: "another-secret-key-of-enough-length", ExpirationHours: 24, Issuer: config.DefaultJWTIssuer})
	forged, err := otherSecret.GenerateToken(userID)
	require.NoError(t, err)

	otherIssuer := NewJWTService(&config.JWTConfig{Secret: testJWTSecret, ExpirationHours: 24, Issuer: "someone-else"})
	foreign, err := otherIssuer.GenerateToken(userID)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: userID}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:           userID,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: config.DefaultJWTIssuer},
	}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.jwt"},
		{name: "wrong secret", token: forged},
		{name: "wrong issuer", token: foreign},
		{name: "alg none", token: unsigned},
		{name: "no expiry", token: noExpiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTService_AsTokenValidator(t *testing.T) {
	service := setupTestJWTService(t, 24)
	userID := uuid.New()
	token, err := service.GenerateToken(userID)
	require.NoError(t, err)

	claims, err := service.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.GetUserID())

	_, err = service.AsTokenValidator().ValidateToken("bad")
	assert.Error(t, err)
}
