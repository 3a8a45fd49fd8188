package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/supply-desk-api/internal/models"
	"github.com/noah-isme/supply-desk-api/pkg/config"
	appErrors "github.com/noah-isme/supply-desk-api/pkg/errors"
)

func mintToken(t *testing.T, secret string, claims models.IdentityClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateToken(t *testing.T) {
	svc := NewIdentityService(config.IdentityConfig{Secret: "gateway-secret"})

	raw := mintToken(t, "gateway-secret", models.IdentityClaims{
		ParticipantID: "a1",
		DisplayName:   "Alex",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := svc.ValidateToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "a1", claims.ParticipantID)
	assert.Equal(t, "Alex", claims.DisplayName)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc := NewIdentityService(config.IdentityConfig{Secret: "gateway-secret"})

	raw := mintToken(t, "other-secret", models.IdentityClaims{ParticipantID: "a1"})
	_, err := svc.ValidateToken(raw)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewIdentityService(config.IdentityConfig{Secret: "gateway-secret"})

	raw := mintToken(t, "gateway-secret", models.IdentityClaims{
		ParticipantID: "a1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	_, err := svc.ValidateToken(raw)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestValidateTokenExpiredWithinLeeway(t *testing.T) {
	svc := NewIdentityService(config.IdentityConfig{Secret: "gateway-secret", Leeway: time.Minute})

	raw := mintToken(t, "gateway-secret", models.IdentityClaims{
		ParticipantID: "a1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-10 * time.Second)),
		},
	})
	_, err := svc.ValidateToken(raw)
	require.NoError(t, err)
}

func TestValidateTokenMissingParticipant(t *testing.T) {
	svc := NewIdentityService(config.IdentityConfig{Secret: "gateway-secret"})

	raw := mintToken(t, "gateway-secret", models.IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	_, err := svc.ValidateToken(raw)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestValidateTokenGarbage(t *testing.T) {
	svc := NewIdentityService(config.IdentityConfig{Secret: "gateway-secret"})

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
