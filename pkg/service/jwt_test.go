package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "medequip/pkg/errors"
)

const testSecret = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func newTestJWTService(accessTTL, refreshTTL time.Duration) JWTService {
	return NewJWTService(testSecret, "HS256", accessTTL, refreshTTL, zap.NewNop())
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestJWTService(time.Minute, time.Hour)

	access, refresh, err := svc.GenerateTokens(42, "engineer@medequip.local", "engineer")
	require.NoError(t, err)
	require.NotEqual(t, access, refresh)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "engineer", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, "engineer@medequip.local", claims.Subject)

	refreshClaims, err := svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refreshClaims.TokenType)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := newTestJWTService(-time.Minute, time.Hour)

	access, _, err := svc.GenerateTokens(1, "user@medequip.local", "manager")
	require.NoError(t, err)

	_, err = svc.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestJWTService_TamperedToken(t *testing.T) {
	svc := newTestJWTService(time.Minute, time.Hour)

	access, _, err := svc.GenerateTokens(1, "user@medequip.local", "manager")
	require.NoError(t, err)

	parts := strings.Split(access, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]

	_, err = svc.ValidateToken(tampered)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestJWTService_ForeignSecret(t *testing.T) {
	svc := newTestJWTService(time.Minute, time.Hour)
	other := NewJWTService(strings.Repeat("x", 64), "HS256", time.Minute, time.Hour, zap.NewNop())

	access, _, err := other.GenerateTokens(1, "user@medequip.local", "manager")
	require.NoError(t, err)

	_, err = svc.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestJWTService_GarbageToken(t *testing.T) {
	svc := newTestJWTService(time.Minute, time.Hour)

	_, err := svc.ValidateToken("не.токен.вовсе")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
