package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))

	token, expiresAt, err := svc.GenerateAccessToken("u-1", "planner@example.org", []string{"editor"})
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.UserID)
	assert.Equal(t, "planner@example.org", user.Email)
	assert.Equal(t, []string{"editor"}, user.Roles)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))

	otherKey, _, err := NewJWTService(DefaultJWTConfig("other")).GenerateAccessToken("u-1", "", nil)
	require.NoError(t, err)

	expiredCfg := DefaultJWTConfig("secret")
	expiredCfg.AccessTokenTTL = -time.Minute
	expired, _, err := NewJWTService(expiredCfg).GenerateAccessToken("u-1", "", nil)
	require.NoError(t, err)

	foreignCfg := DefaultJWTConfig("secret")
	foreignCfg.Issuer = "elsewhere"
	foreign, _, err := NewJWTService(foreignCfg).GenerateAccessToken("u-1", "", nil)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong key", otherKey},
		{"expired", expired},
		{"wrong issuer", foreign},
		{"unsigned", none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.Error(t, err)
		})
	}
}
