package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.True(t, CheckPassword(hash, "s3cret-password"))
	assert.False(t, CheckPassword(hash, "wrong-password"))
}

func TestTokenRoundTrip(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)

	token, err := mgr.IssueToken("user-1", "merchant-1", RoleMerchant)
	require.NoError(t, err)

	claims, err := mgr.ParseToken(token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "merchant-1", claims.MerchantID)
	assert.Equal(t, RoleMerchant, claims.Role)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).IssueToken("user-1", "", RoleAdmin)
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour).ParseToken(token)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	token, err := NewManager("test-secret", -time.Minute).IssueToken("user-1", "", RoleMerchant)
	require.NoError(t, err)

	_, err = NewManager("test-secret", time.Hour).ParseToken(token)
	assert.Error(t, err)
}
