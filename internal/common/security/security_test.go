package security

import (
	"testing"
	"time"

	"code_practice/internal/platform/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupJWT(t *testing.T, exp time.Duration) {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: []byte("test-secret"), JWTExp: exp}
	InitJWT()
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CheckPasswordHash("hunter22", hash))
	assert.False(t, CheckPasswordHash("hunter23", hash))
}

func TestGenerateAndParseToken(t *testing.T) {
	setupJWT(t, time.Hour)

	token, err := GenerateToken("user-1", "student")
	require.NoError(t, err)

	userID, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestParseToken_Expired(t *testing.T) {
	setupJWT(t, -time.Hour)

	token, err := GenerateToken("user-1", "student")
	require.NoError(t, err)

	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_WrongKey(t *testing.T) {
	setupJWT(t, time.Hour)
	token, err := GenerateToken("user-1", "admin")
	require.NoError(t, err)

	config.AppConfig.JWTKey = []byte("another-secret")
	InitJWT()

	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestClaimsHelpers(t *testing.T) {
	_, err := GetUserIDFromClaims(map[string]interface{}{"user_id": 7})
	assert.Error(t, err)

	role, err := GetUserRoleFromClaims(map[string]interface{}{"role": "admin"})
	require.NoError(t, err)
	assert.Equal(t, "admin", role)
}
