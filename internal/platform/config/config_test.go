package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "API_PORT", "JWT_EXPIRATION_HOURS", "SUPABASE_BUCKET", "CLIENT_URL", "REDIS_ADDR", "DB_NAME")
	Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NotNil(t, AppConfig)

	assert.Equal(t, "5000", AppConfig.APIPort)
	assert.Equal(t, 168*time.Hour, AppConfig.JWTExp)
	assert.Equal(t, "submission-screenshots", AppConfig.SupabaseBucket)
	assert.Equal(t, []string{"http://localhost:5173"}, AppConfig.ClientOrigins)
	assert.False(t, AppConfig.QueueEnabled())
	assert.Contains(t, AppConfig.DBConnStr, "dbname=code_practice")
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("JWT_EXPIRATION_HOURS", "2")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CLIENT_URL", "https://a.example, https://b.example,")
	t.Setenv("SUBMISSION_EDIT_PENDING_ONLY", "true")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co/")

	Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "9090", AppConfig.APIPort)
	assert.Equal(t, 2*time.Hour, AppConfig.JWTExp)
	assert.True(t, AppConfig.QueueEnabled())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, AppConfig.ClientOrigins)
	assert.True(t, AppConfig.SubmissionEditPendingOnly)
	assert.Equal(t, "https://project.supabase.co", AppConfig.SupabaseURL)
}
