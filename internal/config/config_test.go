package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-bucket-browser/internal/config"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GOOGLE_CLIENT_ID", "client-123")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")
	t.Setenv("REDIRECT_URI", "https://api.example.com/api/auth/callback")
	t.Setenv("AUTH_DOMAIN", "example.com")
	t.Setenv("FRONTEND_URL", "https://app.example.com")
	t.Setenv("ALLOWED_ORIGINS", "https://app.example.com, https://admin.example.com,")
}

func TestNewDefaults(t *testing.T) {
	setRequiredEnv(t)

	c, err := config.New()
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "DEV", c.GetEnv())
	require.Equal(t, "https://accounts.google.com", c.GetIssuer())
	require.Equal(t, 7*24*time.Hour, c.GetSessionTTL())
	require.Equal(t, 10*time.Minute, c.GetStateTTL())
	require.Equal(t, config.SessionStoreMemory, c.GetSessionStore())
	require.Equal(t, config.ObjectStoreMemory, c.GetObjectStore())
	require.Equal(t, int64(10*1024*1024), c.GetMaxUploadBytes())
	require.Equal(t, 8, c.GetBatchWorkers())
	require.Equal(t, config.AllowedOrigins{"https://app.example.com", "https://admin.example.com"}, c.GetAllowedOrigins())
}

func TestValidateReportsAllMissing(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "")
	t.Setenv("AUTH_DOMAIN", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	c, err := config.New()
	require.NoError(t, err)

	err = c.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "GOOGLE_CLIENT_ID")
	require.Contains(t, err.Error(), "AUTH_DOMAIN")
	require.Contains(t, err.Error(), "ALLOWED_ORIGINS")
}

func TestValidateRequiresBucketForS3(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OBJECT_STORE", "s3")
	t.Setenv("S3_BUCKET", "")

	c, err := config.New()
	require.NoError(t, err)
	require.ErrorContains(t, c.Validate(), "S3_BUCKET")
}

func TestValidateRejectsUnknownStore(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SESSION_STORE", "redis")

	c, err := config.New()
	require.NoError(t, err)
	require.ErrorContains(t, c.Validate(), "SESSION_STORE")
}

func TestAllowedOriginsResolve(t *testing.T) {
	origins := config.AllowedOrigins{"https://app.example.com", "https://admin.example.com"}

	require.Equal(t, "https://admin.example.com", origins.Resolve("https://admin.example.com"))
	require.Equal(t, "https://app.example.com", origins.Resolve("https://evil.example.net"))
	require.Equal(t, "https://app.example.com", origins.Resolve(""))

	wildcard := config.AllowedOrigins{"https://app.example.com", "*"}
	require.Equal(t, "https://anything.example.org", wildcard.Resolve("https://anything.example.org"))

	require.Equal(t, "", config.AllowedOrigins{}.Resolve("https://app.example.com"))
}
