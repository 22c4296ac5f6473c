package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "noreply@example.com")
	t.Setenv("SMTP_PASS", "pass")
}

func TestLoad_MissingSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("SMTP_USER", "")
	t.Setenv("SMTP_PASS", "")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	for _, key := range requiredVars {
		assert.Contains(t, err.Error(), key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_TTL_HOURS", "")
	t.Setenv("MAX_UPLOAD_MB", "")
	t.Setenv("SMTP_PORT", "")
	t.Setenv("LOGIN_RATE_LIMIT", "")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadSize)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, 5*time.Second, cfg.LoginRateLimit)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Origins())
}

func TestLoad_InvalidNumbers(t *testing.T) {
	setRequired(t)
	t.Setenv("MAX_UPLOAD_MB", "ten")

	_, err := Load()
	assert.ErrorContains(t, err, "MAX_UPLOAD_MB")
}
