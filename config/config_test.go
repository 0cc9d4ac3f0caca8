package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	_, err := Load("testdata/missing.env")
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cret")
	for _, key := range []string{"PORT", "GIN_MODE", "DATABASE_URL", "SQLITE_DB", "ALLOWED_ORIGINS", "SESSION_TTL", "SESSION_COOKIE", "BCRYPT_COST"} {
		t.Setenv(key, "")
	}

	cfg, err := Load("testdata/missing.env")
	require.NoError(t, err)

	assert.Equal(t, "8083", cfg.Port)
	assert.Equal(t, "cafes.db", cfg.DatabaseURL)
	assert.Equal(t, "session", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.False(t, cfg.Release())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("DATABASE_URL", "postgres://cafe@localhost/cafe")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("testdata/missing.env")
	require.NoError(t, err)

	assert.Equal(t, "postgres://cafe@localhost/cafe", cfg.DatabaseURL)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.Release())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoadRejectsBadTTL(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("SESSION_TTL", "forever")

	_, err := Load("testdata/missing.env")
	require.Error(t, err)
}
