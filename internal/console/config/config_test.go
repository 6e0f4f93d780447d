package config

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CATALOG_API_BASE_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Address)
	require.Equal(t, "/", cfg.Server.BasePath)
	require.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	require.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	require.Equal(t, "₺", cfg.Display.CurrencySymbol)
	require.Equal(t, int64(10<<20), cfg.Limits.UploadMaxBytes)
	require.True(t, cfg.UsesStaticBackend())
	require.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CONSOLE_HTTP_ADDR", ":9090")
	t.Setenv("CATALOG_API_BASE_URL", "http://backend:5000")
	t.Setenv("CATALOG_API_TIMEOUT", "5s")
	t.Setenv("CATALOG_SEED_CATEGORIES", "Lighting,Furniture")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Server.Address)
	require.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	require.Equal(t, []string{"Lighting", "Furniture"}, cfg.Backend.SeedCategories)
	require.False(t, cfg.UsesStaticBackend())
}

func TestValidateRejectsBadBackendURL(t *testing.T) {
	cfg := Config{}
	cfg.Server.Address = ":8080"
	cfg.Backend.BaseURL = "backend:5000"
	cfg.Limits.UploadMaxBytes = 1
	cfg.Limits.LoginPerMinute = 1

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
}

func TestValidateRequiresHashKeyInProduction(t *testing.T) {
	cfg := Config{}
	cfg.Server.Address = ":8080"
	cfg.Server.Environment = "production"
	cfg.Limits.UploadMaxBytes = 1
	cfg.Limits.LoginPerMinute = 1

	require.ErrorIs(t, cfg.Validate(), ErrInvalid)

	cfg.Session.HashKey = "secret"
	require.NoError(t, cfg.Validate())
}

func TestSessionKeysDecodeBase64(t *testing.T) {
	raw := []byte("0123456789abcdef0123456789abcdef")
	cfg := Config{}
	cfg.Session.HashKey = base64.StdEncoding.EncodeToString(raw)
	cfg.Session.BlockKey = "plain-text-key"

	hash, block := cfg.SessionKeys()
	require.Equal(t, raw, hash)
	require.Equal(t, []byte("plain-text-key"), block)

	cfg.Session.HashKey = ""
	hash, _ = cfg.SessionKeys()
	require.Nil(t, hash)
}
