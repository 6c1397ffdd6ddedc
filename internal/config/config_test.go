package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corsairproxy/corsair/internal/cors"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corsair.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:4000", cfg.Server.Target)
	assert.Equal(t, []string{"https://studio.apollographql.com"}, cfg.Server.CORS.Origins)
	assert.Equal(t, []string{"Content-Type"}, cfg.Server.CORS.AllowHeaders)
	assert.Equal(t, []string{"GET", "POST", "OPTIONS"}, cfg.Server.CORS.Methods)
	assert.False(t, cfg.Server.CORS.AllowAnyOrigin)
	assert.False(t, cfg.Server.CORS.AllowCredentials)
	assert.Empty(t, cfg.Server.CORS.ExposeHeaders)

	_, err = cfg.Policy()
	require.NoError(t, err)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  target: http://localhost:9000
  cors:
    origins:
      - https://www.my-frontend.com
    allow_credentials: true
    allow_headers:
      - Content-Type
      - Authorization
    max_age: 7200
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.Server.Target)
	assert.Equal(t, []string{"https://www.my-frontend.com"}, cfg.Server.CORS.Origins)
	assert.True(t, cfg.Server.CORS.AllowCredentials)
	assert.Equal(t, 7200, cfg.Server.CORS.MaxAge)
	// Untouched keys keep their defaults.
	assert.Equal(t, []string{"GET", "POST", "OPTIONS"}, cfg.Server.CORS.Methods)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "0.0.0.0:443", cfg.Server.Listen)
}

func TestLoadRejectsInvalidTarget(t *testing.T) {
	path := writeConfig(t, "server:\n  target: \"://nope\"\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsInvalidPolicy(t *testing.T) {
	path := writeConfig(t, `
server:
  cors:
    origins:
      - "*"
`)
	_, err := Load(path)
	require.ErrorIs(t, err, cors.ErrInvalidPolicy)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestPolicyConversion(t *testing.T) {
	path := writeConfig(t, `
server:
  cors:
    allow_any_origin: true
    allow_credentials: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	p, err := cfg.Policy()
	require.NoError(t, err)
	assert.True(t, p.AllowCredentials())
}
