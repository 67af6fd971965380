package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-collaborate/internal/config"
	"github.com/stretchr/testify/require"
)

func TestCollaborateConfig(t *testing.T) {
	t.Setenv("COLLABORATE_URL", "https://eu.bbcollab.example/collab/api/csa/")
	t.Setenv("COLLABORATE_KEY", "key-1")
	t.Setenv("COLLABORATE_SECRET", "secret-1")
	t.Setenv("COLLABORATE_TIMEOUT", "10s")
	t.Setenv("COLLABORATE_ASSERTION_TTL", "")

	c := config.New()
	require.Equal(t, "https://eu.bbcollab.example/collab/api/csa", c.GetCollaborateURL())
	require.Equal(t, "key-1", c.GetCollaborateKey())
	require.Equal(t, "secret-1", c.GetCollaborateSecret())
	require.Equal(t, 10*time.Second, c.GetCollaborateTimeout())
	require.Equal(t, 5*time.Minute, c.GetAssertionTTL())
}

func TestCollaborateConfig_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("COLLABORATE_TIMEOUT", "soon")
	require.Equal(t, 30*time.Second, config.New().GetCollaborateTimeout())
}

func TestEnvVars(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "")
	require.Equal(t, ":9090", config.New().GetPort())
	require.Equal(t, "DEV", config.New().GetEnv())

	t.Setenv("PORT", ":7070")
	require.Equal(t, ":7070", config.New().GetPort())
}

func TestAllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://events.example.ac.uk, https://admin.example.ac.uk,")
	origins := config.New().GetAllowedOrigins()
	require.Len(t, origins, 2)
	require.True(t, origins.IsAllowedOrigin("https://events.example.ac.uk"))
	require.False(t, origins.IsAllowedOrigin("*"))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(file, []byte("COLLABORATE_KEY=from-file\nAPP_NAME=from-file\n"), 0o600))

	t.Setenv("COLLABORATE_KEY", "from-env")
	t.Setenv("APP_NAME", "")
	require.NoError(t, os.Unsetenv("APP_NAME"))

	require.NoError(t, config.LoadDotEnv(file, filepath.Join(dir, "missing.env")))
	require.Equal(t, "from-env", config.New().GetCollaborateKey())
	require.Equal(t, "from-file", config.New().GetAppName())
}
