package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("VERITRACK_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "jwt secret")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VERITRACK_JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "Veritrack API", cfg.AppName)
	require.Equal(t, "8080", cfg.AppPort)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, 5*time.Minute, cfg.ExportCacheTTL)
	require.Equal(t, 10, cfg.MaxDocumentSizeMB)
	require.Equal(t, 10, cfg.ListPageSize)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("VERITRACK_JWT_SECRET", "test-secret")
	t.Setenv("VERITRACK_APP_PORT", ":9090")
	t.Setenv("VERITRACK_EXPORT_CACHE_TTL", "30s")
	t.Setenv("VERITRACK_DOCUMENT_MAX_SIZE_MB", "25")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, 30*time.Second, cfg.ExportCacheTTL)
	require.Equal(t, 25, cfg.MaxDocumentSizeMB)
}
