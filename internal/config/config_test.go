package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("MONGO_URI", "")
	t.Setenv("PUBLIC_BASE_URL", "https://example.com/")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "https://example.com", cfg.PublicBaseURL)
	assert.Equal(t, 72, cfg.SessionTTL)
	assert.Len(t, cfg.Warnings(), 3)
}

func TestSessionTTLFallback(t *testing.T) {
	t.Setenv("SESSION_TTL_HOURS", "soon")
	assert.Equal(t, 72, Load().SessionTTL)
	t.Setenv("SESSION_TTL_HOURS", "12")
	assert.Equal(t, 12, Load().SessionTTL)
}

func TestDefaultCatalog(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Len(t, c.PriceBands, 5)
	assert.Equal(t, "5000000-", c.PriceBands[4].Value)
	assert.Contains(t, c.Neighborhoods, "Lake Austin")
	assert.Equal(t, "3", c.Beds[2].Value)
}

func TestCatalogOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("neighborhoods: [Zilker]\n"), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Zilker"}, c.Neighborhoods)
	assert.Empty(t, c.PriceBands)
}

func TestCatalogRejectsEmptyBand(t *testing.T) {
	_, err := ParseCatalog([]byte("price_bands:\n  - label: Free\n"))
	assert.Error(t, err)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
