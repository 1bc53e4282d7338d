package config

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCatalogWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("neighborhoods: [Zilker]\n"), 0o644))
	initial, err := LoadCatalog(path)
	require.NoError(t, err)

	store := NewCatalogStore(initial)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, store.Watch(ctx, path, zap.NewNop()))

	// unparseable content keeps the previous catalog
	require.NoError(t, os.WriteFile(path, []byte("price_bands:\n  - label: Free\n"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{"Zilker"}, store.Current().Neighborhoods)

	require.NoError(t, os.WriteFile(path, []byte("neighborhoods: [Zilker, Mueller]\n"), 0o644))
	require.Eventually(t, func() bool {
		return slices.Contains(store.Current().Neighborhoods, "Mueller")
	}, 3*time.Second, 20*time.Millisecond)
}

func TestCatalogWatchMissingDir(t *testing.T) {
	store := NewCatalogStore(&Catalog{})
	err := store.Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "catalog.yaml"), zap.NewNop())
	assert.Error(t, err)
}
