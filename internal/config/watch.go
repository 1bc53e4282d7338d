package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// CatalogStore holds the catalog currently served to the filter bar.
type CatalogStore struct {
	cur atomic.Pointer[Catalog]
}

func NewCatalogStore(c *Catalog) *CatalogStore {
	s := &CatalogStore{}
	s.cur.Store(c)
	return s
}

func (s *CatalogStore) Current() *Catalog { return s.cur.Load() }

func (s *CatalogStore) Set(c *Catalog) { s.cur.Store(c) }

// Watch reloads the catalog at path whenever the file is written or
// replaced, until ctx is done. A file that fails to parse is logged and the
// previous catalog stays in place.
func (s *CatalogStore) Watch(ctx context.Context, path string, logger *zap.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config.Watch: %w", err)
	}
	// Editors often save by renaming over the file, so watch the directory.
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("config.Watch %s: %w", path, err)
	}

	target := filepath.Clean(path)
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				c, err := LoadCatalog(path)
				if err != nil {
					logger.Warn("filter catalog reload failed", zap.String("path", path), zap.Error(err))
					continue
				}
				s.Set(c)
				logger.Info("filter catalog reloaded", zap.String("path", path))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("filter catalog watch error", zap.Error(err))
			}
		}
	}()
	return nil
}
