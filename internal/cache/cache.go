// Package cache persists parsed objects on disk so repeated runs over the
// same window do not refetch unchanged flat files. Source objects are
// immutable once published, which makes the cache safe for idempotent runs.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"featurepipe/pkg/series"
)

// Cache stores the parsed bars of one object per file, msgpack-encoded,
// keyed by a sanitized form of the object key.
type Cache struct {
	dir string
}

// New creates the cache directory if needed.
func New(dir string) (*Cache, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("cache: dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: mkdir %s: %w", dir, err)
	}
	return &Cache{dir: dir}, nil
}

// Load returns the cached bars for key. A missing or unreadable entry is a
// miss, never an error: the pipeline just refetches.
func (c *Cache) Load(key string) ([]series.Bar, bool) {
	raw, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	var bars []series.Bar
	if err := msgpack.Unmarshal(raw, &bars); err != nil {
		return nil, false
	}
	return bars, true
}

// Store writes the bars for key, atomically via rename so a crashed run
// never leaves a truncated entry behind.
func (c *Cache) Store(key string, bars []series.Bar) error {
	raw, err := msgpack.Marshal(bars)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	dst := c.path(key)
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("cache: write %s: %w", key, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("cache: commit %s: %w", key, err)
	}
	return nil
}

func (c *Cache) path(key string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(key)
	return filepath.Join(c.dir, name+".msgpack")
}
