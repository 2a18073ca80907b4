// Package objstore abstracts the bulk-file object store the pipeline reads
// from. The production implementation speaks S3; tests use the in-memory
// store.
package objstore

import (
	"context"
	"io"
)

// ObjectInfo describes one listed object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// Store is the read-only object access the pipeline needs. List must return
// keys in the store's listing order (assumed chronological for dated keys)
// and handle any pagination internally.
type Store interface {
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}
