package objstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemStoreListOrderAndPrefix(t *testing.T) {
	store := NewMemStore()
	store.Put("b/two.gz", []byte("22"))
	store.Put("a/one.gz", []byte("1"))
	store.Put("b/one.gz", []byte("333"))

	infos, err := store.List(context.Background(), "b/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	require.Equal(t, "b/one.gz", infos[0].Key)
	require.Equal(t, "b/two.gz", infos[1].Key)
	require.Equal(t, int64(3), infos[0].Size)
}

func TestMemStoreGet(t *testing.T) {
	store := NewMemStore()
	store.Put("key", []byte("payload"))

	rc, err := store.Get(context.Background(), "key")
	require.NoError(t, err)
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "payload", string(raw))

	_, err = store.Get(context.Background(), "missing")
	require.Error(t, err)
}

func TestMemStoreHonorsContext(t *testing.T) {
	store := NewMemStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.List(ctx, "")
	require.Error(t, err)
}
