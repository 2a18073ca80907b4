package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"featurepipe/pkg/objstore"
)

func storeWithKeys(keys ...string) *objstore.MemStore {
	store := objstore.NewMemStore()
	for _, k := range keys {
		store.Put(k, []byte("x"))
	}
	return store
}

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSelectFiltersByKindAndWindow(t *testing.T) {
	store := storeWithKeys(
		"flat/day_aggs_2024-03-01.csv.gz",
		"flat/day_aggs_2024-03-05.csv.gz",
		"flat/day_aggs_2024-02-01.csv.gz", // outside window
		"flat/min_aggs_2024-03-05.csv.gz", // wrong kind
		"flat/day_aggs_manifest.txt",      // no date, skipped
	)

	entries, err := New(store).Select(context.Background(), Query{
		Kind:       "day_aggs",
		AsOf:       mustDate("2024-03-06"),
		WindowDays: 10,
		Prefix:     "flat/",
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "flat/day_aggs_2024-03-01.csv.gz", entries[0].Key)
	require.Equal(t, mustDate("2024-03-01"), entries[0].Date)
	require.Equal(t, "flat/day_aggs_2024-03-05.csv.gz", entries[1].Key)
}

func TestSelectWindowBoundsInclusive(t *testing.T) {
	store := storeWithKeys(
		"day_aggs_2024-03-01.csv.gz", // exactly AsOf-WindowDays
		"day_aggs_2024-03-06.csv.gz", // exactly AsOf
		"day_aggs_2024-02-29.csv.gz", // one day too early
		"day_aggs_2024-03-07.csv.gz", // one day too late
	)

	entries, err := New(store).Select(context.Background(), Query{
		Kind:       "day_aggs",
		AsOf:       mustDate("2024-03-06"),
		WindowDays: 5,
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestSelectBookend(t *testing.T) {
	store := objstore.NewMemStore()
	for day := 1; day <= 10; day++ {
		store.Put(fmt.Sprintf("day_aggs_2024-03-%02d.csv.gz", day), []byte("x"))
	}

	entries, err := New(store).Select(context.Background(), Query{
		Kind:       "day_aggs",
		AsOf:       mustDate("2024-03-10"),
		WindowDays: 30,
		Bookend:    true,
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "day_aggs_2024-03-01.csv.gz", entries[0].Key)
	require.Equal(t, "day_aggs_2024-03-10.csv.gz", entries[1].Key)
}

func TestSelectBookendKeepsTwoOrFewer(t *testing.T) {
	store := storeWithKeys(
		"day_aggs_2024-03-01.csv.gz",
		"day_aggs_2024-03-02.csv.gz",
	)

	entries, err := New(store).Select(context.Background(), Query{
		Kind:       "day_aggs",
		AsOf:       mustDate("2024-03-10"),
		WindowDays: 30,
		Bookend:    true,
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestSelectRejectsBadWindow(t *testing.T) {
	_, err := New(storeWithKeys()).Select(context.Background(), Query{
		Kind:       "day_aggs",
		AsOf:       mustDate("2024-03-10"),
		WindowDays: 0,
	})
	require.Error(t, err)
}

func TestSelectEmptyListing(t *testing.T) {
	entries, err := New(storeWithKeys()).Select(context.Background(), Query{
		Kind:       "day_aggs",
		AsOf:       mustDate("2024-03-10"),
		WindowDays: 5,
	})
	require.NoError(t, err)
	require.Empty(t, entries)
}
