// Package catalog selects the source objects covering a trailing date
// window from an object store listing.
package catalog

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"featurepipe/pkg/objstore"
)

// datePattern matches the ISO date embedded in object keys, e.g.
// "flat/day_aggs_2024-01-02.csv.gz".
var datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Entry is one selected object: its key and the date embedded in it. Entries
// are derived solely from listing metadata and are not persisted.
type Entry struct {
	Key  string
	Date time.Time
}

// Query describes one catalog selection.
type Query struct {
	Kind       string    // substring the object base name must contain
	AsOf       time.Time // window end, inclusive
	WindowDays int       // calendar days back from AsOf, inclusive
	Prefix     string    // listing prefix
	Bookend    bool      // keep only the earliest and latest match
}

// Catalog lists and date-filters candidate objects. Selection is read-only
// and idempotent.
type Catalog struct {
	store objstore.Store
}

// New returns a Catalog over the given store.
func New(store objstore.Store) *Catalog {
	return &Catalog{store: store}
}

// Select lists every object under the query prefix and keeps those whose
// base name contains Kind and whose embedded date falls inside
// [AsOf-WindowDays, AsOf]. Keys without a parseable date are skipped. With
// Bookend set and more than two matches, only the earliest and latest key
// in listing order survive. A listing failure is fatal: no data can be
// selected without it.
func (c *Catalog) Select(ctx context.Context, q Query) ([]Entry, error) {
	if q.WindowDays <= 0 {
		return nil, fmt.Errorf("catalog: windowDays must be positive, got %d", q.WindowDays)
	}

	infos, err := c.store.List(ctx, q.Prefix)
	if err != nil {
		return nil, fmt.Errorf("catalog: list prefix %q: %w", q.Prefix, err)
	}

	from := day(q.AsOf).AddDate(0, 0, -q.WindowDays)
	to := day(q.AsOf)

	var entries []Entry
	for _, info := range infos {
		base := path.Base(info.Key)
		if q.Kind != "" && !strings.Contains(base, q.Kind) {
			continue
		}
		m := datePattern.FindString(base)
		if m == "" {
			continue
		}
		d, err := time.Parse("2006-01-02", m)
		if err != nil {
			continue
		}
		if d.Before(from) || d.After(to) {
			continue
		}
		entries = append(entries, Entry{Key: info.Key, Date: d})
	}

	if q.Bookend && len(entries) > 2 {
		entries = []Entry{entries[0], entries[len(entries)-1]}
	}
	return entries, nil
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
