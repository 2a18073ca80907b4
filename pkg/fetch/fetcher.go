// Package fetch retrieves one source object at a time, decompresses it and
// parses its rows into typed bars.
package fetch

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"featurepipe/pkg/catalog"
	"featurepipe/pkg/objstore"
	"featurepipe/pkg/series"
)

// Input column layout of the delimited rows inside each object. The date is
// NOT read from rows; it comes from the object key.
const (
	colTicker = iota
	colOpen
	colHigh
	colLow
	colClose
	colVolume
	colWindowStart
	rowFieldCount
)

// Result is the parsed content of one object. SkippedRows counts malformed
// records that were dropped while the rest of the object processed.
type Result struct {
	Key         string
	Date        string // ISO date from the key, for logs and gap records
	Bars        []series.Bar
	SkippedRows int
}

// Fetcher retrieves and parses objects, optionally restricted to a ticker
// subset. Safe for concurrent use.
type Fetcher struct {
	store objstore.Store
	retry *RetryHandler
}

// New returns a Fetcher over the given store.
func New(store objstore.Store, retry *RetryHandler) *Fetcher {
	if retry == nil {
		retry = NewRetryHandler(RetryConfig{MaxRetries: 3})
	}
	return &Fetcher{store: store, retry: retry}
}

// Fetch retrieves the entry's object, decompresses and parses it. The raw
// bytes are read under the retry budget (transient storage failures only);
// decompression or structural corruption is terminal for this object and is
// reported to the caller, never retried. An empty filter admits all tickers;
// a non-empty one is applied per record, before numeric parsing, so large
// universes never materialize.
func (f *Fetcher) Fetch(ctx context.Context, entry catalog.Entry, filter map[string]struct{}) (*Result, error) {
	var raw []byte
	err := f.retry.Do(ctx, func() error {
		rc, err := f.store.Get(ctx, entry.Key)
		if err != nil {
			return err
		}
		defer rc.Close()
		raw, err = io.ReadAll(rc)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch: retrieve %s: %w", entry.Key, err)
	}

	gz, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("fetch: decompress %s: %w", entry.Key, err)
	}
	defer gz.Close()

	res := &Result{Key: entry.Key, Date: entry.Date.Format("2006-01-02")}
	cr := csv.NewReader(gz)
	cr.FieldsPerRecord = -1

	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetch: parse %s: %w", entry.Key, err)
		}

		if first {
			first = false
			if isHeader(rec) {
				continue
			}
		}
		if len(rec) < rowFieldCount {
			res.SkippedRows++
			continue
		}

		ticker := strings.TrimSpace(rec[colTicker])
		if ticker == "" {
			res.SkippedRows++
			continue
		}
		if filter != nil {
			if _, ok := filter[ticker]; !ok {
				continue
			}
		}

		bar, ok := parseBar(ticker, rec)
		if !ok {
			res.SkippedRows++
			continue
		}
		bar.Date = entry.Date
		res.Bars = append(res.Bars, bar)
	}
	return res, nil
}

func parseBar(ticker string, rec []string) (series.Bar, bool) {
	open, err1 := strconv.ParseFloat(rec[colOpen], 64)
	high, err2 := strconv.ParseFloat(rec[colHigh], 64)
	low, err3 := strconv.ParseFloat(rec[colLow], 64)
	close, err4 := strconv.ParseFloat(rec[colClose], 64)
	volume, err5 := strconv.ParseFloat(rec[colVolume], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
		return series.Bar{}, false
	}
	// The window-start timestamp is informational; a bad one does not cost
	// the row.
	ts, _ := strconv.ParseInt(strings.TrimSpace(rec[colWindowStart]), 10, 64)
	return series.Bar{
		Ticker:   ticker,
		Open:     open,
		High:     high,
		Low:      low,
		Close:    close,
		Volume:   volume,
		SourceTS: ts,
	}, true
}

func isHeader(rec []string) bool {
	if len(rec) <= colOpen {
		return false
	}
	_, err := strconv.ParseFloat(rec[colOpen], 64)
	return err != nil
}
