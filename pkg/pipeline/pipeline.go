// Package pipeline wires catalog selection, parallel object fetch, series
// assembly and per-ticker indicator computation into one run.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/mr"

	"featurepipe/pkg/catalog"
	"featurepipe/pkg/feature"
	"featurepipe/pkg/fetch"
	"featurepipe/pkg/indicators"
	"featurepipe/pkg/series"
)

const (
	defaultFetchWorkers   = 8
	defaultComputeWorkers = 8
)

// ObjectCache caches parsed objects across runs. Implementations must store
// exactly what they are given; the pipeline only consults the cache for
// unfiltered fetches so cached content is always a full object.
type ObjectCache interface {
	Load(key string) ([]series.Bar, bool)
	Store(key string, bars []series.Bar) error
}

// Config describes one pipeline run.
type Config struct {
	Kind       string
	Prefix     string
	AsOf       time.Time
	WindowDays int
	Bookend    bool

	Tickers []string // optional universe restriction

	FetchWorkers   int
	ComputeWorkers int
	Timeout        time.Duration // run-level budget, zero means none
}

// Gap records an object that produced no data after retries were exhausted
// or its payload proved corrupt. Gaps are ordinary absences downstream, not
// zeros.
type Gap struct {
	Key    string
	Date   string
	Reason string
}

// Report summarizes one run.
type Report struct {
	RunID       string
	Objects     int
	Fetched     int
	CacheHits   int
	SkippedRows int
	Gaps        []Gap
	Entities    int
	RowsOut     int
	Elapsed     time.Duration
}

// Pipeline executes runs. One object's or ticker's failure never aborts the
// others; only catalog and assembly failures are run-fatal.
type Pipeline struct {
	catalog *catalog.Catalog
	fetcher *fetch.Fetcher
	engine  *indicators.Engine
	cache   ObjectCache // nil disables caching
}

// New assembles a Pipeline from its collaborators. cache may be nil.
func New(cat *catalog.Catalog, fetcher *fetch.Fetcher, engine *indicators.Engine, cache ObjectCache) *Pipeline {
	return &Pipeline{catalog: cat, fetcher: fetcher, engine: engine, cache: cache}
}

type fetchOut struct {
	entry    catalog.Entry
	bars     []series.Bar
	skipped  int
	cacheHit bool
	err      error
}

type fetchSummary struct {
	bars        []series.Bar
	fetched     int
	cacheHits   int
	skippedRows int
	gaps        []Gap
}

// Run selects objects, fetches them on a bounded worker pool, assembles
// per-ticker series and computes feature rows per ticker in parallel. The
// returned rows are sorted by (ticker, date), so identical inputs always
// produce identical output.
func (p *Pipeline) Run(ctx context.Context, cfg Config) ([]feature.Row, *Report, error) {
	start := time.Now()
	report := &Report{RunID: uuid.NewString()}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	entries, err := p.catalog.Select(ctx, catalog.Query{
		Kind:       cfg.Kind,
		AsOf:       cfg.AsOf,
		WindowDays: cfg.WindowDays,
		Prefix:     cfg.Prefix,
		Bookend:    cfg.Bookend,
	})
	if err != nil {
		return nil, nil, err
	}
	report.Objects = len(entries)
	logx.WithContext(ctx).Infof("pipeline: run=%s selected %d objects kind=%s window=%dd",
		report.RunID, len(entries), cfg.Kind, cfg.WindowDays)

	filter := tickerSet(cfg.Tickers)
	useCache := p.cache != nil && filter == nil

	sum, err := mr.MapReduce(
		func(source chan<- catalog.Entry) {
			for _, e := range entries {
				source <- e
			}
		},
		func(e catalog.Entry, writer mr.Writer[fetchOut], cancel func(error)) {
			if useCache {
				if bars, ok := p.cache.Load(e.Key); ok {
					writer.Write(fetchOut{entry: e, bars: bars, cacheHit: true})
					return
				}
			}
			res, err := p.fetcher.Fetch(ctx, e, filter)
			if err != nil {
				// failed object becomes a gap, not a run failure
				writer.Write(fetchOut{entry: e, err: err})
				return
			}
			if useCache {
				if err := p.cache.Store(e.Key, res.Bars); err != nil {
					logx.WithContext(ctx).Errorf("pipeline: cache store key=%s err=%v", e.Key, err)
				}
			}
			writer.Write(fetchOut{entry: e, bars: res.Bars, skipped: res.SkippedRows})
		},
		func(pipe <-chan fetchOut, writer mr.Writer[fetchSummary], cancel func(error)) {
			var s fetchSummary
			for out := range pipe {
				if out.err != nil {
					s.gaps = append(s.gaps, Gap{
						Key:    out.entry.Key,
						Date:   out.entry.Date.Format("2006-01-02"),
						Reason: out.err.Error(),
					})
					continue
				}
				if out.cacheHit {
					s.cacheHits++
				} else {
					s.fetched++
				}
				s.skippedRows += out.skipped
				s.bars = append(s.bars, out.bars...)
			}
			writer.Write(s)
		},
		mr.WithWorkers(workers(cfg.FetchWorkers, defaultFetchWorkers)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("pipeline: fetch stage: %w", err)
	}
	report.Fetched = sum.fetched
	report.CacheHits = sum.cacheHits
	report.SkippedRows = sum.skippedRows
	report.Gaps = sum.gaps
	for _, g := range sum.gaps {
		logx.WithContext(ctx).Errorf("pipeline: run=%s gap key=%s date=%s reason=%s",
			report.RunID, g.Key, g.Date, g.Reason)
	}

	byTicker, err := series.Assemble(sum.bars)
	if err != nil {
		return nil, nil, err
	}
	report.Entities = len(byTicker)

	rows, err := mr.MapReduce(
		func(source chan<- *series.Series) {
			for _, t := range series.Tickers(byTicker) {
				source <- byTicker[t]
			}
		},
		func(s *series.Series, writer mr.Writer[[]feature.Row], cancel func(error)) {
			writer.Write(p.engine.Run(s))
		},
		func(pipe <-chan []feature.Row, writer mr.Writer[[]feature.Row], cancel func(error)) {
			var all []feature.Row
			for rs := range pipe {
				all = append(all, rs...)
			}
			writer.Write(all)
		},
		mr.WithWorkers(workers(cfg.ComputeWorkers, defaultComputeWorkers)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("pipeline: compute stage: %w", err)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Ticker != rows[j].Ticker {
			return rows[i].Ticker < rows[j].Ticker
		}
		return rows[i].Date.Before(rows[j].Date)
	})

	report.RowsOut = len(rows)
	report.Elapsed = time.Since(start)
	logx.WithContext(ctx).Infof(
		"pipeline: run=%s done objects=%d fetched=%d cacheHits=%d gaps=%d entities=%d rows=%d elapsed=%s",
		report.RunID, report.Objects, report.Fetched, report.CacheHits,
		len(report.Gaps), report.Entities, report.RowsOut, report.Elapsed)
	return rows, report, nil
}

func tickerSet(tickers []string) map[string]struct{} {
	if len(tickers) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		set[t] = struct{}{}
	}
	return set
}

func workers(n, fallback int) int {
	if n > 0 {
		return n
	}
	return fallback
}
