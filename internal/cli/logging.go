// Package cli holds helpers shared by the command-line entrypoints.
package cli

import (
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"

	"featurepipe/internal/config"
	"featurepipe/pkg/pipeline"
)

// ConfigSummaryLines returns human readable lines describing the loaded
// configuration.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}
	return []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Store: %s/%s prefix=%q", cfg.Store.Endpoint, cfg.Store.Bucket, cfg.Store.Prefix),
		fmt.Sprintf("Selection: kind=%s window=%dd bookend=%t", cfg.Kind, cfg.WindowDays, cfg.Bookend),
		fmt.Sprintf("Universe: %s", orAll(cfg.Universe)),
		fmt.Sprintf("Workers: fetch=%d compute=%d", cfg.Fetch.Workers, cfg.ComputeWorkers),
		fmt.Sprintf("Indicators: sma=%d/%d macd=%d/%d/%d rsi=%d",
			cfg.Indicators.ShortWindow, cfg.Indicators.LongWindow,
			cfg.Indicators.FastSpan, cfg.Indicators.SlowSpan, cfg.Indicators.SignalSpan,
			cfg.Indicators.RSIPeriod),
		fmt.Sprintf("Cache: %s", orDisabled(cfg.CacheDir)),
		fmt.Sprintf("Postgres: %s", presence(cfg.Postgres.DSN != "")),
	}
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	logx.Info("configuration summary")
	for _, line := range ConfigSummaryLines(cfg) {
		logx.Infof("config: %s", line)
	}
}

// LogReport emits the run report.
func LogReport(rep *pipeline.Report) {
	if rep == nil {
		return
	}
	logx.Infof("report: run=%s objects=%d fetched=%d cacheHits=%d skippedRows=%d gaps=%d entities=%d rows=%d elapsed=%s",
		rep.RunID, rep.Objects, rep.Fetched, rep.CacheHits, rep.SkippedRows,
		len(rep.Gaps), rep.Entities, rep.RowsOut, rep.Elapsed)
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func orAll(path string) string {
	if path == "" {
		return "all tickers"
	}
	return path
}

func orDisabled(dir string) string {
	if dir == "" {
		return "disabled"
	}
	return dir
}
