package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"featurepipe/internal/cli"
	"featurepipe/internal/config"
	"featurepipe/internal/svc"
	"featurepipe/pkg/feature"
	"featurepipe/pkg/pipeline"
)

var (
	configFile = flag.String("f", "etc/featurepipe.yaml", "the config file")
	asOfFlag   = flag.String("date", "", "as-of date (YYYY-MM-DD, default today)")
	tickers    = flag.String("tickers", "", "comma-separated ticker override")
	outPath    = flag.String("o", "", "output CSV path (default stdout)")
)

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)
	cli.LogConfigSummary(cfg)

	if err := run(cfg); err != nil {
		logx.Errorf("featurepipe: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	asOf := time.Now().UTC()
	if *asOfFlag != "" {
		parsed, err := time.Parse("2006-01-02", *asOfFlag)
		if err != nil {
			return fmt.Errorf("parse -date: %w", err)
		}
		asOf = parsed
	}

	universe, err := cfg.LoadUniverse()
	if err != nil {
		return err
	}
	if *tickers != "" {
		universe = splitTickers(*tickers)
	}

	ctx, err := svc.NewServiceContext(*cfg)
	if err != nil {
		return err
	}

	rows, report, err := ctx.Pipeline.Run(context.Background(), pipeline.Config{
		Kind:           cfg.Kind,
		Prefix:         cfg.Store.Prefix,
		AsOf:           asOf,
		WindowDays:     cfg.WindowDays,
		Bookend:        cfg.Bookend,
		Tickers:        universe,
		FetchWorkers:   cfg.Fetch.Workers,
		ComputeWorkers: cfg.ComputeWorkers,
		Timeout:        cfg.RunTimeout(),
	})
	if err != nil {
		return err
	}
	cli.LogReport(report)

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			return fmt.Errorf("create output %s: %w", *outPath, err)
		}
		defer f.Close()
		out = f
	}
	if err := feature.WriteCSV(out, rows); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if ctx.Features != nil {
		persistCtx := context.Background()
		if err := ctx.Features.EnsureSchema(persistCtx); err != nil {
			return err
		}
		if err := ctx.Features.SaveRows(persistCtx, rows); err != nil {
			return err
		}
	}
	return nil
}

func splitTickers(raw string) []string {
	var out []string
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
