// One-shot tool: download daily bars for one or more symbols into the
// configured local cache.
//
// Usage:
//
//	go run cmd/macross-fetch/main.go -symbols AAPL,MSFT -start 2023-01-02 -end 2024-12-31
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"macross/internal/config"
	"macross/internal/data"
	"macross/internal/util"
)

func main() {
	symbols := flag.String("symbols", "", "comma-separated ticker symbols (uppercase)")
	start := flag.String("start", "", "start date, YYYY-MM-DD")
	end := flag.String("end", "", "end date, YYYY-MM-DD")
	flag.Parse()

	if *symbols == "" {
		log.Fatal("-symbols is required")
	}

	cfgPath := "config/macross.yaml"
	if p := os.Getenv("MACROSS_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level)
	util.SetDefault(logger)

	if cfg.Alpaca.APIKey == "" || cfg.Alpaca.APISecret == "" {
		log.Fatal("Alpaca credentials are not configured (set APCA_API_KEY_ID / APCA_API_SECRET_KEY)")
	}

	var cache data.BarCache
	if cfg.Storage.Backend == "sqlite" {
		c, err := data.NewSQLiteCache(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("failed to open sqlite cache: %v", err)
		}
		defer c.Close()
		cache = c
	} else {
		cache = data.NewParquetCache(cfg.Storage.DataDir)
	}

	fetcher := data.NewFetcher(
		cfg.Alpaca.APIKey,
		cfg.Alpaca.APISecret,
		cfg.Alpaca.DataURL,
		cfg.Fetch.RateLimitPerMin,
		cfg.Fetch.MaxAttempts,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var fetched, failed int
	for _, symbol := range strings.Split(*symbols, ",") {
		symbol = strings.TrimSpace(symbol)
		if symbol == "" {
			continue
		}

		bars, err := fetcher.FetchDailyBars(ctx, symbol, *start, *end)
		if err != nil {
			slog.Error("fetch failed", "symbol", symbol, "error", err)
			failed++
			continue
		}
		if err := cache.WriteBars(ctx, symbol, bars); err != nil {
			slog.Error("cache write failed", "symbol", symbol, "error", err)
			failed++
			continue
		}

		slog.Info("cached bars", "symbol", symbol, "bars", len(bars), "backend", cfg.Storage.Backend)
		fetched++
	}

	slog.Info("fetch complete", "fetched", fetched, "failed", failed)
	if failed > 0 {
		os.Exit(1)
	}
}
