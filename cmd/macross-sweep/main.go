// Sweep a grid of (fast, slow) SMA windows over one price series and print
// the combos ranked by Sharpe ratio.
//
// Usage:
//
//	go run cmd/macross-sweep/main.go -csv testdata/aapl.csv -fast-min 5 -fast-max 50 -slow-min 20 -slow-max 200
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/olekukonko/tablewriter"

	"macross/internal/backtest"
	"macross/internal/config"
	"macross/internal/data"
	"macross/internal/domain"
	"macross/internal/perf"
	"macross/internal/util"
)

func main() {
	csvPath := flag.String("csv", "", "load bars from a CSV file instead of the cache")
	symbol := flag.String("symbol", "", "ticker symbol (uppercase)")
	start := flag.String("start", "", "start date, YYYY-MM-DD")
	end := flag.String("end", "", "end date, YYYY-MM-DD")
	fastMin := flag.Int("fast-min", 5, "smallest fast SMA window")
	fastMax := flag.Int("fast-max", 50, "largest fast SMA window")
	slowMin := flag.Int("slow-min", 20, "smallest slow SMA window")
	slowMax := flag.Int("slow-max", 200, "largest slow SMA window")
	allowShort := flag.Bool("short", false, "take short positions on bearish crossovers")
	workers := flag.Int("workers", runtime.NumCPU(), "concurrent backtest workers")
	top := flag.Int("top", 20, "number of ranked combos to print (0 = all)")
	flag.Parse()

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

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	prices, err := loadPrices(ctx, cfg, *csvPath, *symbol, *start, *end)
	if err != nil {
		log.Fatalf("failed to load prices: %v", err)
	}

	combos := backtest.Grid(*fastMin, *fastMax, *slowMin, *slowMax)
	if len(combos) == 0 {
		log.Fatal("empty grid: no valid (fast, slow) pairs in the given ranges")
	}

	logger.Info("starting sweep",
		"bars", prices.Len(),
		"combos", len(combos),
		"workers", *workers,
	)

	results := backtest.Sweep(ctx, prices, combos, *allowShort,
		backtest.Config{
			InitialCapital:     cfg.Backtest.InitialCapital,
			TransactionCostBps: cfg.Backtest.TransactionCostBps,
		},
		perf.Options{
			PeriodsPerYear: cfg.Perf.PeriodsPerYear,
			RiskFreeRate:   cfg.Perf.RiskFreeRate,
		},
		*workers,
	)

	if *top > 0 && *top < len(results) {
		results = results[:*top]
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Rank", "Fast", "Slow", "Sharpe", "TotalRet", "AnnRet", "MaxDD", "Trades")
	for i, r := range results {
		if r.Err != nil {
			table.Append(
				fmt.Sprintf("%d", i+1),
				fmt.Sprintf("%d", r.Combo.FastWindow),
				fmt.Sprintf("%d", r.Combo.SlowWindow),
				"-", "-", "-", "-",
				fmt.Sprintf("error: %v", r.Err),
			)
			continue
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", r.Combo.FastWindow),
			fmt.Sprintf("%d", r.Combo.SlowWindow),
			fmt.Sprintf("%.3f", r.Report.Sharpe),
			fmt.Sprintf("%.2f%%", r.Report.TotalReturn*100),
			fmt.Sprintf("%.2f%%", r.Report.AnnualizedReturn*100),
			fmt.Sprintf("%.2f%%", r.Report.MaxDrawdown*100),
			fmt.Sprintf("%d", len(r.Result.Trades)),
		)
	}
	table.Render()
}

func loadPrices(ctx context.Context, cfg *config.Config, csvPath, symbol, start, end string) (domain.PriceSeries, error) {
	if csvPath != "" {
		return data.LoadCSV(csvPath)
	}

	var cache data.BarCache
	if cfg.Storage.Backend == "sqlite" {
		c, err := data.NewSQLiteCache(cfg.Storage.SQLitePath)
		if err != nil {
			return domain.PriceSeries{}, err
		}
		defer c.Close()
		cache = c
	} else {
		cache = data.NewParquetCache(cfg.Storage.DataDir)
	}

	var fetcher data.BarFetcher
	if cfg.Alpaca.APIKey != "" {
		fetcher = data.NewFetcher(
			cfg.Alpaca.APIKey,
			cfg.Alpaca.APISecret,
			cfg.Alpaca.DataURL,
			cfg.Fetch.RateLimitPerMin,
			cfg.Fetch.MaxAttempts,
		)
	}

	return data.NewLoader(cache, fetcher).Load(ctx, symbol, start, end)
}
