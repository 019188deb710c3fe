// Run one moving-average crossover backtest and print a metrics report.
//
// Usage:
//
//	go run cmd/macross-backtest/main.go -csv testdata/aapl.csv
//	go run cmd/macross-backtest/main.go -symbol AAPL -start 2023-01-02 -end 2024-12-31
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/olekukonko/tablewriter"

	"macross/internal/backtest"
	"macross/internal/config"
	"macross/internal/data"
	"macross/internal/domain"
	"macross/internal/perf"
	"macross/internal/strategy"
	"macross/internal/strategy/builtins"
	"macross/internal/util"
)

func main() {
	csvPath := flag.String("csv", "", "load bars from a CSV file instead of the cache")
	symbol := flag.String("symbol", "", "ticker symbol (uppercase)")
	start := flag.String("start", "", "start date, YYYY-MM-DD")
	end := flag.String("end", "", "end date, YYYY-MM-DD")
	benchCSV := flag.String("benchmark-csv", "", "optional benchmark CSV for alpha/beta")
	stratName := flag.String("strategy", "sma-cross", "strategy to run")
	fast := flag.Int("fast", 0, "fast SMA window (0 = config value)")
	slow := flag.Int("slow", 0, "slow SMA window (0 = config value)")
	allowShort := flag.Bool("short", false, "take short positions on bearish crossovers")
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

	if *fast == 0 {
		*fast = cfg.Strategy.FastWindow
	}
	if *slow == 0 {
		*slow = cfg.Strategy.SlowWindow
	}
	if !*allowShort {
		*allowShort = cfg.Strategy.AllowShort
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	prices, err := loadPrices(ctx, cfg, *csvPath, *symbol, *start, *end)
	if err != nil {
		log.Fatalf("failed to load prices: %v", err)
	}

	smaCross, err := builtins.NewSMACross(*fast, *slow, *allowShort)
	if err != nil {
		log.Fatalf("invalid strategy parameters: %v", err)
	}

	registry := strategy.NewRegistry()
	registry.Register(smaCross)

	strat, ok := registry.Get(*stratName)
	if !ok {
		log.Fatalf("unknown strategy %q (available: %v)", *stratName, registry.List())
	}

	signals, err := strat.Generate(prices)
	if err != nil {
		log.Fatalf("signal generation failed: %v", err)
	}

	result, err := backtest.Run(prices, signals, backtest.Config{
		InitialCapital:     cfg.Backtest.InitialCapital,
		TransactionCostBps: cfg.Backtest.TransactionCostBps,
	})
	if err != nil {
		log.Fatalf("backtest failed: %v", err)
	}

	opts := perf.Options{
		PeriodsPerYear: cfg.Perf.PeriodsPerYear,
		RiskFreeRate:   cfg.Perf.RiskFreeRate,
	}

	var report perf.Report
	if *benchCSV != "" {
		bench, err := data.LoadCSV(*benchCSV)
		if err != nil {
			log.Fatalf("failed to load benchmark: %v", err)
		}
		report, err = perf.EvaluateWithBenchmark(result.Equity, domain.EquityCurve(bench.Closes()), opts)
		if err != nil {
			log.Fatalf("evaluation failed: %v", err)
		}
	} else {
		report, err = perf.Evaluate(result.Equity, opts)
		if err != nil {
			log.Fatalf("evaluation failed: %v", err)
		}
	}

	logger.Info("backtest complete",
		"run_id", result.RunID,
		"bars", prices.Len(),
		"trades", len(result.Trades),
		"fast", *fast,
		"slow", *slow,
	)

	printReport(report, result)
}

// loadPrices resolves the bar source: an explicit CSV file wins, otherwise
// the configured cache (fetching on a miss when credentials are set).
func loadPrices(ctx context.Context, cfg *config.Config, csvPath, symbol, start, end string) (domain.PriceSeries, error) {
	if csvPath != "" {
		return data.LoadCSV(csvPath)
	}

	cache, closeCache, err := openCache(cfg)
	if err != nil {
		return domain.PriceSeries{}, err
	}
	defer closeCache()

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

// openCache builds the configured cache backend. The returned func releases
// backend resources and is safe to call unconditionally.
func openCache(cfg *config.Config) (data.BarCache, func(), error) {
	if cfg.Storage.Backend == "sqlite" {
		c, err := data.NewSQLiteCache(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { c.Close() }, nil
	}
	return data.NewParquetCache(cfg.Storage.DataDir), func() {}, nil
}

func printReport(report perf.Report, result *backtest.Result) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Metric", "Value")
	table.Append("Total Return", fmt.Sprintf("%.2f%%", report.TotalReturn*100))
	table.Append("Annualized Return", fmt.Sprintf("%.2f%%", report.AnnualizedReturn*100))
	table.Append("Annualized Volatility", fmt.Sprintf("%.2f%%", report.AnnualizedVolatility*100))
	table.Append("Sharpe Ratio", fmt.Sprintf("%.3f", report.Sharpe))
	table.Append("Sortino Ratio", fmt.Sprintf("%.3f", report.Sortino))
	table.Append("Max Drawdown", fmt.Sprintf("%.2f%%", report.MaxDrawdown*100))
	if report.HasBenchmark {
		table.Append("Alpha (ann.)", fmt.Sprintf("%.4f", report.Alpha))
		table.Append("Beta", fmt.Sprintf("%.3f", report.Beta))
	}
	table.Append("Trades", fmt.Sprintf("%d", len(result.Trades)))
	table.Append("Final Equity", fmt.Sprintf("%.2f", result.Equity[len(result.Equity)-1]))
	table.Render()

	if len(result.Trades) == 0 {
		return
	}

	fmt.Println()
	trades := tablewriter.NewWriter(os.Stdout)
	trades.Header("Date", "From", "To", "Price")
	for _, tr := range result.Trades {
		trades.Append(
			tr.Timestamp.Format("2006-01-02"),
			tr.From.String(),
			tr.To.String(),
			fmt.Sprintf("%.2f", tr.Price),
		)
	}
	trades.Render()
}
