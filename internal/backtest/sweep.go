package backtest

import (
	"context"
	"sort"
	"sync"

	"macross/internal/domain"
	"macross/internal/perf"
	"macross/internal/strategy/builtins"
)

// Combo is one (fast, slow) window pair in a parameter sweep.
type Combo struct {
	FastWindow int
	SlowWindow int
}

// Grid enumerates every valid combo with fastLo <= fast <= fastHi and
// slowLo <= slow <= slowHi, skipping pairs where fast >= slow.
func Grid(fastLo, fastHi, slowLo, slowHi int) []Combo {
	var combos []Combo
	for fast := fastLo; fast <= fastHi; fast++ {
		for slow := slowLo; slow <= slowHi; slow++ {
			if fast < slow {
				combos = append(combos, Combo{FastWindow: fast, SlowWindow: slow})
			}
		}
	}
	return combos
}

// SweepResult is the outcome of one combo. Err is set when the combo could
// not be evaluated (e.g. the series is shorter than the slow window); Result
// and Report are only valid when Err is nil.
type SweepResult struct {
	Combo
	Result *Result
	Report perf.Report
	Err    error
}

// Sweep runs one full generate-and-backtest pipeline per combo. Runs share
// nothing but the read-only price series, so they execute concurrently on a
// bounded worker pool. Results are returned ranked by Sharpe ratio, best
// first, with failed combos at the end.
func Sweep(
	ctx context.Context,
	prices domain.PriceSeries,
	combos []Combo,
	allowShort bool,
	cfg Config,
	opts perf.Options,
	maxWorkers int,
) []SweepResult {
	results := make([]SweepResult, len(combos))

	workCh := make(chan int, len(combos))
	for i := range combos {
		workCh <- i
	}
	close(workCh)

	workers := maxWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(combos) {
		workers = len(combos)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				if ctx.Err() != nil {
					results[i] = SweepResult{Combo: combos[i], Err: ctx.Err()}
					continue
				}
				results[i] = runCombo(prices, combos[i], allowShort, cfg, opts)
			}
		}()
	}
	wg.Wait()

	sort.SliceStable(results, func(a, b int) bool {
		ra, rb := results[a], results[b]
		if (ra.Err == nil) != (rb.Err == nil) {
			return ra.Err == nil
		}
		if ra.Err == nil && ra.Report.Sharpe != rb.Report.Sharpe {
			return ra.Report.Sharpe > rb.Report.Sharpe
		}
		if ra.FastWindow != rb.FastWindow {
			return ra.FastWindow < rb.FastWindow
		}
		return ra.SlowWindow < rb.SlowWindow
	})
	return results
}

func runCombo(prices domain.PriceSeries, c Combo, allowShort bool, cfg Config, opts perf.Options) SweepResult {
	out := SweepResult{Combo: c}

	strat, err := builtins.NewSMACross(c.FastWindow, c.SlowWindow, allowShort)
	if err != nil {
		out.Err = err
		return out
	}

	signals, err := strat.Generate(prices)
	if err != nil {
		out.Err = err
		return out
	}

	result, err := Run(prices, signals, cfg)
	if err != nil {
		out.Err = err
		return out
	}

	report, err := perf.Evaluate(result.Equity, opts)
	if err != nil {
		out.Err = err
		return out
	}

	out.Result = result
	out.Report = report
	return out
}
