// Package backtest replays a position signal series against historical
// prices and produces an equity curve plus a trade log. The simulation is a
// single-threaded pass over immutable inputs; the engine holds no state
// between runs.
package backtest

import (
	"fmt"

	"github.com/google/uuid"

	"macross/internal/domain"
)

// Config holds the simulation parameters for one run.
type Config struct {
	InitialCapital     float64
	TransactionCostBps float64
}

// Result is the output of one backtest run. Equity is aligned 1:1 with the
// input price series and Equity[0] equals the initial capital.
type Result struct {
	RunID  string
	Equity domain.EquityCurve
	Trades []domain.Trade
}

// Run simulates holding the signalled positions through the price series.
//
// Each period's return is taken with the exposure of the *previous* period's
// signal, so a signal generated at bar i only earns from bar i+1 onward (no
// lookahead). When the position changes entering a period, a transaction
// cost of TransactionCostBps of the prior capital is deducted once per
// change.
func Run(prices domain.PriceSeries, signals domain.Signals, cfg Config) (*Result, error) {
	n := prices.Len()
	if n == 0 {
		return nil, fmt.Errorf("%w: empty price series", domain.ErrInsufficientData)
	}
	if len(signals) != n {
		return nil, fmt.Errorf("%w: %d prices, %d signals", domain.ErrMisalignedSeries, n, len(signals))
	}
	if cfg.InitialCapital <= 0 {
		return nil, fmt.Errorf("%w: initial capital %v must be positive",
			domain.ErrInvalidParameter, cfg.InitialCapital)
	}
	if cfg.TransactionCostBps < 0 {
		return nil, fmt.Errorf("%w: transaction cost %v bps must be non-negative",
			domain.ErrInvalidParameter, cfg.TransactionCostBps)
	}
	for i := 0; i < n; i++ {
		if prices.Close(i) <= 0 {
			return nil, fmt.Errorf("%w: close %v at index %d", domain.ErrInvalidPrice, prices.Close(i), i)
		}
	}

	costRate := cfg.TransactionCostBps / 10000

	equity := make(domain.EquityCurve, n)
	equity[0] = cfg.InitialCapital

	var trades []domain.Trade
	for i := 1; i < n; i++ {
		prevClose := prices.Close(i - 1)
		r := (prices.Close(i) - prevClose) / prevClose

		c := equity[i-1] * (1 + signals[i-1].Exposure()*r)
		if i >= 2 && signals[i-1] != signals[i-2] {
			c -= costRate * equity[i-1]
		}
		equity[i] = c

		if signals[i] != signals[i-1] {
			trades = append(trades, domain.Trade{
				Index:     i,
				Timestamp: prices.Timestamp(i),
				From:      signals[i-1],
				To:        signals[i],
				Price:     prices.Close(i),
			})
		}
	}

	return &Result{
		RunID:  uuid.NewString(),
		Equity: equity,
		Trades: trades,
	}, nil
}
