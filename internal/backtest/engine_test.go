package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macross/internal/domain"
	"macross/internal/strategy/builtins"
)

func series(t *testing.T, closes ...float64) domain.PriceSeries {
	t.Helper()
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, len(closes))
	for i, c := range closes {
		bars[i] = domain.Bar{Timestamp: base.AddDate(0, 0, i), Close: c}
	}
	s, err := domain.NewPriceSeries(bars)
	require.NoError(t, err)
	return s
}

func flatSignals(n int) domain.Signals {
	return make(domain.Signals, n)
}

func TestRunValidation(t *testing.T) {
	prices := series(t, 100, 101, 102)
	okCfg := Config{InitialCapital: 100}

	_, err := Run(domain.PriceSeries{}, nil, okCfg)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)

	_, err = Run(prices, flatSignals(2), okCfg)
	assert.ErrorIs(t, err, domain.ErrMisalignedSeries)

	_, err = Run(prices, flatSignals(3), Config{InitialCapital: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)

	_, err = Run(prices, flatSignals(3), Config{InitialCapital: 100, TransactionCostBps: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestRunFlatSignalsKeepCapital(t *testing.T) {
	prices := series(t, 100, 100, 100, 100, 100)
	res, err := Run(prices, flatSignals(5), Config{InitialCapital: 1000})
	require.NoError(t, err)

	require.Len(t, res.Equity, prices.Len())
	assert.Equal(t, 1000.0, res.Equity[0])
	for i, v := range res.Equity {
		assert.Equalf(t, 1000.0, v, "equity[%d]", i)
	}
	assert.Empty(t, res.Trades)
	assert.NotEmpty(t, res.RunID)
}

func TestRunUptrendLongGains(t *testing.T) {
	prices := series(t, 100, 101, 102, 103, 104, 105, 106, 107)
	strat, err := builtins.NewSMACross(2, 4, true)
	require.NoError(t, err)
	signals, err := strat.Generate(prices)
	require.NoError(t, err)

	res, err := Run(prices, signals, Config{InitialCapital: 100})
	require.NoError(t, err)

	require.Len(t, res.Equity, prices.Len())
	assert.Equal(t, 100.0, res.Equity[0])
	// The long signal starts at index 3 and earns from index 4 onward.
	for i := 1; i <= 4; i++ {
		assert.Equalf(t, 100.0, res.Equity[i-1], "equity[%d]", i-1)
	}
	for i := 4; i < prices.Len(); i++ {
		assert.Greaterf(t, res.Equity[i], res.Equity[i-1], "equity[%d] should rise", i)
	}
}

func TestRunShortGainsInDecline(t *testing.T) {
	prices := series(t, 100, 100, 100, 100, 100, 98, 96, 94, 92, 90)
	strat, err := builtins.NewSMACross(2, 4, true)
	require.NoError(t, err)
	signals, err := strat.Generate(prices)
	require.NoError(t, err)

	res, err := Run(prices, signals, Config{InitialCapital: 100})
	require.NoError(t, err)

	// Flat until the crossover, then short earns through the decline.
	for i := 0; i <= 5; i++ {
		assert.Equalf(t, 100.0, res.Equity[i], "equity[%d]", i)
	}
	for i := 6; i < prices.Len(); i++ {
		assert.Greaterf(t, res.Equity[i], res.Equity[i-1], "equity[%d] should rise while short", i)
	}

	require.Len(t, res.Trades, 1)
	trade := res.Trades[0]
	assert.Equal(t, 5, trade.Index)
	assert.Equal(t, domain.PositionFlat, trade.From)
	assert.Equal(t, domain.PositionShort, trade.To)
	assert.Equal(t, 98.0, trade.Price)
}

func TestRunTransactionCostSingleFlip(t *testing.T) {
	// Constant prices isolate the cost: returns contribute nothing.
	prices := series(t, 100, 100, 100, 100, 100, 100)
	signals := domain.Signals{
		domain.PositionFlat, domain.PositionFlat,
		domain.PositionLong, domain.PositionLong, domain.PositionLong, domain.PositionLong,
	}

	free, err := Run(prices, signals, Config{InitialCapital: 100})
	require.NoError(t, err)
	costly, err := Run(prices, signals, Config{InitialCapital: 100, TransactionCostBps: 100})
	require.NoError(t, err)

	// Identical before the position change takes effect.
	for i := 0; i <= 2; i++ {
		assert.Equalf(t, free.Equity[i], costly.Equity[i], "equity[%d]", i)
	}
	// Exactly one 1% deduction where the flip enters.
	assert.InDelta(t, free.Equity[3]-0.01*costly.Equity[2], costly.Equity[3], 1e-12)
	assert.InDelta(t, 99.0, costly.Equity[3], 1e-12)
	// No further deductions.
	assert.InDelta(t, 99.0, costly.Equity[4], 1e-12)
	assert.InDelta(t, 99.0, costly.Equity[5], 1e-12)
}

func TestRunIdempotent(t *testing.T) {
	prices := series(t, 100, 103, 99, 104, 98, 105)
	signals := domain.Signals{
		domain.PositionFlat, domain.PositionLong, domain.PositionLong,
		domain.PositionShort, domain.PositionShort, domain.PositionFlat,
	}
	cfg := Config{InitialCapital: 250, TransactionCostBps: 10}

	first, err := Run(prices, signals, cfg)
	require.NoError(t, err)
	second, err := Run(prices, signals, cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Equity, second.Equity)
	assert.Equal(t, first.Trades, second.Trades)
	// Run IDs identify individual runs and must differ.
	assert.NotEqual(t, first.RunID, second.RunID)
}
