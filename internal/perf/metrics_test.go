package perf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macross/internal/domain"
)

func TestEvaluateFlatCurve(t *testing.T) {
	rep, err := Evaluate(domain.EquityCurve{100, 100, 100, 100}, Options{})
	require.NoError(t, err)

	assert.Zero(t, rep.TotalReturn)
	assert.Zero(t, rep.AnnualizedReturn)
	assert.Zero(t, rep.AnnualizedVolatility)
	assert.Zero(t, rep.Sharpe)
	assert.Zero(t, rep.Sortino)
	assert.Zero(t, rep.MaxDrawdown)
	assert.False(t, rep.HasBenchmark)
}

func TestEvaluateBasicStats(t *testing.T) {
	// Period returns: +10%, -10%.
	rep, err := Evaluate(domain.EquityCurve{100, 110, 99}, Options{})
	require.NoError(t, err)

	assert.InDelta(t, -0.01, rep.TotalReturn, 1e-12)
	assert.InDelta(t, 0.1, rep.MaxDrawdown, 1e-12)
	// Mean return is zero, so both risk-adjusted ratios are zero.
	assert.InDelta(t, 0, rep.Sharpe, 1e-12)
	assert.InDelta(t, 0, rep.Sortino, 1e-12)
	// Sample stdev of {0.1, -0.1} is sqrt(0.02), annualized by sqrt(252).
	assert.InDelta(t, math.Sqrt(0.02)*math.Sqrt(252), rep.AnnualizedVolatility, 1e-9)
}

func TestEvaluateSharpe(t *testing.T) {
	// Period returns: +2%, 0%.
	rep, err := Evaluate(domain.EquityCurve{100, 102, 102}, Options{})
	require.NoError(t, err)

	mean, sd := 0.01, math.Sqrt(0.0002)
	assert.InDelta(t, mean/sd*math.Sqrt(252), rep.Sharpe, 1e-9)
	// No returns below the zero target, so downside deviation is zero and
	// Sortino stays zero rather than blowing up.
	assert.Zero(t, rep.Sortino)
	assert.Positive(t, rep.AnnualizedReturn)
}

func TestEvaluateTooShort(t *testing.T) {
	_, err := Evaluate(domain.EquityCurve{100}, Options{})
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestMaxDrawdown(t *testing.T) {
	dd := MaxDrawdown(domain.EquityCurve{100, 120, 60, 90, 130})
	assert.InDelta(t, 0.5, dd, 1e-12)

	assert.Zero(t, MaxDrawdown(domain.EquityCurve{100, 110, 120}))
	assert.Zero(t, MaxDrawdown(nil))
}

func TestPeriodReturns(t *testing.T) {
	rs, err := PeriodReturns(domain.EquityCurve{100, 110, 99})
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.InDelta(t, 0.1, rs[0], 1e-12)
	assert.InDelta(t, -0.1, rs[1], 1e-12)

	_, err = PeriodReturns(domain.EquityCurve{100, 0, 50})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestEvaluateWithBenchmarkBeta(t *testing.T) {
	// Strategy returns are exactly twice the benchmark returns.
	benchmark := domain.EquityCurve{100, 110, 104.5} // +10%, -5%
	equity := domain.EquityCurve{100, 120, 108}      // +20%, -10%

	rep, err := EvaluateWithBenchmark(equity, benchmark, Options{})
	require.NoError(t, err)

	assert.True(t, rep.HasBenchmark)
	assert.InDelta(t, 2.0, rep.Beta, 1e-9)
	assert.InDelta(t, 0.0, rep.Alpha, 1e-9)
}

func TestEvaluateWithBenchmarkAlpha(t *testing.T) {
	// Strategy returns are the benchmark returns plus a constant 1% edge.
	benchmark := domain.EquityCurve{100, 110, 104.5} // +10%, -5%
	equity := domain.EquityCurve{100, 111, 106.56}   // +11%, -4%

	rep, err := EvaluateWithBenchmark(equity, benchmark, Options{})
	require.NoError(t, err)

	assert.InDelta(t, 1.0, rep.Beta, 1e-9)
	// Per-period alpha of 1%, annualized over 252 periods.
	assert.InDelta(t, 0.01*252, rep.Alpha, 1e-6)

	m := rep.Map()
	assert.Contains(t, m, "alpha")
	assert.Contains(t, m, "beta")
	assert.Contains(t, m, "sharpe")
	assert.Contains(t, m, "max_drawdown")
}

func TestEvaluateWithBenchmarkMisaligned(t *testing.T) {
	_, err := EvaluateWithBenchmark(
		domain.EquityCurve{100, 101, 102},
		domain.EquityCurve{100, 101},
		Options{},
	)
	assert.ErrorIs(t, err, domain.ErrMisalignedSeries)
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}.withDefaults()
	assert.Equal(t, DefaultPeriodsPerYear, opts.PeriodsPerYear)
}
