// Package perf evaluates equity curves produced by the backtest engine and
// computes summary performance metrics: total and annualized return,
// annualized volatility, Sharpe and Sortino ratios, max drawdown, and, when
// a benchmark curve is supplied, regression Alpha and Beta.
package perf

import (
	"fmt"
	"math"

	"macross/internal/domain"
)

// DefaultPeriodsPerYear assumes daily bars on a US equity trading calendar.
const DefaultPeriodsPerYear = 252

// Options controls annualization and the risk-free rate used for excess
// returns. Zero values fall back to defaults (252 periods, 0% risk-free).
type Options struct {
	PeriodsPerYear int
	RiskFreeRate   float64 // annual, e.g. 0.04 for 4%
}

func (o Options) withDefaults() Options {
	if o.PeriodsPerYear <= 0 {
		o.PeriodsPerYear = DefaultPeriodsPerYear
	}
	return o
}

// Report holds the computed metrics for one equity curve. Alpha and Beta are
// only meaningful when HasBenchmark is set.
type Report struct {
	TotalReturn          float64
	AnnualizedReturn     float64
	AnnualizedVolatility float64
	Sharpe               float64
	Sortino              float64
	MaxDrawdown          float64

	Alpha        float64
	Beta         float64
	HasBenchmark bool
}

// Map returns the report as a mapping of metric name to value.
func (r Report) Map() map[string]float64 {
	m := map[string]float64{
		"total_return":          r.TotalReturn,
		"annualized_return":     r.AnnualizedReturn,
		"annualized_volatility": r.AnnualizedVolatility,
		"sharpe":                r.Sharpe,
		"sortino":               r.Sortino,
		"max_drawdown":          r.MaxDrawdown,
	}
	if r.HasBenchmark {
		m["alpha"] = r.Alpha
		m["beta"] = r.Beta
	}
	return m
}

// Evaluate computes metrics for the equity curve. It returns
// ErrInsufficientData for curves with fewer than two points.
func Evaluate(equity domain.EquityCurve, opts Options) (Report, error) {
	opts = opts.withDefaults()

	returns, err := PeriodReturns(equity)
	if err != nil {
		return Report{}, err
	}

	ppy := float64(opts.PeriodsPerYear)
	rfPeriod := opts.RiskFreeRate / ppy

	mean := meanOf(returns)
	sd := sampleStdev(returns, mean)

	rep := Report{
		TotalReturn:          equity.TotalReturn(),
		AnnualizedReturn:     annualizedReturn(equity, len(returns), ppy),
		AnnualizedVolatility: sd * math.Sqrt(ppy),
		MaxDrawdown:          MaxDrawdown(equity),
	}
	if sd > 0 {
		rep.Sharpe = (mean - rfPeriod) / sd * math.Sqrt(ppy)
	}
	if dd := downsideDeviation(returns, rfPeriod); dd > 0 {
		rep.Sortino = (mean - rfPeriod) / dd * math.Sqrt(ppy)
	}
	return rep, nil
}

// EvaluateWithBenchmark computes the same metrics as Evaluate plus Alpha and
// Beta from an ordinary least squares regression of strategy period returns
// against benchmark period returns. The two curves must be aligned to the
// same price series; mismatched lengths return ErrMisalignedSeries. Alpha is
// the per-period regression intercept scaled to an annual figure.
func EvaluateWithBenchmark(equity, benchmark domain.EquityCurve, opts Options) (Report, error) {
	if len(equity) != len(benchmark) {
		return Report{}, fmt.Errorf("%w: equity %d, benchmark %d",
			domain.ErrMisalignedSeries, len(equity), len(benchmark))
	}

	rep, err := Evaluate(equity, opts)
	if err != nil {
		return Report{}, err
	}

	rs, err := PeriodReturns(equity)
	if err != nil {
		return Report{}, err
	}
	rb, err := PeriodReturns(benchmark)
	if err != nil {
		return Report{}, err
	}

	opts = opts.withDefaults()
	ppy := float64(opts.PeriodsPerYear)
	rfPeriod := opts.RiskFreeRate / ppy

	meanS := meanOf(rs)
	meanB := meanOf(rb)

	var cov, varB float64
	for i := range rs {
		cov += (rs[i] - meanS) * (rb[i] - meanB)
		varB += (rb[i] - meanB) * (rb[i] - meanB)
	}

	rep.HasBenchmark = true
	if varB > 0 {
		rep.Beta = cov / varB
	}
	alphaPeriod := (meanS - rfPeriod) - rep.Beta*(meanB-rfPeriod)
	rep.Alpha = alphaPeriod * ppy
	return rep, nil
}

// PeriodReturns computes simple per-period returns of the curve. It returns
// ErrInsufficientData for fewer than two points and ErrInvalidPrice if the
// curve touches zero (the following return would be undefined).
func PeriodReturns(equity domain.EquityCurve) ([]float64, error) {
	if len(equity) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 equity points, have %d",
			domain.ErrInsufficientData, len(equity))
	}
	out := make([]float64, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			return nil, fmt.Errorf("%w: equity is zero at index %d", domain.ErrInvalidPrice, i-1)
		}
		out[i-1] = equity[i]/equity[i-1] - 1
	}
	return out, nil
}

// MaxDrawdown returns the largest peak-to-trough decline of the curve as a
// positive fraction of the peak (0.25 means a 25% drawdown).
func MaxDrawdown(equity domain.EquityCurve) float64 {
	var peak, maxDD float64
	for _, v := range equity {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

func annualizedReturn(equity domain.EquityCurve, periods int, ppy float64) float64 {
	if periods == 0 || equity[0] == 0 {
		return 0
	}
	ratio := equity[len(equity)-1] / equity[0]
	if ratio <= 0 {
		return -1
	}
	return math.Pow(ratio, ppy/float64(periods)) - 1
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdev is the n-1 standard deviation; it returns 0 for fewer than two
// samples.
func sampleStdev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var ss float64
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// downsideDeviation penalizes only returns below the target rate.
func downsideDeviation(values []float64, target float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var ss float64
	for _, v := range values {
		if d := v - target; d < 0 {
			ss += d * d
		}
	}
	return math.Sqrt(ss / float64(len(values)))
}
