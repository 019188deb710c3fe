// Package domain defines the core value types shared across the macross
// pipeline: price bars, price series, position signals, trade events, and
// equity curves. All of them are immutable once constructed.
package domain

import "time"

// Bar is a single OHLCV observation for one trading period.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Position is the directional state held during a period.
type Position int8

const (
	PositionShort Position = -1
	PositionFlat  Position = 0
	PositionLong  Position = 1
)

// Exposure returns the multiplier applied to period returns: +1 long,
// -1 short, 0 flat.
func (p Position) Exposure() float64 {
	return float64(p)
}

// String returns the human-readable name of the position.
func (p Position) String() string {
	switch p {
	case PositionShort:
		return "SHORT"
	case PositionLong:
		return "LONG"
	default:
		return "FLAT"
	}
}

// Signals is a position series aligned 1:1 with a PriceSeries. Signals[i]
// depends only on prices[0..i].
type Signals []Position

// Changes counts the number of position changes between consecutive indices.
func (s Signals) Changes() int {
	n := 0
	for i := 1; i < len(s); i++ {
		if s[i] != s[i-1] {
			n++
		}
	}
	return n
}

// Trade is a trade-log event recorded when the position changes between
// consecutive indices.
type Trade struct {
	Index     int
	Timestamp time.Time
	From      Position
	To        Position
	Price     float64
}

// EquityCurve is the cumulative portfolio value aligned to a PriceSeries.
// The first element always equals the initial capital.
type EquityCurve []float64

// TotalReturn returns the fractional return of the curve end over start.
func (e EquityCurve) TotalReturn() float64 {
	if len(e) == 0 || e[0] == 0 {
		return 0
	}
	return e[len(e)-1]/e[0] - 1
}
