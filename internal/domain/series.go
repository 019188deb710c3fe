package domain

import (
	"fmt"
	"time"
)

// PriceSeries is an ordered, immutable sequence of bars with strictly
// increasing timestamps and positive close prices. Construct one with
// NewPriceSeries; the constructor copies its input, so callers cannot
// mutate the series afterwards.
type PriceSeries struct {
	bars []Bar
}

// NewPriceSeries validates and copies bars into a PriceSeries. It returns
// ErrUnorderedSeries if timestamps are not strictly increasing (duplicates
// included) and ErrInvalidPrice if any close is missing or non-positive.
func NewPriceSeries(bars []Bar) (PriceSeries, error) {
	for i, b := range bars {
		if b.Close <= 0 {
			return PriceSeries{}, fmt.Errorf("%w: close %v at index %d", ErrInvalidPrice, b.Close, i)
		}
		if i > 0 && !bars[i-1].Timestamp.Before(b.Timestamp) {
			return PriceSeries{}, fmt.Errorf("%w: index %d (%s) not after index %d (%s)",
				ErrUnorderedSeries, i, b.Timestamp.Format(time.RFC3339), i-1, bars[i-1].Timestamp.Format(time.RFC3339))
		}
	}

	cp := make([]Bar, len(bars))
	copy(cp, bars)
	return PriceSeries{bars: cp}, nil
}

// Len returns the number of bars in the series.
func (s PriceSeries) Len() int {
	return len(s.bars)
}

// At returns the bar at index i.
func (s PriceSeries) At(i int) Bar {
	return s.bars[i]
}

// Close returns the close price at index i.
func (s PriceSeries) Close(i int) float64 {
	return s.bars[i].Close
}

// Closes returns a copy of all close prices in order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.Close
	}
	return out
}

// Timestamp returns the timestamp of the bar at index i.
func (s PriceSeries) Timestamp(i int) time.Time {
	return s.bars[i].Timestamp
}
