// Package builtins provides the built-in strategy implementations that ship
// with macross.
package builtins

import (
	"fmt"

	"macross/internal/domain"
	"macross/internal/indicator"
	"macross/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*SMACross)(nil)

// SMACross implements a simple moving average crossover strategy. It goes
// long when the fast SMA is above the slow SMA and short (or flat, when
// shorting is disabled) when it is below. On an exact tie the previous
// position is carried forward to avoid churn.
type SMACross struct {
	fastWindow int
	slowWindow int
	allowShort bool
}

// NewSMACross creates an SMACross strategy. It returns ErrInvalidParameter
// unless fastWindow >= 1 and slowWindow > fastWindow.
func NewSMACross(fastWindow, slowWindow int, allowShort bool) (*SMACross, error) {
	if fastWindow < 1 {
		return nil, fmt.Errorf("%w: fast window %d must be >= 1", domain.ErrInvalidParameter, fastWindow)
	}
	if slowWindow <= fastWindow {
		return nil, fmt.Errorf("%w: slow window %d must be greater than fast window %d",
			domain.ErrInvalidParameter, slowWindow, fastWindow)
	}
	return &SMACross{
		fastWindow: fastWindow,
		slowWindow: slowWindow,
		allowShort: allowShort,
	}, nil
}

// Name returns "sma-cross".
func (s *SMACross) Name() string {
	return "sma-cross"
}

// Windows returns the configured fast and slow window lengths.
func (s *SMACross) Windows() (fast, slow int) {
	return s.fastWindow, s.slowWindow
}

// Generate computes the crossover signal series for the price series. Both
// averages use trailing windows ending at the current index, so the output
// never looks ahead. Indices where the slow average is still undefined are
// flat. It returns ErrInsufficientData when the series is shorter than the
// slow window.
func (s *SMACross) Generate(prices domain.PriceSeries) (domain.Signals, error) {
	if prices.Len() < s.slowWindow {
		return nil, fmt.Errorf("%w: slow window %d, series length %d",
			domain.ErrInsufficientData, s.slowWindow, prices.Len())
	}

	closes := prices.Closes()
	fast, err := indicator.SMA(closes, s.fastWindow)
	if err != nil {
		return nil, fmt.Errorf("fast SMA: %w", err)
	}
	slow, err := indicator.SMA(closes, s.slowWindow)
	if err != nil {
		return nil, fmt.Errorf("slow SMA: %w", err)
	}

	signals := make(domain.Signals, prices.Len())
	prev := domain.PositionFlat
	for i := range closes {
		if !indicator.Defined(slow[i]) {
			signals[i] = domain.PositionFlat
			prev = domain.PositionFlat
			continue
		}

		var sig domain.Position
		switch {
		case fast[i] > slow[i]:
			sig = domain.PositionLong
		case fast[i] < slow[i]:
			sig = domain.PositionShort
			if !s.allowShort {
				sig = domain.PositionFlat
			}
		default:
			// Exact tie: keep the prior position.
			sig = prev
		}
		signals[i] = sig
		prev = sig
	}
	return signals, nil
}
