// Package indicator provides derived numeric series computed over price
// data. All indicators use trailing windows ending at the current index, so
// indicator[i] never depends on values after index i.
package indicator

import (
	"fmt"
	"math"

	"macross/internal/domain"
)

// SMA computes the trailing simple moving average of the values with the
// given window length. Output is aligned to the input; indices before
// window-1 are NaN (undefined). A rolling sum keeps the pass linear.
func SMA(values []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: window %d must be >= 1", domain.ErrInvalidParameter, window)
	}
	if len(values) < window {
		return nil, fmt.Errorf("%w: need %d values, have %d", domain.ErrInsufficientData, window, len(values))
	}

	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		} else {
			out[i] = math.NaN()
		}
	}
	return out, nil
}

// Defined reports whether the indicator value at index i is defined.
func Defined(v float64) bool {
	return !math.IsNaN(v)
}
