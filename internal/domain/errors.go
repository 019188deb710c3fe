package domain

import "errors"

// Boundary errors. Each component validates its inputs and surfaces one of
// these immediately; no partial results are returned.
var (
	// ErrInsufficientData is returned when a series is shorter than the
	// window sizes require.
	ErrInsufficientData = errors.New("insufficient data for requested window")

	// ErrInvalidParameter is returned for non-positive windows, fast >= slow,
	// non-positive capital, or negative transaction cost.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidPrice is returned for a missing or non-positive price value.
	ErrInvalidPrice = errors.New("invalid price")

	// ErrMisalignedSeries is returned when a price series and a signal series
	// have different lengths.
	ErrMisalignedSeries = errors.New("misaligned series lengths")

	// ErrUnorderedSeries is returned when bar timestamps are not strictly
	// increasing.
	ErrUnorderedSeries = errors.New("series timestamps not strictly increasing")
)
