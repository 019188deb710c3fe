// Package data is the market-data collaborator: it loads price series from
// CSV files, downloads daily bars from the Alpaca market-data API, and
// caches downloaded bars locally in Parquet files or a SQLite database.
package data

import (
	"context"
	"time"

	"macross/internal/domain"
)

// BarCache caches downloaded daily bars per symbol so repeated backtests do
// not refetch them.
type BarCache interface {
	// WriteBars persists a batch of bars for the symbol, merging with any
	// bars already cached (dedup by timestamp, newest write wins).
	WriteBars(ctx context.Context, symbol string, bars []domain.Bar) error

	// ReadBars returns cached bars for the symbol within [start, end],
	// sorted ascending by timestamp.
	ReadBars(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)

	// ListSymbols returns all distinct symbols present in the cache.
	ListSymbols(ctx context.Context) ([]string, error)
}
