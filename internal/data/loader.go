package data

import (
	"context"
	"fmt"
	"log/slog"

	"macross/internal/domain"
)

// BarFetcher downloads daily bars for a symbol and date range. Satisfied by
// *Fetcher.
type BarFetcher interface {
	FetchDailyBars(ctx context.Context, symbol, startDate, endDate string) ([]domain.Bar, error)
}

// Loader assembles price series cache-first: cached bars are used when
// present, otherwise bars are fetched and written back to the cache.
type Loader struct {
	cache   BarCache
	fetcher BarFetcher
	log     *slog.Logger
}

// NewLoader creates a Loader over the given cache and fetcher. The fetcher
// may be nil for offline, cache-only use.
func NewLoader(cache BarCache, fetcher BarFetcher) *Loader {
	return &Loader{
		cache:   cache,
		fetcher: fetcher,
		log:     slog.Default().With("component", "loader"),
	}
}

// Load returns the price series for the symbol between startDate and endDate
// (inclusive, YYYY-MM-DD). On a cache miss the range is fetched and cached.
func (l *Loader) Load(ctx context.Context, symbol, startDate, endDate string) (domain.PriceSeries, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return domain.PriceSeries{}, err
	}
	start, end, err := ValidateDateRange(startDate, endDate)
	if err != nil {
		return domain.PriceSeries{}, err
	}

	bars, err := l.cache.ReadBars(ctx, symbol, start, end)
	if err != nil {
		return domain.PriceSeries{}, fmt.Errorf("reading cache for %s: %w", symbol, err)
	}
	if len(bars) > 0 {
		l.log.Debug("cache hit", "symbol", symbol, "bars", len(bars))
		return domain.NewPriceSeries(bars)
	}

	if l.fetcher == nil {
		return domain.PriceSeries{}, fmt.Errorf("%w: no cached bars for %s and no fetcher configured",
			domain.ErrInsufficientData, symbol)
	}

	bars, err = l.fetcher.FetchDailyBars(ctx, symbol, startDate, endDate)
	if err != nil {
		return domain.PriceSeries{}, err
	}
	if len(bars) == 0 {
		return domain.PriceSeries{}, fmt.Errorf("%w: no bars available for %s in %s..%s",
			domain.ErrInsufficientData, symbol, startDate, endDate)
	}

	if err := l.cache.WriteBars(ctx, symbol, bars); err != nil {
		return domain.PriceSeries{}, fmt.Errorf("caching bars for %s: %w", symbol, err)
	}
	return domain.NewPriceSeries(bars)
}
