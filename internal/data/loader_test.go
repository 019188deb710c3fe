package data

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"macross/internal/domain"
)

// stubFetcher returns canned bars and records call counts.
type stubFetcher struct {
	bars  []domain.Bar
	err   error
	calls int
}

func (f *stubFetcher) FetchDailyBars(_ context.Context, _, _, _ string) ([]domain.Bar, error) {
	f.calls++
	return f.bars, f.err
}

func newTestLoader(t *testing.T, fetcher BarFetcher) (*Loader, BarCache) {
	t.Helper()
	cache := NewParquetCache(filepath.Join(t.TempDir(), "parquet"))
	return NewLoader(cache, fetcher), cache
}

func TestLoaderFetchesOnMissAndCaches(t *testing.T) {
	ctx := context.Background()
	fetcher := &stubFetcher{bars: testBars()}
	loader, cache := newTestLoader(t, fetcher)

	prices, err := loader.Load(ctx, "AAPL", "2024-01-01", "2024-12-31")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if prices.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", prices.Len())
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher called %d times, want 1", fetcher.calls)
	}

	// Bars must now be cached.
	cached, err := cache.ReadBars(ctx, "AAPL",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ReadBars: %v", err)
	}
	if len(cached) != 2 {
		t.Errorf("cache holds %d bars, want 2", len(cached))
	}

	// Second load is served from the cache without another fetch.
	if _, err := loader.Load(ctx, "AAPL", "2024-01-01", "2024-12-31"); err != nil {
		t.Fatalf("Load (second): %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher called %d times after cached load, want 1", fetcher.calls)
	}
}

func TestLoaderValidatesInputs(t *testing.T) {
	loader, _ := newTestLoader(t, &stubFetcher{})
	ctx := context.Background()

	cases := []struct {
		name, symbol, start, end string
	}{
		{"lowercase symbol", "aapl", "2024-01-01", "2024-12-31"},
		{"empty symbol", "", "2024-01-01", "2024-12-31"},
		{"bad start date", "AAPL", "01-01-2024", "2024-12-31"},
		{"start after end", "AAPL", "2024-12-31", "2024-01-01"},
		{"start equals end", "AAPL", "2024-06-01", "2024-06-01"},
	}
	for _, tc := range cases {
		_, err := loader.Load(ctx, tc.symbol, tc.start, tc.end)
		if !errors.Is(err, domain.ErrInvalidParameter) {
			t.Errorf("%s: err = %v, want ErrInvalidParameter", tc.name, err)
		}
	}
}

func TestLoaderNoFetcherCacheMiss(t *testing.T) {
	loader, _ := newTestLoader(t, nil)
	_, err := loader.Load(context.Background(), "AAPL", "2024-01-01", "2024-12-31")
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}

func TestLoaderFetcherError(t *testing.T) {
	wantErr := errors.New("upstream down")
	loader, _ := newTestLoader(t, &stubFetcher{err: wantErr})

	_, err := loader.Load(context.Background(), "AAPL", "2024-01-01", "2024-12-31")
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want wrapped fetcher error", err)
	}
}

func TestLoaderEmptyFetch(t *testing.T) {
	loader, _ := newTestLoader(t, &stubFetcher{})
	_, err := loader.Load(context.Background(), "AAPL", "2024-01-01", "2024-12-31")
	if !errors.Is(err, domain.ErrInsufficientData) {
		t.Errorf("err = %v, want ErrInsufficientData", err)
	}
}
