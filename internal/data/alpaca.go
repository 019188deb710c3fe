package data

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"golang.org/x/time/rate"

	"macross/internal/domain"
	"macross/internal/util"
)

const (
	fetchBaseDelay = 500 * time.Millisecond

	// dateLayout is the wire format for start/end dates.
	dateLayout = "2006-01-02"
)

// Fetcher downloads daily OHLCV bars for a single symbol from the Alpaca
// market-data API, with client-side rate limiting and retries.
type Fetcher struct {
	client      *marketdata.Client
	limiter     *rate.Limiter
	maxAttempts int
	log         *slog.Logger
}

// NewFetcher creates a Fetcher configured with the given Alpaca credentials.
// ratePerMin bounds outgoing requests; maxAttempts bounds retries per call.
func NewFetcher(apiKey, apiSecret, dataURL string, ratePerMin, maxAttempts int) *Fetcher {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	if ratePerMin <= 0 {
		ratePerMin = 200
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	return &Fetcher{
		client:      marketdata.NewClient(opts),
		limiter:     rate.NewLimiter(rate.Limit(float64(ratePerMin)/60.0), 1),
		maxAttempts: maxAttempts,
		log:         slog.Default().With("component", "fetcher"),
	}
}

// FetchDailyBars downloads daily bars for the symbol between startDate and
// endDate (inclusive, YYYY-MM-DD). The symbol must be uppercase and the
// start date must precede the end date; violations fail with
// ErrInvalidParameter before any network call.
func (f *Fetcher) FetchDailyBars(ctx context.Context, symbol, startDate, endDate string) ([]domain.Bar, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	start, end, err := ValidateDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	f.log.Info("fetching daily bars", "symbol", symbol, "start", startDate, "end", endDate)

	var alpacaBars []marketdata.Bar
	err = util.Retry(ctx, f.maxAttempts, fetchBaseDelay, func() error {
		var ferr error
		alpacaBars, ferr = f.client.GetBars(symbol, marketdata.GetBarsRequest{
			TimeFrame: marketdata.OneDay,
			Start:     start,
			End:       end,
		})
		return ferr
	})
	if err != nil {
		return nil, fmt.Errorf("GetBars %s: %w", symbol, err)
	}

	bars := make([]domain.Bar, 0, len(alpacaBars))
	for _, ab := range alpacaBars {
		bars = append(bars, domain.Bar{
			Timestamp: ab.Timestamp.UTC(),
			Open:      ab.Open,
			High:      ab.High,
			Low:       ab.Low,
			Close:     ab.Close,
			Volume:    int64(ab.Volume),
		})
	}

	f.log.Info("fetched daily bars", "symbol", symbol, "bars", len(bars))
	return bars, nil
}

// ValidateSymbol checks that the ticker symbol is non-empty and uppercase.
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("%w: empty symbol", domain.ErrInvalidParameter)
	}
	if symbol != strings.ToUpper(symbol) {
		return fmt.Errorf("%w: symbol %q must be uppercase", domain.ErrInvalidParameter, symbol)
	}
	return nil
}

// ValidateDateRange parses startDate and endDate (YYYY-MM-DD) and checks
// that the start precedes the end.
func ValidateDateRange(startDate, endDate string) (start, end time.Time, err error) {
	start, err = time.Parse(dateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start date %q must be YYYY-MM-DD",
			domain.ErrInvalidParameter, startDate)
	}
	end, err = time.Parse(dateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end date %q must be YYYY-MM-DD",
			domain.ErrInvalidParameter, endDate)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start date %s must be earlier than end date %s",
			domain.ErrInvalidParameter, startDate, endDate)
	}
	return start, end, nil
}
