package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"macross/internal/domain"
)

// csvColumns is the required header of a price CSV, in order.
var csvColumns = []string{"date", "open", "high", "low", "close", "volume"}

// LoadCSV reads a price series from a CSV file with the schema
// `date,open,high,low,close,volume`, one row per trading period, dates in
// YYYY-MM-DD ascending, header row present. A missing or non-positive close
// fails with ErrInvalidPrice; out-of-order dates fail via the series
// constructor.
func LoadCSV(path string) (domain.PriceSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.PriceSeries{}, err
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses price CSV content from the reader. See LoadCSV for the
// expected schema.
func ReadCSV(r io.Reader) (domain.PriceSeries, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return domain.PriceSeries{}, fmt.Errorf("reading CSV header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return domain.PriceSeries{}, err
	}

	var bars []domain.Bar
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return domain.PriceSeries{}, fmt.Errorf("reading CSV line %d: %w", line, err)
		}

		bar, err := parseBar(record)
		if err != nil {
			return domain.PriceSeries{}, fmt.Errorf("CSV line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return domain.PriceSeries{}, fmt.Errorf("%w: CSV contains no data rows", domain.ErrInsufficientData)
	}
	return domain.NewPriceSeries(bars)
}

func checkHeader(header []string) error {
	if len(header) != len(csvColumns) {
		return fmt.Errorf("CSV header has %d columns, want %d (%s)",
			len(header), len(csvColumns), strings.Join(csvColumns, ","))
	}
	for i, want := range csvColumns {
		if strings.ToLower(strings.TrimSpace(header[i])) != want {
			return fmt.Errorf("CSV header column %d is %q, want %q", i+1, header[i], want)
		}
	}
	return nil
}

func parseBar(record []string) (domain.Bar, error) {
	if len(record) != len(csvColumns) {
		return domain.Bar{}, fmt.Errorf("row has %d columns, want %d", len(record), len(csvColumns))
	}

	ts, err := time.Parse("2006-01-02", strings.TrimSpace(record[0]))
	if err != nil {
		return domain.Bar{}, fmt.Errorf("parsing date %q: %w", record[0], err)
	}

	if strings.TrimSpace(record[4]) == "" {
		return domain.Bar{}, fmt.Errorf("%w: missing close", domain.ErrInvalidPrice)
	}

	open, err := parsePrice(record[1], "open")
	if err != nil {
		return domain.Bar{}, err
	}
	high, err := parsePrice(record[2], "high")
	if err != nil {
		return domain.Bar{}, err
	}
	low, err := parsePrice(record[3], "low")
	if err != nil {
		return domain.Bar{}, err
	}
	close, err := parsePrice(record[4], "close")
	if err != nil {
		return domain.Bar{}, err
	}

	var volume int64
	if v := strings.TrimSpace(record[5]); v != "" {
		volume, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return domain.Bar{}, fmt.Errorf("parsing volume %q: %w", record[5], err)
		}
	}

	return domain.Bar{
		Timestamp: ts.UTC(),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
		Volume:    volume,
	}, nil
}

// parsePrice parses an optional price column. Empty open/high/low values are
// tolerated (zero); close is checked by the caller and the series
// constructor.
func parsePrice(field, name string) (float64, error) {
	s := strings.TrimSpace(field)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s %q: %w", name, field, err)
	}
	return v, nil
}
