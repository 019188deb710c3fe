package domain

import (
	"errors"
	"testing"
	"time"
)

func dayBars(closes ...float64) []Bar {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]Bar, len(closes))
	for i, c := range closes {
		bars[i] = Bar{Timestamp: base.AddDate(0, 0, i), Close: c}
	}
	return bars
}

func TestNewPriceSeries(t *testing.T) {
	s, err := NewPriceSeries(dayBars(100, 101, 102))
	if err != nil {
		t.Fatalf("NewPriceSeries: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	if s.Close(1) != 101 {
		t.Errorf("Close(1) = %v, want 101", s.Close(1))
	}
	if got := s.Closes(); len(got) != 3 || got[2] != 102 {
		t.Errorf("Closes() = %v, want [100 101 102]", got)
	}
}

func TestNewPriceSeriesCopiesInput(t *testing.T) {
	bars := dayBars(100, 101)
	s, err := NewPriceSeries(bars)
	if err != nil {
		t.Fatalf("NewPriceSeries: %v", err)
	}
	bars[0].Close = 1
	if s.Close(0) != 100 {
		t.Errorf("series mutated through caller slice: Close(0) = %v, want 100", s.Close(0))
	}
}

func TestNewPriceSeriesRejectsNonPositiveClose(t *testing.T) {
	for _, close := range []float64{0, -5} {
		_, err := NewPriceSeries(dayBars(100, close))
		if !errors.Is(err, ErrInvalidPrice) {
			t.Errorf("close=%v: err = %v, want ErrInvalidPrice", close, err)
		}
	}
}

func TestNewPriceSeriesRejectsUnorderedTimestamps(t *testing.T) {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	cases := map[string][]Bar{
		"duplicate": {
			{Timestamp: base, Close: 100},
			{Timestamp: base, Close: 101},
		},
		"descending": {
			{Timestamp: base.AddDate(0, 0, 1), Close: 100},
			{Timestamp: base, Close: 101},
		},
	}
	for name, bars := range cases {
		if _, err := NewPriceSeries(bars); !errors.Is(err, ErrUnorderedSeries) {
			t.Errorf("%s: err = %v, want ErrUnorderedSeries", name, err)
		}
	}
}

func TestPositionExposure(t *testing.T) {
	if PositionLong.Exposure() != 1 || PositionShort.Exposure() != -1 || PositionFlat.Exposure() != 0 {
		t.Error("Exposure() mapping is wrong")
	}
	if PositionLong.String() != "LONG" || PositionShort.String() != "SHORT" || PositionFlat.String() != "FLAT" {
		t.Error("String() mapping is wrong")
	}
}

func TestSignalsChanges(t *testing.T) {
	s := Signals{PositionFlat, PositionFlat, PositionLong, PositionLong, PositionShort}
	if got := s.Changes(); got != 2 {
		t.Errorf("Changes() = %d, want 2", got)
	}
	if got := Signals(nil).Changes(); got != 0 {
		t.Errorf("Changes() on nil = %d, want 0", got)
	}
}
