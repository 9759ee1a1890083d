package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"backtestd/types"
)

type stubSource struct {
	candles []types.Candle
	err     error
}

func (s stubSource) Fetch(_ context.Context) ([]types.Candle, error) {
	return s.candles, s.err
}

func (s stubSource) Name() string { return "stub" }

func bar(instrument string, segment types.Segment, ts time.Time, open, high, low, close float64) types.Candle {
	return types.Candle{
		Instrument: instrument,
		Segment:    segment,
		Timestamp:  ts,
		Open:       decimal.NewFromFloat(open),
		High:       decimal.NewFromFloat(high),
		Low:        decimal.NewFromFloat(low),
		Close:      decimal.NewFromFloat(close),
		Volume:     100,
	}
}

func TestStore_LoadAndGet(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 9, 15, 0, 0, time.UTC)
	// Delivered out of order on purpose; the store must sort.
	candles := []types.Candle{
		bar("NIFTY", types.FiveMinutes, t0.Add(10*time.Minute), 102, 104, 101, 103),
		bar("NIFTY", types.FiveMinutes, t0, 100, 102, 99, 101),
		bar("NIFTY", types.FiveMinutes, t0.Add(5*time.Minute), 101, 103, 100, 102),
		bar("BANKNIFTY", types.FiveMinutes, t0, 200, 202, 199, 201),
	}

	s := New()
	if err := s.Load(context.Background(), stubSource{candles: candles}); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got, err := s.Get("NIFTY", types.FiveMinutes)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Get() len = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if !got[i].Timestamp.After(got[i-1].Timestamp) {
			t.Errorf("series not strictly increasing at %d: %s then %s", i, got[i-1].Timestamp, got[i].Timestamp)
		}
	}

	if len(s.Keys()) != 2 {
		t.Errorf("Keys() len = %d, want 2", len(s.Keys()))
	}
}

func TestStore_GetUnknownKey(t *testing.T) {
	s := New()
	if err := s.Load(context.Background(), stubSource{}); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	_, err := s.Get("UNKNOWN", types.Day)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestStore_LoadRejectsMalformedData(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		candles []types.Candle
	}{
		{
			name: "duplicate timestamps",
			candles: []types.Candle{
				bar("NIFTY", types.Day, t0, 100, 102, 99, 101),
				bar("NIFTY", types.Day, t0, 101, 103, 100, 102),
			},
		},
		{
			name: "high below close",
			candles: []types.Candle{
				bar("NIFTY", types.Day, t0, 100, 100, 99, 105),
			},
		},
		{
			name: "low above open",
			candles: []types.Candle{
				bar("NIFTY", types.Day, t0, 100, 106, 101, 105),
			},
		},
		{
			name: "missing instrument",
			candles: []types.Candle{
				bar("", types.Day, t0, 100, 102, 99, 101),
			},
		},
		{
			name: "unknown segment",
			candles: []types.Candle{
				bar("NIFTY", types.Segment("99"), t0, 100, 102, 99, 101),
			},
		},
		{
			name: "zero timestamp",
			candles: []types.Candle{
				bar("NIFTY", types.Day, time.Time{}, 100, 102, 99, 101),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			err := s.Load(context.Background(), stubSource{candles: tt.candles})
			if !errors.Is(err, ErrDataLoad) {
				t.Errorf("Load() error = %v, want ErrDataLoad", err)
			}
		})
	}
}

func TestStore_LoadPropagatesSourceFailure(t *testing.T) {
	s := New()
	wantErr := errors.New("connection refused")
	err := s.Load(context.Background(), stubSource{err: wantErr})
	if !errors.Is(err, wantErr) {
		t.Errorf("Load() error = %v, want wrapped %v", err, wantErr)
	}
}

func TestStore_LoadIsOneShot(t *testing.T) {
	s := New()
	if err := s.Load(context.Background(), stubSource{}); err != nil {
		t.Fatalf("first Load() error = %v", err)
	}
	if err := s.Load(context.Background(), stubSource{}); !errors.Is(err, ErrDataLoad) {
		t.Errorf("second Load() error = %v, want ErrDataLoad", err)
	}
}

func TestStore_FailedLoadLeavesNothingBehind(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	good := bar("NIFTY", types.Day, t0, 100, 102, 99, 101)
	broken := bar("NIFTY", types.Day, t0.Add(24*time.Hour), 100, 100, 99, 105)

	s := New()
	if err := s.Load(context.Background(), stubSource{candles: []types.Candle{good, broken}}); !errors.Is(err, ErrDataLoad) {
		t.Fatalf("Load() error = %v, want ErrDataLoad", err)
	}
	if _, err := s.Get("NIFTY", types.Day); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after failed load error = %v, want ErrNotFound", err)
	}

	// A retry with clean data serves exactly that data.
	if err := s.Load(context.Background(), stubSource{candles: []types.Candle{good}}); err != nil {
		t.Fatalf("retry Load() error = %v", err)
	}
	got, err := s.Get("NIFTY", types.Day)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("series len = %d, want 1", len(got))
	}
}

func TestStore_LoadMergesSources(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	first := stubSource{candles: []types.Candle{bar("NIFTY", types.Day, t0, 100, 102, 99, 101)}}
	second := stubSource{candles: []types.Candle{bar("NIFTY", types.Day, t0.Add(24*time.Hour), 101, 104, 100, 103)}}

	s := New()
	if err := s.Load(context.Background(), first, second); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got, err := s.Get("NIFTY", types.Day)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("merged series len = %d, want 2", len(got))
	}
}
