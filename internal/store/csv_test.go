package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"backtestd/types"
)

func writeDataset(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestCSVSource_Fetch(t *testing.T) {
	dir := writeDataset(t, "NIFTY_5.csv",
		"timestamp,open,high,low,close,volume\n"+
			"2024-01-01T09:15:00Z,100,102,99,101,1000\n"+
			"2024-01-01T09:20:00Z,101,103,100,102,1100\n")

	candles, err := NewCSVSource(dir).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("Fetch() len = %d, want 2", len(candles))
	}
	c := candles[0]
	if c.Instrument != "NIFTY" || c.Segment != types.FiveMinutes {
		t.Errorf("key = %s/%s, want NIFTY/5", c.Instrument, c.Segment)
	}
	if c.Open.String() != "100" || c.Close.String() != "101" || c.Volume != 1000 {
		t.Errorf("row parsed wrong: %+v", c)
	}
}

func TestCSVSource_UnixTimestamps(t *testing.T) {
	dir := writeDataset(t, "BANKNIFTY_D.csv",
		"1704067200,200,204,199,203,5000\n")

	candles, err := NewCSVSource(dir).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if candles[0].Timestamp.Unix() != 1704067200 {
		t.Errorf("timestamp = %v, want unix 1704067200", candles[0].Timestamp)
	}
}

func TestCSVSource_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"bad price", "NIFTY_5.csv", "2024-01-01T09:15:00Z,abc,102,99,101,1000\n"},
		{"bad volume", "NIFTY_5.csv", "2024-01-01T09:15:00Z,100,102,99,101,x\n"},
		{"bad timestamp", "NIFTY_5.csv", "not-a-time,100,102,99,101,1000\n"},
		{"missing columns", "NIFTY_5.csv", "2024-01-01T09:15:00Z,100,102\n"},
		{"bad filename", "nifty.csv", "2024-01-01T09:15:00Z,100,102,99,101,1000\n"},
		{"unknown segment", "NIFTY_7.csv", "2024-01-01T09:15:00Z,100,102,99,101,1000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeDataset(t, tt.file, tt.content)
			_, err := NewCSVSource(dir).Fetch(context.Background())
			if !errors.Is(err, ErrDataLoad) {
				t.Errorf("Fetch() error = %v, want ErrDataLoad", err)
			}
		})
	}
}

func TestCSVSource_MissingDir(t *testing.T) {
	_, err := NewCSVSource("/does/not/exist").Fetch(context.Background())
	if !errors.Is(err, ErrDataLoad) {
		t.Errorf("Fetch() error = %v, want ErrDataLoad", err)
	}
}
