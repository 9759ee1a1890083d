package store

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"backtestd/types"
)

// CSVSource loads candles from a directory of CSV files. Each file holds one
// series and is named <instrument>_<segment>.csv, e.g. NIFTY_5.csv. Rows are
// timestamp,open,high,low,close,volume with an optional header; timestamps
// are RFC3339 or unix seconds.
type CSVSource struct {
	Dir string
}

func NewCSVSource(dir string) *CSVSource {
	return &CSVSource{Dir: dir}
}

func (s *CSVSource) Name() string {
	return "csv:" + s.Dir
}

func (s *CSVSource) Fetch(ctx context.Context) ([]types.Candle, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, errors.Wrap(ErrDataLoad, err.Error())
	}

	var all []types.Candle
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		instrument, segment, err := parseSeriesFileName(entry.Name())
		if err != nil {
			return nil, err
		}
		candles, err := s.readFile(filepath.Join(s.Dir, entry.Name()), instrument, segment)
		if err != nil {
			return nil, err
		}
		all = append(all, candles...)
	}
	return all, nil
}

func (s *CSVSource) readFile(path, instrument string, segment types.Segment) ([]types.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(ErrDataLoad, err.Error())
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 6

	var candles []types.Candle
	line := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(ErrDataLoad, "%s: %v", path, err)
		}
		line++
		if line == 1 && strings.EqualFold(record[0], "timestamp") {
			continue
		}
		candle, err := parseRow(record, instrument, segment)
		if err != nil {
			return nil, errors.Wrapf(ErrDataLoad, "%s line %d: %v", path, line, err)
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

func parseSeriesFileName(name string) (string, types.Segment, error) {
	base := strings.TrimSuffix(name, ".csv")
	idx := strings.LastIndex(base, "_")
	if idx <= 0 || idx == len(base)-1 {
		return "", "", errors.Wrapf(ErrDataLoad, "file %s is not <instrument>_<segment>.csv", name)
	}
	segment, ok := types.ParseSegment(base[idx+1:])
	if !ok {
		return "", "", errors.Wrapf(ErrDataLoad, "file %s has unknown segment %q", name, base[idx+1:])
	}
	return base[:idx], segment, nil
}

func parseRow(record []string, instrument string, segment types.Segment) (types.Candle, error) {
	ts, err := parseTimestamp(strings.TrimSpace(record[0]))
	if err != nil {
		return types.Candle{}, err
	}

	var prices [4]decimal.Decimal
	for i := 1; i <= 4; i++ {
		prices[i-1], err = decimal.NewFromString(strings.TrimSpace(record[i]))
		if err != nil {
			return types.Candle{}, errors.Errorf("bad price %q", record[i])
		}
	}
	volume, err := strconv.ParseInt(strings.TrimSpace(record[5]), 10, 64)
	if err != nil {
		return types.Candle{}, errors.Errorf("bad volume %q", record[5])
	}

	return types.Candle{
		Instrument: instrument,
		Segment:    segment,
		Timestamp:  ts,
		Open:       prices[0],
		High:       prices[1],
		Low:        prices[2],
		Close:      prices[3],
		Volume:     volume,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	unix, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, errors.Errorf("bad timestamp %q", s)
	}
	return time.Unix(unix, 0).UTC(), nil
}
