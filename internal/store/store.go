package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"backtestd/types"
)

// Global error declarations.
var (
	ErrNotFound = errors.New("no series for instrument/segment")
	ErrDataLoad = errors.New("malformed candle source")
)

// Key identifies one candle series.
type Key struct {
	Instrument string
	Segment    types.Segment
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Instrument, k.Segment)
}

// Source yields candle records for the store. Records may arrive in any order
// and may mix instruments and segments; the store groups and sorts them.
type Source interface {
	Fetch(ctx context.Context) ([]types.Candle, error)
	Name() string
}

// Store holds every historical series, keyed by (instrument, segment).
// It is populated exactly once by Load and read-only afterwards, so any
// number of concurrent runs can Get without locking.
type Store struct {
	series map[Key][]types.Candle
	loaded bool
}

func New() *Store {
	return &Store{series: make(map[Key][]types.Candle)}
}

// Load fetches all sources in parallel, then groups, sorts and validates the
// combined records. It must complete before the store serves any reads; a
// malformed source fails the whole load with ErrDataLoad.
func (s *Store) Load(ctx context.Context, sources ...Source) error {
	if s.loaded {
		return fmt.Errorf("%w: store already loaded", ErrDataLoad)
	}

	batches := make([][]types.Candle, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			candles, err := src.Fetch(gctx)
			if err != nil {
				return fmt.Errorf("source %s: %w", src.Name(), err)
			}
			batches[i] = candles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Group into a staging map; the store is only touched once everything
	// validated, so a failed Load leaves it empty and retryable.
	series := make(map[Key][]types.Candle)
	for _, batch := range batches {
		for _, c := range batch {
			if c.Instrument == "" {
				return fmt.Errorf("%w: candle at %s has no instrument", ErrDataLoad, c.Timestamp)
			}
			if _, ok := types.SegmentToDuration[c.Segment]; !ok {
				return fmt.Errorf("%w: candle %s has unknown segment %q", ErrDataLoad, c.Instrument, c.Segment)
			}
			if err := c.Validate(); err != nil {
				return fmt.Errorf("%w: %s at %s: %v", ErrDataLoad, c.Instrument, c.Timestamp, err)
			}
			key := Key{Instrument: c.Instrument, Segment: c.Segment}
			series[key] = append(series[key], c)
		}
	}

	for key, candles := range series {
		sort.SliceStable(candles, func(i, j int) bool {
			return candles[i].Timestamp.Before(candles[j].Timestamp)
		})
		for i := 1; i < len(candles); i++ {
			if !candles[i].Timestamp.After(candles[i-1].Timestamp) {
				return fmt.Errorf("%w: %s has duplicate timestamp %s", ErrDataLoad, key, candles[i].Timestamp)
			}
		}
	}

	s.series = series
	s.loaded = true
	return nil
}

// Get returns the ordered series for the key. The returned slice is shared,
// read-only data; callers must not mutate it.
func (s *Store) Get(instrument string, segment types.Segment) ([]types.Candle, error) {
	candles, ok := s.series[Key{Instrument: instrument, Segment: segment}]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", instrument, segment, ErrNotFound)
	}
	return candles, nil
}

// Keys lists every loaded (instrument, segment) pair.
func (s *Store) Keys() []Key {
	keys := make([]Key, 0, len(s.series))
	for k := range s.series {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}
