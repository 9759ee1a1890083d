package store

import (
	"context"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"backtestd/types"
)

const candleQuery = `
SELECT instrument, segment, ts, open, high, low, close, volume
FROM candles
ORDER BY instrument, segment, ts`

// candleRows abstracts the pgx result set so the scan path is testable
// without a live database.
type candleRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource feeds the store from a candles table at startup. The pool is
// only used during Load; replay never touches the database.
type PostgresSource struct {
	pool querier
	name string
}

// NewPostgresSource connects, registers shopspring decimal codecs, and
// verifies connectivity.
func NewPostgresSource(ctx context.Context, dsn string) (*PostgresSource, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}
	return &PostgresSource{pool: pool, name: "postgres"}, nil
}

func (s *PostgresSource) Name() string {
	return s.name
}

func (s *PostgresSource) Fetch(ctx context.Context) ([]types.Candle, error) {
	rows, err := s.pool.Query(ctx, candleQuery)
	if err != nil {
		return nil, errors.Wrap(ErrDataLoad, err.Error())
	}
	return scanCandles(rows)
}

func scanCandles(rows candleRows) ([]types.Candle, error) {
	defer rows.Close()

	var candles []types.Candle
	for rows.Next() {
		var (
			c       types.Candle
			segment string
			volume  decimal.Decimal
		)
		if err := rows.Scan(&c.Instrument, &segment, &c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &volume); err != nil {
			return nil, errors.Wrap(ErrDataLoad, err.Error())
		}
		seg, ok := types.ParseSegment(segment)
		if !ok {
			return nil, errors.Wrapf(ErrDataLoad, "row for %s has unknown segment %q", c.Instrument, segment)
		}
		c.Segment = seg
		c.Volume = volume.IntPart()
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(ErrDataLoad, err.Error())
	}
	return candles, nil
}
