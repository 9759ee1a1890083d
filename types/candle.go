package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle is one OHLCV price bar. Candles are value records created once at
// load time and never mutated afterwards.
type Candle struct {
	Instrument string          `json:"instrument"`
	Segment    Segment         `json:"segment"`
	Open       decimal.Decimal `json:"open"`
	High       decimal.Decimal `json:"high"`
	Low        decimal.Decimal `json:"low"`
	Close      decimal.Decimal `json:"close"`
	Volume     int64           `json:"volume"`
	Timestamp  time.Time       `json:"timestamp"`
}

// Validate checks the OHLC ordering invariants of a single bar.
func (c Candle) Validate() error {
	if c.Timestamp.IsZero() {
		return ErrZeroTimestamp
	}
	if c.Low.IsNegative() || c.Volume < 0 {
		return ErrNegativeValue
	}
	if c.Low.GreaterThan(c.Open) || c.Low.GreaterThan(c.Close) {
		return ErrOHLCOrdering
	}
	if c.High.LessThan(c.Open) || c.High.LessThan(c.Close) {
		return ErrOHLCOrdering
	}
	return nil
}
