package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FillPolicy fixes the price a signal fills at. It is engine configuration,
// explicit per run, so results stay reproducible.
type FillPolicy string

const (
	// FillClose fills at the signal candle's close, timestamped at that candle.
	FillClose FillPolicy = "close"
	// FillNextOpen fills at the next candle's open. A signal on the final
	// candle has no next open and is dropped.
	FillNextOpen FillPolicy = "next_open"
)

// Config holds the per-run execution policies. Sizing is engine
// configuration, never a strategy side effect.
type Config struct {
	Fill FillPolicy
	// AllowFlip controls whether an opposite signal that closes a position
	// also opens the reverse position in the same step, at the same fill.
	// When false the opposite signal only closes.
	AllowFlip bool
	// Size is the fixed unit size of every position.
	Size decimal.Decimal
}

// DefaultConfig fills at the signal candle's close, does not flip, and
// trades one unit.
func DefaultConfig() Config {
	return Config{
		Fill:      FillClose,
		AllowFlip: false,
		Size:      decimal.NewFromInt(1),
	}
}

func (c Config) validate() error {
	switch c.Fill {
	case FillClose, FillNextOpen:
	default:
		return fmt.Errorf("unknown fill policy %q", c.Fill)
	}
	if !c.Size.IsPositive() {
		return fmt.Errorf("position size %s must be positive", c.Size)
	}
	return nil
}
