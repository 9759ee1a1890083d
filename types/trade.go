package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExitReason distinguishes signal-driven exits from forced liquidation at the
// end of the series.
type ExitReason string

const (
	ExitSignal      ExitReason = "SIGNAL"
	ExitLiquidation ExitReason = "LIQUIDATION"
)

// Position is the open exposure held by one engine run. It is converted into
// a Trade when closed and never outlives the run.
type Position struct {
	Side       Side
	EntryTime  time.Time
	EntryPrice decimal.Decimal
	Size       decimal.Decimal
}

// Trade is a closed, realized position. Immutable once created.
type Trade struct {
	Side       Side            `json:"side"`
	EntryTime  time.Time       `json:"entryTime"`
	ExitTime   time.Time       `json:"exitTime"`
	EntryPrice decimal.Decimal `json:"entryPrice"`
	ExitPrice  decimal.Decimal `json:"exitPrice"`
	Size       decimal.Decimal `json:"size"`
	PnL        decimal.Decimal `json:"pnl"`
	ExitReason ExitReason      `json:"exitReason"`
}

// Close converts an open position into a Trade at the given exit fill.
// Long pnl = (exit - entry) * size, short pnl is the inverse.
func (p Position) Close(exitTime time.Time, exitPrice decimal.Decimal, reason ExitReason) Trade {
	pnl := exitPrice.Sub(p.EntryPrice).Mul(p.Size)
	if p.Side == SideShort {
		pnl = pnl.Neg()
	}
	return Trade{
		Side:       p.Side,
		EntryTime:  p.EntryTime,
		ExitTime:   exitTime,
		EntryPrice: p.EntryPrice,
		ExitPrice:  exitPrice,
		Size:       p.Size,
		PnL:        pnl,
		ExitReason: reason,
	}
}
