package engine

import (
	"github.com/shopspring/decimal"

	"backtestd/types"
)

// Summarize derives the run metrics from a trade log. It is a pure function
// of its input: same trades, same metrics. An empty log yields zero values,
// never NaN.
func Summarize(trades []types.Trade) types.Metrics {
	m := types.Metrics{
		TotalTrades: len(trades),
		WinRate:     decimal.Zero,
		TotalPnL:    decimal.Zero,
		MaxDrawdown: decimal.Zero,
		AvgWin:      decimal.Zero,
		AvgLoss:     decimal.Zero,
	}
	if len(trades) == 0 {
		return m
	}

	wins := 0
	sumWins := decimal.Zero
	sumLosses := decimal.Zero
	lossCount := 0
	streak := 0

	// Drawdown is the max peak-to-trough decline of the cumulative P&L
	// curve, walked in trade order.
	equity := decimal.Zero
	peak := decimal.Zero

	for _, tr := range trades {
		m.TotalPnL = m.TotalPnL.Add(tr.PnL)

		switch {
		case tr.PnL.IsPositive():
			wins++
			sumWins = sumWins.Add(tr.PnL)
			streak = 0
		case tr.PnL.IsNegative():
			lossCount++
			sumLosses = sumLosses.Add(tr.PnL.Abs())
			streak++
			if streak > m.MaxConsecutiveLosses {
				m.MaxConsecutiveLosses = streak
			}
		default:
			streak = 0
		}

		equity = equity.Add(tr.PnL)
		if equity.GreaterThan(peak) {
			peak = equity
		}
		if dd := peak.Sub(equity); dd.GreaterThan(m.MaxDrawdown) {
			m.MaxDrawdown = dd
		}
	}

	total := decimal.NewFromInt(int64(len(trades)))
	m.WinRate = decimal.NewFromInt(int64(wins)).Div(total)
	if wins > 0 {
		m.AvgWin = sumWins.Div(decimal.NewFromInt(int64(wins)))
	}
	if lossCount > 0 {
		m.AvgLoss = sumLosses.Div(decimal.NewFromInt(int64(lossCount)))
	}
	return m
}
