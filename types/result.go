package types

import "github.com/shopspring/decimal"

// Metrics are the scalar summaries derived from one run's trade log.
type Metrics struct {
	TotalTrades          int             `json:"totalTrades"`
	WinRate              decimal.Decimal `json:"winRate"`
	TotalPnL             decimal.Decimal `json:"totalPnl"`
	MaxDrawdown          decimal.Decimal `json:"maxDrawdown"`
	AvgWin               decimal.Decimal `json:"avgWin"`
	AvgLoss              decimal.Decimal `json:"avgLoss"`
	MaxConsecutiveLosses int             `json:"maxConsecutiveLosses"`
}

// RunResult is the full outcome of one backtest invocation: the ordered trade
// log plus its derived metrics. It exists only for the duration of the call.
type RunResult struct {
	Instrument string  `json:"instrument"`
	Segment    Segment `json:"segment"`
	Strategy   string  `json:"strategy"`
	Trades     []Trade `json:"trades"`
	Metrics    Metrics `json:"metrics"`
}
