package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"backtestd/types"
)

func tradeWithPnL(i int, pnl float64) types.Trade {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return types.Trade{
		Side:       types.SideLong,
		EntryTime:  t0.Add(time.Duration(i) * time.Hour),
		ExitTime:   t0.Add(time.Duration(i)*time.Hour + 30*time.Minute),
		PnL:        decimal.NewFromFloat(pnl),
		ExitReason: types.ExitSignal,
	}
}

func tradeLog(pnls ...float64) []types.Trade {
	out := make([]types.Trade, len(pnls))
	for i, p := range pnls {
		out[i] = tradeWithPnL(i, p)
	}
	return out
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name            string
		pnls            []float64
		wantTrades      int
		wantWinRate     string
		wantTotalPnL    string
		wantMaxDrawdown string
		wantLossStreak  int
	}{
		{
			name:            "no trades yields zeros not NaN",
			pnls:            nil,
			wantTrades:      0,
			wantWinRate:     "0",
			wantTotalPnL:    "0",
			wantMaxDrawdown: "0",
		},
		{
			name:            "single win",
			pnls:            []float64{5},
			wantTrades:      1,
			wantWinRate:     "1",
			wantTotalPnL:    "5",
			wantMaxDrawdown: "0",
		},
		{
			name:            "half wins",
			pnls:            []float64{5, -5},
			wantTrades:      2,
			wantWinRate:     "0.5",
			wantTotalPnL:    "0",
			wantMaxDrawdown: "5",
			wantLossStreak:  1,
		},
		{
			name: "drawdown spans consecutive losses",
			// equity: 10, 6, 1, 8 -> peak 10, trough 1, dd 9
			pnls:            []float64{10, -4, -5, 7},
			wantTrades:      4,
			wantWinRate:     "0.5",
			wantTotalPnL:    "8",
			wantMaxDrawdown: "9",
			wantLossStreak:  2,
		},
		{
			name: "drawdown ignores later higher peak",
			// equity: 2, 1, 5 -> dd 1
			pnls:            []float64{2, -1, 4},
			wantTrades:      3,
			wantWinRate:     "0.6666666666666667",
			wantTotalPnL:    "5",
			wantMaxDrawdown: "1",
			wantLossStreak:  1,
		},
		{
			name:            "breakeven trade is not a win",
			pnls:            []float64{0},
			wantTrades:      1,
			wantWinRate:     "0",
			wantTotalPnL:    "0",
			wantMaxDrawdown: "0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tradeLog(tt.pnls...))
			if got.TotalTrades != tt.wantTrades {
				t.Errorf("TotalTrades = %d, want %d", got.TotalTrades, tt.wantTrades)
			}
			if got.WinRate.String() != tt.wantWinRate {
				t.Errorf("WinRate = %s, want %s", got.WinRate, tt.wantWinRate)
			}
			if got.TotalPnL.String() != tt.wantTotalPnL {
				t.Errorf("TotalPnL = %s, want %s", got.TotalPnL, tt.wantTotalPnL)
			}
			if got.MaxDrawdown.String() != tt.wantMaxDrawdown {
				t.Errorf("MaxDrawdown = %s, want %s", got.MaxDrawdown, tt.wantMaxDrawdown)
			}
			if got.MaxConsecutiveLosses != tt.wantLossStreak {
				t.Errorf("MaxConsecutiveLosses = %d, want %d", got.MaxConsecutiveLosses, tt.wantLossStreak)
			}
		})
	}
}

func TestSummarize_WinRateBounds(t *testing.T) {
	one := decimal.NewFromInt(1)
	logs := [][]float64{
		nil, {1}, {-1}, {1, -1, 1}, {-2, -3, -4}, {0, 0}, {1, 2, 3, 4},
	}
	for _, pnls := range logs {
		got := Summarize(tradeLog(pnls...))
		if got.WinRate.IsNegative() || got.WinRate.GreaterThan(one) {
			t.Errorf("WinRate %s out of [0,1] for pnls %v", got.WinRate, pnls)
		}
	}
}

func TestSummarize_AvgWinLoss(t *testing.T) {
	got := Summarize(tradeLog(6, -2, 4, -4))
	if got.AvgWin.String() != "5" {
		t.Errorf("AvgWin = %s, want 5", got.AvgWin)
	}
	if got.AvgLoss.String() != "3" {
		t.Errorf("AvgLoss = %s, want 3 (absolute)", got.AvgLoss)
	}
}

func TestSummarize_Pure(t *testing.T) {
	trades := tradeLog(3, -1, 2)
	first := Summarize(trades)
	second := Summarize(trades)
	if first.TotalPnL.String() != second.TotalPnL.String() ||
		first.MaxDrawdown.String() != second.MaxDrawdown.String() ||
		first.WinRate.String() != second.WinRate.String() {
		t.Error("Summarize is not reproducible over the same input")
	}
}
