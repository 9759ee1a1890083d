package server

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/shopspring/decimal"

	"backtestd/types"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

// response is the uniform envelope for every endpoint. Failures carry the
// error kind and a human-readable message, never a stack trace.
type response struct {
	Status    string  `json:"status"`
	Message   string  `json:"message,omitempty"`
	Error     string  `json:"error,omitempty"`
	Data      any     `json:"data,omitempty"`
	TimeTaken float64 `json:"time_taken,omitempty"`
}

type seriesInfo struct {
	Instrument string `json:"instrument"`
	Segment    string `json:"segment"`
}

// runReport is the caller-facing shape of a RunResult.
type runReport struct {
	Instrument  string          `json:"instrument"`
	Segment     string          `json:"segment"`
	Strategy    string          `json:"strategy"`
	TotalTrades int             `json:"total_trades"`
	WinRate     string          `json:"win_rate"`
	TotalPnL    decimal.Decimal `json:"profit_loss"`
	MaxDrawdown decimal.Decimal `json:"max_drawdown"`
	Logs        []types.Trade   `json:"logs"`
}

func newRunReport(result *types.RunResult) runReport {
	hundred := decimal.NewFromInt(100)
	return runReport{
		Instrument:  result.Instrument,
		Segment:     string(result.Segment),
		Strategy:    result.Strategy,
		TotalTrades: result.Metrics.TotalTrades,
		WinRate:     result.Metrics.WinRate.Mul(hundred).StringFixed(2) + "%",
		TotalPnL:    result.Metrics.TotalPnL,
		MaxDrawdown: result.Metrics.MaxDrawdown,
		Logs:        result.Trades,
	}
}

func writeJSON(w http.ResponseWriter, code int, body response) {
	out, err := sonic.Marshal(body)
	if err != nil {
		http.Error(w, `{"status":"failure","message":"encode response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(out)
}
