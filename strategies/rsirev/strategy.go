// Package rsirev implements an RSI mean-reversion strategy: buy oversold,
// sell overbought.
package rsirev

import (
	"fmt"

	"github.com/shopspring/decimal"

	"backtestd/internal/indicator"
	"backtestd/internal/strategy"
	"backtestd/types"
)

const ID = "rsirev"

func init() {
	strategy.Register(ID, New)
}

type Strategy struct {
	period     int
	overbought decimal.Decimal
	oversold   decimal.Decimal
}

func New(params strategy.Params) (strategy.Strategy, error) {
	if err := params.Reject("period", "overbought", "oversold"); err != nil {
		return nil, err
	}
	period, err := params.Int("period", 14)
	if err != nil {
		return nil, err
	}
	if period <= 0 {
		return nil, fmt.Errorf("%w: period must be positive", strategy.ErrInvalidParams)
	}
	overbought, err := params.Decimal("overbought", decimal.NewFromInt(70))
	if err != nil {
		return nil, err
	}
	oversold, err := params.Decimal("oversold", decimal.NewFromInt(30))
	if err != nil {
		return nil, err
	}
	if !oversold.LessThan(overbought) {
		return nil, fmt.Errorf("%w: oversold %s must be below overbought %s", strategy.ErrInvalidParams, oversold, overbought)
	}
	hundred := decimal.NewFromInt(100)
	if oversold.IsNegative() || overbought.GreaterThan(hundred) {
		return nil, fmt.Errorf("%w: thresholds must stay within [0,100]", strategy.ErrInvalidParams)
	}
	return &Strategy{period: period, overbought: overbought, oversold: oversold}, nil
}

func (s *Strategy) Evaluate(window []types.Candle) (types.Signal, error) {
	rsi, err := indicator.RSI(window, s.period, indicator.SourceClose)
	if err != nil {
		// Warming up; not an error for the run.
		return types.SignalHold, nil
	}
	switch {
	case rsi.LessThan(s.oversold):
		return types.SignalBuy, nil
	case rsi.GreaterThan(s.overbought):
		return types.SignalSell, nil
	}
	return types.SignalHold, nil
}
