// Package smacross implements a simple moving average crossover strategy:
// buy when the fast average crosses above the slow one, sell when it crosses
// below.
package smacross

import (
	"fmt"

	"backtestd/internal/indicator"
	"backtestd/internal/strategy"
	"backtestd/types"
)

const ID = "smacross"

func init() {
	strategy.Register(ID, New)
}

type Strategy struct {
	fast   int
	slow   int
	source indicator.PriceSource
}

func New(params strategy.Params) (strategy.Strategy, error) {
	if err := params.Reject("fast", "slow", "source"); err != nil {
		return nil, err
	}
	fast, err := params.Int("fast", 9)
	if err != nil {
		return nil, err
	}
	slow, err := params.Int("slow", 21)
	if err != nil {
		return nil, err
	}
	if fast <= 0 || slow <= 0 {
		return nil, fmt.Errorf("%w: windows must be positive", strategy.ErrInvalidParams)
	}
	if fast >= slow {
		return nil, fmt.Errorf("%w: fast window %d must be below slow window %d", strategy.ErrInvalidParams, fast, slow)
	}
	source, err := parseSource(params)
	if err != nil {
		return nil, err
	}
	return &Strategy{fast: fast, slow: slow, source: source}, nil
}

func parseSource(params strategy.Params) (indicator.PriceSource, error) {
	raw, ok := params["source"]
	if !ok {
		return indicator.SourceClose, nil
	}
	switch indicator.PriceSource(raw) {
	case indicator.SourceClose, indicator.SourceOHLC4:
		return indicator.PriceSource(raw), nil
	}
	return "", fmt.Errorf("%w: source=%q is not close or ohlc4", strategy.ErrInvalidParams, raw)
}

// Evaluate recomputes both averages on the current prefix and on the prefix
// one candle back; a sign change between the two spreads is a crossover.
// Holds until both windows are filled.
func (s *Strategy) Evaluate(window []types.Candle) (types.Signal, error) {
	if len(window) < s.slow+1 {
		return types.SignalHold, nil
	}

	fastNow, err := indicator.SMA(window, s.fast, s.source)
	if err != nil {
		return types.SignalHold, nil
	}
	slowNow, err := indicator.SMA(window, s.slow, s.source)
	if err != nil {
		return types.SignalHold, nil
	}
	prev := window[:len(window)-1]
	fastPrev, err := indicator.SMA(prev, s.fast, s.source)
	if err != nil {
		return types.SignalHold, nil
	}
	slowPrev, err := indicator.SMA(prev, s.slow, s.source)
	if err != nil {
		return types.SignalHold, nil
	}

	wasAbove := fastPrev.GreaterThan(slowPrev)
	isAbove := fastNow.GreaterThan(slowNow)
	switch {
	case isAbove && !wasAbove:
		return types.SignalBuy, nil
	case !isAbove && wasAbove:
		return types.SignalSell, nil
	}
	return types.SignalHold, nil
}
