// Package engine replays a candle series through a strategy instance and
// turns its signals into simulated trades. One Engine serves exactly one run;
// no state leaks between invocations.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"backtestd/internal/strategy"
	"backtestd/types"
)

// Global error declarations.
var (
	ErrEmptyData     = errors.New("no candles to replay")
	ErrInvalidSignal = errors.New("strategy emitted undefined signal")
	ErrConfig        = errors.New("invalid engine configuration")
)

// Engine is the per-run state machine: Flat, Long or Short, driven one candle
// at a time in strictly increasing timestamp order.
type Engine struct {
	cfg      Config
	strat    strategy.Strategy
	pos      *types.Position
	trades   []types.Trade
	consumed bool

	// Progress is called after each replayed candle. Optional; the CLI
	// runner attaches a progress bar here.
	Progress func(done, total int)
}

// New builds an engine for a single run.
func New(strat strategy.Strategy, cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return &Engine{cfg: cfg, strat: strat}, nil
}

// Run replays the series in order. The window handed to the strategy at step
// i is series[:i+1] — only candles at or before the simulated now. Any
// position still open when the data ends is force-closed at the last close
// and flagged as a liquidation.
func (e *Engine) Run(series []types.Candle) ([]types.Trade, error) {
	if e.consumed {
		return nil, fmt.Errorf("%w: engine already ran", ErrConfig)
	}
	e.consumed = true
	if len(series) == 0 {
		return nil, ErrEmptyData
	}

	for i := range series {
		signal, err := e.strat.Evaluate(series[:i+1])
		if err != nil {
			return nil, err
		}
		if !signal.Valid() {
			return nil, fmt.Errorf("%w: %q at %s", ErrInvalidSignal, signal, series[i].Timestamp)
		}
		if signal != types.SignalHold {
			fillPrice, fillTime, ok := e.fill(series, i)
			if ok {
				e.apply(signal, fillPrice, fillTime)
			}
		}
		if e.Progress != nil {
			e.Progress(i+1, len(series))
		}
	}

	if e.pos != nil {
		last := series[len(series)-1]
		e.trades = append(e.trades, e.pos.Close(last.Timestamp, last.Close, types.ExitLiquidation))
		e.pos = nil
	}
	return e.trades, nil
}

// fill resolves the configured fill policy for a signal at index i. The third
// return is false when the policy cannot produce a fill (next_open on the
// final candle).
func (e *Engine) fill(series []types.Candle, i int) (decimal.Decimal, time.Time, bool) {
	switch e.cfg.Fill {
	case FillNextOpen:
		if i+1 >= len(series) {
			return decimal.Zero, time.Time{}, false
		}
		next := series[i+1]
		return next.Open, next.Timestamp, true
	default:
		cur := series[i]
		return cur.Close, cur.Timestamp, true
	}
}

// apply runs one state-machine transition. Same-direction signals while a
// position is open are ignored; only one position exists per run.
func (e *Engine) apply(signal types.Signal, price decimal.Decimal, ts time.Time) {
	side := types.SideLong
	if signal == types.SignalSell {
		side = types.SideShort
	}

	if e.pos == nil {
		e.open(side, price, ts)
		return
	}
	if e.pos.Side == side {
		return
	}

	e.trades = append(e.trades, e.pos.Close(ts, price, types.ExitSignal))
	e.pos = nil
	if e.cfg.AllowFlip {
		e.open(side, price, ts)
	}
}

func (e *Engine) open(side types.Side, price decimal.Decimal, ts time.Time) {
	e.pos = &types.Position{
		Side:       side,
		EntryTime:  ts,
		EntryPrice: price,
		Size:       e.cfg.Size,
	}
}
