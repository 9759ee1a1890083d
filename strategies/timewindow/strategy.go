// Package timewindow implements an intraday time-based strategy: enter at a
// configured time of day, exit at a later one, once per trading day.
package timewindow

import (
	"fmt"
	"time"

	"backtestd/internal/strategy"
	"backtestd/types"
)

const ID = "timewindow"

func init() {
	strategy.Register(ID, New)
}

type Strategy struct {
	entrySec int
	exitSec  int
	side     types.Side

	// in-run memory, reset per trading day
	day     string
	entered bool
	exited  bool
}

func New(params strategy.Params) (strategy.Strategy, error) {
	if err := params.Reject("entry_time", "exit_time", "side"); err != nil {
		return nil, err
	}
	entrySec, err := params.TimeOfDay("entry_time")
	if err != nil {
		return nil, err
	}
	exitSec, err := params.TimeOfDay("exit_time")
	if err != nil {
		return nil, err
	}
	if entrySec >= exitSec {
		return nil, fmt.Errorf("%w: entry_time must precede exit_time", strategy.ErrInvalidParams)
	}
	side := types.SideLong
	if raw, ok := params["side"]; ok {
		switch types.Side(raw) {
		case types.SideLong, types.SideShort:
			side = types.Side(raw)
		default:
			return nil, fmt.Errorf("%w: side=%q is not LONG or SHORT", strategy.ErrInvalidParams, raw)
		}
	}
	return &Strategy{entrySec: entrySec, exitSec: exitSec, side: side}, nil
}

func (s *Strategy) Evaluate(window []types.Candle) (types.Signal, error) {
	now := window[len(window)-1].Timestamp
	day := now.Format(time.DateOnly)
	if day != s.day {
		s.day = day
		s.entered = false
		s.exited = false
	}

	tod := now.Hour()*3600 + now.Minute()*60 + now.Second()
	switch {
	case !s.entered && tod >= s.entrySec && tod < s.exitSec:
		s.entered = true
		return s.entrySignal(), nil
	case s.entered && !s.exited && tod >= s.exitSec:
		s.exited = true
		return s.exitSignal(), nil
	}
	return types.SignalHold, nil
}

func (s *Strategy) entrySignal() types.Signal {
	if s.side == types.SideShort {
		return types.SignalSell
	}
	return types.SignalBuy
}

func (s *Strategy) exitSignal() types.Signal {
	if s.side == types.SideShort {
		return types.SignalBuy
	}
	return types.SignalSell
}
