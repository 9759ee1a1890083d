package engine

import (
	"backtestd/internal/strategy"
	"backtestd/types"
)

// CandleSource is the read-only handle into the candle store a run needs.
type CandleSource interface {
	Get(instrument string, segment types.Segment) ([]types.Candle, error)
}

// Request describes one backtest invocation.
type Request struct {
	Instrument string
	Segment    types.Segment
	Strategy   string
	Params     strategy.Params
	Config     Config
	// Progress, if set, receives replay progress.
	Progress func(done, total int)
}

// Runner executes backtests against a loaded store. Each Run builds a fresh
// strategy instance and a fresh engine, so concurrent runs share nothing but
// the immutable candle data.
type Runner struct {
	store CandleSource
}

func NewRunner(store CandleSource) *Runner {
	return &Runner{store: store}
}

// Run performs one complete backtest: resolve the series, construct and
// validate the strategy (before any candle is touched), replay, summarize.
func (r *Runner) Run(req Request) (*types.RunResult, error) {
	strat, err := strategy.New(req.Strategy, req.Params)
	if err != nil {
		return nil, err
	}

	series, err := r.store.Get(req.Instrument, req.Segment)
	if err != nil {
		return nil, err
	}

	eng, err := New(strat, req.Config)
	if err != nil {
		return nil, err
	}
	eng.Progress = req.Progress

	trades, err := eng.Run(series)
	if err != nil {
		return nil, err
	}

	return &types.RunResult{
		Instrument: req.Instrument,
		Segment:    req.Segment,
		Strategy:   req.Strategy,
		Trades:     trades,
		Metrics:    Summarize(trades),
	}, nil
}
