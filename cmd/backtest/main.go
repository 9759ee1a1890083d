// One-shot CLI runner: load the dataset, replay a single strategy, print the
// report. Useful for iterating on a strategy without the HTTP service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"

	"backtestd/internal/engine"
	"backtestd/internal/store"
	"backtestd/internal/strategy"
	"backtestd/types"

	_ "backtestd/strategies/rsirev"
	_ "backtestd/strategies/smacross"
	_ "backtestd/strategies/timewindow"
)

func main() {
	csvDir := flag.String("data", "dataset", "directory of <instrument>_<segment>.csv files")
	instrument := flag.String("instrument", "", "instrument to replay")
	segment := flag.String("segment", "D", "candle segment")
	strategyID := flag.String("strategy", "smacross", "strategy id")
	paramList := flag.String("params", "", "comma-separated key=value strategy params")
	fill := flag.String("fill", string(engine.FillClose), "fill policy: close or next_open")
	flip := flag.Bool("flip", false, "open the reverse position on an opposite signal")
	flag.Parse()

	if *instrument == "" {
		flag.Usage()
		os.Exit(2)
	}
	seg, ok := types.ParseSegment(*segment)
	if !ok {
		log.Fatalf("unknown segment %q", *segment)
	}
	params, err := parseParams(*paramList)
	if err != nil {
		log.Fatal(err)
	}

	st := store.New()
	if err := st.Load(context.Background(), store.NewCSVSource(*csvDir)); err != nil {
		log.Fatal(err)
	}

	cfg := engine.DefaultConfig()
	cfg.Fill = engine.FillPolicy(*fill)
	cfg.AllowFlip = *flip

	var bar *progressbar.ProgressBar
	result, err := engine.NewRunner(st).Run(engine.Request{
		Instrument: *instrument,
		Segment:    seg,
		Strategy:   *strategyID,
		Params:     params,
		Config:     cfg,
		Progress: func(done, total int) {
			if bar == nil {
				bar = initProgressBar(total)
			}
			_ = bar.Add(1)
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	printReport(result)
}

func parseParams(raw string) (strategy.Params, error) {
	params := strategy.Params{}
	if raw == "" {
		return params, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("param %q is not key=value", pair)
		}
		params[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return params, nil
}

func printReport(result *types.RunResult) {
	m := result.Metrics
	fmt.Println("===== Backtest Report =====")
	fmt.Printf("Instrument:            %s/%s\n", result.Instrument, result.Segment)
	fmt.Printf("Strategy:              %s\n", result.Strategy)
	fmt.Printf("Total Trades:          %d\n", m.TotalTrades)
	fmt.Printf("Win Rate:              %s\n", m.WinRate.Mul(decimal.NewFromInt(100)).StringFixed(2)+"%")
	fmt.Printf("Total PnL:             %s\n", m.TotalPnL)
	fmt.Printf("Max Drawdown:          %s\n", m.MaxDrawdown)
	fmt.Printf("Avg Win:               %s\n", m.AvgWin)
	fmt.Printf("Avg Loss:              %s\n", m.AvgLoss)
	fmt.Printf("Max Consecutive Losses:%d\n", m.MaxConsecutiveLosses)
	fmt.Println("\n-- Trades --")
	for i, tr := range result.Trades {
		fmt.Printf("%3d %-5s enter %s @ %s  exit %s @ %s  pnl %s  (%s)\n",
			i+1, tr.Side,
			tr.EntryTime.Format("2006-01-02 15:04"), tr.EntryPrice,
			tr.ExitTime.Format("2006-01-02 15:04"), tr.ExitPrice,
			tr.PnL, tr.ExitReason,
		)
	}
	fmt.Println("===========================")
}

func initProgressBar(maxTicks int) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Backtesting in progress..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
