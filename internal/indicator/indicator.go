// Package indicator provides deterministic numeric transforms over candle
// prefixes. Every function recomputes from the prefix it is given and holds
// no state, so the same prefix always yields the same value.
package indicator

import (
	"errors"

	"github.com/shopspring/decimal"

	"backtestd/types"
)

// ErrInsufficientData is returned when the candle prefix is shorter than the
// window an indicator needs.
var ErrInsufficientData = errors.New("not enough candles for window")

// PriceSource selects which price of each bar feeds an indicator.
type PriceSource string

const (
	SourceClose PriceSource = "close"
	SourceOHLC4 PriceSource = "ohlc4"
)

var four = decimal.NewFromInt(4)

func price(c types.Candle, src PriceSource) decimal.Decimal {
	if src == SourceOHLC4 {
		return c.Open.Add(c.High).Add(c.Low).Add(c.Close).Div(four)
	}
	return c.Close
}

// SMA returns the simple moving average of the last `length` candles of the
// prefix.
func SMA(window []types.Candle, length int, src PriceSource) (decimal.Decimal, error) {
	if length <= 0 || len(window) < length {
		return decimal.Zero, ErrInsufficientData
	}
	sum := decimal.Zero
	for _, c := range window[len(window)-length:] {
		sum = sum.Add(price(c, src))
	}
	return sum.Div(decimal.NewFromInt(int64(length))), nil
}

// EMA returns the exponential moving average over the whole prefix, seeded
// with the SMA of the first `length` candles.
func EMA(window []types.Candle, length int, src PriceSource) (decimal.Decimal, error) {
	if length <= 0 || len(window) < length {
		return decimal.Zero, ErrInsufficientData
	}
	seed, err := SMA(window[:length], length, src)
	if err != nil {
		return decimal.Zero, err
	}
	alpha := decimal.NewFromInt(2).Div(decimal.NewFromInt(int64(length) + 1))
	one := decimal.NewFromInt(1)
	ema := seed
	for _, c := range window[length:] {
		ema = price(c, src).Mul(alpha).Add(ema.Mul(one.Sub(alpha)))
	}
	return ema, nil
}

// RSI returns the relative strength index computed from simple averages of
// the gains and losses across the last `length` price changes (no Wilder
// smoothing). A prefix of length+1 candles is the minimum input.
func RSI(window []types.Candle, length int, src PriceSource) (decimal.Decimal, error) {
	if length <= 0 || len(window) < length+1 {
		return decimal.Zero, ErrInsufficientData
	}

	avgGain := decimal.Zero
	avgLoss := decimal.Zero
	start := len(window) - length
	for i := start; i < len(window); i++ {
		change := price(window[i], src).Sub(price(window[i-1], src))
		if change.IsPositive() {
			avgGain = avgGain.Add(change)
		} else {
			avgLoss = avgLoss.Add(change.Neg())
		}
	}
	n := decimal.NewFromInt(int64(length))
	avgGain = avgGain.Div(n)
	avgLoss = avgLoss.Div(n)

	hundred := decimal.NewFromInt(100)
	if avgLoss.IsZero() {
		if avgGain.IsZero() {
			return decimal.NewFromInt(50), nil
		}
		return hundred, nil
	}
	rs := avgGain.Div(avgLoss)
	return hundred.Sub(hundred.Div(decimal.NewFromInt(1).Add(rs))), nil
}
