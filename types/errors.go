package types

import "errors"

// Bar-level validation errors, surfaced by sources as load failures.
var (
	ErrZeroTimestamp = errors.New("candle has zero timestamp")
	ErrNegativeValue = errors.New("candle has negative price or volume")
	ErrOHLCOrdering  = errors.New("candle violates low <= open,close <= high")
)
