package strategy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Params is the opaque configuration bag a caller passes for one run.
// Strategies read it through the typed accessors below; every accessor
// failure wraps ErrInvalidParams so callers can classify it before replay.
type Params map[string]string

// Reject fails when the bag contains a key outside the recognized set.
// Unknown keys are configuration mistakes, not silent no-ops.
func (p Params) Reject(recognized ...string) error {
	known := make(map[string]struct{}, len(recognized))
	for _, k := range recognized {
		known[k] = struct{}{}
	}
	for k := range p {
		if _, ok := known[k]; !ok {
			return fmt.Errorf("%w: unrecognized key %q", ErrInvalidParams, k)
		}
	}
	return nil
}

// Int reads an integer option, falling back to def when absent.
func (p Params) Int(key string, def int) (int, error) {
	raw, ok := p[key]
	if !ok {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidParams, key, raw)
	}
	return v, nil
}

// Decimal reads a fixed-point option, falling back to def when absent.
func (p Params) Decimal(key string, def decimal.Decimal) (decimal.Decimal, error) {
	raw, ok := p[key]
	if !ok {
		return def, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s=%q is not a number", ErrInvalidParams, key, raw)
	}
	return v, nil
}

// TimeOfDay reads an HH:MM:SS option and returns seconds since midnight.
func (p Params) TimeOfDay(key string) (int, error) {
	raw, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing required key %q", ErrInvalidParams, key)
	}
	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %s=%q is not HH:MM:SS", ErrInvalidParams, key, raw)
	}
	var hms [3]int
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("%w: %s=%q is not HH:MM:SS", ErrInvalidParams, key, raw)
		}
		hms[i] = v
	}
	if hms[0] > 23 || hms[1] > 59 || hms[2] > 59 {
		return 0, fmt.Errorf("%w: %s=%q is out of range", ErrInvalidParams, key, raw)
	}
	return hms[0]*3600 + hms[1]*60 + hms[2], nil
}
