// Package strategy defines the contract a trading strategy implements and
// the registry that maps strategy ids to constructors. New strategies
// register themselves in init and never touch the engine's state machine.
package strategy

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"backtestd/types"
)

var (
	// ErrInvalidParams marks bad strategy configuration. It is raised at
	// construction time, before any candle is replayed.
	ErrInvalidParams = errors.New("invalid strategy parameters")
	// ErrUnknownStrategy marks a strategy id with no registered constructor.
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// Strategy decides, once per candle, what to do at the current simulated
// point in time. The window holds every candle up to and including "now";
// the engine never passes future data. Instances are created per run and
// may keep in-run memory, but nothing survives across runs.
type Strategy interface {
	Evaluate(window []types.Candle) (types.Signal, error)
}

// Constructor builds a strategy instance from its validated parameter bag.
type Constructor func(params Params) (Strategy, error)

var (
	mu       sync.RWMutex
	registry = make(map[string]Constructor)
)

// Register adds a strategy variant under the given id. Called from the
// implementation packages' init functions.
func Register(id string, ctor Constructor) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[id]; dup {
		panic(fmt.Sprintf("strategy %q registered twice", id))
	}
	registry[id] = ctor
}

// New builds a fresh instance of the identified strategy. Parameter
// validation happens here, inside the constructor.
func New(id string, params Params) (Strategy, error) {
	mu.RLock()
	ctor, ok := registry[id]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrUnknownStrategy)
	}
	return ctor(params)
}

// Registered lists every known strategy id.
func Registered() []string {
	mu.RLock()
	defer mu.RUnlock()
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
