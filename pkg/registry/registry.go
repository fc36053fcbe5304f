// Package registry defines the dynamic-dispatch contracts chlite's executor
// uses to call scalar and aggregate functions by name, and a simple
// name-keyed implementation of both.
package registry

import (
	"fmt"
	"strings"

	"chlite/pkg/types"
)

// ScalarFunction evaluates to one value given its already-evaluated
// arguments. Distinct is true when the call site wrote `f(DISTINCT ...)`;
// most scalar functions ignore it, but it is threaded through uniformly
// since the grammar allows it on any call.
type ScalarFunction interface {
	Execute(args []types.Value, distinct bool) (types.Value, error)
}

// ScalarFunc adapts a plain function into a ScalarFunction.
type ScalarFunc func(args []types.Value, distinct bool) (types.Value, error)

func (f ScalarFunc) Execute(args []types.Value, distinct bool) (types.Value, error) {
	return f(args, distinct)
}

// AggregateState accumulates rows for one aggregate call over one group
// (or over the whole input, for an aggregate with no GROUP BY).
type AggregateState interface {
	Accumulate(args []types.Value) error
	Finalize() (types.Value, error)
}

// AggregateFunction creates a fresh AggregateState for each group a query
// evaluates it over.
type AggregateFunction interface {
	NewState(distinct bool) AggregateState
}

// AggregateFunc adapts a state constructor into an AggregateFunction.
type AggregateFunc func(distinct bool) AggregateState

func (f AggregateFunc) NewState(distinct bool) AggregateState { return f(distinct) }

// Registry resolves function names to scalar or aggregate implementations.
// Lookup is case-insensitive, matching the dialect's identifier rules.
type Registry interface {
	Get(name string) (ScalarFunction, bool)
	GetAggregate(name string) (AggregateFunction, bool)
	IsAggregate(name string) bool
}

// MapRegistry is a Registry backed by two name-keyed maps. It is safe to
// build once at engine construction and shared read-only afterward.
type MapRegistry struct {
	scalars    map[string]ScalarFunction
	aggregates map[string]AggregateFunction
}

// NewMapRegistry returns an empty registry; callers typically start from
// functions.NewDefaultRegistry instead.
func NewMapRegistry() *MapRegistry {
	return &MapRegistry{
		scalars:    map[string]ScalarFunction{},
		aggregates: map[string]AggregateFunction{},
	}
}

func key(name string) string { return strings.ToLower(name) }

// RegisterScalar adds or overwrites a scalar function under name.
func (r *MapRegistry) RegisterScalar(name string, fn ScalarFunction) {
	r.scalars[key(name)] = fn
}

// RegisterAggregate adds or overwrites an aggregate function under name.
func (r *MapRegistry) RegisterAggregate(name string, fn AggregateFunction) {
	r.aggregates[key(name)] = fn
}

func (r *MapRegistry) Get(name string) (ScalarFunction, bool) {
	fn, ok := r.scalars[key(name)]
	return fn, ok
}

func (r *MapRegistry) GetAggregate(name string) (AggregateFunction, bool) {
	fn, ok := r.aggregates[key(name)]
	return fn, ok
}

func (r *MapRegistry) IsAggregate(name string) bool {
	_, ok := r.aggregates[key(name)]
	return ok
}

// ErrUnknownFunction builds an error for a name present in neither map.
// The executor does not call it; it reports unknown functions through
// chqlerr.Name with its own wording.
func ErrUnknownFunction(name string) error {
	return fmt.Errorf("name: unknown function %q", name)
}
