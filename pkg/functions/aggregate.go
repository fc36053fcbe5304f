package functions

import (
	"chlite/pkg/registry"
	"chlite/pkg/types"
)

func registerAggregates(r *registry.MapRegistry) {
	r.RegisterAggregate("count", registry.AggregateFunc(newCountState))
	r.RegisterAggregate("sum", registry.AggregateFunc(newSumState))
	r.RegisterAggregate("avg", registry.AggregateFunc(newAvgState))
	r.RegisterAggregate("min", registry.AggregateFunc(newMinMaxState(false)))
	r.RegisterAggregate("max", registry.AggregateFunc(newMinMaxState(true)))
	r.RegisterAggregate("any", registry.AggregateFunc(newAnyState))
	r.RegisterAggregate("uniq", registry.AggregateFunc(newUniqState))
}

// countState counts rows (COUNT(*), arg-less) or non-null argument values
// (COUNT(expr)), optionally deduplicated for COUNT(DISTINCT expr).
type countState struct {
	distinct bool
	seen     map[string]bool
	n        int64
}

func newCountState(distinct bool) registry.AggregateState {
	s := &countState{distinct: distinct}
	if distinct {
		s.seen = map[string]bool{}
	}
	return s
}

func (s *countState) Accumulate(args []types.Value) error {
	if len(args) == 0 {
		s.n++
		return nil
	}
	if args[0].IsNull() {
		return nil
	}
	if s.distinct {
		key := types.GroupKey(args[0])
		if s.seen[key] {
			return nil
		}
		s.seen[key] = true
	}
	s.n++
	return nil
}

func (s *countState) Finalize() (types.Value, error) { return types.NewInt64(s.n), nil }

// sumState accumulates a running total via types.Arith. Finalize coerces
// the result through float64 (spec's numeric-operation note: sum, avg,
// and divide all lose integer exactness), except for Decimal operands,
// which Arith already keeps exact and which stay exact here too.
type sumState struct {
	distinct bool
	seen     map[string]bool
	sum      types.Value
	any      bool
}

func newSumState(distinct bool) registry.AggregateState {
	s := &sumState{distinct: distinct}
	if distinct {
		s.seen = map[string]bool{}
	}
	return s
}

func (s *sumState) Accumulate(args []types.Value) error {
	if len(args) != 1 || args[0].IsNull() {
		return nil
	}
	if s.distinct {
		key := types.GroupKey(args[0])
		if s.seen[key] {
			return nil
		}
		s.seen[key] = true
	}
	if !s.any {
		s.sum = args[0]
		s.any = true
		return nil
	}
	sum, err := types.Arith(types.OpAdd, s.sum, args[0])
	if err != nil {
		return err
	}
	s.sum = sum
	return nil
}

func (s *sumState) Finalize() (types.Value, error) {
	if !s.any {
		return types.NewNull(), nil
	}
	if s.sum.Kind() == types.KindDecimal {
		return s.sum, nil
	}
	return types.NewFloat64(asFloat64Value(s.sum)), nil
}

func asFloat64Value(v types.Value) float64 {
	if v.Kind() == types.KindFloat32 || v.Kind() == types.KindFloat64 {
		return v.Float64()
	}
	if v.Kind().IsUnsignedInteger() {
		return float64(v.Uint64())
	}
	return float64(v.Int64())
}

// avgState tracks a running sum and count; Finalize divides the sum by the
// count with types.Arith, so the result is Float64 unless the sum is
// Decimal, in which case it stays Decimal.
type avgState struct {
	sum sumState
	n   int64
}

func newAvgState(distinct bool) registry.AggregateState {
	return &avgState{sum: sumState{distinct: distinct, seen: map[string]bool{}}}
}

func (s *avgState) Accumulate(args []types.Value) error {
	if len(args) != 1 || args[0].IsNull() {
		return nil
	}
	if s.sum.distinct {
		key := types.GroupKey(args[0])
		if s.sum.seen[key] {
			return nil
		}
	}
	if err := s.sum.Accumulate(args); err != nil {
		return err
	}
	s.n++
	return nil
}

func (s *avgState) Finalize() (types.Value, error) {
	if s.n == 0 {
		return types.NewNull(), nil
	}
	sum, err := s.sum.Finalize()
	if err != nil {
		return types.Value{}, err
	}
	return types.Arith(types.OpDiv, sum, types.NewInt64(s.n))
}

// minMaxState tracks the running min or max via types.CompareValues, which
// ORDER BY's types.OrderCompare also defers to for non-null values, so
// aggregate and sort comparisons agree on ordering.
type minMaxState struct {
	wantMax bool
	best    types.Value
	any     bool
}

func newMinMaxState(wantMax bool) func(bool) registry.AggregateState {
	return func(bool) registry.AggregateState {
		return &minMaxState{wantMax: wantMax}
	}
}

func (s *minMaxState) Accumulate(args []types.Value) error {
	if len(args) != 1 || args[0].IsNull() {
		return nil
	}
	if !s.any {
		s.best = args[0]
		s.any = true
		return nil
	}
	cmp, err := types.CompareValues(args[0], s.best)
	if err != nil {
		return err
	}
	if (s.wantMax && cmp > 0) || (!s.wantMax && cmp < 0) {
		s.best = args[0]
	}
	return nil
}

func (s *minMaxState) Finalize() (types.Value, error) {
	if !s.any {
		return types.NewNull(), nil
	}
	return s.best, nil
}

// anyState returns an arbitrary value from the group: the first non-null
// argument it sees.
type anyState struct {
	val types.Value
	any bool
}

func newAnyState(bool) registry.AggregateState { return &anyState{} }

func (s *anyState) Accumulate(args []types.Value) error {
	if s.any || len(args) != 1 || args[0].IsNull() {
		return nil
	}
	s.val = args[0]
	s.any = true
	return nil
}

func (s *anyState) Finalize() (types.Value, error) {
	if !s.any {
		return types.NewNull(), nil
	}
	return s.val, nil
}

// uniqState counts distinct non-null argument values seen (an approximate
// cardinality estimator in ClickHouse proper; exact here since chlite
// holds every row in memory anyway).
type uniqState struct {
	seen map[string]bool
}

func newUniqState(bool) registry.AggregateState {
	return &uniqState{seen: map[string]bool{}}
}

func (s *uniqState) Accumulate(args []types.Value) error {
	if len(args) != 1 || args[0].IsNull() {
		return nil
	}
	s.seen[types.GroupKey(args[0])] = true
	return nil
}

func (s *uniqState) Finalize() (types.Value, error) {
	return types.NewInt64(int64(len(s.seen))), nil
}
