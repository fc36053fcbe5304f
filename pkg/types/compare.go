package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// groupSeparator joins multiple GROUP BY / row keys; chosen, per spec §4.D,
// as a byte that cannot occur in any value's textual stringification.
const groupSeparator = "\x00"

// nullSentinel is the grouping-key text for the null value (spec §3: null
// is a distinct group from any non-null value, stringified as "NULL").
const nullSentinel = "n:NULL"

// asFloat64 promotes any numeric Value to float64 for mixed-kind
// arithmetic/comparison, per spec §4.C's promotion rules.
func asFloat64(v Value) float64 {
	switch {
	case v.Kind().IsSignedInteger():
		return float64(v.Int64())
	case v.Kind().IsUnsignedInteger():
		return float64(v.Uint64())
	case v.Kind() == KindFloat32, v.Kind() == KindFloat64:
		return v.Float64()
	case v.Kind() == KindDecimal:
		f, _ := v.Decimal().Float64()
		return f
	case v.Kind() == KindBool:
		return v.Float64() + float64(v.Int64())
	case v.Kind().IsTemporal():
		return float64(v.Int64())
	default:
		return 0
	}
}

// numericCompare compares two numeric values using the widest-safe
// representation: same signedness class compares exactly via int64/uint64;
// mixed signed/unsigned or anything touching a float/decimal promotes
// through float64 (spec §4.C).
func numericCompare(a, b Value) int {
	ak, bk := a.Kind(), b.Kind()
	if ak.IsSignedInteger() && bk.IsSignedInteger() {
		return cmpInt64(a.Int64(), b.Int64())
	}
	if ak.IsUnsignedInteger() && bk.IsUnsignedInteger() {
		return cmpUint64(a.Uint64(), b.Uint64())
	}
	if ak == KindDecimal && bk == KindDecimal {
		return a.Decimal().Cmp(b.Decimal())
	}
	af, bf := asFloat64(a), asFloat64(b)
	return cmpFloat64(af, bf)
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// CompareValues implements the typed comparator of spec §4.C for
// non-null operands: numeric cross-kind comparison, byte-order strings,
// absolute-instant dates/datetimes, lexicographic arrays/tuples. Maps
// cannot be ordered and return a type error. Callers (WHERE/ORDER BY
// evaluation) are responsible for short-circuiting null operands before
// calling this.
func CompareValues(a, b Value) (int, error) {
	ak, bk := a.Kind(), b.Kind()

	if ak.IsNumeric() && bk.IsNumeric() {
		return numericCompare(a, b), nil
	}
	if ak == KindBool && bk == KindBool {
		return cmpInt64(a.Int64(), b.Int64()), nil
	}
	if (ak == KindString || ak == KindFixedString) && (bk == KindString || bk == KindFixedString) {
		return strings.Compare(a.Str(), b.Str()), nil
	}
	if ak.IsTemporal() && bk.IsTemporal() {
		return cmpInt64(instantSeconds(a), instantSeconds(b)), nil
	}
	if ak == KindUUID && bk == KindUUID {
		return strings.Compare(a.UUID().String(), b.UUID().String()), nil
	}
	if ak == KindArray && bk == KindArray {
		return compareSlices(a.Elements(), b.Elements())
	}
	if ak == KindTuple && bk == KindTuple {
		return compareSlices(a.TupleElements(), b.TupleElements())
	}
	if ak == KindMap || bk == KindMap {
		return 0, fmt.Errorf("type: Map values cannot be ordered")
	}
	return 0, fmt.Errorf("type: cannot compare %s with %s", ak, bk)
}

// instantSeconds converts Date/DateTime/DateTime64 to seconds-since-epoch
// for cross-temporal-kind comparison (Date compares as its midnight
// instant, per spec §4.C).
func instantSeconds(v Value) int64 {
	return v.Int64()
}

func compareSlices(a, b []Value) (int, error) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i].IsNull() && b[i].IsNull() {
			continue
		}
		if a[i].IsNull() {
			return -1, nil
		}
		if b[i].IsNull() {
			return 1, nil
		}
		c, err := CompareValues(a[i], b[i])
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}
	return cmpInt64(int64(len(a)), int64(len(b))), nil
}

// OrderCompare is the total-order comparator used by ORDER BY and window
// partition sorting: null sorts strictly before all non-null values,
// otherwise it defers to CompareValues. It never errors; an incompatible
// cross-type comparison (which should not arise from a single ORDER BY
// expression evaluated over a homogeneous column) falls back to comparing
// the two values' stringified kind names, keeping sort total.
func OrderCompare(a, b Value) int {
	if a.IsNull() && b.IsNull() {
		return 0
	}
	if a.IsNull() {
		return -1
	}
	if b.IsNull() {
		return 1
	}
	c, err := CompareValues(a, b)
	if err != nil {
		return strings.Compare(a.Kind().String(), b.Kind().String())
	}
	return c
}

// Equal implements SQL equality: reflexive for non-null values, and
// returns isNull=true (meaning "the predicate is null") whenever either
// operand is null — per spec's NULL-propagation invariant, null == null
// is false as a predicate even though it is a distinct value for grouping.
func Equal(a, b Value) (equal bool, isNull bool) {
	if a.IsNull() || b.IsNull() {
		return false, true
	}
	if a.Kind() == KindMap && b.Kind() == KindMap {
		return mapSetEqual(a, b), false
	}
	c, err := CompareValues(a, b)
	if err != nil {
		return false, false
	}
	return c == 0, false
}

func mapSetEqual(a, b Value) bool {
	ae, be := a.MapEntries(), b.MapEntries()
	if len(ae) != len(be) {
		return false
	}
	find := func(entries []MapEntry, key Value) (Value, bool) {
		for _, e := range entries {
			if eq, isNull := Equal(e.Key, key); !isNull && eq {
				return e.Value, true
			}
		}
		return Value{}, false
	}
	for _, e := range ae {
		v, ok := find(be, e.Key)
		if !ok {
			return false
		}
		if eq, isNull := Equal(e.Value, v); isNull || !eq {
			return false
		}
	}
	return true
}

// Truthy evaluates a value as a SQL boolean predicate outcome: returns
// (truthy, isNull). A Bool is its own value and a numeric value is false
// only when zero; every other non-null value (strings, arrays, ...) is
// true, even when empty.
func Truthy(v Value) (truthy bool, isNull bool) {
	if v.IsNull() {
		return false, true
	}
	switch {
	case v.Kind() == KindBool:
		return v.Bool(), false
	case v.Kind().IsSignedInteger():
		return v.Int64() != 0, false
	case v.Kind().IsUnsignedInteger():
		return v.Uint64() != 0, false
	case v.Kind().IsFloat():
		return v.Float64() != 0, false
	case v.Kind() == KindDecimal:
		return !v.Decimal().IsZero(), false
	default:
		return true, false
	}
}

// GroupKey stringifies v for use as a GROUP BY / DISTINCT / set-operation
// key, per spec §4.D and §9: null becomes a sentinel distinct from any
// non-null textual form.
func GroupKey(v Value) string {
	if v.IsNull() {
		return nullSentinel
	}
	switch v.Kind() {
	case KindString, KindFixedString:
		return "s:" + strconv.Quote(v.Str())
	case KindBool:
		return "b:" + strconv.FormatBool(v.Bool())
	case KindUUID:
		return "u:" + v.UUID().String()
	case KindDecimal:
		return "d:" + v.Decimal().String()
	case KindArray:
		parts := make([]string, len(v.Elements()))
		for i, e := range v.Elements() {
			parts[i] = GroupKey(e)
		}
		return "a:[" + strings.Join(parts, ",") + "]"
	case KindTuple:
		parts := make([]string, len(v.TupleElements()))
		for i, e := range v.TupleElements() {
			parts[i] = GroupKey(e)
		}
		return "t:(" + strings.Join(parts, ",") + ")"
	case KindMap:
		parts := make([]string, len(v.MapEntries()))
		for i, e := range v.MapEntries() {
			parts[i] = GroupKey(e.Key) + "=" + GroupKey(e.Value)
		}
		sort.Strings(parts)
		return "m:{" + strings.Join(parts, ",") + "}"
	case KindFloat32, KindFloat64:
		return "f:" + strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case KindDate, KindDateTime, KindDateTime64:
		return "dt:" + strconv.FormatInt(v.Int64(), 10)
	default:
		if v.Kind().IsUnsignedInteger() {
			return "i:" + strconv.FormatUint(v.Uint64(), 10)
		}
		return "i:" + strconv.FormatInt(v.Int64(), 10)
	}
}

// RowKey joins the GroupKey of each value with a separator byte that
// cannot occur in any individual key, forming a composite key for
// multi-expression GROUP BY, DISTINCT, and set-operation deduplication.
func RowKey(vals []Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = GroupKey(v)
	}
	return strings.Join(parts, groupSeparator)
}
