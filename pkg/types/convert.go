package types

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// dateTimeLayouts are the accepted textual forms for Date/DateTime/DateTime64
// literals and string-to-temporal casts, tried in order (spec §9's open
// question on date parsing is pinned to this fixed ISO-8601-flavored set
// rather than a locale-aware parser).
var dateTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Cast converts v to target per spec §4.C's conversion policy: null casts
// to null under any target; otherwise the value is reconstructed for the
// destination kind, failing with a conversion error on overflow or
// unparseable text. Casting is never silently lossy for numeric narrowing:
// a value that overflows the destination width is an error, not a truncation.
func Cast(v Value, target Type) (Value, error) {
	if target.IsNullable() {
		if v.IsNull() {
			return NewNull(), nil
		}
		inner, err := Cast(v, target.Unwrap())
		if err != nil {
			return Value{}, err
		}
		return inner, nil
	}
	if v.IsNull() {
		return NewNull(), nil
	}
	target = target.Unwrap()

	switch target.Kind {
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return castToSignedInt(v, target.Kind)
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64:
		return castToUnsignedInt(v, target.Kind)
	case KindFloat32:
		f, err := castToFloat64(v)
		if err != nil {
			return Value{}, err
		}
		return NewFloat32(float32(f)), nil
	case KindFloat64:
		f, err := castToFloat64(v)
		if err != nil {
			return Value{}, err
		}
		return NewFloat64(f), nil
	case KindDecimal:
		return castToDecimal(v, target)
	case KindString:
		return NewString(KindString, ToDisplayString(v), 0), nil
	case KindFixedString:
		s := ToDisplayString(v)
		if len(s) > target.Length {
			return Value{}, fmt.Errorf("conversion: string %q too long for FixedString(%d)", s, target.Length)
		}
		return NewString(KindFixedString, s, target.Length), nil
	case KindBool:
		truthy, isNull := Truthy(v)
		if isNull {
			return NewNull(), nil
		}
		return NewBool(truthy), nil
	case KindDate:
		return castToDate(v)
	case KindDateTime, KindDateTime64:
		return castToDateTime(v, target)
	case KindUUID:
		return castToUUID(v)
	case KindArray:
		if v.Kind() != KindArray {
			return Value{}, fmt.Errorf("conversion: cannot cast %s to %s", v.Kind(), target)
		}
		elems := make([]Value, len(v.Elements()))
		for i, e := range v.Elements() {
			c, err := Cast(e, *target.Elem)
			if err != nil {
				return Value{}, err
			}
			elems[i] = c
		}
		return NewArray(*target.Elem, elems), nil
	default:
		return Value{}, fmt.Errorf("conversion: unsupported cast target %s", target)
	}
}

func overflowErr(target Kind, v Value) error {
	return fmt.Errorf("conversion: value out of range for %s", target)
}

func castToSignedInt(v Value, target Kind) (Value, error) {
	var i int64
	switch {
	case v.Kind().IsSignedInteger():
		i = v.Int64()
	case v.Kind().IsUnsignedInteger():
		if v.Uint64() > 1<<63-1 {
			return Value{}, overflowErr(target, v)
		}
		i = int64(v.Uint64())
	case v.Kind() == KindBool:
		i = v.Int64()
	case v.Kind().IsFloat():
		i = int64(v.Float64())
	case v.Kind() == KindDecimal:
		i = v.Decimal().IntPart()
	case v.Kind().IsTemporal():
		i = v.Int64()
	case v.Kind() == KindString || v.Kind() == KindFixedString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.Str()), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("conversion: cannot parse %q as %s", v.Str(), target)
		}
		i = n
	default:
		return Value{}, fmt.Errorf("conversion: cannot cast %s to %s", v.Kind(), target)
	}
	if !fitsSigned(target, i) {
		return Value{}, overflowErr(target, v)
	}
	return NewInt(target, i), nil
}

func fitsSigned(k Kind, i int64) bool {
	switch k {
	case KindInt8:
		return i >= -128 && i <= 127
	case KindInt16:
		return i >= -32768 && i <= 32767
	case KindInt32:
		return i >= -2147483648 && i <= 2147483647
	default:
		return true
	}
}

func castToUnsignedInt(v Value, target Kind) (Value, error) {
	var u uint64
	switch {
	case v.Kind().IsUnsignedInteger():
		u = v.Uint64()
	case v.Kind().IsSignedInteger():
		if v.Int64() < 0 {
			return Value{}, overflowErr(target, v)
		}
		u = uint64(v.Int64())
	case v.Kind() == KindBool:
		u = uint64(v.Int64())
	case v.Kind().IsFloat():
		if v.Float64() < 0 {
			return Value{}, overflowErr(target, v)
		}
		u = uint64(v.Float64())
	case v.Kind() == KindDecimal:
		if v.Decimal().IsNegative() {
			return Value{}, overflowErr(target, v)
		}
		u = uint64(v.Decimal().IntPart())
	case v.Kind() == KindString || v.Kind() == KindFixedString:
		n, err := strconv.ParseUint(strings.TrimSpace(v.Str()), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("conversion: cannot parse %q as %s", v.Str(), target)
		}
		u = n
	default:
		return Value{}, fmt.Errorf("conversion: cannot cast %s to %s", v.Kind(), target)
	}
	if !fitsUnsigned(target, u) {
		return Value{}, overflowErr(target, v)
	}
	return NewUint(target, u), nil
}

func fitsUnsigned(k Kind, u uint64) bool {
	switch k {
	case KindUInt8:
		return u <= 255
	case KindUInt16:
		return u <= 65535
	case KindUInt32:
		return u <= 4294967295
	default:
		return true
	}
}

func castToFloat64(v Value) (float64, error) {
	switch {
	case v.Kind() == KindString || v.Kind() == KindFixedString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str()), 64)
		if err != nil {
			return 0, fmt.Errorf("conversion: cannot parse %q as a float", v.Str())
		}
		return f, nil
	default:
		return asFloat64(v), nil
	}
}

func castToDecimal(v Value, target Type) (Value, error) {
	switch {
	case v.Kind() == KindDecimal:
		return NewDecimal(target, v.Decimal()), nil
	case v.Kind().IsSignedInteger():
		return NewDecimal(target, decimal.NewFromInt(v.Int64())), nil
	case v.Kind().IsUnsignedInteger():
		return NewDecimal(target, decimal.NewFromBigInt(new(big.Int).SetUint64(v.Uint64()), 0)), nil
	case v.Kind().IsFloat():
		return NewDecimal(target, decimal.NewFromFloat(v.Float64())), nil
	case v.Kind() == KindString || v.Kind() == KindFixedString:
		d, err := decimal.NewFromString(strings.TrimSpace(v.Str()))
		if err != nil {
			return Value{}, fmt.Errorf("conversion: cannot parse %q as Decimal", v.Str())
		}
		return NewDecimal(target, d), nil
	default:
		return Value{}, fmt.Errorf("conversion: cannot cast %s to Decimal", v.Kind())
	}
}

func castToDate(v Value) (Value, error) {
	switch {
	case v.Kind() == KindDate:
		return v, nil
	case v.Kind() == KindDateTime || v.Kind() == KindDateTime64:
		return NewDate(v.Int64() / 86400), nil
	case v.Kind() == KindString || v.Kind() == KindFixedString:
		t, err := parseDateTime(v.Str())
		if err != nil {
			return Value{}, err
		}
		return NewDate(t.Unix() / 86400), nil
	case v.Kind().IsInteger():
		return NewDate(v.Int64()), nil
	default:
		return Value{}, fmt.Errorf("conversion: cannot cast %s to Date", v.Kind())
	}
}

func castToDateTime(v Value, target Type) (Value, error) {
	switch {
	case v.Kind() == KindDate:
		return NewDateTime(target.Kind, v.Int64(), target.TimePrecision, target.Timezone), nil
	case v.Kind() == KindDateTime || v.Kind() == KindDateTime64:
		return NewDateTime(target.Kind, v.Int64(), target.TimePrecision, target.Timezone), nil
	case v.Kind() == KindString || v.Kind() == KindFixedString:
		t, err := parseDateTime(v.Str())
		if err != nil {
			return Value{}, err
		}
		return NewDateTime(target.Kind, t.Unix(), target.TimePrecision, target.Timezone), nil
	case v.Kind().IsInteger():
		return NewDateTime(target.Kind, v.Int64(), target.TimePrecision, target.Timezone), nil
	default:
		return Value{}, fmt.Errorf("conversion: cannot cast %s to %s", v.Kind(), target)
	}
}

// parseDateTime parses s against the fixed ISO-8601-flavored layout set,
// interpreting naive timestamps as UTC (spec §9's pinned date parsing).
func parseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("conversion: cannot parse %q as a date/time", s)
}

func castToUUID(v Value) (Value, error) {
	switch {
	case v.Kind() == KindUUID:
		return v, nil
	case v.Kind() == KindString || v.Kind() == KindFixedString:
		u, err := uuid.Parse(strings.TrimSpace(v.Str()))
		if err != nil {
			return Value{}, fmt.Errorf("conversion: cannot parse %q as UUID", v.Str())
		}
		return NewUUID(u), nil
	default:
		return Value{}, fmt.Errorf("conversion: cannot cast %s to UUID", v.Kind())
	}
}

// ToDisplayString renders v the way it would appear in result output or
// after an implicit cast to String: no null sentinel (callers handle null
// separately), canonical formatting per kind.
func ToDisplayString(v Value) string {
	if v.IsNull() {
		return ""
	}
	switch v.Kind() {
	case KindString, KindFixedString:
		return v.Str()
	case KindBool:
		return strconv.FormatBool(v.Bool())
	case KindDecimal:
		return v.Decimal().StringFixed(int32(v.Type().Scale))
	case KindFloat32, KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case KindUUID:
		return v.UUID().String()
	case KindDate:
		return time.Unix(v.Int64(), 0).UTC().Format("2006-01-02")
	case KindDateTime, KindDateTime64:
		return time.Unix(v.Int64(), 0).UTC().Format("2006-01-02 15:04:05")
	case KindArray:
		parts := make([]string, len(v.Elements()))
		for i, e := range v.Elements() {
			parts[i] = elementDisplayString(e)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case KindTuple:
		parts := make([]string, len(v.TupleElements()))
		for i, e := range v.TupleElements() {
			parts[i] = elementDisplayString(e)
		}
		return "(" + strings.Join(parts, ",") + ")"
	case KindMap:
		parts := make([]string, len(v.MapEntries()))
		for i, e := range v.MapEntries() {
			parts[i] = elementDisplayString(e.Key) + ":" + elementDisplayString(e.Value)
		}
		return "{" + strings.Join(parts, ",") + "}"
	default:
		if v.Kind().IsUnsignedInteger() {
			return strconv.FormatUint(v.Uint64(), 10)
		}
		return strconv.FormatInt(v.Int64(), 10)
	}
}

func elementDisplayString(v Value) string {
	if v.IsNull() {
		return "NULL"
	}
	if v.Kind() == KindString || v.Kind() == KindFixedString {
		return "'" + strings.ReplaceAll(v.Str(), "'", "''") + "'"
	}
	return ToDisplayString(v)
}

// Arithmetic op tags for Add/Sub/Mul/Div.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
)

// Arith applies op to two non-null numeric values under spec §4.C's
// promotion rules: same signed-integer kind stays int64 widened to Int64,
// same unsigned-integer kind stays uint64 widened to UInt64, decimal
// operands stay Decimal, anything else (mixed signedness, any float)
// promotes through float64. Division always promotes to Float64 except
// when either operand is Decimal, which keeps a Decimal result.
func Arith(op ArithOp, a, b Value) (Value, error) {
	if !a.Kind().IsNumeric() || !b.Kind().IsNumeric() {
		return Value{}, fmt.Errorf("type: arithmetic requires numeric operands, got %s and %s", a.Kind(), b.Kind())
	}
	if a.Kind() == KindDecimal || b.Kind() == KindDecimal {
		return arithDecimal(op, a, b)
	}
	if op != OpDiv && a.Kind().IsSignedInteger() && b.Kind().IsSignedInteger() {
		return NewInt64(arithInt64(op, a.Int64(), b.Int64())), nil
	}
	if op != OpDiv && a.Kind().IsUnsignedInteger() && b.Kind().IsUnsignedInteger() {
		return NewUInt64(arithUint64(op, a.Uint64(), b.Uint64())), nil
	}
	af, bf := asFloat64(a), asFloat64(b)
	return NewFloat64(arithFloat64(op, af, bf)), nil
}

func arithInt64(op ArithOp, a, b int64) int64 {
	switch op {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	default:
		return a
	}
}

func arithUint64(op ArithOp, a, b uint64) uint64 {
	switch op {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	default:
		return a
	}
}

func arithFloat64(op ArithOp, a, b float64) float64 {
	switch op {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	default:
		return a / b
	}
}

func arithDecimal(op ArithOp, a, b Value) (Value, error) {
	da, db := toDecimalOperand(a), toDecimalOperand(b)
	scale := a.Type().Scale
	if b.Kind() == KindDecimal && b.Type().Scale > scale {
		scale = b.Type().Scale
	}
	var r decimal.Decimal
	switch op {
	case OpAdd:
		r = da.Add(db)
	case OpSub:
		r = da.Sub(db)
	case OpMul:
		r = da.Mul(db)
	case OpDiv:
		if db.IsZero() {
			return Value{}, fmt.Errorf("conversion: division by zero")
		}
		r = da.DivRound(db, int32(scale)+4)
	}
	precision := 38
	return NewDecimal(DecimalType(precision, scale), r), nil
}

func toDecimalOperand(v Value) decimal.Decimal {
	switch {
	case v.Kind() == KindDecimal:
		return v.Decimal()
	case v.Kind().IsSignedInteger():
		return decimal.NewFromInt(v.Int64())
	case v.Kind().IsUnsignedInteger():
		return decimal.NewFromBigInt(new(big.Int).SetUint64(v.Uint64()), 0)
	default:
		return decimal.NewFromFloat(asFloat64(v))
	}
}
