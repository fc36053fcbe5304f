package types

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MapEntry is one key/value pair of a Map value. Map values keep entries
// in insertion order so stringification (grouping keys, printing) is
// deterministic, even though Map itself is unordered at the SQL level.
type MapEntry struct {
	Key   Value
	Value Value
}

// Value is chlite's closed runtime value variant (spec §3). Every Value
// carries its own concrete Kind (never Nullable/LowCardinality — those
// are Type-only wrappers) and answers IsNull regardless of kind.
type Value struct {
	kind Kind

	i64 int64   // signed integers, Bool (0/1), Date/DateTime/DateTime64 (seconds since epoch)
	u64 uint64  // unsigned integers
	f64 float64 // Float32/Float64
	dec decimal.Decimal
	str string // String/FixedString
	uid uuid.UUID

	fixedLen int // FixedString declared length
	tzPrec   int // DateTime64 sub-second precision, reused as Decimal scale
	tz       string

	elemType Type
	arr      []Value

	tupNames []string
	tup      []Value

	keyType Type
	valType Type
	entries []MapEntry

	isNull bool
}

// NewNull returns the null value, assignable to any nullable slot.
func NewNull() Value { return Value{kind: KindNull, isNull: true} }

// NewInt constructs a signed or unsigned integer Value of the given kind.
func NewInt(k Kind, v int64) Value {
	if k.IsUnsignedInteger() {
		return Value{kind: k, u64: uint64(v)}
	}
	return Value{kind: k, i64: v}
}

// NewUint constructs an unsigned integer Value directly from a uint64.
func NewUint(k Kind, v uint64) Value { return Value{kind: k, u64: v} }

func NewInt8(v int8) Value   { return Value{kind: KindInt8, i64: int64(v)} }
func NewInt16(v int16) Value { return Value{kind: KindInt16, i64: int64(v)} }
func NewInt32(v int32) Value { return Value{kind: KindInt32, i64: int64(v)} }
func NewInt64(v int64) Value { return Value{kind: KindInt64, i64: v} }

func NewUInt8(v uint8) Value   { return Value{kind: KindUInt8, u64: uint64(v)} }
func NewUInt16(v uint16) Value { return Value{kind: KindUInt16, u64: uint64(v)} }
func NewUInt32(v uint32) Value { return Value{kind: KindUInt32, u64: uint64(v)} }
func NewUInt64(v uint64) Value { return Value{kind: KindUInt64, u64: v} }

func NewFloat32(v float32) Value { return Value{kind: KindFloat32, f64: float64(v)} }
func NewFloat64(v float64) Value { return Value{kind: KindFloat64, f64: v} }

// NewDecimal constructs a Decimal value from a decimal.Decimal, tagging it
// with the owning Decimal(P,S) type for rescale-on-display purposes.
func NewDecimal(t Type, d decimal.Decimal) Value {
	return Value{kind: KindDecimal, dec: d.Round(int32(t.Scale)), fixedLen: t.Precision, tzPrec: t.Scale}
}

// NewDecimalFromString parses s into a Decimal(P,S) value.
func NewDecimalFromString(t Type, s string) Value {
	d, err := decimal.NewFromString(s)
	if err != nil {
		d = decimal.Zero
	}
	return NewDecimal(t, d)
}

// NewString constructs a String or FixedString value. For FixedString,
// length is the declared N; values are stored and compared as ordinary
// Go strings (no null-padding at the value level).
func NewString(k Kind, s string, length int) Value {
	return Value{kind: k, str: s, fixedLen: length}
}

func NewBool(b bool) Value {
	if b {
		return Value{kind: KindBool, i64: 1}
	}
	return Value{kind: KindBool, i64: 0}
}

// NewDate constructs a Date value from days since the Unix epoch.
func NewDate(days int64) Value { return Value{kind: KindDate, i64: days * 86400} }

// NewDateTime constructs a DateTime or DateTime64 value from seconds since
// the Unix epoch (sub-second precision is accepted into the type tag but,
// per spec §9's open question, not preserved at the value level).
func NewDateTime(k Kind, seconds int64, precision int, tz string) Value {
	return Value{kind: k, i64: seconds, tzPrec: precision, tz: tz}
}

func NewUUID(u uuid.UUID) Value { return Value{kind: KindUUID, uid: u} }
func NewUUIDZero() Value        { return Value{kind: KindUUID} }

// NewArray constructs an Array(elemType) value. elemType is the declared
// element type (used for empty arrays and for Type()).
func NewArray(elemType Type, elems []Value) Value {
	return Value{kind: KindArray, elemType: elemType, arr: elems}
}

// NewTuple constructs a Tuple value, optionally with per-position names
// (pass nil for a purely positional tuple).
func NewTuple(elems []Value, names []string) Value {
	return Value{kind: KindTuple, tup: elems, tupNames: names}
}

// NewMap constructs a Map(keyType, valueType) value from ordered entries.
func NewMap(keyType, valueType Type, entries []MapEntry) Value {
	return Value{kind: KindMap, keyType: keyType, valType: valueType, entries: entries}
}

// Kind returns the value's own concrete kind (never Null-wrapper types).
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.isNull || v.kind == KindNull }

// Type returns the value's type. Composite values report the declared
// element/member types they were constructed with.
func (v Value) Type() Type {
	switch v.kind {
	case KindFixedString:
		return FixedStringType(v.fixedLen)
	case KindDecimal:
		return DecimalType(v.fixedLen, v.tzPrec)
	case KindDateTime:
		return DateTimeTZType(v.tz)
	case KindDateTime64:
		return DateTime64Type(v.tzPrec, v.tz)
	case KindArray:
		return ArrayType(v.elemType)
	case KindTuple:
		elemTypes := make([]Type, len(v.tup))
		for i, e := range v.tup {
			elemTypes[i] = e.Type()
		}
		return TupleType(elemTypes, v.tupNames)
	case KindMap:
		return MapType(v.keyType, v.valType)
	default:
		return Type{Kind: v.kind}
	}
}

// Int64 returns the value's signed integer reading (integers, Bool as
// 0/1, Date/DateTime/DateTime64 as seconds since epoch).
func (v Value) Int64() int64 { return v.i64 }

// Uint64 returns the value's unsigned integer reading.
func (v Value) Uint64() uint64 { return v.u64 }

// Float64 returns the value's float reading.
func (v Value) Float64() float64 { return v.f64 }

// Decimal returns the underlying decimal.Decimal.
func (v Value) Decimal() decimal.Decimal { return v.dec }

// Str returns the underlying string (String/FixedString).
func (v Value) Str() string { return v.str }

// Bool returns the truth reading of a Bool value.
func (v Value) Bool() bool { return v.i64 != 0 }

// UUID returns the underlying uuid.UUID.
func (v Value) UUID() uuid.UUID { return v.uid }

// DateDays returns days since the Unix epoch for a Date value.
func (v Value) DateDays() int64 { return v.i64 / 86400 }

// Elements returns an Array value's elements.
func (v Value) Elements() []Value { return v.arr }

// TupleElements returns a Tuple value's positional elements.
func (v Value) TupleElements() []Value { return v.tup }

// TupleNames returns a Tuple value's optional element names.
func (v Value) TupleNames() []string { return v.tupNames }

// MapEntries returns a Map value's entries in insertion order.
func (v Value) MapEntries() []MapEntry { return v.entries }
