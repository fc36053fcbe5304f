// Package types implements chlite's closed runtime value and type model:
// a tagged family of scalar, composite, and null values with unified
// comparison, equality, and conversion semantics (spec §3, §4.C).
package types

// Kind tags both a Value's own concrete kind and a Type's kind. Types add
// two wrapper kinds, Nullable and LowCardinality, that never appear as a
// Value's own kind — nullability is a property of a column's Type, not of
// the value occupying a slot (a null Value always reports KindNull).
type Kind int

const (
	KindNull Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUInt8
	KindUInt16
	KindUInt32
	KindUInt64
	KindFloat32
	KindFloat64
	KindDecimal
	KindString
	KindFixedString
	KindBool
	KindDate
	KindDateTime
	KindDateTime64
	KindUUID
	KindArray
	KindTuple
	KindMap

	// Type-only wrapper kinds.
	KindNullable
	KindLowCardinality
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindInt8:
		return "Int8"
	case KindInt16:
		return "Int16"
	case KindInt32:
		return "Int32"
	case KindInt64:
		return "Int64"
	case KindUInt8:
		return "UInt8"
	case KindUInt16:
		return "UInt16"
	case KindUInt32:
		return "UInt32"
	case KindUInt64:
		return "UInt64"
	case KindFloat32:
		return "Float32"
	case KindFloat64:
		return "Float64"
	case KindDecimal:
		return "Decimal"
	case KindString:
		return "String"
	case KindFixedString:
		return "FixedString"
	case KindBool:
		return "Bool"
	case KindDate:
		return "Date"
	case KindDateTime:
		return "DateTime"
	case KindDateTime64:
		return "DateTime64"
	case KindUUID:
		return "UUID"
	case KindArray:
		return "Array"
	case KindTuple:
		return "Tuple"
	case KindMap:
		return "Map"
	case KindNullable:
		return "Nullable"
	case KindLowCardinality:
		return "LowCardinality"
	default:
		return "Unknown"
	}
}

// IsInteger reports whether k is one of the signed or unsigned integer kinds.
func (k Kind) IsInteger() bool {
	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64,
		KindUInt8, KindUInt16, KindUInt32, KindUInt64:
		return true
	}
	return false
}

// IsSignedInteger reports whether k is a signed integer kind.
func (k Kind) IsSignedInteger() bool {
	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	}
	return false
}

// IsUnsignedInteger reports whether k is an unsigned integer kind.
func (k Kind) IsUnsignedInteger() bool {
	switch k {
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64:
		return true
	}
	return false
}

// IsFloat reports whether k is a floating point kind.
func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// IsNumeric reports whether k participates in arithmetic: integers,
// floats, and decimal.
func (k Kind) IsNumeric() bool {
	return k.IsInteger() || k.IsFloat() || k == KindDecimal
}

// IsTemporal reports whether k is a date/time kind.
func (k Kind) IsTemporal() bool {
	return k == KindDate || k == KindDateTime || k == KindDateTime64
}
