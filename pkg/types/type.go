package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Type is chlite's closed type variant: a Kind tag plus the parameters
// that kind needs (array/nullable/low-cardinality element, tuple elements
// and optional names, map key/value, fixed-string length, decimal
// precision/scale, datetime64 sub-second precision and timezone label).
type Type struct {
	Kind Kind

	// FixedString(N)
	Length int

	// Decimal[32/64/128/256](P[, S])
	Precision int
	Scale     int

	// DateTime64(N, ['TZ'])  — DateTime may also carry a timezone.
	TimePrecision int
	Timezone      string

	// Array(Elem), Nullable(Elem), LowCardinality(Elem)
	Elem *Type

	// Tuple(T1, T2, ...) with optional per-element names (empty = unnamed)
	Elems []Type
	Names []string

	// Map(Key, Value)
	Key   *Type
	Value *Type
}

func scalar(k Kind) Type { return Type{Kind: k} }

var (
	Int8Type    = scalar(KindInt8)
	Int16Type   = scalar(KindInt16)
	Int32Type   = scalar(KindInt32)
	Int64Type   = scalar(KindInt64)
	UInt8Type   = scalar(KindUInt8)
	UInt16Type  = scalar(KindUInt16)
	UInt32Type  = scalar(KindUInt32)
	UInt64Type  = scalar(KindUInt64)
	Float32Type = scalar(KindFloat32)
	Float64Type = scalar(KindFloat64)
	StringType  = scalar(KindString)
	BoolType    = scalar(KindBool)
	DateType    = scalar(KindDate)
	DateTimeT   = scalar(KindDateTime)
	UUIDType    = scalar(KindUUID)
	NullType    = scalar(KindNull)
)

// FixedStringType constructs FixedString(n).
func FixedStringType(n int) Type { return Type{Kind: KindFixedString, Length: n} }

// DecimalType constructs Decimal(p, s).
func DecimalType(p, s int) Type { return Type{Kind: KindDecimal, Precision: p, Scale: s} }

// DateTime64Type constructs DateTime64(precision[, tz]).
func DateTime64Type(precision int, tz string) Type {
	return Type{Kind: KindDateTime64, TimePrecision: precision, Timezone: tz}
}

// DateTimeTZType constructs DateTime(['tz']).
func DateTimeTZType(tz string) Type {
	return Type{Kind: KindDateTime, Timezone: tz}
}

// ArrayType constructs Array(elem).
func ArrayType(elem Type) Type { return Type{Kind: KindArray, Elem: &elem} }

// TupleType constructs Tuple(elems...) with optional parallel names (pass
// nil or a slice of empty strings for unnamed elements).
func TupleType(elems []Type, names []string) Type {
	return Type{Kind: KindTuple, Elems: elems, Names: names}
}

// MapType constructs Map(key, value).
func MapType(key, value Type) Type {
	return Type{Kind: KindMap, Key: &key, Value: &value}
}

// Nullable wraps t as Nullable(t). Wrapping an already-nullable type is a
// no-op (ClickHouse forbids Nullable(Nullable(T)); chlite just flattens).
func Nullable(t Type) Type {
	if t.Kind == KindNullable {
		return t
	}
	return Type{Kind: KindNullable, Elem: &t}
}

// LowCardinality wraps t as LowCardinality(t).
func LowCardinality(t Type) Type {
	return Type{Kind: KindLowCardinality, Elem: &t}
}

// IsNullable reports whether t is a Nullable(...) wrapper.
func (t Type) IsNullable() bool { return t.Kind == KindNullable }

// Unwrap strips Nullable and LowCardinality wrappers to reach the
// underlying concrete type.
func (t Type) Unwrap() Type {
	for t.Kind == KindNullable || t.Kind == KindLowCardinality {
		t = *t.Elem
	}
	return t
}

// String renders the canonical ClickHouse-flavored spelling of t.
func (t Type) String() string {
	switch t.Kind {
	case KindFixedString:
		return fmt.Sprintf("FixedString(%d)", t.Length)
	case KindDecimal:
		if t.Scale != 0 {
			return fmt.Sprintf("Decimal(%d, %d)", t.Precision, t.Scale)
		}
		return fmt.Sprintf("Decimal(%d, 0)", t.Precision)
	case KindDateTime:
		if t.Timezone != "" {
			return fmt.Sprintf("DateTime('%s')", t.Timezone)
		}
		return "DateTime"
	case KindDateTime64:
		if t.Timezone != "" {
			return fmt.Sprintf("DateTime64(%d, '%s')", t.TimePrecision, t.Timezone)
		}
		return fmt.Sprintf("DateTime64(%d)", t.TimePrecision)
	case KindArray:
		return fmt.Sprintf("Array(%s)", t.Elem.String())
	case KindNullable:
		return fmt.Sprintf("Nullable(%s)", t.Elem.String())
	case KindLowCardinality:
		return fmt.Sprintf("LowCardinality(%s)", t.Elem.String())
	case KindMap:
		return fmt.Sprintf("Map(%s, %s)", t.Key.String(), t.Value.String())
	case KindTuple:
		parts := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			if i < len(t.Names) && t.Names[i] != "" {
				parts[i] = t.Names[i] + " " + e.String()
			} else {
				parts[i] = e.String()
			}
		}
		return fmt.Sprintf("Tuple(%s)", strings.Join(parts, ", "))
	default:
		return t.Kind.String()
	}
}

// Equals compares two types structurally.
func (t Type) Equals(o Type) bool {
	return t.String() == o.String()
}

// DefaultValue returns the zero value for t (not NULL, unless t is
// Nullable and has no explicit default — used by INSERT/CREATE TABLE
// column defaults when none is specified).
func (t Type) DefaultValue() Value {
	if t.IsNullable() {
		return NewNull()
	}
	switch t.Unwrap().Kind {
	case KindString, KindFixedString:
		return NewString(t.Unwrap().Kind, "", t.Unwrap().Length)
	case KindBool:
		return NewBool(false)
	case KindFloat32:
		return NewFloat32(0)
	case KindFloat64:
		return NewFloat64(0)
	case KindDecimal:
		return NewDecimalFromString(t.Unwrap(), "0")
	case KindDate:
		return NewDate(0)
	case KindDateTime, KindDateTime64:
		return NewDateTime(t.Unwrap().Kind, 0, t.Unwrap().TimePrecision, t.Unwrap().Timezone)
	case KindUUID:
		return NewUUIDZero()
	case KindArray:
		return NewArray(*t.Unwrap().Elem, nil)
	case KindTuple:
		elems := make([]Value, len(t.Unwrap().Elems))
		for i, et := range t.Unwrap().Elems {
			elems[i] = et.DefaultValue()
		}
		return NewTuple(elems, t.Unwrap().Names)
	case KindMap:
		return NewMap(*t.Unwrap().Key, *t.Unwrap().Value, nil)
	default:
		return NewInt(t.Unwrap().Kind, 0)
	}
}

// ParseTypeName parses a free-form type expression such as "Array(Nullable(Int64))",
// "Decimal(18, 4)", "DateTime64(3, 'UTC')", or "Enum8('a'=1,'b'=2)" into the
// closed Type variant (spec §4.C). Used by CAST and CREATE TABLE column types.
func ParseTypeName(s string) (Type, error) {
	p := &typeNameParser{src: s}
	t, err := p.parseType()
	if err != nil {
		return Type{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return Type{}, fmt.Errorf("type: unexpected trailing input %q", p.src[p.pos:])
	}
	return t, nil
}

type typeNameParser struct {
	src string
	pos int
}

func (p *typeNameParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t' || p.src[p.pos] == '\n') {
		p.pos++
	}
}

func (p *typeNameParser) parseType() (Type, error) {
	p.skipSpace()
	name := p.readIdent()
	if name == "" {
		return Type{}, fmt.Errorf("type: expected type name at %q", p.src[p.pos:])
	}
	upper := strings.ToUpper(name)

	switch upper {
	case "NULLABLE":
		inner, err := p.parseParenType()
		if err != nil {
			return Type{}, err
		}
		return Nullable(inner), nil
	case "LOWCARDINALITY":
		inner, err := p.parseParenType()
		if err != nil {
			return Type{}, err
		}
		return LowCardinality(inner), nil
	case "ARRAY":
		inner, err := p.parseParenType()
		if err != nil {
			return Type{}, err
		}
		return ArrayType(inner), nil
	case "MAP":
		if !p.consume('(') {
			return Type{}, fmt.Errorf("type: expected '(' after Map")
		}
		k, err := p.parseType()
		if err != nil {
			return Type{}, err
		}
		p.skipSpace()
		if !p.consume(',') {
			return Type{}, fmt.Errorf("type: expected ',' in Map(...)")
		}
		v, err := p.parseType()
		if err != nil {
			return Type{}, err
		}
		p.skipSpace()
		if !p.consume(')') {
			return Type{}, fmt.Errorf("type: expected ')' to close Map(...)")
		}
		return MapType(k, v), nil
	case "TUPLE":
		if !p.consume('(') {
			return Type{}, fmt.Errorf("type: expected '(' after Tuple")
		}
		var elems []Type
		var names []string
		for {
			p.skipSpace()
			save := p.pos
			name := p.readIdent()
			p.skipSpace()
			if name != "" && p.pos < len(p.src) && p.src[p.pos] != ',' && p.src[p.pos] != ')' {
				et, err := p.parseType()
				if err != nil {
					return Type{}, err
				}
				names = append(names, name)
				elems = append(elems, et)
			} else {
				p.pos = save
				et, err := p.parseType()
				if err != nil {
					return Type{}, err
				}
				names = append(names, "")
				elems = append(elems, et)
			}
			p.skipSpace()
			if p.consume(',') {
				continue
			}
			break
		}
		if !p.consume(')') {
			return Type{}, fmt.Errorf("type: expected ')' to close Tuple(...)")
		}
		return TupleType(elems, names), nil
	case "FIXEDSTRING":
		n, err := p.parseSingleIntParen()
		if err != nil {
			return Type{}, err
		}
		return FixedStringType(n), nil
	case "DECIMAL", "DECIMAL32", "DECIMAL64", "DECIMAL128", "DECIMAL256", "NUMERIC":
		prec, scale, err := p.parseDecimalParams(upper)
		if err != nil {
			return Type{}, err
		}
		return DecimalType(prec, scale), nil
	case "DATETIME64":
		prec, tz, err := p.parseDateTime64Params()
		if err != nil {
			return Type{}, err
		}
		return DateTime64Type(prec, tz), nil
	case "DATETIME", "TIMESTAMP":
		tz, err := p.parseOptionalTZParen()
		if err != nil {
			return Type{}, err
		}
		return DateTimeTZType(tz), nil
	case "DATE":
		return DateType, nil
	case "BOOL", "BOOLEAN":
		return BoolType, nil
	case "UUID", "GUID":
		return UUIDType, nil
	case "STRING", "VARCHAR", "TEXT", "CHAR":
		p.skipOptionalIntParen()
		return StringType, nil
	case "INT8", "TINYINT":
		return Int8Type, nil
	case "INT16", "SMALLINT":
		return Int16Type, nil
	case "INT32", "INT", "INTEGER":
		return Int32Type, nil
	case "INT64", "BIGINT":
		return Int64Type, nil
	case "UINT8":
		return UInt8Type, nil
	case "UINT16":
		return UInt16Type, nil
	case "UINT32":
		return UInt32Type, nil
	case "UINT64":
		return UInt64Type, nil
	case "FLOAT32", "REAL":
		return Float32Type, nil
	case "FLOAT64", "DOUBLE", "FLOAT":
		return Float64Type, nil
	case "ENUM8", "ENUM16":
		p.skipEnumParen()
		return StringType, nil
	default:
		return Type{}, fmt.Errorf("type: unknown type name %q", name)
	}
}

func (p *typeNameParser) parseParenType() (Type, error) {
	if !p.consume('(') {
		return Type{}, fmt.Errorf("type: expected '('")
	}
	t, err := p.parseType()
	if err != nil {
		return Type{}, err
	}
	p.skipSpace()
	if !p.consume(')') {
		return Type{}, fmt.Errorf("type: expected ')'")
	}
	return t, nil
}

func (p *typeNameParser) parseSingleIntParen() (int, error) {
	if !p.consume('(') {
		return 0, fmt.Errorf("type: expected '('")
	}
	p.skipSpace()
	n := p.readIdent()
	v, err := strconv.Atoi(n)
	if err != nil {
		return 0, fmt.Errorf("type: expected integer, got %q", n)
	}
	p.skipSpace()
	if !p.consume(')') {
		return 0, fmt.Errorf("type: expected ')'")
	}
	return v, nil
}

func (p *typeNameParser) skipOptionalIntParen() {
	save := p.pos
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '(' {
		depth := 0
		for p.pos < len(p.src) {
			if p.src[p.pos] == '(' {
				depth++
			} else if p.src[p.pos] == ')' {
				depth--
				if depth == 0 {
					p.pos++
					return
				}
			}
			p.pos++
		}
	}
	p.pos = save
}

func (p *typeNameParser) skipEnumParen() {
	p.skipOptionalIntParen()
}

func (p *typeNameParser) parseDecimalParams(upper string) (int, int, error) {
	defaultPrecisionByWidth := map[string]int{
		"DECIMAL32": 9, "DECIMAL64": 18, "DECIMAL128": 38, "DECIMAL256": 76,
	}
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '(' {
		if dp, ok := defaultPrecisionByWidth[upper]; ok {
			return dp, 0, nil
		}
		return 10, 0, nil
	}
	p.consume('(')
	p.skipSpace()
	first := p.readIdent()
	prec, err := strconv.Atoi(first)
	if err != nil {
		return 0, 0, fmt.Errorf("type: bad decimal precision %q", first)
	}
	scale := 0
	p.skipSpace()
	if p.consume(',') {
		p.skipSpace()
		sec := p.readIdent()
		scale, err = strconv.Atoi(sec)
		if err != nil {
			return 0, 0, fmt.Errorf("type: bad decimal scale %q", sec)
		}
	} else if dp, ok := defaultPrecisionByWidth[upper]; ok {
		scale = prec
		prec = dp
	}
	p.skipSpace()
	if !p.consume(')') {
		return 0, 0, fmt.Errorf("type: expected ')' to close Decimal(...)")
	}
	return prec, scale, nil
}

func (p *typeNameParser) parseDateTime64Params() (int, string, error) {
	if !p.consume('(') {
		return 0, "", fmt.Errorf("type: expected '(' after DateTime64")
	}
	p.skipSpace()
	n := p.readIdent()
	prec, err := strconv.Atoi(n)
	if err != nil {
		return 0, "", fmt.Errorf("type: bad DateTime64 precision %q", n)
	}
	tz := ""
	p.skipSpace()
	if p.consume(',') {
		p.skipSpace()
		tz = p.readStringLiteral()
	}
	p.skipSpace()
	if !p.consume(')') {
		return 0, "", fmt.Errorf("type: expected ')' to close DateTime64(...)")
	}
	return prec, tz, nil
}

func (p *typeNameParser) parseOptionalTZParen() (string, error) {
	save := p.pos
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '(' {
		p.pos = save
		return "", nil
	}
	p.consume('(')
	p.skipSpace()
	tz := p.readStringLiteral()
	p.skipSpace()
	if !p.consume(')') {
		return "", fmt.Errorf("type: expected ')' to close DateTime(...)")
	}
	return tz, nil
}

func (p *typeNameParser) readStringLiteral() string {
	if p.pos >= len(p.src) || p.src[p.pos] != '\'' {
		return p.readIdent()
	}
	p.pos++
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != '\'' {
		p.pos++
	}
	s := p.src[start:p.pos]
	if p.pos < len(p.src) {
		p.pos++
	}
	return s
}

func (p *typeNameParser) consume(b byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == b {
		p.pos++
		return true
	}
	return false
}

func (p *typeNameParser) readIdent() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '(' || c == ')' || c == ',' || c == ' ' || c == '\t' || c == '\n' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}
