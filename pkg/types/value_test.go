package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNullValue(t *testing.T) {
	n := NewNull()
	require.True(t, n.IsNull())
	require.Equal(t, KindNull, n.Kind())
}

func TestIntegerConstructors(t *testing.T) {
	v := NewInt8(-5)
	require.Equal(t, KindInt8, v.Kind())
	require.EqualValues(t, -5, v.Int64())

	u := NewUInt32(42)
	require.Equal(t, KindUInt32, u.Kind())
	require.EqualValues(t, 42, u.Uint64())
}

func TestDecimalRounding(t *testing.T) {
	ty := DecimalType(10, 2)
	v := NewDecimalFromString(ty, "1.005")
	require.Equal(t, "1.01", v.Decimal().String())
}

func TestStringAndFixedString(t *testing.T) {
	s := NewString(KindString, "hello", 0)
	require.Equal(t, "hello", s.Str())

	fs := NewString(KindFixedString, "hi", 8)
	require.Equal(t, KindFixedString, fs.Kind())
	require.Equal(t, 8, fs.Type().Length)
}

func TestBoolValue(t *testing.T) {
	require.True(t, NewBool(true).Bool())
	require.False(t, NewBool(false).Bool())
}

func TestUUIDValue(t *testing.T) {
	id := uuid.New()
	v := NewUUID(id)
	require.Equal(t, id, v.UUID())
	require.True(t, NewUUIDZero().UUID().String() == "00000000-0000-0000-0000-000000000000")
}

func TestArrayValue(t *testing.T) {
	arr := NewArray(Int64Type, []Value{NewInt64(1), NewInt64(2), NewInt64(3)})
	require.Len(t, arr.Elements(), 3)
	require.Equal(t, "Array(Int64)", arr.Type().String())
}

func TestTupleValue(t *testing.T) {
	tup := NewTuple([]Value{NewInt64(1), NewString(KindString, "x", 0)}, []string{"a", "b"})
	require.Equal(t, []string{"a", "b"}, tup.TupleNames())
	require.Len(t, tup.TupleElements(), 2)
}

func TestMapValue(t *testing.T) {
	m := NewMap(StringType, Int64Type, []MapEntry{
		{Key: NewString(KindString, "a", 0), Value: NewInt64(1)},
	})
	require.Len(t, m.MapEntries(), 1)
	require.Equal(t, "Map(String, Int64)", m.Type().String())
}

func TestDateTimeSecondsRoundTrip(t *testing.T) {
	v := NewDateTime(KindDateTime, 1700000000, 0, "")
	require.EqualValues(t, 1700000000, v.Int64())
}
