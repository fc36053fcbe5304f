package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCastNullPropagates(t *testing.T) {
	v, err := Cast(NewNull(), Int64Type)
	require.NoError(t, err)
	require.True(t, v.IsNull())
}

func TestCastIntegerNarrowingOverflow(t *testing.T) {
	_, err := Cast(NewInt64(1000), Int8Type)
	require.Error(t, err)

	v, err := Cast(NewInt64(100), Int8Type)
	require.NoError(t, err)
	require.EqualValues(t, 100, v.Int64())
}

func TestCastUnsignedRejectsNegative(t *testing.T) {
	_, err := Cast(NewInt64(-1), UInt32Type)
	require.Error(t, err)
}

func TestCastStringToInt(t *testing.T) {
	v, err := Cast(NewString(KindString, "42", 0), Int64Type)
	require.NoError(t, err)
	require.EqualValues(t, 42, v.Int64())

	_, err = Cast(NewString(KindString, "abc", 0), Int64Type)
	require.Error(t, err)
}

func TestCastToString(t *testing.T) {
	v, err := Cast(NewInt64(42), StringType)
	require.NoError(t, err)
	require.Equal(t, "42", v.Str())
}

func TestCastToDecimal(t *testing.T) {
	ty := DecimalType(10, 2)
	v, err := Cast(NewFloat64(3.14159), ty)
	require.NoError(t, err)
	require.Equal(t, "3.14", v.Decimal().String())
}

func TestCastToNullableWrapsResult(t *testing.T) {
	v, err := Cast(NewString(KindString, "7", 0), Nullable(Int64Type))
	require.NoError(t, err)
	require.False(t, v.IsNull())
	require.EqualValues(t, 7, v.Int64())
}

func TestCastDateTimeStringRoundTrip(t *testing.T) {
	v, err := Cast(NewString(KindString, "2024-01-15 10:30:00", 0), DateTimeTZType(""))
	require.NoError(t, err)
	require.Equal(t, "2024-01-15 10:30:00", ToDisplayString(v))
}

func TestCastUUIDRoundTrip(t *testing.T) {
	v, err := Cast(NewString(KindString, "123e4567-e89b-12d3-a456-426614174000", 0), UUIDType)
	require.NoError(t, err)
	require.Equal(t, "123e4567-e89b-12d3-a456-426614174000", ToDisplayString(v))
}

func TestArithSignedIntegerStaysExact(t *testing.T) {
	v, err := Arith(OpAdd, NewInt32(2), NewInt32(3))
	require.NoError(t, err)
	require.Equal(t, KindInt64, v.Kind())
	require.EqualValues(t, 5, v.Int64())
}

func TestArithMixedSignPromotesToFloat(t *testing.T) {
	v, err := Arith(OpAdd, NewInt32(2), NewUInt32(3))
	require.NoError(t, err)
	require.Equal(t, KindFloat64, v.Kind())
	require.EqualValues(t, 5, v.Float64())
}

func TestArithDecimalStaysDecimal(t *testing.T) {
	ty := DecimalType(10, 2)
	a := NewDecimalFromString(ty, "1.50")
	b := NewDecimalFromString(ty, "2.25")
	v, err := Arith(OpAdd, a, b)
	require.NoError(t, err)
	require.Equal(t, KindDecimal, v.Kind())
	require.Equal(t, "3.75", v.Decimal().String())
}

func TestArithDivisionByZeroDecimal(t *testing.T) {
	ty := DecimalType(10, 2)
	a := NewDecimalFromString(ty, "1.00")
	z := NewDecimalFromString(ty, "0.00")
	_, err := Arith(OpDiv, a, z)
	require.Error(t, err)
}

func TestArithIntegerDivisionPromotesToFloat(t *testing.T) {
	v, err := Arith(OpDiv, NewInt64(7), NewInt64(2))
	require.NoError(t, err)
	require.Equal(t, KindFloat64, v.Kind())
	require.EqualValues(t, 3.5, v.Float64())
}
