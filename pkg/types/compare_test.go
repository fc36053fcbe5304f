package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompareValuesNumericCrossKind(t *testing.T) {
	c, err := CompareValues(NewInt32(3), NewFloat64(3.5))
	require.NoError(t, err)
	require.Equal(t, -1, c)

	c, err = CompareValues(NewUInt8(10), NewInt64(10))
	require.NoError(t, err)
	require.Equal(t, 0, c)
}

func TestCompareValuesStrings(t *testing.T) {
	c, err := CompareValues(NewString(KindString, "abc", 0), NewString(KindString, "abd", 0))
	require.NoError(t, err)
	require.Equal(t, -1, c)
}

func TestCompareValuesMapErrors(t *testing.T) {
	m := NewMap(StringType, Int64Type, nil)
	_, err := CompareValues(m, m)
	require.Error(t, err)
}

func TestCompareValuesArraysLexicographic(t *testing.T) {
	a := NewArray(Int64Type, []Value{NewInt64(1), NewInt64(2)})
	b := NewArray(Int64Type, []Value{NewInt64(1), NewInt64(3)})
	c, err := CompareValues(a, b)
	require.NoError(t, err)
	require.Equal(t, -1, c)

	shorter := NewArray(Int64Type, []Value{NewInt64(1)})
	c, err = CompareValues(shorter, a)
	require.NoError(t, err)
	require.Equal(t, -1, c)
}

func TestOrderCompareNullsFirst(t *testing.T) {
	require.Equal(t, -1, OrderCompare(NewNull(), NewInt64(1)))
	require.Equal(t, 1, OrderCompare(NewInt64(1), NewNull()))
	require.Equal(t, 0, OrderCompare(NewNull(), NewNull()))
}

func TestEqualNullPropagation(t *testing.T) {
	eq, isNull := Equal(NewNull(), NewNull())
	require.True(t, isNull)
	require.False(t, eq)

	eq, isNull = Equal(NewInt64(5), NewInt64(5))
	require.False(t, isNull)
	require.True(t, eq)
}

func TestEqualMapSetSemantics(t *testing.T) {
	m1 := NewMap(StringType, Int64Type, []MapEntry{
		{Key: NewString(KindString, "a", 0), Value: NewInt64(1)},
		{Key: NewString(KindString, "b", 0), Value: NewInt64(2)},
	})
	m2 := NewMap(StringType, Int64Type, []MapEntry{
		{Key: NewString(KindString, "b", 0), Value: NewInt64(2)},
		{Key: NewString(KindString, "a", 0), Value: NewInt64(1)},
	})
	eq, isNull := Equal(m1, m2)
	require.False(t, isNull)
	require.True(t, eq)
}

func TestTruthy(t *testing.T) {
	tv, isNull := Truthy(NewInt64(0))
	require.False(t, isNull)
	require.False(t, tv)

	tv, isNull = Truthy(NewInt64(5))
	require.False(t, isNull)
	require.True(t, tv)

	_, isNull = Truthy(NewNull())
	require.True(t, isNull)
}

func TestGroupKeyDistinguishesNullFromText(t *testing.T) {
	require.NotEqual(t, GroupKey(NewNull()), GroupKey(NewString(KindString, "NULL", 0)))
}

func TestGroupKeyStableAcrossEqualValues(t *testing.T) {
	require.Equal(t, GroupKey(NewInt32(5)), GroupKey(NewInt64(5)))
}

func TestRowKeyJoinsFields(t *testing.T) {
	k1 := RowKey([]Value{NewInt64(1), NewString(KindString, "a", 0)})
	k2 := RowKey([]Value{NewInt64(1), NewString(KindString, "a", 0)})
	k3 := RowKey([]Value{NewInt64(1), NewString(KindString, "b", 0)})
	require.Equal(t, k1, k2)
	require.NotEqual(t, k1, k3)
}
