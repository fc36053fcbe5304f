package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTypeNameScalars(t *testing.T) {
	cases := map[string]Kind{
		"Int64":    KindInt64,
		"UInt8":    KindUInt8,
		"Float64":  KindFloat64,
		"String":   KindString,
		"Bool":     KindBool,
		"Date":     KindDate,
		"UUID":     KindUUID,
		"DateTime": KindDateTime,
	}
	for s, k := range cases {
		ty, err := ParseTypeName(s)
		require.NoError(t, err, s)
		require.Equal(t, k, ty.Kind, s)
	}
}

func TestParseTypeNameNullable(t *testing.T) {
	ty, err := ParseTypeName("Nullable(Int32)")
	require.NoError(t, err)
	require.True(t, ty.IsNullable())
	require.Equal(t, KindInt32, ty.Unwrap().Kind)
	require.Equal(t, "Nullable(Int32)", ty.String())
}

func TestParseTypeNameNestedNullableFlattens(t *testing.T) {
	ty := Nullable(Nullable(Int64Type))
	require.Equal(t, "Nullable(Int64)", ty.String())
}

func TestParseTypeNameArray(t *testing.T) {
	ty, err := ParseTypeName("Array(Nullable(String))")
	require.NoError(t, err)
	require.Equal(t, KindArray, ty.Kind)
	require.True(t, ty.Elem.IsNullable())
}

func TestParseTypeNameFixedString(t *testing.T) {
	ty, err := ParseTypeName("FixedString(16)")
	require.NoError(t, err)
	require.Equal(t, 16, ty.Length)
}

func TestParseTypeNameDecimal(t *testing.T) {
	ty, err := ParseTypeName("Decimal(18, 4)")
	require.NoError(t, err)
	require.Equal(t, 18, ty.Precision)
	require.Equal(t, 4, ty.Scale)

	ty2, err := ParseTypeName("Decimal64(4)")
	require.NoError(t, err)
	require.Equal(t, 18, ty2.Precision)
	require.Equal(t, 4, ty2.Scale)
}

func TestParseTypeNameMap(t *testing.T) {
	ty, err := ParseTypeName("Map(String, Int64)")
	require.NoError(t, err)
	require.Equal(t, KindString, ty.Key.Kind)
	require.Equal(t, KindInt64, ty.Value.Kind)
}

func TestParseTypeNameTupleNamed(t *testing.T) {
	ty, err := ParseTypeName("Tuple(x Int64, y String)")
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y"}, ty.Names)
	require.Len(t, ty.Elems, 2)
}

func TestParseTypeNameDateTime64(t *testing.T) {
	ty, err := ParseTypeName("DateTime64(3, 'UTC')")
	require.NoError(t, err)
	require.Equal(t, 3, ty.TimePrecision)
	require.Equal(t, "UTC", ty.Timezone)
}

func TestParseTypeNameUnknown(t *testing.T) {
	_, err := ParseTypeName("NotAType")
	require.Error(t, err)
}

func TestDefaultValue(t *testing.T) {
	require.True(t, Nullable(Int64Type).DefaultValue().IsNull())
	require.EqualValues(t, 0, Int64Type.DefaultValue().Int64())
	require.Equal(t, "", StringType.DefaultValue().Str())
}

func TestTypeEquals(t *testing.T) {
	require.True(t, ArrayType(Int64Type).Equals(ArrayType(Int64Type)))
	require.False(t, ArrayType(Int64Type).Equals(ArrayType(StringType)))
}
