package functions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chlite/pkg/types"
)

func finalize(t *testing.T, name string, distinct bool, rows [][]types.Value) types.Value {
	t.Helper()
	reg := NewDefaultRegistry()
	impl, ok := reg.GetAggregate(name)
	require.True(t, ok, name)
	state := impl.NewState(distinct)
	for _, row := range rows {
		require.NoError(t, state.Accumulate(row))
	}
	v, err := state.Finalize()
	require.NoError(t, err)
	return v
}

func intRows(vals ...int64) [][]types.Value {
	rows := make([][]types.Value, len(vals))
	for i, v := range vals {
		rows[i] = []types.Value{types.NewUInt64(uint64(v))}
	}
	return rows
}

func TestSumCoercesThroughFloat64(t *testing.T) {
	v := finalize(t, "sum", false, intRows(0, 1, 2, 3, 4, 5, 6, 7, 8, 9))
	assert.Equal(t, types.KindFloat64, v.Kind())
	assert.InDelta(t, 45.0, v.Float64(), 0.0001)
}

func TestSumOverEmptySetIsNull(t *testing.T) {
	v := finalize(t, "sum", false, nil)
	assert.True(t, v.IsNull())
}

func TestAvgOverEmptySetIsNull(t *testing.T) {
	v := finalize(t, "avg", false, nil)
	assert.True(t, v.IsNull())
}

func TestCountOverEmptySetIsZero(t *testing.T) {
	v := finalize(t, "count", false, nil)
	assert.Equal(t, int64(0), v.Int64())
}

func TestCountStar(t *testing.T) {
	reg := NewDefaultRegistry()
	impl, ok := reg.GetAggregate("count")
	require.True(t, ok)
	state := impl.NewState(false)
	for i := 0; i < 3; i++ {
		require.NoError(t, state.Accumulate(nil))
	}
	v, err := state.Finalize()
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.Int64())
}

func TestAvg(t *testing.T) {
	v := finalize(t, "avg", false, intRows(1, 2, 3, 4))
	assert.InDelta(t, 2.5, v.Float64(), 0.0001)
}

func TestMinMax(t *testing.T) {
	rows := intRows(3, 1, 4, 1, 5, 9, 2, 6)
	assert.EqualValues(t, 1, finalize(t, "min", false, rows).Uint64())
	assert.EqualValues(t, 9, finalize(t, "max", false, rows).Uint64())
}

func TestUniqDistinctCount(t *testing.T) {
	v := finalize(t, "uniq", false, intRows(1, 1, 2, 2, 3))
	assert.Equal(t, int64(3), v.Int64())
}

func TestSumDistinct(t *testing.T) {
	v := finalize(t, "sum", true, intRows(1, 1, 2, 3, 3))
	assert.InDelta(t, 6.0, v.Float64(), 0.0001)
}
