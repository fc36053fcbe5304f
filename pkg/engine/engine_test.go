package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineCreateInsertSelect(t *testing.T) {
	e := New()

	_, err := e.Execute("CREATE TABLE users (id Int64, name String, age Nullable(Int64))")
	require.NoError(t, err)
	assert.True(t, e.TableExists("users"))
	assert.Equal(t, []string{"users"}, e.ListTables())

	res, err := e.Execute("INSERT INTO users (id, name, age) VALUES (1, 'alice', 30), (2, 'bob', NULL)")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.RowsAffected)

	res, err = e.Execute("SELECT name FROM users WHERE age > 20 ORDER BY name")
	require.NoError(t, err)
	require.Len(t, res.Columns, 1)
	assert.Equal(t, "name", res.Columns[0].Name)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "alice", res.Rows[0][0].Str())
}

func TestEngineNumbersAggregate(t *testing.T) {
	e := New()
	res, err := e.Execute("SELECT sum(number) FROM numbers(10)")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.InDelta(t, 45.0, res.Rows[0][0].Float64(), 0.0001)
}

func TestEngineExecuteManyStopsOnFirstError(t *testing.T) {
	e := New()
	results, err := e.ExecuteMany(`
		CREATE TABLE t (id Int64);
		INSERT INTO t VALUES (1);
		INSERT INTO missing VALUES (1);
		INSERT INTO t VALUES (2);
	`)
	require.Error(t, err)
	assert.Len(t, results, 2)
	assert.False(t, e.TableExists("missing"))
}

func TestEngineTableNotFound(t *testing.T) {
	e := New()
	_, err := e.Execute("SELECT * FROM nope")
	assert.Error(t, err)
}

func TestEngineUpdateDelete(t *testing.T) {
	e := New()
	_, err := e.ExecuteMany(`
		CREATE TABLE t (id Int64, val String);
		INSERT INTO t VALUES (1, 'a'), (2, 'b'), (3, 'c');
	`)
	require.NoError(t, err)

	res, err := e.Execute("UPDATE t SET val = 'z' WHERE id = 2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)

	res, err = e.Execute("DELETE FROM t WHERE id = 1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)

	res, err = e.Execute("SELECT id, val FROM t ORDER BY id")
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "z", res.Rows[0][1].Str())
}
