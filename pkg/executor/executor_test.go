package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chlite/pkg/catalog"
	"chlite/pkg/functions"
	"chlite/pkg/parser"
)

func run(t *testing.T, e *Executor, sql string) QueryResult {
	t.Helper()
	stmt, err := parser.New(sql).ParseStatement()
	require.NoError(t, err, sql)
	res, err := e.Execute(stmt, nil)
	require.NoError(t, err, sql)
	return res
}

func newExecutor() *Executor {
	return New(catalog.New(), functions.NewDefaultRegistry())
}

func TestSelectFilterAndOrder(t *testing.T) {
	e := newExecutor()
	run(t, e, "CREATE TABLE users (id Int64, name String, age Int64)")
	run(t, e, "INSERT INTO users VALUES (1,'Alice',30),(2,'Bob',25),(3,'Charlie',35)")

	res := run(t, e, "SELECT name, age FROM users WHERE age > 25 ORDER BY age")
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "Alice", res.Rows[0][0].Str())
	assert.Equal(t, int64(30), res.Rows[0][1].Int64())
	assert.Equal(t, "Charlie", res.Rows[1][0].Str())
	assert.Equal(t, int64(35), res.Rows[1][1].Int64())
}

func TestNumbersCountAndSum(t *testing.T) {
	e := newExecutor()

	res := run(t, e, "SELECT count() FROM numbers(10)")
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int64(10), res.Rows[0][0].Int64())

	res = run(t, e, "SELECT sum(number) FROM numbers(10)")
	require.Len(t, res.Rows, 1)
	assert.InDelta(t, 45.0, res.Rows[0][0].Float64(), 0.0001)
}

func TestCTEDoubling(t *testing.T) {
	e := newExecutor()
	res := run(t, e, "WITH doubled AS (SELECT number * 2 AS value FROM numbers(5)) SELECT value FROM doubled ORDER BY value")
	require.Len(t, res.Rows, 5)
	for i, want := range []int64{0, 2, 4, 6, 8} {
		assert.Equal(t, want, res.Rows[i][0].Int64())
	}
}

func TestIntersect(t *testing.T) {
	e := newExecutor()
	run(t, e, "CREATE TABLE t1 (value Int64)")
	run(t, e, "CREATE TABLE t2 (value Int64)")
	run(t, e, "INSERT INTO t1 VALUES (1),(2),(3),(4)")
	run(t, e, "INSERT INTO t2 VALUES (3),(4),(5),(6)")

	res := run(t, e, "SELECT value FROM t1 INTERSECT SELECT value FROM t2 ORDER BY value")
	require.Len(t, res.Rows, 2)
	assert.Equal(t, int64(3), res.Rows[0][0].Int64())
	assert.Equal(t, int64(4), res.Rows[1][0].Int64())
}

func TestUnionDedupAndAll(t *testing.T) {
	e := newExecutor()
	run(t, e, "CREATE TABLE t (v Int64)")
	run(t, e, "INSERT INTO t VALUES (1),(2)")

	res := run(t, e, "SELECT v FROM t UNION SELECT v FROM t")
	assert.Len(t, res.Rows, 2)

	res = run(t, e, "SELECT v FROM t UNION ALL SELECT v FROM t")
	assert.Len(t, res.Rows, 4)
}

func TestInnerJoin(t *testing.T) {
	e := newExecutor()
	run(t, e, "CREATE TABLE a (id Int64, name String)")
	run(t, e, "CREATE TABLE b (id Int64, score Int64)")
	run(t, e, "INSERT INTO a VALUES (1,'x'),(2,'y')")
	run(t, e, "INSERT INTO b VALUES (1,10),(3,30)")

	res := run(t, e, "SELECT a.name, b.score FROM a JOIN b ON a.id = b.id")
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "x", res.Rows[0][0].Str())
	assert.Equal(t, int64(10), res.Rows[0][1].Int64())
}

func TestGroupByAggregate(t *testing.T) {
	e := newExecutor()
	run(t, e, "CREATE TABLE sales (region String, amount Int64)")
	run(t, e, "INSERT INTO sales VALUES ('east',10),('east',20),('west',5)")

	res := run(t, e, "SELECT region, sum(amount) FROM sales GROUP BY region ORDER BY region")
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "east", res.Rows[0][0].Str())
	assert.InDelta(t, 30.0, res.Rows[0][1].Float64(), 0.0001)
	assert.Equal(t, "west", res.Rows[1][0].Str())
}

func TestWindowRankAndDenseRank(t *testing.T) {
	e := newExecutor()
	run(t, e, "CREATE TABLE scores (name String, score Int64)")
	run(t, e, "INSERT INTO scores VALUES ('Alice',90),('Bob',90),('Charlie',80),('Dave',80),('Eve',70)")

	res := run(t, e, "SELECT name, rank() OVER (ORDER BY score DESC) FROM scores ORDER BY score DESC, name")
	require.Len(t, res.Rows, 5)
	ranks := make([]int64, len(res.Rows))
	for i, row := range res.Rows {
		ranks[i] = row[1].Int64()
	}
	assert.Equal(t, []int64{1, 1, 3, 3, 5}, ranks)

	res = run(t, e, "SELECT name, dense_rank() OVER (ORDER BY score DESC) FROM scores ORDER BY score DESC, name")
	denseRanks := make([]int64, len(res.Rows))
	for i, row := range res.Rows {
		denseRanks[i] = row[1].Int64()
	}
	assert.Equal(t, []int64{1, 1, 2, 2, 3}, denseRanks)
}

func TestWindowLag(t *testing.T) {
	e := newExecutor()
	res := run(t, e, "SELECT lag(number) OVER (ORDER BY number) FROM numbers(5)")
	require.Len(t, res.Rows, 5)
	assert.True(t, res.Rows[0][0].IsNull())
	assert.Equal(t, int64(0), res.Rows[1][0].Int64())
	assert.Equal(t, int64(3), res.Rows[4][0].Int64())
}

func TestInsertUpdateDelete(t *testing.T) {
	e := newExecutor()
	run(t, e, "CREATE TABLE t (id Int64, val String)")

	res := run(t, e, "INSERT INTO t VALUES (1,'a'),(2,'b'),(3,'c')")
	assert.Equal(t, int64(3), res.RowsAffected)

	res = run(t, e, "UPDATE t SET val = 'z' WHERE id = 2")
	assert.Equal(t, int64(1), res.RowsAffected)

	res = run(t, e, "DELETE FROM t WHERE id = 1")
	assert.Equal(t, int64(1), res.RowsAffected)

	res = run(t, e, "SELECT id, val FROM t ORDER BY id")
	require.Len(t, res.Rows, 2)
	assert.Equal(t, int64(2), res.Rows[0][0].Int64())
	assert.Equal(t, "z", res.Rows[0][1].Str())
}

func TestCreateTableIfNotExistsIdempotent(t *testing.T) {
	e := newExecutor()
	run(t, e, "CREATE TABLE t (id Int64)")
	res := run(t, e, "CREATE TABLE IF NOT EXISTS t (id Int64)")
	assert.Equal(t, int64(0), res.RowsAffected)
}

func TestDropTableIfExistsIdempotent(t *testing.T) {
	e := newExecutor()
	res := run(t, e, "DROP TABLE IF EXISTS nope")
	assert.Equal(t, int64(0), res.RowsAffected)
}

func TestNullPropagationInComparison(t *testing.T) {
	e := newExecutor()
	run(t, e, "CREATE TABLE t (id Int64, val Nullable(Int64))")
	run(t, e, "INSERT INTO t VALUES (1, NULL), (2, 5)")

	res := run(t, e, "SELECT id FROM t WHERE val > 0")
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int64(2), res.Rows[0][0].Int64())

	res = run(t, e, "SELECT id FROM t WHERE val IS NULL")
	require.Len(t, res.Rows, 1)
	assert.Equal(t, int64(1), res.Rows[0][0].Int64())
}
