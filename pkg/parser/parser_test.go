package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chlite/pkg/ast"
)

func TestParseCreateTable(t *testing.T) {
	stmt, err := New("CREATE TABLE IF NOT EXISTS t (id Int64, name String, age Nullable(Int64))").ParseStatement()
	require.NoError(t, err)

	ct, ok := stmt.(*ast.CreateTableStmt)
	require.True(t, ok)
	assert.Equal(t, "t", ct.Table)
	assert.True(t, ct.IfNotExists)
	require.Len(t, ct.Columns, 3)
	assert.Equal(t, "id", ct.Columns[0].Name)
	assert.Equal(t, "age", ct.Columns[2].Name)
}

func TestParseDropTable(t *testing.T) {
	stmt, err := New("DROP TABLE IF EXISTS t").ParseStatement()
	require.NoError(t, err)

	dt, ok := stmt.(*ast.DropTableStmt)
	require.True(t, ok)
	assert.Equal(t, "t", dt.Table)
	assert.True(t, dt.IfExists)
}

func TestParseInsertValues(t *testing.T) {
	stmt, err := New("INSERT INTO t (a, b) VALUES (1, 'x'), (2, 'y')").ParseStatement()
	require.NoError(t, err)

	ins, ok := stmt.(*ast.InsertStmt)
	require.True(t, ok)
	assert.Equal(t, "t", ins.Table)
	assert.Equal(t, []string{"a", "b"}, ins.Columns)
	assert.Len(t, ins.Values, 2)
}

func TestParseUpdate(t *testing.T) {
	stmt, err := New("UPDATE t SET a = 1 WHERE id = 2").ParseStatement()
	require.NoError(t, err)

	up, ok := stmt.(*ast.UpdateStmt)
	require.True(t, ok)
	assert.Equal(t, "t", up.Table)
	require.Len(t, up.Assignments, 1)
	assert.NotNil(t, up.Where)
}

func TestParseDelete(t *testing.T) {
	stmt, err := New("DELETE FROM t WHERE id = 1").ParseStatement()
	require.NoError(t, err)

	del, ok := stmt.(*ast.DeleteStmt)
	require.True(t, ok)
	assert.Equal(t, "t", del.Table)
	assert.NotNil(t, del.Where)
}

func TestParseSelectBasics(t *testing.T) {
	stmt, err := New("SELECT a, b AS bee FROM t WHERE a > 1 ORDER BY a DESC LIMIT 10").ParseStatement()
	require.NoError(t, err)

	sel, ok := stmt.(*ast.SelectStmt)
	require.True(t, ok)
	require.Len(t, sel.Columns, 2)
	assert.Equal(t, "bee", sel.Columns[1].Alias)
	require.Len(t, sel.OrderBy, 1)
	assert.True(t, sel.OrderBy[0].Desc)
	assert.NotNil(t, sel.Limit)
}

func TestParseWithCTE(t *testing.T) {
	stmt, err := New("WITH x AS (SELECT 1 AS v) SELECT v FROM x").ParseStatement()
	require.NoError(t, err)

	sel, ok := stmt.(*ast.SelectStmt)
	require.True(t, ok)
	require.NotNil(t, sel.With)
	require.Len(t, sel.With.CTEs, 1)
	assert.Equal(t, "x", sel.With.CTEs[0].Name)
}

func TestParseSetOperation(t *testing.T) {
	stmt, err := New("SELECT a FROM t1 UNION ALL SELECT a FROM t2").ParseStatement()
	require.NoError(t, err)

	setOp, ok := stmt.(*ast.SetOpStmt)
	require.True(t, ok)
	assert.Equal(t, ast.SetUnion, setOp.Op)
	assert.True(t, setOp.All)
}

func TestParseJoin(t *testing.T) {
	stmt, err := New("SELECT a.x FROM a JOIN b ON a.id = b.id").ParseStatement()
	require.NoError(t, err)

	sel, ok := stmt.(*ast.SelectStmt)
	require.True(t, ok)
	join, ok := sel.From.(*ast.JoinRef)
	require.True(t, ok)
	assert.Equal(t, ast.JoinInner, join.Kind)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := New("SELECT FROM WHERE").ParseStatement()
	assert.Error(t, err)
}
