package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chlite/pkg/ast"
)

func TestParseProgramMultipleStatements(t *testing.T) {
	stmts, err := New("CREATE TABLE t (id Int64); INSERT INTO t VALUES (1); SELECT * FROM t").ParseProgram()
	require.NoError(t, err)
	require.Len(t, stmts, 3)

	assert.IsType(t, &ast.CreateTableStmt{}, stmts[0])
	assert.IsType(t, &ast.InsertStmt{}, stmts[1])
	assert.IsType(t, &ast.SelectStmt{}, stmts[2])
}

func TestParseProgramTrailingSemicolon(t *testing.T) {
	stmts, err := New("SELECT 1;").ParseProgram()
	require.NoError(t, err)
	assert.Len(t, stmts, 1)
}

func TestParseProgramBlankStatementsBetweenSeparators(t *testing.T) {
	stmts, err := New("SELECT 1;;; SELECT 2;").ParseProgram()
	require.NoError(t, err)
	assert.Len(t, stmts, 2)
}

func TestParseProgramEmptyInput(t *testing.T) {
	stmts, err := New("").ParseProgram()
	require.NoError(t, err)
	assert.Empty(t, stmts)
}

func TestParseProgramEmptyAfterSemicolons(t *testing.T) {
	stmts, err := New(";;;").ParseProgram()
	require.NoError(t, err)
	assert.Empty(t, stmts)
}

func TestParseProgramStopsOnFirstError(t *testing.T) {
	_, err := New("SELECT 1; SELECT FROM ;").ParseProgram()
	assert.Error(t, err)
}
