// pkg/cli/repl_test.go
package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestREPL_ExecuteStatement(t *testing.T) {
	output := &bytes.Buffer{}
	errOutput := &bytes.Buffer{}
	repl := NewREPLWithInput(strings.NewReader(""), output, errOutput)

	require.NoError(t, repl.ExecuteStatement("CREATE TABLE test (id Int64, name String)"))
	require.NoError(t, repl.ExecuteStatement("INSERT INTO test (id, name) VALUES (1, 'Alice')"))

	output.Reset()
	require.NoError(t, repl.ExecuteStatement("SELECT * FROM test"))

	result := output.String()
	assert.Contains(t, result, "id")
	assert.Contains(t, result, "name")
	assert.Contains(t, result, "1")
	assert.Contains(t, result, "Alice")
}

func TestREPL_ExecuteStatement_Error(t *testing.T) {
	repl := NewREPLWithInput(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	err := repl.ExecuteStatement("SELECT * FROM nonexistent")
	assert.Error(t, err)
}

func TestREPL_DisplayResult(t *testing.T) {
	output := &bytes.Buffer{}
	repl := NewREPLWithInput(strings.NewReader(""), output, &bytes.Buffer{})

	require.NoError(t, repl.ExecuteStatement("CREATE TABLE users (id Int64, name String, age Int64)"))
	require.NoError(t, repl.ExecuteStatement("INSERT INTO users VALUES (1, 'Alice', 30)"))
	require.NoError(t, repl.ExecuteStatement("INSERT INTO users VALUES (2, 'Bob', 25)"))

	output.Reset()
	require.NoError(t, repl.ExecuteStatement("SELECT * FROM users"))

	result := output.String()
	assert.Contains(t, result, "id")
	assert.Contains(t, result, "name")
	assert.Contains(t, result, "age")
	assert.Contains(t, result, "Alice")
	assert.Contains(t, result, "Bob")
}

func TestREPL_DisplayNull(t *testing.T) {
	output := &bytes.Buffer{}
	repl := NewREPLWithInput(strings.NewReader(""), output, &bytes.Buffer{})

	require.NoError(t, repl.ExecuteStatement("CREATE TABLE t (id Int64, val Nullable(String))"))
	require.NoError(t, repl.ExecuteStatement("INSERT INTO t VALUES (1, NULL)"))

	output.Reset()
	require.NoError(t, repl.ExecuteStatement("SELECT * FROM t"))
	assert.Contains(t, output.String(), "NULL")
}

func TestREPL_Run(t *testing.T) {
	input := strings.NewReader("CREATE TABLE t (x Int64);\nINSERT INTO t VALUES (1);\nSELECT * FROM t;\n.exit\n")
	output := &bytes.Buffer{}
	repl := NewREPLWithInput(input, output, &bytes.Buffer{})

	repl.Run()

	assert.Contains(t, output.String(), "1")
}

func TestREPL_DotExit(t *testing.T) {
	input := strings.NewReader(".exit\n")
	errOutput := &bytes.Buffer{}
	repl := NewREPLWithInput(input, &bytes.Buffer{}, errOutput)

	repl.Run()

	assert.Zero(t, errOutput.Len())
}

func TestREPL_DotTablesAndSchema(t *testing.T) {
	input := strings.NewReader("CREATE TABLE t (id Int64);\n.tables\n.schema t\n.exit\n")
	output := &bytes.Buffer{}
	repl := NewREPLWithInput(input, output, &bytes.Buffer{})

	repl.Run()

	result := output.String()
	assert.Contains(t, result, "t")
	assert.Contains(t, result, "CREATE TABLE t")
}

func TestREPL_UnknownDotCommand(t *testing.T) {
	input := strings.NewReader(".bogus\n.exit\n")
	errOutput := &bytes.Buffer{}
	repl := NewREPLWithInput(input, &bytes.Buffer{}, errOutput)

	repl.Run()

	assert.Contains(t, errOutput.String(), "Unknown command")
}
