// pkg/cli/shell_test.go
package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShell(t *testing.T) {
	shell := NewShell(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})

	require.NotNil(t, shell)
	assert.Equal(t, "chlite> ", shell.prompt)
	assert.Equal(t, "     -> ", shell.continuePrompt)
}

func TestShell_SetPrompt(t *testing.T) {
	shell := NewShell(nil, nil, nil)
	shell.SetPrompt("custom> ")
	assert.Equal(t, "custom> ", shell.prompt)
}

func TestShell_ReadLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine string
		wantEOF  bool
	}{
		{"simple line", "SELECT 1;\n", "SELECT 1;", false},
		{"empty line", "\n", "", false},
		{"EOF", "", "", true},
		{"line with trailing whitespace", "SELECT * FROM t;  \n", "SELECT * FROM t;", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shell := NewShell(strings.NewReader(tt.input), &bytes.Buffer{}, nil)
			line, eof := shell.ReadLine()
			assert.Equal(t, tt.wantLine, line)
			assert.Equal(t, tt.wantEOF, eof)
		})
	}
}

func TestShell_ReadStatement_SingleLine(t *testing.T) {
	shell := NewShell(strings.NewReader("SELECT 1;\n"), &bytes.Buffer{}, nil)

	stmt, eof := shell.ReadStatement()

	assert.False(t, eof)
	assert.Equal(t, "SELECT 1;", stmt)
}

func TestShell_ReadStatement_MultiLine(t *testing.T) {
	shell := NewShell(strings.NewReader("SELECT *\nFROM users;\n"), &bytes.Buffer{}, nil)

	stmt, eof := shell.ReadStatement()

	assert.False(t, eof)
	assert.Equal(t, "SELECT *\nFROM users;", stmt)
}

func TestShell_ReadStatement_EOF(t *testing.T) {
	shell := NewShell(strings.NewReader(""), &bytes.Buffer{}, nil)
	_, eof := shell.ReadStatement()
	assert.True(t, eof)
}

func TestShell_ReadStatement_IncompleteOnEOF(t *testing.T) {
	shell := NewShell(strings.NewReader("SELECT 1"), &bytes.Buffer{}, nil)

	stmt, eof := shell.ReadStatement()

	assert.True(t, eof)
	assert.Equal(t, "SELECT 1", stmt)
}

func TestShell_IsComplete(t *testing.T) {
	shell := NewShell(nil, nil, nil)

	tests := []struct {
		input    string
		complete bool
	}{
		{"SELECT 1;", true},
		{"SELECT 1", false},
		{"", false},
		{";", true},
		{"SELECT * FROM t WHERE a = 'hello;world';", true},
		{"SELECT * FROM t WHERE a = 'hello", false},
		{"SELECT * FROM t; SELECT 2;", true},
		{"-- comment\nSELECT 1;", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.complete, shell.IsComplete(tt.input))
		})
	}
}

func TestShell_History(t *testing.T) {
	shell := NewShell(strings.NewReader("SELECT 1;\nSELECT 2;\n"), &bytes.Buffer{}, nil)

	shell.ReadStatement()
	shell.ReadStatement()

	assert.Equal(t, []string{"SELECT 1;", "SELECT 2;"}, shell.History())

	shell.ClearHistory()
	assert.Empty(t, shell.History())
}
