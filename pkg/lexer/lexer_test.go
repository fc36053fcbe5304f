package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chlite/pkg/token"
)

func collect(input string) []token.Token {
	l := New(input)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestSimpleTokens(t *testing.T) {
	toks := collect("+-*/= < > (),;.")
	kinds := []token.Kind{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.EQ,
		token.LT, token.GT, token.LPAREN, token.RPAREN, token.COMMA,
		token.SEMI, token.DOT, token.EOF,
	}
	require.Len(t, toks, len(kinds))
	for i, k := range kinds {
		require.Equalf(t, k, toks[i].Kind, "token[%d] = %q", i, toks[i].Lexeme)
	}
}

func TestComparisonOperators(t *testing.T) {
	toks := collect("= != <> < > <= >= || :: ?")
	kinds := []token.Kind{
		token.EQ, token.NEQ, token.NEQ, token.LT, token.GT, token.LTE,
		token.GTE, token.CONCAT, token.DCOLON, token.QUESTION, token.EOF,
	}
	require.Len(t, toks, len(kinds))
	for i, k := range kinds {
		require.Equal(t, k, toks[i].Kind)
	}
}

func TestKeywordCaseInsensitivity(t *testing.T) {
	for _, variant := range []string{"SELECT", "select", "Select", "sElEcT"} {
		toks := collect(variant)
		require.Equal(t, token.SELECT, toks[0].Kind)
	}
}

func TestIdentifierRoundTrip(t *testing.T) {
	for _, name := range []string{"foo", "_bar", "Baz_1", "qux123"} {
		toks := collect(name)
		require.Equal(t, token.IDENT, toks[0].Kind)
		require.Equal(t, name, toks[0].Lexeme)
	}
}

func TestQuotedIdentifierPreservesCase(t *testing.T) {
	toks := collect("`MixedCase Col`")
	require.Equal(t, token.QUOTED_IDENT, toks[0].Kind)
	require.Equal(t, "MixedCase Col", toks[0].Lexeme)
}

func TestStringEscapes(t *testing.T) {
	toks := collect(`'it''s' "quo""te" 'a\nb\t\\c'`)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, "it's", toks[0].Lexeme)
	require.Equal(t, token.STRING, toks[1].Kind)
	require.Equal(t, `quo"te`, toks[1].Lexeme)
	require.Equal(t, "a\nb\t\\c", toks[2].Lexeme)
}

func TestNumericLiterals(t *testing.T) {
	toks := collect("123 1.5 .5 1e10 1.5e-3 1E+2")
	kinds := []token.Kind{token.INT, token.FLOAT, token.FLOAT, token.FLOAT, token.FLOAT, token.FLOAT}
	for i, k := range kinds {
		require.Equalf(t, k, toks[i].Kind, "literal %q", toks[i].Lexeme)
	}
}

func TestComments(t *testing.T) {
	toks := collect("SELECT -- trailing comment\n1 /* block\ncomment */ + 2")
	kinds := []token.Kind{token.SELECT, token.INT, token.PLUS, token.INT, token.EOF}
	require.Len(t, toks, len(kinds))
	for i, k := range kinds {
		require.Equal(t, k, toks[i].Kind)
	}
}

func TestLineColumnTracking(t *testing.T) {
	toks := collect("SELECT 1\nFROM t")
	require.Equal(t, 1, toks[0].Line)
	require.Equal(t, 1, toks[0].Column)
	from := toks[2]
	require.Equal(t, token.FROM, from.Kind)
	require.Equal(t, 2, from.Line)
}

func TestIllegalByte(t *testing.T) {
	toks := collect("SELECT # 1")
	require.Equal(t, token.ILLEGAL, toks[1].Kind)
}

func TestUnterminatedString(t *testing.T) {
	toks := collect("'abc")
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
}
