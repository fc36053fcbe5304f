// Package chqlerr defines chlite's typed error model: every error surfaced
// across lexing, parsing, and execution carries a Kind plus the source
// position that produced it, so callers (the REPL, API consumers) can
// report "line 3, column 12: unknown column foo" instead of a bare string.
package chqlerr

import "fmt"

// Kind classifies an Error by the stage that raised it.
type Kind int

const (
	KindLex Kind = iota
	KindParse
	KindName
	KindType
	KindConversion
	KindArity
	KindNotImplemented
)

func (k Kind) String() string {
	switch k {
	case KindLex:
		return "lex"
	case KindParse:
		return "parse"
	case KindName:
		return "name"
	case KindType:
		return "type"
	case KindConversion:
		return "conversion"
	case KindArity:
		return "arity"
	case KindNotImplemented:
		return "not-implemented"
	default:
		return "unknown"
	}
}

// Error is chlite's single error type across lex/parse/name/type/
// conversion/arity/not-implemented failures (spec §7). Line and Column
// are 1-based; zero means "no specific position" (e.g. a whole-statement
// arity check).
type Error struct {
	Kind    Kind
	Line    int
	Column  int
	Token   string
	Message string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		if e.Token != "" {
			return fmt.Sprintf("%s error at line %d, column %d (near %q): %s", e.Kind, e.Line, e.Column, e.Token, e.Message)
		}
		return fmt.Sprintf("%s error at line %d, column %d: %s", e.Kind, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// New constructs an Error with no position information.
func New(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

// At constructs an Error with a source position.
func At(k Kind, line, column int, token, format string, args ...any) *Error {
	return &Error{Kind: k, Line: line, Column: column, Token: token, Message: fmt.Sprintf(format, args...)}
}

func Lex(line, column int, token, format string, args ...any) *Error {
	return At(KindLex, line, column, token, format, args...)
}

func Parse(line, column int, token, format string, args ...any) *Error {
	return At(KindParse, line, column, token, format, args...)
}

func Name(format string, args ...any) *Error {
	return New(KindName, format, args...)
}

func Type(format string, args ...any) *Error {
	return New(KindType, format, args...)
}

func Conversion(format string, args ...any) *Error {
	return New(KindConversion, format, args...)
}

func Arity(format string, args ...any) *Error {
	return New(KindArity, format, args...)
}

func NotImplemented(format string, args ...any) *Error {
	return New(KindNotImplemented, format, args...)
}

// Is reports whether err is a *Error of the given kind, supporting
// errors.Is-style checks against a kind rather than a sentinel value.
func Is(err error, k Kind) bool {
	ce, ok := err.(*Error)
	return ok && ce.Kind == k
}
