package functions

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
)

// CompileLike translates a SQL LIKE/ILIKE pattern (`%` = any run, `_` = any
// single character, `\` escapes the next character) into an anchored
// regexp2 pattern. Literal characters are escaped with the standard
// regexp.QuoteMeta; ILIKE compiles with the regexp2.IgnoreCase option.
func CompileLike(pattern string, caseInsensitive bool) (*regexp2.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '\\' && i+1 < len(runes):
			i++
			b.WriteString(regexp.QuoteMeta(string(runes[i])))
		case c == '%':
			b.WriteString(".*")
		case c == '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")

	opts := regexp2.None
	if caseInsensitive {
		opts = regexp2.IgnoreCase
	}
	return regexp2.Compile(b.String(), opts)
}
