package parser

import (
	"strconv"

	"chlite/pkg/ast"
	"chlite/pkg/token"
)

// parseDataType parses a type expression directly off the token stream:
// a name, optionally followed by a parenthesized parameter list mixing
// nested DataTypes (Array(Int64)), bare integers (Decimal(18, 4)), and
// column-name/type pairs for named tuples (Tuple(x Int64, y String)).
// p.cur must be the type name token on entry; returns with p.cur on the
// last token consumed.
func (p *Parser) parseDataType() (ast.DataType, error) {
	name := p.cur.Lexeme
	if p.cur.Kind.IsKeyword() {
		name = p.cur.Kind.String()
	}
	dt := ast.DataType{Name: name}

	if !p.peekIs(token.LPAREN) {
		return dt, nil
	}
	p.nextToken() // cur = LPAREN
	p.nextToken() // cur = first token inside parens

	for {
		// Tuple(name Type, ...) form: IDENT followed by a type, not a comma/paren.
		if p.curIs(token.IDENT) && p.peekIsTypeStart() {
			dt.StringParams = append(dt.StringParams, p.cur.Lexeme)
			p.nextToken()
			inner, err := p.parseDataType()
			if err != nil {
				return ast.DataType{}, err
			}
			dt.Params = append(dt.Params, inner)
		} else if p.curIs(token.INT) {
			n, err := strconv.Atoi(p.cur.Lexeme)
			if err != nil {
				return ast.DataType{}, p.errorf("invalid integer type parameter %q", p.cur.Lexeme)
			}
			dt.IntParams = append(dt.IntParams, n)
		} else if p.curIs(token.STRING) {
			dt.StringParams = append(dt.StringParams, p.cur.Lexeme)
		} else {
			inner, err := p.parseDataType()
			if err != nil {
				return ast.DataType{}, err
			}
			dt.Params = append(dt.Params, inner)
		}

		if p.peekIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}

	if err := p.expectPeek(token.RPAREN); err != nil {
		return ast.DataType{}, err
	}
	return dt, nil
}

// peekIsTypeStart reports whether p.peek can start a type name, used to
// disambiguate Tuple(name Type, ...) from Tuple(Type, ...).
func (p *Parser) peekIsTypeStart() bool {
	return p.peek.Kind == token.IDENT || p.peek.Kind == token.ARRAY ||
		p.peek.Kind == token.TUPLE || p.peek.Kind == token.MAP ||
		p.peek.Kind == token.NULLABLE
}
