// Package parser implements chlite's recursive-descent, precedence-climbing
// SQL parser: tokens in, a typed ast.Statement out.
//
// Convention used throughout this package: on entry to any parseX, p.cur is
// the first token of the X production; on return, p.cur is the LAST token
// consumed by X and p.peek is the lookahead. To consume an expected next
// token of kind K, call p.expectPeek(K) (checks peek, advances, cur becomes
// K). To optionally consume a token, test p.peekIs(K) and call p.nextToken().
package parser

import (
	"strings"

	"chlite/pkg/ast"
	"chlite/pkg/chqlerr"
	"chlite/pkg/lexer"
	"chlite/pkg/token"
)

// Parser consumes a token stream with a two-token look-ahead (peek, peek2);
// peek2 classifies `NOT IN|BETWEEN|LIKE|ILIKE` as a single
// comparison-precedence operator and detects `LEFT ARRAY JOIN`, both
// without backtracking.
type Parser struct {
	lex   *lexer.Lexer
	cur   token.Token
	peek  token.Token
	peek2 token.Token

	placeholderIndex int
}

// New constructs a Parser over SQL source text.
func New(input string) *Parser {
	p := &Parser{lex: lexer.New(input)}
	p.nextToken()
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.peek2
	p.peek2 = p.lex.NextToken()
}

func (p *Parser) curIs(k token.Kind) bool  { return p.cur.Kind == k }
func (p *Parser) peekIs(k token.Kind) bool { return p.peek.Kind == k }

func (p *Parser) curIsIdent(upper string) bool {
	return p.cur.Kind == token.IDENT && strings.EqualFold(p.cur.Lexeme, upper)
}

func (p *Parser) expectPeek(k token.Kind) error {
	if !p.peekIs(k) {
		return p.peekErrorf("expected %s, got %s", k, p.peek.Kind)
	}
	p.nextToken()
	return nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return chqlerr.Parse(p.cur.Line, p.cur.Column, p.cur.Lexeme, format, args...)
}

func (p *Parser) peekErrorf(format string, args ...any) error {
	return chqlerr.Parse(p.peek.Line, p.peek.Column, p.peek.Lexeme, format, args...)
}

// ParseStatement parses exactly one statement; p.cur must be its first token.
func (p *Parser) ParseStatement() (ast.Statement, error) {
	switch {
	case p.curIs(token.WITH):
		return p.parseWith()
	case p.curIs(token.SELECT):
		return p.parseSetOpTail(nil)
	case p.curIs(token.LPAREN):
		return p.parseParenthesizedSetOp(nil)
	case p.curIs(token.INSERT):
		return p.parseInsert()
	case p.curIs(token.CREATE):
		return p.parseCreateTable()
	case p.curIs(token.DROP):
		return p.parseDropTable()
	case p.curIs(token.UPDATE):
		return p.parseUpdate()
	case p.curIs(token.DELETE):
		return p.parseDelete()
	case p.curIsIdent("EXPLAIN"):
		p.nextToken()
		inner, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		return &ast.ExplainStmt{Statement: inner}, nil
	default:
		return nil, p.errorf("unexpected token %s, expected a statement", p.cur.Lexeme)
	}
}

// parseParenthesizedSetOp parses `( stmt )` then continues into the
// set-operation tail loop, treating the parenthesized statement as the
// left-hand operand.
func (p *Parser) parseParenthesizedSetOp(with *ast.WithClause) (ast.Statement, error) {
	p.nextToken() // cur = first token inside '('
	inner, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.RPAREN); err != nil {
		return nil, err
	}
	return p.continueSetOpTail(inner, with)
}

// parseWith parses a leading WITH clause and attaches it to the SELECT or
// set-operation tree that follows.
func (p *Parser) parseWith() (ast.Statement, error) {
	with := &ast.WithClause{}
	if p.peekIs(token.RECURSIVE) {
		with.Recursive = true
		p.nextToken()
	}

	for {
		if err := p.expectPeek(token.IDENT); err != nil {
			if err2 := p.expectPeek(token.QUOTED_IDENT); err2 != nil {
				return nil, err
			}
		}
		name := p.cur.Lexeme

		var cols []string
		if p.peekIs(token.LPAREN) {
			p.nextToken()
			for {
				if err := p.expectPeek(token.IDENT); err != nil {
					return nil, err
				}
				cols = append(cols, p.cur.Lexeme)
				if p.peekIs(token.COMMA) {
					p.nextToken()
					continue
				}
				break
			}
			if err := p.expectPeek(token.RPAREN); err != nil {
				return nil, err
			}
		}

		if err := p.expectPeek(token.AS); err != nil {
			return nil, err
		}
		if err := p.expectPeek(token.LPAREN); err != nil {
			return nil, err
		}
		p.nextToken() // cur = first token of CTE body
		query, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		if err := p.expectPeek(token.RPAREN); err != nil {
			return nil, err
		}

		with.CTEs = append(with.CTEs, ast.CTE{Name: name, Columns: cols, Query: query})

		if p.peekIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	switch {
	case p.peekIs(token.SELECT):
		p.nextToken()
		return p.parseSetOpTail(with)
	case p.peekIs(token.LPAREN):
		p.nextToken()
		return p.parseParenthesizedSetOp(with)
	default:
		return nil, p.peekErrorf("expected SELECT after WITH clause")
	}
}

// parseSetOpTail parses one SELECT (p.cur must be SELECT) then continues
// into the set-operation tail loop.
func (p *Parser) parseSetOpTail(with *ast.WithClause) (ast.Statement, error) {
	left, err := p.parseSelectBody()
	if err != nil {
		return nil, err
	}
	return p.continueSetOpTail(left, with)
}

// continueSetOpTail loops over trailing UNION/INTERSECT/EXCEPT [ALL|DISTINCT]
// operators, building a left-associative set-operation tree over left.
func (p *Parser) continueSetOpTail(left ast.Statement, with *ast.WithClause) (ast.Statement, error) {
	for p.peekIs(token.UNION) || p.peekIs(token.INTERSECT) || p.peekIs(token.EXCEPT) {
		p.nextToken()
		var op ast.SetOp
		switch p.cur.Kind {
		case token.UNION:
			op = ast.SetUnion
		case token.INTERSECT:
			op = ast.SetIntersect
		case token.EXCEPT:
			op = ast.SetExcept
		}

		all := false
		if p.peekIs(token.ALL) {
			all = true
			p.nextToken()
		} else if p.peekIs(token.DISTINCT) {
			p.nextToken()
		}

		var right ast.Statement
		var err error
		switch {
		case p.peekIs(token.SELECT):
			p.nextToken()
			right, err = p.parseSelectBody()
		case p.peekIs(token.LPAREN):
			p.nextToken()
			p.nextToken()
			right, err = p.ParseStatement()
			if err == nil {
				err = p.expectPeek(token.RPAREN)
			}
		default:
			return nil, p.peekErrorf("expected SELECT or '(' after set operator")
		}
		if err != nil {
			return nil, err
		}

		left = &ast.SetOpStmt{Left: left, Op: op, All: all, Right: right}
	}

	if with != nil {
		switch s := left.(type) {
		case *ast.SelectStmt:
			s.With = with
		case *ast.SetOpStmt:
			s.With = with
		}
	}
	return left, nil
}
