package parser

import (
	"strings"

	"chlite/pkg/ast"
	"chlite/pkg/token"
)

// parsePrefix parses a primary expression (including unary prefix operators
// NOT/+/-) and then applies any postfix operators ([index], ::type). A
// window's OVER (...) is attached by parseFunctionCall, not here.
func (p *Parser) parsePrefix() (ast.Expression, error) {
	expr, err := p.parsePrimaryOrUnary()
	if err != nil {
		return nil, err
	}
	return p.parsePostfix(expr)
}

func (p *Parser) parsePrimaryOrUnary() (ast.Expression, error) {
	switch p.cur.Kind {
	case token.NOT:
		p.nextToken()
		operand, err := p.parseExpression(precAnd)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: token.NOT, Operand: operand}, nil
	case token.PLUS, token.MINUS:
		op := p.cur.Kind
		p.nextToken()
		operand, err := p.parseExpression(precMultiplicative)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: op, Operand: operand}, nil
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	switch p.cur.Kind {
	case token.INT:
		return &ast.Literal{Text: p.cur.Lexeme, Kind: token.INT}, nil
	case token.FLOAT:
		return &ast.Literal{Text: p.cur.Lexeme, Kind: token.FLOAT}, nil
	case token.STRING:
		return &ast.Literal{Text: p.cur.Lexeme, Kind: token.STRING}, nil
	case token.NULL:
		return &ast.Literal{Text: "NULL", Kind: token.NULL}, nil
	case token.TRUE:
		return &ast.Literal{Text: "TRUE", Kind: token.TRUE}, nil
	case token.FALSE:
		return &ast.Literal{Text: "FALSE", Kind: token.FALSE}, nil
	case token.QUESTION:
		p.placeholderIndex++
		return &ast.Parameter{Index: p.placeholderIndex}, nil
	case token.STAR:
		return &ast.Star{}, nil
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.LPAREN:
		return p.parseParenExpr()
	case token.CASE:
		return p.parseCaseExpr()
	case token.CAST:
		return p.parseCastExpr()
	case token.EXISTS:
		return p.parseExistsExpr(false)
	case token.NOT:
		return p.parsePrimaryOrUnary()
	case token.IDENT, token.QUOTED_IDENT:
		return p.parseIdentOrCallOrColumn()
	default:
		// Of the keywords, only IF and ANY are accepted here, since they
		// double as the function names if(...) and any(...).
		if p.cur.Kind == token.IF || p.cur.Kind == token.ANY {
			return p.parseIdentOrCallOrColumn()
		}
		return nil, p.errorf("unexpected token %s in expression", p.cur.Lexeme)
	}
}

func (p *Parser) parseArrayLiteral() (ast.Expression, error) {
	elems, err := p.parseExprListUntil(token.LBRACKET, token.RBRACKET)
	if err != nil {
		return nil, err
	}
	return &ast.ArrayExpr{Elements: elems}, nil
}

// parseExprListUntil parses a comma-separated expression list bracketed by
// open/close, with p.cur positioned on open at entry; returns with p.cur on
// close.
func (p *Parser) parseExprListUntil(open, close token.Kind) ([]ast.Expression, error) {
	p.nextToken() // cur = first element or close
	var elems []ast.Expression
	if p.curIs(close) {
		return elems, nil
	}
	for {
		expr, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, expr)
		if p.peekIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expectPeek(close); err != nil {
		return nil, err
	}
	return elems, nil
}

// parseParenExpr parses a parenthesized expression, a tuple literal, a
// scalar subquery, or a lambda parameter list (x, y) -> body.
func (p *Parser) parseParenExpr() (ast.Expression, error) {
	if p.peekIs(token.SELECT) || p.peekIs(token.WITH) {
		p.nextToken()
		stmt, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		if err := p.expectPeek(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.SubqueryExpr{Query: stmt}, nil
	}

	if p.peekIs(token.RPAREN) {
		p.nextToken()
		if p.peekIs(token.ARROW) {
			p.nextToken()
			p.nextToken()
			body, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			return &ast.Lambda{Body: body}, nil
		}
		return &ast.TupleExpr{}, nil
	}

	save := *p
	lexSave := *p.lex
	if lambda, ok, err := p.tryParseLambdaParams(); err != nil {
		return nil, err
	} else if ok {
		return lambda, nil
	} else {
		*p = save
		*p.lex = lexSave
	}

	p.nextToken() // cur = first element
	first, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if p.peekIs(token.RPAREN) {
		p.nextToken()
		return first, nil
	}
	elems := []ast.Expression{first}
	names := []string{""}
	for p.peekIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		e, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		names = append(names, "")
	}
	if err := p.expectPeek(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.TupleExpr{Elements: elems, Names: names}, nil
}

// tryParseLambdaParams speculatively parses `(a, b, ...) ->` starting at
// p.cur == LPAREN, restoring the parser (via the caller's saved copy) on
// mismatch. It only returns ok=true once it has actually consumed the `->`.
func (p *Parser) tryParseLambdaParams() (ast.Expression, bool, error) {
	var params []string
	p.nextToken() // cur = first param or RPAREN
	for p.curIs(token.IDENT) {
		params = append(params, p.cur.Lexeme)
		if p.peekIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	if !p.peekIs(token.RPAREN) || len(params) == 0 {
		return nil, false, nil
	}
	p.nextToken() // cur = RPAREN
	if !p.peekIs(token.ARROW) {
		return nil, false, nil
	}
	p.nextToken() // cur = ARROW
	p.nextToken() // cur = first token of body
	body, err := p.ParseExpression()
	if err != nil {
		return nil, false, err
	}
	return &ast.Lambda{Params: params, Body: body}, true, nil
}

func (p *Parser) parseCaseExpr() (ast.Expression, error) {
	ce := &ast.CaseExpr{}
	p.nextToken() // cur = first token after CASE
	if !p.curIs(token.WHEN) {
		operand, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		ce.Operand = operand
		if err := p.expectPeek(token.WHEN); err != nil {
			return nil, err
		}
	}
	for p.curIs(token.WHEN) {
		p.nextToken()
		cond, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if err := p.expectPeek(token.THEN); err != nil {
			return nil, err
		}
		p.nextToken()
		result, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		ce.Whens = append(ce.Whens, ast.WhenClause{Cond: cond, Result: result})
		if p.peekIs(token.WHEN) {
			p.nextToken()
		}
	}
	if p.peekIs(token.ELSE) {
		p.nextToken()
		p.nextToken()
		elseResult, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		ce.Else = elseResult
	}
	if err := p.expectPeek(token.END); err != nil {
		return nil, err
	}
	return ce, nil
}

func (p *Parser) parseCastExpr() (ast.Expression, error) {
	if err := p.expectPeek(token.LPAREN); err != nil {
		return nil, err
	}
	p.nextToken()
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.AS); err != nil {
		return nil, err
	}
	p.nextToken()
	dt, err := p.parseDataType()
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.Cast{Expr: expr, Type: dt}, nil
}

func (p *Parser) parseExistsExpr(not bool) (ast.Expression, error) {
	if err := p.expectPeek(token.LPAREN); err != nil {
		return nil, err
	}
	p.nextToken()
	stmt, err := p.ParseStatement()
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.ExistsExpr{Query: stmt, Not: not}, nil
}

// parseIdentOrCallOrColumn parses an identifier, possibly keyword-as-name,
// into a qualified column reference, a bare column, a `*` star, or a
// function-call (with DISTINCT flag and lambda-capable argument list).
func (p *Parser) parseIdentOrCallOrColumn() (ast.Expression, error) {
	name := p.cur.Lexeme

	if p.peekIs(token.DOT) {
		p.nextToken() // cur = DOT
		if p.peekIs(token.STAR) {
			p.nextToken()
			return &ast.Star{Table: name}, nil
		}
		if err := p.advancePastDotName(); err != nil {
			return nil, err
		}
		return &ast.ColumnRef{Table: name, Name: p.cur.Lexeme}, nil
	}

	if p.peekIs(token.LPAREN) {
		return p.parseFunctionCall(name)
	}

	return &ast.ColumnRef{Name: name}, nil
}

func (p *Parser) advancePastDotName() error {
	if !p.peekIs(token.IDENT) && !p.peekIs(token.QUOTED_IDENT) && !p.peek.Kind.IsKeyword() {
		return p.peekErrorf("expected column name after '.'")
	}
	p.nextToken()
	return nil
}

func (p *Parser) parseFunctionCall(name string) (ast.Expression, error) {
	p.nextToken() // cur = LPAREN
	fc := &ast.FunctionCall{Name: name}

	if p.peekIs(token.DISTINCT) {
		fc.Distinct = true
		p.nextToken()
	}

	if p.peekIs(token.RPAREN) {
		p.nextToken()
	} else {
		p.nextToken() // cur = first arg token
		for {
			arg, err := p.parseCallArgument()
			if err != nil {
				return nil, err
			}
			fc.Args = append(fc.Args, arg)
			if p.peekIs(token.COMMA) {
				p.nextToken()
				p.nextToken()
				continue
			}
			break
		}
		if err := p.expectPeek(token.RPAREN); err != nil {
			return nil, err
		}
	}

	if strings.EqualFold(name, "over") {
		return nil, p.errorf("unexpected function named over")
	}
	if p.peekIs(token.OVER) {
		p.nextToken()
		spec, err := p.parseWindowSpec()
		if err != nil {
			return nil, err
		}
		return &ast.WindowFunction{Func: *fc, Spec: spec}, nil
	}
	return fc, nil
}

// parseCallArgument parses one function argument, detecting a bare or
// parenthesized lambda head by speculative parse.
func (p *Parser) parseCallArgument() (ast.Expression, error) {
	if p.curIs(token.IDENT) && p.peekIs(token.ARROW) {
		param := p.cur.Lexeme
		p.nextToken() // cur = ARROW
		p.nextToken() // cur = first token of body
		body, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.Lambda{Params: []string{param}, Body: body}, nil
	}
	return p.ParseExpression()
}
