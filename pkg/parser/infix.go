package parser

import (
	"chlite/pkg/ast"
	"chlite/pkg/token"
)

// parseInfix dispatches on the operator now sitting at p.cur (already
// advanced past by the precedence loop in parseExpression) and builds the
// appropriate binary-shaped node with left as its left-hand operand.
func (p *Parser) parseInfix(left ast.Expression) (ast.Expression, error) {
	switch p.cur.Kind {
	case token.OR, token.AND, token.EQ, token.NEQ, token.LT, token.LTE,
		token.GT, token.GTE, token.CONCAT, token.PLUS, token.MINUS,
		token.STAR, token.SLASH, token.PERCENT:
		return p.parseBinary(left)
	case token.IS:
		return p.parseIsNull(left)
	case token.IN:
		return p.parseIn(left, false)
	case token.BETWEEN:
		return p.parseBetween(left, false)
	case token.LIKE:
		return p.parseLike(left, false, false)
	case token.ILIKE:
		return p.parseLike(left, false, true)
	case token.NOT:
		return p.parseNotInfix(left)
	default:
		return nil, p.errorf("unexpected operator %s", p.cur.Lexeme)
	}
}

func (p *Parser) parseBinary(left ast.Expression) (ast.Expression, error) {
	op := p.cur.Kind
	prec := infixPrecedence[op]
	p.nextToken()
	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}
	return &ast.BinaryExpr{Left: left, Op: op, Right: right}, nil
}

func (p *Parser) parseIsNull(left ast.Expression) (ast.Expression, error) {
	not := false
	if p.peekIs(token.NOT) {
		not = true
		p.nextToken()
	}
	if err := p.expectPeek(token.NULL); err != nil {
		return nil, err
	}
	return &ast.IsNullExpr{Expr: left, Not: not}, nil
}

// parseNotInfix handles the `NOT IN|BETWEEN|LIKE|ILIKE` family, reached when
// peekPrecedence classified a NOT lookahead as comparison-precedence.
func (p *Parser) parseNotInfix(left ast.Expression) (ast.Expression, error) {
	p.nextToken() // cur = IN/BETWEEN/LIKE/ILIKE
	switch p.cur.Kind {
	case token.IN:
		return p.parseIn(left, true)
	case token.BETWEEN:
		return p.parseBetween(left, true)
	case token.LIKE:
		return p.parseLike(left, true, false)
	case token.ILIKE:
		return p.parseLike(left, true, true)
	default:
		return nil, p.errorf("expected IN, BETWEEN, LIKE or ILIKE after NOT")
	}
}

func (p *Parser) parseIn(left ast.Expression, not bool) (ast.Expression, error) {
	if err := p.expectPeek(token.LPAREN); err != nil {
		return nil, err
	}
	if p.peekIs(token.SELECT) || p.peekIs(token.WITH) {
		p.nextToken()
		stmt, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		if err := p.expectPeek(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.InExpr{Expr: left, Not: not, Subquery: stmt}, nil
	}
	values, err := p.parseExprListUntilAtLParen()
	if err != nil {
		return nil, err
	}
	return &ast.InExpr{Expr: left, Not: not, Values: values}, nil
}

// parseExprListUntilAtLParen parses a comma-separated expression list with
// p.cur already positioned on the opening LPAREN, returning with p.cur on
// the closing RPAREN.
func (p *Parser) parseExprListUntilAtLParen() ([]ast.Expression, error) {
	p.nextToken() // cur = first element or RPAREN
	var elems []ast.Expression
	if p.curIs(token.RPAREN) {
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
	if err := p.expectPeek(token.RPAREN); err != nil {
		return nil, err
	}
	return elems, nil
}

func (p *Parser) parseBetween(left ast.Expression, not bool) (ast.Expression, error) {
	p.nextToken() // cur = first token of low bound
	low, err := p.parseExpression(precComparison)
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.AND); err != nil {
		return nil, err
	}
	p.nextToken()
	high, err := p.parseExpression(precComparison)
	if err != nil {
		return nil, err
	}
	return &ast.BetweenExpr{Expr: left, Not: not, Low: low, High: high}, nil
}

func (p *Parser) parseLike(left ast.Expression, not, ci bool) (ast.Expression, error) {
	p.nextToken() // cur = first token of pattern
	pattern, err := p.parseExpression(precComparison)
	if err != nil {
		return nil, err
	}
	return &ast.LikeExpr{Expr: left, Pattern: pattern, Not: not, CaseInsensitive: ci}, nil
}

// parsePostfix applies postfix operators to a just-parsed primary: indexing
// `expr[i]` and the `::type` cast shorthand. `OVER (...)` is handled by
// parseFunctionCall.
func (p *Parser) parsePostfix(expr ast.Expression) (ast.Expression, error) {
	for {
		switch {
		case p.peekIs(token.LBRACKET):
			p.nextToken()
			p.nextToken()
			idx, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expectPeek(token.RBRACKET); err != nil {
				return nil, err
			}
			expr = &ast.IndexExpr{Expr: expr, Index: idx}
		case p.peekIs(token.DCOLON):
			p.nextToken()
			p.nextToken()
			dt, err := p.parseDataType()
			if err != nil {
				return nil, err
			}
			expr = &ast.Cast{Expr: expr, Type: dt}
		default:
			return expr, nil
		}
	}
}
