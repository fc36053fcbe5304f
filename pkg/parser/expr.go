package parser

import (
	"chlite/pkg/ast"
	"chlite/pkg/token"
)

// Precedence levels, lowest to highest, per the expression grammar:
// OR -> AND -> NOT(prefix) -> comparisons -> concatenation(||) ->
// additive -> multiplicative -> unary sign(prefix) -> postfix -> primary.
const (
	precLowest = iota
	precOr
	precAnd
	precComparison
	precConcat
	precAdditive
	precMultiplicative
)

var infixPrecedence = map[token.Kind]int{
	token.OR:       precOr,
	token.AND:      precAnd,
	token.EQ:       precComparison,
	token.NEQ:      precComparison,
	token.LT:       precComparison,
	token.LTE:      precComparison,
	token.GT:       precComparison,
	token.GTE:      precComparison,
	token.IS:       precComparison,
	token.IN:       precComparison,
	token.BETWEEN:  precComparison,
	token.LIKE:     precComparison,
	token.ILIKE:    precComparison,
	token.CONCAT:   precConcat,
	token.PLUS:     precAdditive,
	token.MINUS:    precAdditive,
	token.STAR:     precMultiplicative,
	token.SLASH:    precMultiplicative,
	token.PERCENT:  precMultiplicative,
}

func (p *Parser) peekPrecedence() int {
	if p.peekIs(token.NOT) {
		switch p.peek2.Kind {
		case token.IN, token.BETWEEN, token.LIKE, token.ILIKE:
			return precComparison
		}
		return precLowest
	}
	if prec, ok := infixPrecedence[p.peek.Kind]; ok {
		return prec
	}
	return precLowest
}

// ParseExpression parses a full expression starting at the lowest
// precedence; p.cur must be the expression's first token.
func (p *Parser) ParseExpression() (ast.Expression, error) {
	return p.parseExpression(precLowest)
}

func (p *Parser) parseExpression(precedence int) (ast.Expression, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for precedence < p.peekPrecedence() {
		p.nextToken()
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}
