package parser

import (
	"chlite/pkg/ast"
	"chlite/pkg/token"
)

// parseWindowSpec parses the `(...)` body of an OVER clause; p.cur must be
// OVER on entry.
func (p *Parser) parseWindowSpec() (ast.WindowSpec, error) {
	var spec ast.WindowSpec
	if err := p.expectPeek(token.LPAREN); err != nil {
		return spec, err
	}

	if p.peekIs(token.PARTITION) {
		p.nextToken()
		if err := p.expectPeek(token.BY); err != nil {
			return spec, err
		}
		p.nextToken()
		exprs, err := p.parsePartitionByList()
		if err != nil {
			return spec, err
		}
		spec.PartitionBy = exprs
	}

	if p.peekIs(token.ORDER) {
		p.nextToken()
		if err := p.expectPeek(token.BY); err != nil {
			return spec, err
		}
		p.nextToken()
		items, err := p.parseOrderByList()
		if err != nil {
			return spec, err
		}
		spec.OrderBy = items
	}

	if p.peekIs(token.ROWS) || p.peekIs(token.RANGE) {
		p.nextToken()
		frame, err := p.parseWindowFrame()
		if err != nil {
			return spec, err
		}
		spec.Frame = frame
	}

	if err := p.expectPeek(token.RPAREN); err != nil {
		return spec, err
	}
	return spec, nil
}

// parsePartitionByList parses a comma-separated expression list terminated
// by ORDER/ROWS/RANGE/RPAREN lookahead rather than a bracket, since
// PARTITION BY has no closing delimiter of its own.
func (p *Parser) parsePartitionByList() ([]ast.Expression, error) {
	var exprs []ast.Expression
	for {
		e, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if p.peekIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	return exprs, nil
}

func (p *Parser) parseOrderByList() ([]ast.OrderItem, error) {
	var items []ast.OrderItem
	for {
		e, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		item := ast.OrderItem{Expr: e}
		if p.peekIs(token.ASC) {
			p.nextToken()
		} else if p.peekIs(token.DESC) {
			item.Desc = true
			p.nextToken()
		}
		if p.peekIs(token.NULLS) {
			p.nextToken()
			if p.peekIs(token.FIRST) {
				item.NullsFirst = true
				p.nextToken()
			} else if err := p.expectPeek(token.LAST); err != nil {
				return nil, err
			}
		}
		items = append(items, item)
		if p.peekIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			continue
		}
		break
	}
	return items, nil
}

func (p *Parser) parseWindowFrame() (*ast.WindowFrame, error) {
	frame := &ast.WindowFrame{Range: p.cur.Kind == token.RANGE}

	if p.peekIs(token.BETWEEN) {
		p.nextToken()
		p.nextToken()
		start, err := p.parseFrameBound()
		if err != nil {
			return nil, err
		}
		frame.Start = start
		if err := p.expectPeek(token.AND); err != nil {
			return nil, err
		}
		p.nextToken()
		end, err := p.parseFrameBound()
		if err != nil {
			return nil, err
		}
		frame.End = end
		return frame, nil
	}

	p.nextToken()
	start, err := p.parseFrameBound()
	if err != nil {
		return nil, err
	}
	frame.Start = start
	frame.End = ast.FrameBound{Kind: ast.BoundCurrentRow}
	return frame, nil
}

// parseFrameBound parses one frame edge; p.cur must be its first token.
func (p *Parser) parseFrameBound() (ast.FrameBound, error) {
	switch {
	case p.curIs(token.UNBOUNDED):
		if err := p.expectPeek(token.PRECEDING); err == nil {
			return ast.FrameBound{Kind: ast.BoundUnboundedPreceding}, nil
		}
		if err := p.expectPeek(token.FOLLOWING); err != nil {
			return ast.FrameBound{}, err
		}
		return ast.FrameBound{Kind: ast.BoundUnboundedFollowing}, nil
	case p.curIs(token.CURRENT):
		if err := p.expectPeek(token.ROW); err != nil {
			return ast.FrameBound{}, err
		}
		return ast.FrameBound{Kind: ast.BoundCurrentRow}, nil
	default:
		expr, err := p.parseExpression(precComparison)
		if err != nil {
			return ast.FrameBound{}, err
		}
		if p.peekIs(token.PRECEDING) {
			p.nextToken()
			return ast.FrameBound{Kind: ast.BoundPreceding, Expr: expr}, nil
		}
		if err := p.expectPeek(token.FOLLOWING); err != nil {
			return ast.FrameBound{}, err
		}
		return ast.FrameBound{Kind: ast.BoundFollowing, Expr: expr}, nil
	}
}
