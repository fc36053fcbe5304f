package parser

import (
	"chlite/pkg/ast"
	"chlite/pkg/token"
)

// parseSelectBody parses a single SELECT (no WITH prefix, no trailing set
// operators); p.cur must be SELECT on entry.
func (p *Parser) parseSelectBody() (*ast.SelectStmt, error) {
	stmt := &ast.SelectStmt{}

	if p.peekIs(token.DISTINCT) {
		stmt.Distinct = true
		p.nextToken()
	}

	p.nextToken() // cur = first token of projection list
	items, err := p.parseSelectItemList()
	if err != nil {
		return nil, err
	}
	stmt.Columns = items

	if p.peekIs(token.FROM) {
		p.nextToken()
		p.nextToken()
		ref, err := p.parseTableExpression()
		if err != nil {
			return nil, err
		}
		stmt.From = ref
	}

	if p.peekIs(token.PREWHERE) {
		p.nextToken()
		p.nextToken()
		expr, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Prewhere = expr
	}

	if p.peekIs(token.WHERE) {
		p.nextToken()
		p.nextToken()
		expr, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Where = expr
	}

	if p.peekIs(token.GROUP) {
		p.nextToken()
		if err := p.expectPeek(token.BY); err != nil {
			return nil, err
		}
		p.nextToken()
		exprs, err := p.parsePartitionByList()
		if err != nil {
			return nil, err
		}
		stmt.GroupBy = exprs
	}

	if p.peekIs(token.HAVING) {
		p.nextToken()
		p.nextToken()
		expr, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Having = expr
	}

	if p.peekIs(token.ORDER) {
		p.nextToken()
		if err := p.expectPeek(token.BY); err != nil {
			return nil, err
		}
		p.nextToken()
		items, err := p.parseOrderByList()
		if err != nil {
			return nil, err
		}
		stmt.OrderBy = items
	}

	if p.peekIs(token.LIMIT) {
		p.nextToken()
		p.nextToken()
		first, err := p.parseExpression(precComparison)
		if err != nil {
			return nil, err
		}
		if p.peekIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			second, err := p.parseExpression(precComparison)
			if err != nil {
				return nil, err
			}
			stmt.Offset = first
			stmt.Limit = second
		} else {
			stmt.Limit = first
		}
	}

	if p.peekIs(token.OFFSET) {
		p.nextToken()
		p.nextToken()
		expr, err := p.parseExpression(precComparison)
		if err != nil {
			return nil, err
		}
		stmt.Offset = expr
	}

	if p.peekIs(token.SAMPLE) {
		p.nextToken()
		p.nextToken()
		expr, err := p.parseExpression(precComparison)
		if err != nil {
			return nil, err
		}
		stmt.Sample = expr
	}

	if p.peekIs(token.SETTINGS) {
		p.nextToken()
		settings, err := p.parseSettingsList()
		if err != nil {
			return nil, err
		}
		stmt.Settings = settings
	}

	if p.peekIs(token.FORMAT) {
		p.nextToken()
		p.nextToken()
		stmt.Format = p.cur.Lexeme
	}

	return stmt, nil
}

func (p *Parser) parseSettingsList() (map[string]ast.Expression, error) {
	settings := map[string]ast.Expression{}
	for {
		p.nextToken() // cur = setting name
		name := p.cur.Lexeme
		if err := p.expectPeek(token.EQ); err != nil {
			return nil, err
		}
		p.nextToken()
		val, err := p.parseExpression(precComparison)
		if err != nil {
			return nil, err
		}
		settings[name] = val
		if p.peekIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return settings, nil
}

// parseSelectItemList parses the projection list; p.cur must be the first
// token of the first item.
func (p *Parser) parseSelectItemList() ([]ast.SelectItem, error) {
	var items []ast.SelectItem
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
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

func (p *Parser) parseSelectItem() (ast.SelectItem, error) {
	expr, err := p.ParseExpression()
	if err != nil {
		return ast.SelectItem{}, err
	}
	item := ast.SelectItem{Expr: expr}

	if p.peekIs(token.AS) {
		p.nextToken()
		if !p.peekIs(token.IDENT) && !p.peekIs(token.QUOTED_IDENT) && !p.peek.Kind.IsKeyword() {
			return ast.SelectItem{}, p.peekErrorf("expected alias after AS")
		}
		p.nextToken()
		item.Alias = p.cur.Lexeme
	} else if p.peekIs(token.IDENT) || p.peekIs(token.QUOTED_IDENT) {
		p.nextToken()
		item.Alias = p.cur.Lexeme
	}
	return item, nil
}

// parseTableExpression parses a FROM-clause source, including any chain of
// comma/CROSS/INNER/LEFT/RIGHT/FULL/ASOF joins and ARRAY JOINs that follow
// it; p.cur must be the first token of the base source.
func (p *Parser) parseTableExpression() (ast.TableReference, error) {
	left, err := p.parseTableSource()
	if err != nil {
		return nil, err
	}
	return p.parseJoinTail(left)
}

func (p *Parser) parseTableSource() (ast.TableReference, error) {
	switch {
	case p.curIs(token.LPAREN):
		p.nextToken()
		stmt, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		if err := p.expectPeek(token.RPAREN); err != nil {
			return nil, err
		}
		ref := &ast.SubqueryTableRef{Query: stmt}
		ref.Alias, err = p.parseOptionalAlias()
		if err != nil {
			return nil, err
		}
		return ref, nil
	case p.curIs(token.IDENT), p.curIs(token.QUOTED_IDENT):
		name := p.cur.Lexeme
		if p.peekIs(token.LPAREN) {
			p.nextToken() // cur = LPAREN
			var args []ast.Expression
			if !p.peekIs(token.RPAREN) {
				p.nextToken()
				list, err := p.parsePartitionByList()
				if err != nil {
					return nil, err
				}
				args = list
			} else {
				p.nextToken()
			}
			if err := p.expectPeek(token.RPAREN); err != nil {
				return nil, err
			}
			ref := &ast.TableFunctionRef{Name: name, Args: args}
			alias, err := p.parseOptionalAlias()
			if err != nil {
				return nil, err
			}
			ref.Alias = alias
			return ref, nil
		}
		ref := &ast.TableName{Name: name}
		if p.peekIs(token.FINAL) {
			ref.Final = true
			p.nextToken()
		}
		alias, err := p.parseOptionalAlias()
		if err != nil {
			return nil, err
		}
		ref.Alias = alias
		return ref, nil
	default:
		return nil, p.errorf("expected table reference, got %s", p.cur.Lexeme)
	}
}

// parseOptionalAlias consumes an optional `[AS] alias` tail.
func (p *Parser) parseOptionalAlias() (string, error) {
	if p.peekIs(token.AS) {
		p.nextToken()
		if !p.peekIs(token.IDENT) && !p.peekIs(token.QUOTED_IDENT) {
			return "", p.peekErrorf("expected alias after AS")
		}
		p.nextToken()
		return p.cur.Lexeme, nil
	}
	if p.peekIs(token.IDENT) || p.peekIs(token.QUOTED_IDENT) {
		p.nextToken()
		return p.cur.Lexeme, nil
	}
	return "", nil
}

// parseJoinTail loops over comma-joins, keyword joins, and ARRAY JOINs
// following a table source, left-associating them onto left.
func (p *Parser) parseJoinTail(left ast.TableReference) (ast.TableReference, error) {
	for {
		switch {
		case p.peekIs(token.COMMA):
			p.nextToken()
			p.nextToken()
			right, err := p.parseTableSource()
			if err != nil {
				return nil, err
			}
			left = &ast.JoinRef{Left: left, Kind: ast.JoinCross, Right: right}
		case p.isJoinKeywordAhead():
			join, err := p.parseJoin(left)
			if err != nil {
				return nil, err
			}
			left = join
		case p.isArrayJoinAhead():
			aj, err := p.parseArrayJoin(left)
			if err != nil {
				return nil, err
			}
			left = aj
		default:
			return left, nil
		}
	}
}

func (p *Parser) isJoinKeywordAhead() bool {
	switch p.peek.Kind {
	case token.JOIN, token.INNER, token.LEFT, token.RIGHT, token.FULL,
		token.CROSS, token.ASOF, token.GLOBAL, token.ANY:
		return true
	}
	return false
}

func (p *Parser) isArrayJoinAhead() bool {
	if p.peekIs(token.ARRAY) {
		return true
	}
	return p.peekIs(token.LEFT) && p.peek2.Kind == token.ARRAY
}

func (p *Parser) parseArrayJoin(left ast.TableReference) (ast.TableReference, error) {
	isLeft := false
	if p.peekIs(token.LEFT) {
		isLeft = true
		p.nextToken()
	}
	if err := p.expectPeek(token.ARRAY); err != nil {
		return nil, err
	}
	if err := p.expectPeek(token.JOIN); err != nil {
		return nil, err
	}
	p.nextToken()
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	alias, err := p.parseOptionalAlias()
	if err != nil {
		return nil, err
	}
	return &ast.ArrayJoinRef{Left: left, Expr: expr, Alias: alias, IsLeft: isLeft}, nil
}

// parseJoin consumes an optional GLOBAL/ANY prefix (both ignored, per the
// dialect's distributed-query hints having no local meaning), the join
// kind, the right-hand source, and its ON/USING predicate.
func (p *Parser) parseJoin(left ast.TableReference) (ast.TableReference, error) {
	for p.peekIs(token.GLOBAL) || p.peekIs(token.ANY) {
		p.nextToken()
	}

	kind := ast.JoinInner
	switch {
	case p.peekIs(token.CROSS):
		p.nextToken()
		kind = ast.JoinCross
	case p.peekIs(token.INNER):
		p.nextToken()
		kind = ast.JoinInner
	case p.peekIs(token.ASOF):
		p.nextToken()
		kind = ast.JoinAsof
	case p.peekIs(token.LEFT):
		p.nextToken()
		kind = ast.JoinLeft
		if p.peekIs(token.SEMI_KW) {
			p.nextToken()
			kind = ast.JoinLeftSemi
		} else if p.peekIs(token.ANTI) {
			p.nextToken()
			kind = ast.JoinLeftAnti
		} else if p.peekIs(token.OUTER) {
			p.nextToken()
		}
	case p.peekIs(token.RIGHT):
		p.nextToken()
		kind = ast.JoinRight
		if p.peekIs(token.SEMI_KW) {
			p.nextToken()
			kind = ast.JoinRightSemi
		} else if p.peekIs(token.ANTI) {
			p.nextToken()
			kind = ast.JoinRightAnti
		} else if p.peekIs(token.OUTER) {
			p.nextToken()
		}
	case p.peekIs(token.FULL):
		p.nextToken()
		kind = ast.JoinFull
		if p.peekIs(token.OUTER) {
			p.nextToken()
		}
	}

	if err := p.expectPeek(token.JOIN); err != nil {
		return nil, err
	}
	p.nextToken()
	right, err := p.parseTableSource()
	if err != nil {
		return nil, err
	}

	join := &ast.JoinRef{Left: left, Kind: kind, Right: right}
	if kind == ast.JoinCross {
		return join, nil
	}

	switch {
	case p.peekIs(token.ON):
		p.nextToken()
		p.nextToken()
		on, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		join.On = on
	case p.peekIs(token.USING):
		p.nextToken()
		if err := p.expectPeek(token.LPAREN); err != nil {
			return nil, err
		}
		for {
			if err := p.expectPeek(token.IDENT); err != nil {
				return nil, err
			}
			join.Using = append(join.Using, p.cur.Lexeme)
			if p.peekIs(token.COMMA) {
				p.nextToken()
				continue
			}
			break
		}
		if err := p.expectPeek(token.RPAREN); err != nil {
			return nil, err
		}
	default:
		return nil, p.peekErrorf("expected ON or USING after JOIN")
	}
	return join, nil
}
