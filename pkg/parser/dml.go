package parser

import (
	"chlite/pkg/ast"
	"chlite/pkg/token"
)

// parseInsert parses INSERT INTO table [(cols)] VALUES (...), ... or
// INSERT INTO table [(cols)] SELECT ...; p.cur must be INSERT.
func (p *Parser) parseInsert() (ast.Statement, error) {
	if err := p.expectPeek(token.INTO); err != nil {
		return nil, err
	}
	if err := p.expectIdentLike(); err != nil {
		return nil, err
	}
	stmt := &ast.InsertStmt{Table: p.cur.Lexeme}

	if p.peekIs(token.LPAREN) {
		p.nextToken()
		for {
			if err := p.expectPeek(token.IDENT); err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, p.cur.Lexeme)
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

	if p.peekIs(token.SELECT) || p.peekIs(token.WITH) {
		p.nextToken()
		query, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		stmt.Select = query
		return stmt, nil
	}

	if err := p.expectPeek(token.VALUES); err != nil {
		return nil, err
	}

	for {
		if err := p.expectPeek(token.LPAREN); err != nil {
			return nil, err
		}
		row, err := p.parseExprListUntilAtLParen()
		if err != nil {
			return nil, err
		}
		stmt.Values = append(stmt.Values, row)
		if p.peekIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	return stmt, nil
}

// parseUpdate parses UPDATE table SET col = expr, ... [WHERE ...].
func (p *Parser) parseUpdate() (ast.Statement, error) {
	if err := p.expectIdentLike(); err != nil {
		return nil, err
	}
	stmt := &ast.UpdateStmt{Table: p.cur.Lexeme}

	if err := p.expectPeek(token.SET); err != nil {
		return nil, err
	}
	for {
		if err := p.expectPeek(token.IDENT); err != nil {
			return nil, err
		}
		col := p.cur.Lexeme
		if err := p.expectPeek(token.EQ); err != nil {
			return nil, err
		}
		p.nextToken()
		val, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Assignments = append(stmt.Assignments, ast.Assignment{Column: col, Value: val})
		if p.peekIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if p.peekIs(token.WHERE) {
		p.nextToken()
		p.nextToken()
		where, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}

// parseDelete parses DELETE FROM table [WHERE ...].
func (p *Parser) parseDelete() (ast.Statement, error) {
	if err := p.expectPeek(token.FROM); err != nil {
		return nil, err
	}
	if err := p.expectIdentLike(); err != nil {
		return nil, err
	}
	stmt := &ast.DeleteStmt{Table: p.cur.Lexeme}

	if p.peekIs(token.WHERE) {
		p.nextToken()
		p.nextToken()
		where, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}

// expectIdentLike advances past an identifier token (IDENT or QUOTED_IDENT).
func (p *Parser) expectIdentLike() error {
	if p.peekIs(token.IDENT) || p.peekIs(token.QUOTED_IDENT) {
		p.nextToken()
		return nil
	}
	return p.peekErrorf("expected identifier, got %s", p.peek.Kind)
}
