package parser

import (
	"chlite/pkg/ast"
	"chlite/pkg/token"
)

// parseCreateTable parses CREATE TABLE [IF NOT EXISTS] name (cols)
// [ENGINE = name(args)] [PRIMARY KEY (cols)] [ORDER BY (cols)]. The ENGINE
// clause is accepted and recorded but never affects execution, since the
// catalog only knows one storage representation.
func (p *Parser) parseCreateTable() (ast.Statement, error) {
	if err := p.expectPeek(token.TABLE); err != nil {
		return nil, err
	}
	stmt := &ast.CreateTableStmt{}

	if p.peekIs(token.IF) {
		p.nextToken()
		if err := p.expectPeek(token.NOT); err != nil {
			return nil, err
		}
		if err := p.expectPeek(token.EXISTS); err != nil {
			return nil, err
		}
		stmt.IfNotExists = true
	}

	if err := p.expectIdentLike(); err != nil {
		return nil, err
	}
	stmt.Table = p.cur.Lexeme

	if err := p.expectPeek(token.LPAREN); err != nil {
		return nil, err
	}
	for {
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		stmt.Columns = append(stmt.Columns, col)
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

	if p.peekIs(token.IDENT) && p.curIsIdentAt(p.peek, "ENGINE") {
		p.nextToken()
		if err := p.expectPeek(token.EQ); err != nil {
			return nil, err
		}
		if err := p.expectIdentLike(); err != nil {
			return nil, err
		}
		stmt.Engine = p.cur.Lexeme
		if p.peekIs(token.LPAREN) {
			p.nextToken()
			args, err := p.parseExprListUntilAtLParen()
			if err != nil {
				return nil, err
			}
			stmt.EngineArgs = args
		}
	}

	if p.peekIs(token.IDENT) && p.curIsIdentAt(p.peek, "PRIMARY") {
		p.nextToken()
		if err := p.expectPeekIdent("KEY"); err != nil {
			return nil, err
		}
		cols, err := p.parseParenColumnList()
		if err != nil {
			return nil, err
		}
		stmt.PrimaryKey = cols
	}

	if p.peekIs(token.ORDER) {
		p.nextToken()
		if err := p.expectPeek(token.BY); err != nil {
			return nil, err
		}
		cols, err := p.parseParenColumnList()
		if err != nil {
			return nil, err
		}
		stmt.OrderBy = cols
	}

	return stmt, nil
}

func (p *Parser) parseParenColumnList() ([]string, error) {
	if err := p.expectPeek(token.LPAREN); err != nil {
		return nil, err
	}
	var cols []string
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
	return cols, nil
}

func (p *Parser) parseColumnDef() (ast.ColumnDef, error) {
	if err := p.expectIdentLike(); err != nil {
		return ast.ColumnDef{}, err
	}
	col := ast.ColumnDef{Name: p.cur.Lexeme, Nullable: true}

	p.nextToken()
	dt, err := p.parseDataType()
	if err != nil {
		return ast.ColumnDef{}, err
	}
	col.Type = dt
	if dt.Name == "Nullable" {
		col.Nullable = true
	} else {
		col.Nullable = false
	}

	if p.peekIs(token.DEFAULT) {
		p.nextToken()
		p.nextToken()
		def, err := p.parseExpression(precComparison)
		if err != nil {
			return ast.ColumnDef{}, err
		}
		col.Default = def
	}
	return col, nil
}

// parseDropTable parses DROP TABLE [IF EXISTS] name.
func (p *Parser) parseDropTable() (ast.Statement, error) {
	if err := p.expectPeek(token.TABLE); err != nil {
		return nil, err
	}
	stmt := &ast.DropTableStmt{}

	if p.peekIs(token.IF) {
		p.nextToken()
		if err := p.expectPeek(token.EXISTS); err != nil {
			return nil, err
		}
		stmt.IfExists = true
	}

	if err := p.expectIdentLike(); err != nil {
		return nil, err
	}
	stmt.Table = p.cur.Lexeme
	return stmt, nil
}

func (p *Parser) curIsIdentAt(t token.Token, upper string) bool {
	return t.Kind == token.IDENT && token.UpperLexeme(t.Lexeme) == upper
}

func (p *Parser) expectPeekIdent(upper string) error {
	if !p.peekIs(token.IDENT) || token.UpperLexeme(p.peek.Lexeme) != upper {
		return p.peekErrorf("expected %s", upper)
	}
	p.nextToken()
	return nil
}
