package parser

import (
	"chlite/pkg/ast"
	"chlite/pkg/token"
)

// ParseProgram parses a `;`-separated sequence of statements, the form
// ExecuteMany callers hand in as one script. A trailing semicolon and
// blank statements between separators are both accepted.
func (p *Parser) ParseProgram() ([]ast.Statement, error) {
	var stmts []ast.Statement
	for p.curIs(token.SEMI) {
		p.nextToken()
	}
	for !p.curIs(token.EOF) {
		stmt, err := p.ParseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		for p.peekIs(token.SEMI) {
			p.nextToken()
		}
		p.nextToken()
	}
	return stmts, nil
}
