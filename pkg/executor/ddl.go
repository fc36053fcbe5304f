package executor

import (
	"fmt"

	"chlite/pkg/ast"
	"chlite/pkg/catalog"
	"chlite/pkg/chqlerr"
	"chlite/pkg/types"
)

func (e *Executor) execCreateTable(stmt *ast.CreateTableStmt) (QueryResult, error) {
	cols := make([]catalog.Column, len(stmt.Columns))
	for i, cd := range stmt.Columns {
		typ, err := resolveDataType(cd.Type)
		if err != nil {
			return QueryResult{}, err
		}
		nullable := cd.Nullable || typ.IsNullable()
		col := catalog.Column{Name: cd.Name, Type: typ, Nullable: nullable}
		if cd.Default != nil {
			col.HasDefault = true
			col.DefaultExpr = exprKey(cd.Default)
		}
		cols[i] = col
	}

	tbl := &catalog.Table{Name: stmt.Table, Columns: cols}
	if err := e.catalog.CreateTable(tbl, stmt.IfNotExists); err != nil {
		return QueryResult{}, chqlerr.Name("%s", err.Error())
	}
	return QueryResult{}, nil
}

func (e *Executor) execDropTable(stmt *ast.DropTableStmt) (QueryResult, error) {
	if err := e.catalog.DropTable(stmt.Table, stmt.IfExists); err != nil {
		return QueryResult{}, chqlerr.Name("%s", err.Error())
	}
	return QueryResult{}, nil
}

// execExplain reports the shape of the wrapped statement instead of
// running it: one row naming the statement kind and, for a SELECT, the
// FROM source it reads from.
func (e *Executor) execExplain(stmt *ast.ExplainStmt) (QueryResult, error) {
	return QueryResult{
		Columns: []ResultColumn{{Name: "explain", Type: types.StringType}},
		Rows:    [][]types.Value{{types.NewString(types.KindString, describeStatement(stmt.Statement), 0)}},
	}, nil
}

func describeStatement(stmt ast.Statement) string {
	switch s := stmt.(type) {
	case *ast.SelectStmt:
		if s.From == nil {
			return "SelectStmt (no FROM)"
		}
		return fmt.Sprintf("SelectStmt from %s", describeTableRef(s.From))
	case *ast.SetOpStmt:
		return "SetOpStmt"
	case *ast.InsertStmt:
		return fmt.Sprintf("InsertStmt into %s", s.Table)
	case *ast.UpdateStmt:
		return fmt.Sprintf("UpdateStmt on %s", s.Table)
	case *ast.DeleteStmt:
		return fmt.Sprintf("DeleteStmt from %s", s.Table)
	default:
		return fmt.Sprintf("%T", stmt)
	}
}

func describeTableRef(ref ast.TableReference) string {
	switch t := ref.(type) {
	case *ast.TableName:
		return t.Name
	case *ast.SubqueryTableRef:
		return "(subquery)"
	case *ast.TableFunctionRef:
		return t.Name + "()"
	case *ast.JoinRef:
		return describeTableRef(t.Left) + " JOIN " + describeTableRef(t.Right)
	case *ast.ArrayJoinRef:
		return describeTableRef(t.Left) + " ARRAY JOIN"
	default:
		return fmt.Sprintf("%T", ref)
	}
}
