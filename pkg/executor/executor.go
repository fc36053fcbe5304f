package executor

import (
	"chlite/pkg/ast"
	"chlite/pkg/catalog"
	"chlite/pkg/chqlerr"
	"chlite/pkg/registry"
	"chlite/pkg/types"
)

// ResultColumn names one output column and the type chlite observed for it.
// chlite has no static type checker over the whole expression grammar, so
// this is the type of the first non-null value seen in that column rather
// than a declared schema type; a column that is null in every row (or a
// result with no rows) reports KindNull.
type ResultColumn struct {
	Name string
	Type types.Type
}

// QueryResult is the shape every statement produces: a column list and its
// rows for a SELECT, or just RowsAffected for INSERT/UPDATE/DELETE/DDL.
type QueryResult struct {
	Columns      []ResultColumn
	Rows         [][]types.Value
	RowsAffected int64
}

// Executor walks one parsed ast.Statement against a shared catalog and
// function registry. It carries no state across calls beyond those two,
// so one Executor can run any number of independent statements; CTE
// scoping is threaded through a per-call scope chain instead.
type Executor struct {
	catalog  *catalog.Catalog
	registry registry.Registry
}

// New constructs an Executor over a catalog and function registry.
func New(cat *catalog.Catalog, reg registry.Registry) *Executor {
	return &Executor{catalog: cat, registry: reg}
}

// scope resolves CTE names to their materialized rows for one top-level
// statement's execution, chained outward for nested WITH clauses.
type scope struct {
	ctes   map[string]*namedValues
	parent *scope
}

func (s *scope) lookup(name string) (*namedValues, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if nv, ok := sc.ctes[name]; ok {
			return nv, true
		}
	}
	return nil, false
}

// Execute runs one statement with the given positional parameter values
// bound to `?` placeholders in left-to-right appearance order.
func (e *Executor) Execute(stmt ast.Statement, params []types.Value) (QueryResult, error) {
	return e.execStatement(nil, stmt, params)
}

func (e *Executor) execStatement(parent *scope, stmt ast.Statement, params []types.Value) (QueryResult, error) {
	switch s := stmt.(type) {
	case *ast.SelectStmt:
		nv, err := e.runSelect(parent, s, params)
		if err != nil {
			return QueryResult{}, err
		}
		return namedValuesToResult(nv), nil
	case *ast.SetOpStmt:
		nv, err := e.runSetOp(parent, s, params)
		if err != nil {
			return QueryResult{}, err
		}
		return namedValuesToResult(nv), nil
	case *ast.InsertStmt:
		return e.execInsert(parent, s, params)
	case *ast.UpdateStmt:
		return e.execUpdate(parent, s, params)
	case *ast.DeleteStmt:
		return e.execDelete(parent, s, params)
	case *ast.CreateTableStmt:
		return e.execCreateTable(s)
	case *ast.DropTableStmt:
		return e.execDropTable(s)
	case *ast.ExplainStmt:
		return e.execExplain(s)
	default:
		return QueryResult{}, chqlerr.NotImplemented("statement type %T", stmt)
	}
}

// runSubquery evaluates a nested expression statement (scalar subquery, IN
// subquery, or EXISTS subquery) inside the evaluation context
// c so column references can resolve into the enclosing row when the
// subquery is correlated.
func (e *Executor) runSubquery(c *evalCtx, stmt ast.Statement) (*namedValues, error) {
	sc := &scope{}
	switch s := stmt.(type) {
	case *ast.SelectStmt:
		return e.runSelectCorrelated(sc, s, c)
	case *ast.SetOpStmt:
		return e.runSetOpCorrelated(sc, s, c)
	default:
		return nil, chqlerr.NotImplemented("subquery statement type %T", stmt)
	}
}

func namedValuesToResult(nv *namedValues) QueryResult {
	cols := make([]ResultColumn, len(nv.Columns))
	for i, c := range nv.Columns {
		cols[i] = ResultColumn{Name: c.Name, Type: types.NullType}
		for _, r := range nv.Rows {
			if i < len(r.Vals) && !r.Vals[i].IsNull() {
				cols[i].Type = r.Vals[i].Type()
				break
			}
		}
	}
	rows := make([][]types.Value, len(nv.Rows))
	for i, r := range nv.Rows {
		rows[i] = r.Vals
	}
	return QueryResult{Columns: cols, Rows: rows}
}
