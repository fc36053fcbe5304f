package executor

import (
	"chlite/pkg/ast"
	"chlite/pkg/chqlerr"
	"chlite/pkg/types"
)

// runSetOp executes a top-level UNION/INTERSECT/EXCEPT tree.
func (e *Executor) runSetOp(parent *scope, stmt *ast.SetOpStmt, params []types.Value) (*namedValues, error) {
	sc, err := e.buildScope(parent, stmt.With, params)
	if err != nil {
		return nil, err
	}
	return e.runSetOpWithScope(sc, stmt, &evalCtx{exec: e, params: params})
}

// runSetOpCorrelated executes a set-operation tree nested inside a larger
// query (a subquery's statement or a derived table's).
func (e *Executor) runSetOpCorrelated(parent *scope, stmt *ast.SetOpStmt, outer *evalCtx) (*namedValues, error) {
	sc, err := e.buildScope(parent, stmt.With, outer.params)
	if err != nil {
		return nil, err
	}
	return e.runSetOpWithScope(sc, stmt, &evalCtx{exec: e, outer: outer, params: outer.params})
}

func (e *Executor) runSetOpWithScope(sc *scope, stmt *ast.SetOpStmt, c *evalCtx) (*namedValues, error) {
	left, err := e.runStatementCorrelated(sc, stmt.Left, c)
	if err != nil {
		return nil, err
	}
	right, err := e.runStatementCorrelated(sc, stmt.Right, c)
	if err != nil {
		return nil, err
	}
	if len(left.Columns) != len(right.Columns) {
		return nil, chqlerr.Type("set operation operands have %d and %d columns", len(left.Columns), len(right.Columns))
	}

	var rows []Row
	switch stmt.Op {
	case ast.SetUnion:
		rows = append(append([]Row{}, left.Rows...), right.Rows...)
	case ast.SetIntersect:
		rows = intersectRows(left.Rows, right.Rows)
	case ast.SetExcept:
		rows = exceptRows(left.Rows, right.Rows)
	default:
		return nil, chqlerr.NotImplemented("set operation %d", stmt.Op)
	}

	if !stmt.All {
		_, rows = dedupRows(left.Columns, rows)
	}
	return &namedValues{Columns: left.Columns, Rows: rebindRowCols(rows, left.Columns)}, nil
}

func rebindRowCols(rows []Row, cols []column) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = Row{Cols: cols, Vals: r.Vals}
	}
	return out
}

func intersectRows(left, right []Row) []Row {
	rightKeys := map[string]bool{}
	for _, r := range right {
		rightKeys[types.RowKey(r.Vals)] = true
	}
	var out []Row
	for _, l := range left {
		if rightKeys[types.RowKey(l.Vals)] {
			out = append(out, l)
		}
	}
	return out
}

func exceptRows(left, right []Row) []Row {
	rightKeys := map[string]bool{}
	for _, r := range right {
		rightKeys[types.RowKey(r.Vals)] = true
	}
	var out []Row
	for _, l := range left {
		if !rightKeys[types.RowKey(l.Vals)] {
			out = append(out, l)
		}
	}
	return out
}
