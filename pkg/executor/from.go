package executor

import (
	"chlite/pkg/ast"
	"chlite/pkg/chqlerr"
	"chlite/pkg/types"
)

// materializeFrom evaluates a FROM-clause TableReference into a flat list
// of Rows. outer carries the enclosing row for correlated subqueries in a
// derived table or table function argument.
func (e *Executor) materializeFrom(sc *scope, ref ast.TableReference, outer *evalCtx) ([]Row, error) {
	switch t := ref.(type) {
	case *ast.TableName:
		return e.materializeTableName(sc, t)
	case *ast.SubqueryTableRef:
		return e.materializeSubqueryTable(sc, t, outer)
	case *ast.TableFunctionRef:
		return e.materializeTableFunction(t, outer)
	case *ast.JoinRef:
		return e.materializeJoin(sc, t, outer)
	case *ast.ArrayJoinRef:
		return e.materializeArrayJoin(sc, t, outer)
	default:
		return nil, chqlerr.NotImplemented("FROM source %T", ref)
	}
}

func (e *Executor) materializeTableName(sc *scope, t *ast.TableName) ([]Row, error) {
	alias := t.Alias
	if alias == "" {
		alias = t.Name
	}

	if nv, ok := sc.lookup(t.Name); ok {
		return rebindAlias(nv.Rows, alias), nil
	}

	tbl, ok := e.catalog.GetTable(t.Name)
	if !ok {
		return nil, chqlerr.Name("table %s does not exist", t.Name)
	}
	names := tbl.ColumnNames()
	snap := tbl.Snapshot()
	rows := make([]Row, len(snap))
	for i, vals := range snap {
		cols := make([]column, len(names))
		for j, n := range names {
			cols[j] = column{Table: alias, Name: n}
		}
		rows[i] = Row{Cols: cols, Vals: vals}
	}
	return rows, nil
}

func rebindAlias(rows []Row, alias string) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		cols := make([]column, len(r.Cols))
		for j, c := range r.Cols {
			cols[j] = column{Table: alias, Name: c.Name}
		}
		out[i] = Row{Cols: cols, Vals: r.Vals}
	}
	return out
}

func (e *Executor) materializeSubqueryTable(sc *scope, t *ast.SubqueryTableRef, outer *evalCtx) ([]Row, error) {
	nv, err := e.runStatementCorrelated(sc, t.Query, outer)
	if err != nil {
		return nil, err
	}
	alias := t.Alias
	if alias == "" {
		return nv.Rows, nil
	}
	return rebindAlias(nv.Rows, alias), nil
}

func (e *Executor) runStatementCorrelated(sc *scope, stmt ast.Statement, outer *evalCtx) (*namedValues, error) {
	switch s := stmt.(type) {
	case *ast.SelectStmt:
		return e.runSelectCorrelated(sc, s, outer)
	case *ast.SetOpStmt:
		return e.runSetOpCorrelated(sc, s, outer)
	default:
		return nil, chqlerr.NotImplemented("nested statement type %T", stmt)
	}
}

// joinPredicate builds the row-acceptance test for a join: USING compares
// named columns by unqualified lookup on each side before concatenation
// (avoiding the ambiguous-column error a post-concat lookup would hit when
// both sides carry a column of that name), ON evaluates the predicate
// against the concatenated row.
func (e *Executor) joinPredicate(t *ast.JoinRef, outer *evalCtx) func(l, r Row) (bool, error) {
	if len(t.Using) > 0 {
		return func(l, r Row) (bool, error) {
			for _, name := range t.Using {
				lv, err := l.lookup("", name)
				if err != nil {
					return false, err
				}
				rv, err := r.lookup("", name)
				if err != nil {
					return false, err
				}
				eq, isNull := types.Equal(lv, rv)
				if isNull || !eq {
					return false, nil
				}
			}
			return true, nil
		}
	}
	if t.On == nil {
		return func(l, r Row) (bool, error) { return true, nil }
	}
	return func(l, r Row) (bool, error) {
		v, err := (&evalCtx{row: concatRows(l, r), outer: outer, exec: e}).eval(t.On)
		if err != nil {
			return false, err
		}
		truthy, isNull := types.Truthy(v)
		return !isNull && truthy, nil
	}
}

func (e *Executor) materializeJoin(sc *scope, t *ast.JoinRef, outer *evalCtx) ([]Row, error) {
	left, err := e.materializeFrom(sc, t.Left, outer)
	if err != nil {
		return nil, err
	}
	right, err := e.materializeFrom(sc, t.Right, outer)
	if err != nil {
		return nil, err
	}
	pred := e.joinPredicate(t, outer)

	switch t.Kind {
	case ast.JoinCross:
		return crossJoin(left, right), nil
	case ast.JoinInner:
		return innerJoin(left, right, pred)
	case ast.JoinLeft:
		return leftJoin(left, right, pred)
	case ast.JoinRight:
		rows, err := leftJoin(right, left, swapPred(pred))
		if err != nil {
			return nil, err
		}
		return swapCols(rows, colWidth(right)), nil
	case ast.JoinFull:
		return fullJoin(left, right, pred)
	case ast.JoinLeftSemi:
		return semiJoin(left, right, pred, false)
	case ast.JoinLeftAnti:
		return semiJoin(left, right, pred, true)
	default:
		return nil, chqlerr.NotImplemented("join kind %d", t.Kind)
	}
}

func swapPred(pred func(l, r Row) (bool, error)) func(l, r Row) (bool, error) {
	return func(l, r Row) (bool, error) { return pred(r, l) }
}

// colWidth returns the column count of rows' shared schema, or 0 if rows
// is empty.
func colWidth(rows []Row) int {
	if len(rows) == 0 {
		return 0
	}
	return len(rows[0].Cols)
}

// swapCols restores (left, right) column order after leftJoin was run with
// its arguments swapped to reuse its left-preserving semantics for RIGHT
// JOIN: each row is (right-side columns, left-side columns), rightWidth
// wide on the left, so split there rather than at the row's midpoint
// (the two sides can have different widths).
func swapCols(rows []Row, rightWidth int) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = Row{
			Cols: append(append([]column{}, r.Cols[rightWidth:]...), r.Cols[:rightWidth]...),
			Vals: append(append([]types.Value{}, r.Vals[rightWidth:]...), r.Vals[:rightWidth]...),
		}
	}
	return out
}

func crossJoin(left, right []Row) []Row {
	out := make([]Row, 0, len(left)*len(right))
	for _, l := range left {
		for _, r := range right {
			out = append(out, concatRows(l, r))
		}
	}
	return out
}

func innerJoin(left, right []Row, pred func(l, r Row) (bool, error)) ([]Row, error) {
	var out []Row
	for _, l := range left {
		for _, r := range right {
			ok, err := pred(l, r)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, concatRows(l, r))
			}
		}
	}
	return out, nil
}

// leftJoin implements LEFT JOIN: every left row appears at least once,
// padded with nulls on the right side if nothing matched.
func leftJoin(left, right []Row, pred func(l, r Row) (bool, error)) ([]Row, error) {
	var out []Row
	for _, l := range left {
		matched := false
		for _, r := range right {
			ok, err := pred(l, r)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, concatRows(l, r))
				matched = true
			}
		}
		if !matched {
			out = append(out, concatRows(l, nullRow(right)))
		}
	}
	return out, nil
}

func fullJoin(left, right []Row, pred func(l, r Row) (bool, error)) ([]Row, error) {
	var out []Row
	rightMatched := make([]bool, len(right))
	for _, l := range left {
		matched := false
		for ri, r := range right {
			ok, err := pred(l, r)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, concatRows(l, r))
				matched = true
				rightMatched[ri] = true
			}
		}
		if !matched {
			out = append(out, concatRows(l, nullRow(right)))
		}
	}
	for ri, r := range right {
		if !rightMatched[ri] {
			out = append(out, concatRows(nullRow(left), r))
		}
	}
	return out, nil
}

// semiJoin implements LEFT SEMI/ANTI JOIN: each left row passes through at
// most once, included if it has (semi) or lacks (anti) a matching right row.
func semiJoin(left, right []Row, pred func(l, r Row) (bool, error), anti bool) ([]Row, error) {
	var out []Row
	for _, l := range left {
		matched := false
		for _, r := range right {
			ok, err := pred(l, r)
			if err != nil {
				return nil, err
			}
			if ok {
				matched = true
				break
			}
		}
		if matched != anti {
			out = append(out, l)
		}
	}
	return out, nil
}

func nullRow(sample []Row) Row {
	if len(sample) == 0 {
		return Row{}
	}
	cols := sample[0].Cols
	vals := make([]types.Value, len(cols))
	for i := range vals {
		vals[i] = types.NewNull()
	}
	return Row{Cols: cols, Vals: vals}
}

func (e *Executor) materializeArrayJoin(sc *scope, t *ast.ArrayJoinRef, outer *evalCtx) ([]Row, error) {
	left, err := e.materializeFrom(sc, t.Left, outer)
	if err != nil {
		return nil, err
	}
	alias := t.Alias
	if alias == "" {
		alias = exprDisplayName(t.Expr)
	}

	var out []Row
	for _, l := range left {
		v, err := (&evalCtx{row: l, outer: outer, exec: e}).eval(t.Expr)
		if err != nil {
			return nil, err
		}
		var elems []types.Value
		if !v.IsNull() && v.Kind() == types.KindArray {
			elems = v.Elements()
		}
		if len(elems) == 0 {
			if t.IsLeft {
				out = append(out, concatRows(l, Row{
					Cols: []column{{Table: alias, Name: alias}},
					Vals: []types.Value{types.NewNull()},
				}))
			}
			continue
		}
		for _, el := range elems {
			out = append(out, concatRows(l, Row{
				Cols: []column{{Table: alias, Name: alias}},
				Vals: []types.Value{el},
			}))
		}
	}
	return out, nil
}

func exprDisplayName(expr ast.Expression) string {
	if col, ok := expr.(*ast.ColumnRef); ok {
		return col.Name
	}
	return "arrayJoin"
}
