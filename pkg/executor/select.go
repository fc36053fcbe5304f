package executor

import (
	"sort"
	"strings"

	"chlite/pkg/ast"
	"chlite/pkg/chqlerr"
	"chlite/pkg/types"
)

// runSelect executes a top-level SELECT with its own parameter list.
func (e *Executor) runSelect(parent *scope, stmt *ast.SelectStmt, params []types.Value) (*namedValues, error) {
	sc, err := e.buildScope(parent, stmt.With, params)
	if err != nil {
		return nil, err
	}
	c := &evalCtx{exec: e, params: params}
	return e.runSelectWithScope(sc, stmt, c)
}

// runSelectCorrelated executes a SELECT that may reference columns of an
// enclosing row (a scalar/IN/EXISTS subquery or a derived table).
func (e *Executor) runSelectCorrelated(parent *scope, stmt *ast.SelectStmt, outer *evalCtx) (*namedValues, error) {
	params := outer.params
	sc, err := e.buildScope(parent, stmt.With, params)
	if err != nil {
		return nil, err
	}
	c := &evalCtx{exec: e, outer: outer, params: params}
	return e.runSelectWithScope(sc, stmt, c)
}

// buildScope materializes a statement's WITH-clause CTEs into a child
// scope chained off parent, so later CTEs (and the main query) can see
// earlier ones by name.
func (e *Executor) buildScope(parent *scope, with *ast.WithClause, params []types.Value) (*scope, error) {
	sc := &scope{ctes: map[string]*namedValues{}, parent: parent}
	if with == nil {
		return sc, nil
	}
	for _, cte := range with.CTEs {
		nv, err := e.runStatementCorrelated(sc, cte.Query, &evalCtx{exec: e, params: params})
		if err != nil {
			return nil, err
		}
		if len(cte.Columns) > 0 {
			if len(cte.Columns) != len(nv.Columns) {
				return nil, chqlerr.Type("CTE %s declares %d columns, query returns %d", cte.Name, len(cte.Columns), len(nv.Columns))
			}
			for i, name := range cte.Columns {
				nv.Columns[i].Name = name
				for ri := range nv.Rows {
					nv.Rows[ri].Cols[i].Name = name
				}
			}
		}
		nv.Name = cte.Name
		sc.ctes[cte.Name] = nv
	}
	return sc, nil
}

func (e *Executor) runSelectWithScope(sc *scope, stmt *ast.SelectStmt, c *evalCtx) (*namedValues, error) {
	var rows []Row
	if stmt.From != nil {
		var err error
		rows, err = e.materializeFrom(sc, stmt.From, c.outer)
		if err != nil {
			return nil, err
		}
	} else {
		rows = []Row{{}}
	}

	rows, err := filterRows(rows, stmt.Prewhere, c)
	if err != nil {
		return nil, err
	}
	rows, err = filterRows(rows, stmt.Where, c)
	if err != nil {
		return nil, err
	}

	calls, err := e.collectAggCalls(stmt)
	if err != nil {
		return nil, err
	}

	var aggValues []map[string]types.Value
	if len(stmt.GroupBy) > 0 || len(calls) > 0 {
		rows, aggValues, err = e.groupRows(rows, stmt.GroupBy, calls, c.outer)
		if err != nil {
			return nil, err
		}
	}

	windowValues, err := e.computeWindows(stmt, rows, c.outer)
	if err != nil {
		return nil, err
	}

	rowCtxs := make([]*evalCtx, len(rows))
	for i, row := range rows {
		merged := map[string]types.Value{}
		if aggValues != nil {
			for k, v := range aggValues[i] {
				merged[k] = v
			}
		}
		for k, v := range windowValues[i] {
			merged[k] = v
		}
		rowCtxs[i] = &evalCtx{row: row, outer: c.outer, exec: e, aggValues: merged, params: c.params}
	}

	if stmt.Having != nil {
		var kept []Row
		var keptCtxs []*evalCtx
		for i, rc := range rowCtxs {
			v, err := rc.eval(stmt.Having)
			if err != nil {
				return nil, err
			}
			truthy, isNull := types.Truthy(v)
			if !isNull && truthy {
				kept = append(kept, rows[i])
				keptCtxs = append(keptCtxs, rc)
			}
		}
		rows, rowCtxs = kept, keptCtxs
	}

	if len(stmt.OrderBy) > 0 {
		orderBy := resolveOrderByAliases(stmt.OrderBy, buildProjectPlans(stmt.Columns))
		idx := make([]int, len(rows))
		for i := range idx {
			idx[i] = i
		}
		var sortErr error
		sort.SliceStable(idx, func(a, b int) bool {
			less, err := orderLessCtx(rowCtxs[idx[a]], rowCtxs[idx[b]], orderBy)
			if err != nil {
				sortErr = err
			}
			return less
		})
		if sortErr != nil {
			return nil, sortErr
		}
		newRows := make([]Row, len(rows))
		newCtxs := make([]*evalCtx, len(rowCtxs))
		for i, j := range idx {
			newRows[i] = rows[j]
			newCtxs[i] = rowCtxs[j]
		}
		rows, rowCtxs = newRows, newCtxs
	}

	cols, projected, err := e.project(stmt.Columns, rowCtxs, rows)
	if err != nil {
		return nil, err
	}

	if stmt.Distinct {
		cols2, projected2 := dedupRows(cols, projected)
		cols, projected = cols2, projected2
	}

	projected, err = applyLimitOffset(projected, stmt.Limit, stmt.Offset, c)
	if err != nil {
		return nil, err
	}

	return &namedValues{Columns: cols, Rows: projected}, nil
}

func filterRows(rows []Row, cond ast.Expression, c *evalCtx) ([]Row, error) {
	if cond == nil {
		return rows, nil
	}
	var out []Row
	for _, r := range rows {
		rc := c.withRow(r)
		v, err := rc.eval(cond)
		if err != nil {
			return nil, err
		}
		truthy, isNull := types.Truthy(v)
		if !isNull && truthy {
			out = append(out, r)
		}
	}
	return out, nil
}

// resolveOrderByAliases rewrites a bare, unqualified ORDER BY identifier
// that names a SELECT-list alias to that item's expression, per the rule
// that alias references are resolved before falling back to a row column
// of the same name.
func resolveOrderByAliases(items []ast.OrderItem, plans []projectPlan) []ast.OrderItem {
	alias := map[string]ast.Expression{}
	for _, p := range plans {
		if !p.isStar && p.alias != "" {
			alias[strings.ToLower(p.alias)] = p.expr
		}
	}
	out := make([]ast.OrderItem, len(items))
	for i, it := range items {
		out[i] = it
		if col, ok := it.Expr.(*ast.ColumnRef); ok && col.Table == "" {
			if expr, found := alias[strings.ToLower(col.Name)]; found {
				out[i].Expr = expr
			}
		}
	}
	return out
}

func orderLessCtx(a, b *evalCtx, items []ast.OrderItem) (bool, error) {
	for _, item := range items {
		av, err := a.eval(item.Expr)
		if err != nil {
			return false, err
		}
		bv, err := b.eval(item.Expr)
		if err != nil {
			return false, err
		}
		aNull, bNull := av.IsNull(), bv.IsNull()
		if aNull || bNull {
			if aNull && bNull {
				continue
			}
			// Null sorts ahead of any non-null regardless of ASC/DESC; a
			// NULLS FIRST/LAST clause is recorded on the item but not consulted.
			return aNull, nil
		}
		cmp := types.OrderCompare(av, bv)
		if item.Desc {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp < 0, nil
		}
	}
	return false, nil
}

// projectPlan is one resolved SELECT-list entry: either a star expansion
// (optionally table-qualified) or a scalar expression with its alias.
type projectPlan struct {
	isStar     bool
	starTable  string // empty means unqualified `*`
	expr       ast.Expression
	alias      string
}

func buildProjectPlans(items []ast.SelectItem) []projectPlan {
	plans := make([]projectPlan, 0, len(items))
	for _, item := range items {
		if star, ok := item.Expr.(*ast.Star); ok {
			plans = append(plans, projectPlan{isStar: true, starTable: star.Table})
			continue
		}
		alias := item.Alias
		if alias == "" {
			alias = defaultAlias(item.Expr)
		}
		plans = append(plans, projectPlan{expr: item.Expr, alias: alias})
	}
	return plans
}

// project builds the final column list and row values from a SELECT item
// list, expanding `*` and `table.*` against each row's current columns.
func (e *Executor) project(items []ast.SelectItem, ctxs []*evalCtx, rows []Row) ([]column, []Row, error) {
	plans := buildProjectPlans(items)

	if len(rows) == 0 {
		var cols []column
		for _, p := range plans {
			if !p.isStar {
				cols = append(cols, column{Name: p.alias})
			}
		}
		return cols, nil, nil
	}

	out := make([]Row, len(rows))
	var cols []column
	for ri, rc := range ctxs {
		vals := make([]types.Value, 0, len(plans))
		var rowCols []column
		for _, p := range plans {
			if p.isStar {
				for ci, c := range rows[ri].Cols {
					if p.starTable == "" || strings.EqualFold(c.Table, p.starTable) {
						rowCols = append(rowCols, c)
						vals = append(vals, rows[ri].Vals[ci])
					}
				}
				continue
			}
			v, err := rc.eval(p.expr)
			if err != nil {
				return nil, nil, err
			}
			rowCols = append(rowCols, column{Name: p.alias})
			vals = append(vals, v)
		}
		if ri == 0 {
			cols = rowCols
		}
		out[ri] = Row{Cols: cols, Vals: vals}
	}
	return cols, out, nil
}

func defaultAlias(expr ast.Expression) string {
	if col, ok := expr.(*ast.ColumnRef); ok {
		return col.Name
	}
	return exprKey(expr)
}

func dedupRows(cols []column, rows []Row) ([]column, []Row) {
	seen := map[string]bool{}
	var out []Row
	for _, r := range rows {
		key := types.RowKey(r.Vals)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return cols, out
}

func applyLimitOffset(rows []Row, limit, offset ast.Expression, c *evalCtx) ([]Row, error) {
	off := 0
	if offset != nil {
		v, err := c.eval(offset)
		if err != nil {
			return nil, err
		}
		n, err := argInt64(v)
		if err != nil {
			return nil, err
		}
		off = int(n)
	}
	if off > len(rows) {
		off = len(rows)
	}
	rows = rows[off:]

	if limit != nil {
		v, err := c.eval(limit)
		if err != nil {
			return nil, err
		}
		n, err := argInt64(v)
		if err != nil {
			return nil, err
		}
		if int(n) < len(rows) {
			rows = rows[:n]
		}
	}
	return rows, nil
}
