package executor

import (
	"chlite/pkg/ast"
	"chlite/pkg/chqlerr"
	"chlite/pkg/registry"
	"chlite/pkg/types"
)

// aggCall is one aggregate invocation found in the SELECT/HAVING/ORDER BY
// trees of a query, keyed by exprKey() so every occurrence of the same
// call (e.g. sum(amount) repeated in SELECT and ORDER BY) shares one state.
type aggCall struct {
	key  string
	fn   *ast.FunctionCall
	impl registry.AggregateFunction
}

// collectAggCalls walks every expression the query can reference outside
// the FROM/WHERE stage and returns the distinct aggregate calls found
// (a non-empty result selects the implicit whole-input-is-one-group path
// when there is no GROUP BY clause).
func (e *Executor) collectAggCalls(stmt *ast.SelectStmt) ([]aggCall, error) {
	seen := map[string]bool{}
	var calls []aggCall

	visit := func(expr ast.Expression) error {
		return walkExpr(expr, func(node ast.Expression) error {
			fc, ok := node.(*ast.FunctionCall)
			if !ok {
				return nil
			}
			if !e.registry.IsAggregate(fc.Name) {
				return nil
			}
			key := exprKey(fc)
			if seen[key] {
				return nil
			}
			seen[key] = true
			impl, ok := e.registry.GetAggregate(fc.Name)
			if !ok {
				return chqlerr.Name("unknown aggregate function %s", fc.Name)
			}
			calls = append(calls, aggCall{key: key, fn: fc, impl: impl})
			return nil
		})
	}

	for _, item := range stmt.Columns {
		if err := visit(item.Expr); err != nil {
			return nil, err
		}
	}
	if stmt.Having != nil {
		if err := visit(stmt.Having); err != nil {
			return nil, err
		}
	}
	for _, o := range stmt.OrderBy {
		if err := visit(o.Expr); err != nil {
			return nil, err
		}
	}
	return calls, nil
}

// walkExpr calls fn on expr and every sub-expression it owns, short of
// descending into a nested subquery's own statement tree.
func walkExpr(expr ast.Expression, fn func(ast.Expression) error) error {
	if expr == nil {
		return nil
	}
	if err := fn(expr); err != nil {
		return err
	}
	switch e := expr.(type) {
	case *ast.UnaryExpr:
		return walkExpr(e.Operand, fn)
	case *ast.BinaryExpr:
		if err := walkExpr(e.Left, fn); err != nil {
			return err
		}
		return walkExpr(e.Right, fn)
	case *ast.FunctionCall:
		for _, a := range e.Args {
			if err := walkExpr(a, fn); err != nil {
				return err
			}
		}
	case *ast.WindowFunction:
		for _, a := range e.Func.Args {
			if err := walkExpr(a, fn); err != nil {
				return err
			}
		}
	case *ast.Cast:
		return walkExpr(e.Expr, fn)
	case *ast.CaseExpr:
		if err := walkExpr(e.Operand, fn); err != nil {
			return err
		}
		for _, w := range e.Whens {
			if err := walkExpr(w.Cond, fn); err != nil {
				return err
			}
			if err := walkExpr(w.Result, fn); err != nil {
				return err
			}
		}
		return walkExpr(e.Else, fn)
	case *ast.BetweenExpr:
		if err := walkExpr(e.Expr, fn); err != nil {
			return err
		}
		if err := walkExpr(e.Low, fn); err != nil {
			return err
		}
		return walkExpr(e.High, fn)
	case *ast.LikeExpr:
		if err := walkExpr(e.Expr, fn); err != nil {
			return err
		}
		return walkExpr(e.Pattern, fn)
	case *ast.IsNullExpr:
		return walkExpr(e.Expr, fn)
	case *ast.InExpr:
		if err := walkExpr(e.Expr, fn); err != nil {
			return err
		}
		for _, v := range e.Values {
			if err := walkExpr(v, fn); err != nil {
				return err
			}
		}
	case *ast.ArrayExpr:
		for _, el := range e.Elements {
			if err := walkExpr(el, fn); err != nil {
				return err
			}
		}
	case *ast.TupleExpr:
		for _, el := range e.Elements {
			if err := walkExpr(el, fn); err != nil {
				return err
			}
		}
	case *ast.IndexExpr:
		if err := walkExpr(e.Expr, fn); err != nil {
			return err
		}
		return walkExpr(e.Index, fn)
	case *ast.ConditionalExpr:
		if err := walkExpr(e.Cond, fn); err != nil {
			return err
		}
		if err := walkExpr(e.Then, fn); err != nil {
			return err
		}
		return walkExpr(e.Else, fn)
	case *ast.Aliased:
		return walkExpr(e.Expr, fn)
	}
	return nil
}

// evalAggArgs evaluates an aggregate call's arguments, dropping a bare `*`
// (COUNT(*)'s Star argument) so the aggregate sees it as the no-args form.
func evalAggArgs(c *evalCtx, args []ast.Expression) ([]types.Value, error) {
	out := make([]types.Value, 0, len(args))
	for _, a := range args {
		if _, ok := a.(*ast.Star); ok {
			continue
		}
		v, err := c.eval(a)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// groupRows buckets rows by the GROUP BY expression list, evaluates every
// aggregate call against each bucket, and returns one representative row
// per group (the bucket's first row, for non-aggregated column references
// that GROUP BY allows through, e.g. `GROUP BY user_id` selecting `name`)
// paired with that group's computed aggregate values.
func (e *Executor) groupRows(rows []Row, groupBy []ast.Expression, calls []aggCall, outer *evalCtx) ([]Row, []map[string]types.Value, error) {
	type bucket struct {
		rep    Row
		states map[string]registry.AggregateState
		order  int
	}
	buckets := map[string]*bucket{}
	var order []string

	for _, row := range rows {
		c := &evalCtx{row: row, outer: outer, exec: e}
		keyVals := make([]types.Value, len(groupBy))
		for i, ge := range groupBy {
			v, err := c.eval(ge)
			if err != nil {
				return nil, nil, err
			}
			keyVals[i] = v
		}
		key := types.RowKey(keyVals)
		b, ok := buckets[key]
		if !ok {
			states := make(map[string]registry.AggregateState, len(calls))
			for _, call := range calls {
				states[call.key] = call.impl.NewState(call.fn.Distinct)
			}
			b = &bucket{rep: row, states: states, order: len(order)}
			buckets[key] = b
			order = append(order, key)
		}
		for _, call := range calls {
			args, err := evalAggArgs(c, call.fn.Args)
			if err != nil {
				return nil, nil, err
			}
			if err := b.states[call.key].Accumulate(args); err != nil {
				return nil, nil, err
			}
		}
	}

	// A no-GROUP-BY aggregate query always produces exactly one row, even
	// over an empty input (count(*)=0, sum(x)=null, ...): the loop above
	// never runs when rows is empty, so synthesize the single group here.
	if len(groupBy) == 0 && len(order) == 0 && len(calls) > 0 {
		states := make(map[string]registry.AggregateState, len(calls))
		for _, call := range calls {
			states[call.key] = call.impl.NewState(call.fn.Distinct)
		}
		buckets[""] = &bucket{rep: Row{}, states: states, order: 0}
		order = append(order, "")
	}

	reps := make([]Row, len(order))
	aggs := make([]map[string]types.Value, len(order))
	for i, key := range order {
		b := buckets[key]
		reps[i] = b.rep
		vals := make(map[string]types.Value, len(calls))
		for _, call := range calls {
			v, err := b.states[call.key].Finalize()
			if err != nil {
				return nil, nil, err
			}
			vals[call.key] = v
		}
		aggs[i] = vals
	}
	return reps, aggs, nil
}
