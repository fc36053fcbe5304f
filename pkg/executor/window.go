package executor

import (
	"sort"

	"chlite/pkg/ast"
	"chlite/pkg/chqlerr"
	"chlite/pkg/types"
)

// computeWindows finds every WindowFunction reachable from the SELECT/ORDER
// BY trees, partitions and orders rows per its spec, and returns a lookup
// from exprKey() to the per-row value the evaluator should substitute.
func (e *Executor) computeWindows(stmt *ast.SelectStmt, rows []Row, outer *evalCtx) ([]map[string]types.Value, error) {
	perRow := make([]map[string]types.Value, len(rows))
	for i := range perRow {
		perRow[i] = map[string]types.Value{}
	}

	seen := map[string]bool{}
	var funcs []*ast.WindowFunction
	visit := func(expr ast.Expression) error {
		return walkExpr(expr, func(node ast.Expression) error {
			wf, ok := node.(*ast.WindowFunction)
			if !ok {
				return nil
			}
			key := exprKey(wf)
			if seen[key] {
				return nil
			}
			seen[key] = true
			funcs = append(funcs, wf)
			return nil
		})
	}
	for _, item := range stmt.Columns {
		if err := visit(item.Expr); err != nil {
			return nil, err
		}
	}
	for _, o := range stmt.OrderBy {
		if err := visit(o.Expr); err != nil {
			return nil, err
		}
	}

	for _, wf := range funcs {
		key := exprKey(wf)
		if err := e.computeOneWindow(wf, key, rows, perRow, outer); err != nil {
			return nil, err
		}
	}
	return perRow, nil
}

func (e *Executor) computeOneWindow(wf *ast.WindowFunction, key string, rows []Row, perRow []map[string]types.Value, outer *evalCtx) error {
	partitions := map[string][]windowIndexed{}
	var order []string
	for i, row := range rows {
		c := &evalCtx{row: row, outer: outer, exec: e}
		keyVals := make([]types.Value, len(wf.Spec.PartitionBy))
		for j, pe := range wf.Spec.PartitionBy {
			v, err := c.eval(pe)
			if err != nil {
				return err
			}
			keyVals[j] = v
		}
		pk := types.RowKey(keyVals)
		if _, ok := partitions[pk]; !ok {
			order = append(order, pk)
		}
		partitions[pk] = append(partitions[pk], windowIndexed{idx: i, row: row})
	}

	for _, pk := range order {
		part := partitions[pk]
		if len(wf.Spec.OrderBy) > 0 {
			sortedPart := make([]windowIndexed, len(part))
			copy(sortedPart, part)
			var sortErr error
			sort.SliceStable(sortedPart, func(a, b int) bool {
				less, err := orderLess(sortedPart[a].row, sortedPart[b].row, wf.Spec.OrderBy, outer, e)
				if err != nil {
					sortErr = err
				}
				return less
			})
			if sortErr != nil {
				return sortErr
			}
			part = sortedPart
		}

		vals, err := e.evalWindowFunc(wf, part, outer)
		if err != nil {
			return err
		}
		for i, iv := range part {
			perRow[iv.idx][key] = vals[i]
		}
	}
	return nil
}

func orderLess(a, b Row, items []ast.OrderItem, outer *evalCtx, e *Executor) (bool, error) {
	for _, item := range items {
		av, err := (&evalCtx{row: a, outer: outer, exec: e}).eval(item.Expr)
		if err != nil {
			return false, err
		}
		bv, err := (&evalCtx{row: b, outer: outer, exec: e}).eval(item.Expr)
		if err != nil {
			return false, err
		}
		c := types.OrderCompare(av, bv)
		if item.Desc {
			c = -c
		}
		if c != 0 {
			return c < 0, nil
		}
	}
	return false, nil
}

type windowIndexed struct {
	idx int
	row Row
}

// evalWindowFunc computes one window function's value for every row of an
// already partitioned-and-ordered slice.
func (e *Executor) evalWindowFunc(wf *ast.WindowFunction, part []windowIndexed, outer *evalCtx) ([]types.Value, error) {
	name := wf.Func.Name
	switch name {
	case "row_number":
		out := make([]types.Value, len(part))
		for i := range part {
			out[i] = types.NewInt64(int64(i + 1))
		}
		return out, nil
	case "rank", "dense_rank":
		return rankValues(part, wf.Spec.OrderBy, outer, e, name == "dense_rank")
	case "ntile":
		return ntileValues(part, wf.Func.Args, outer, e)
	case "lag", "lead":
		return lagLeadValues(part, wf.Func.Args, outer, e, name == "lead")
	case "first_value", "last_value":
		return firstLastValues(part, wf.Func.Args, outer, e, name == "last_value")
	default:
		return e.windowAggregate(wf, part, outer)
	}
}

func rankValues(part []windowIndexed, order []ast.OrderItem, outer *evalCtx, e *Executor, dense bool) ([]types.Value, error) {
	out := make([]types.Value, len(part))
	rank := 1
	for i := range part {
		if i > 0 {
			eq, err := rowsEqualByOrder(part[i-1].row, part[i].row, order, outer, e)
			if err != nil {
				return nil, err
			}
			if !eq {
				if dense {
					rank++
				} else {
					rank = i + 1
				}
			}
		}
		out[i] = types.NewInt64(int64(rank))
	}
	return out, nil
}

func rowsEqualByOrder(a, b Row, items []ast.OrderItem, outer *evalCtx, e *Executor) (bool, error) {
	for _, item := range items {
		av, err := (&evalCtx{row: a, outer: outer, exec: e}).eval(item.Expr)
		if err != nil {
			return false, err
		}
		bv, err := (&evalCtx{row: b, outer: outer, exec: e}).eval(item.Expr)
		if err != nil {
			return false, err
		}
		if types.OrderCompare(av, bv) != 0 {
			return false, nil
		}
	}
	return true, nil
}

func ntileValues(part []windowIndexed, args []ast.Expression, outer *evalCtx, e *Executor) ([]types.Value, error) {
	if len(args) != 1 {
		return nil, chqlerr.Arity("ntile() expects 1 argument, got %d", len(args))
	}
	v, err := (&evalCtx{exec: e, outer: outer}).eval(args[0])
	if err != nil {
		return nil, err
	}
	buckets, err := argInt64(v)
	if err != nil || buckets <= 0 {
		return nil, chqlerr.Type("ntile() requires a positive integer bucket count")
	}
	n := int64(len(part))
	out := make([]types.Value, n)
	base := n / buckets
	rem := n % buckets
	pos := int64(0)
	for b := int64(0); b < buckets && pos < n; b++ {
		size := base
		if b < rem {
			size++
		}
		for i := int64(0); i < size && pos < n; i++ {
			out[pos] = types.NewInt64(b + 1)
			pos++
		}
	}
	return out, nil
}

func lagLeadValues(part []windowIndexed, args []ast.Expression, outer *evalCtx, e *Executor, lead bool) ([]types.Value, error) {
	if len(args) < 1 {
		return nil, chqlerr.Arity("lag/lead expects at least 1 argument, got %d", len(args))
	}
	offset := int64(1)
	if len(args) >= 2 {
		v, err := (&evalCtx{exec: e, outer: outer}).eval(args[1])
		if err != nil {
			return nil, err
		}
		offset, err = argInt64(v)
		if err != nil {
			return nil, err
		}
	}
	var def types.Value = types.NewNull()
	if len(args) >= 3 {
		v, err := (&evalCtx{exec: e, outer: outer}).eval(args[2])
		if err != nil {
			return nil, err
		}
		def = v
	}
	if !lead {
		offset = -offset
	}

	out := make([]types.Value, len(part))
	for i := range part {
		target := i + int(offset)
		if target < 0 || target >= len(part) {
			out[i] = def
			continue
		}
		v, err := (&evalCtx{row: part[target].row, outer: outer, exec: e}).eval(args[0])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func firstLastValues(part []windowIndexed, args []ast.Expression, outer *evalCtx, e *Executor, last bool) ([]types.Value, error) {
	if len(args) != 1 {
		return nil, chqlerr.Arity("first_value/last_value expects 1 argument, got %d", len(args))
	}
	out := make([]types.Value, len(part))
	for i := range part {
		var srcIdx int
		if last {
			srcIdx = i
		} else {
			srcIdx = 0
		}
		v, err := (&evalCtx{row: part[srcIdx].row, outer: outer, exec: e}).eval(args[0])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// windowAggregate runs a regular aggregate (sum, avg, count, ...) over a
// frame ending at each row's position within its partition, per the
// window spec's frame clause (default: partition start .. current row).
func (e *Executor) windowAggregate(wf *ast.WindowFunction, part []windowIndexed, outer *evalCtx) ([]types.Value, error) {
	impl, ok := e.registry.GetAggregate(wf.Func.Name)
	if !ok {
		return nil, chqlerr.Name("unknown aggregate function %s", wf.Func.Name)
	}
	out := make([]types.Value, len(part))
	for i := range part {
		lo, hi := frameBounds(wf.Spec.Frame, i, len(part))
		state := impl.NewState(wf.Func.Distinct)
		for j := lo; j <= hi; j++ {
			c := &evalCtx{row: part[j].row, outer: outer, exec: e}
			args, err := evalAggArgs(c, wf.Func.Args)
			if err != nil {
				return nil, err
			}
			if err := state.Accumulate(args); err != nil {
				return nil, err
			}
		}
		v, err := state.Finalize()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// frameBounds resolves a ROWS frame to a closed [lo, hi] index range within
// the partition. RANGE frames are treated identically to ROWS here since
// chlite has no notion of a peer group distinct from row-by-row ordering
// beyond what ORDER BY ties already express.
func frameBounds(frame *ast.WindowFrame, pos, n int) (int, int) {
	if frame == nil {
		return 0, pos
	}
	lo := resolveBound(frame.Start, pos, n, true)
	hi := resolveBound(frame.End, pos, n, false)
	if lo < 0 {
		lo = 0
	}
	if hi >= n {
		hi = n - 1
	}
	if hi < lo {
		hi = lo - 1
	}
	return lo, hi
}

func resolveBound(b ast.FrameBound, pos, n int, isStart bool) int {
	switch b.Kind {
	case ast.BoundUnboundedPreceding:
		return 0
	case ast.BoundUnboundedFollowing:
		return n - 1
	case ast.BoundCurrentRow:
		return pos
	case ast.BoundPreceding, ast.BoundFollowing:
		offset := 0
		if lit, ok := b.Expr.(*ast.Literal); ok {
			if n, err := parseIntLiteral(lit); err == nil {
				offset = n
			}
		}
		if b.Kind == ast.BoundPreceding {
			return pos - offset
		}
		return pos + offset
	default:
		if isStart {
			return 0
		}
		return pos
	}
}

func parseIntLiteral(lit *ast.Literal) (int, error) {
	v, err := evalLiteral(lit)
	if err != nil {
		return 0, err
	}
	n, err := argInt64(v)
	return int(n), err
}
