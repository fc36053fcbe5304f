package executor

import (
	"fmt"
	"strconv"
	"strings"

	"chlite/pkg/ast"
	"chlite/pkg/chqlerr"
	"chlite/pkg/functions"
	"chlite/pkg/token"
	"chlite/pkg/types"
)

// evalCtx carries everything expression evaluation needs beyond the
// expression tree itself: the current row, an optional outer row for
// correlated subqueries, the executor (for registry/catalog access and
// running sub-statements), and — only set while evaluating a GROUP BY
// representative row — precomputed aggregate results keyed by exprKey.
type evalCtx struct {
	row       Row
	outer     *evalCtx
	exec      *Executor
	aggValues map[string]types.Value
	params    []types.Value
}

func (c *evalCtx) withRow(r Row) *evalCtx {
	return &evalCtx{row: r, outer: c.outer, exec: c.exec, aggValues: c.aggValues, params: c.params}
}

// eval evaluates expr against c, returning a types.Value.
func (c *evalCtx) eval(expr ast.Expression) (types.Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return evalLiteral(e)
	case *ast.Parameter:
		idx := e.Index - 1
		if idx < 0 || idx >= len(c.params) {
			return types.Value{}, chqlerr.Type("parameter index %d out of range", e.Index)
		}
		return c.params[idx], nil
	case *ast.ColumnRef:
		return c.lookupColumn(e.Table, e.Name)
	case *ast.Star:
		return types.Value{}, chqlerr.Type("'*' cannot be used as a scalar expression")
	case *ast.UnaryExpr:
		return c.evalUnary(e)
	case *ast.BinaryExpr:
		return c.evalBinary(e)
	case *ast.FunctionCall:
		return c.evalFunctionCall(e)
	case *ast.WindowFunction:
		return c.lookupAgg(exprKey(e))
	case *ast.Cast:
		v, err := c.eval(e.Expr)
		if err != nil {
			return types.Value{}, err
		}
		t, err := resolveDataType(e.Type)
		if err != nil {
			return types.Value{}, err
		}
		return types.Cast(v, t)
	case *ast.CaseExpr:
		return c.evalCase(e)
	case *ast.InExpr:
		return c.evalIn(e)
	case *ast.BetweenExpr:
		return c.evalBetween(e)
	case *ast.LikeExpr:
		return c.evalLike(e)
	case *ast.IsNullExpr:
		v, err := c.eval(e.Expr)
		if err != nil {
			return types.Value{}, err
		}
		if e.Not {
			return types.NewBool(!v.IsNull()), nil
		}
		return types.NewBool(v.IsNull()), nil
	case *ast.SubqueryExpr:
		return c.evalScalarSubquery(e.Query)
	case *ast.ExistsExpr:
		return c.evalExists(e)
	case *ast.ArrayExpr:
		return c.evalArray(e)
	case *ast.TupleExpr:
		return c.evalTuple(e)
	case *ast.IndexExpr:
		return c.evalIndex(e)
	case *ast.ConditionalExpr:
		truthy, isNull := types.Truthy(mustEval(c, e.Cond))
		if isNull {
			if _, err := c.eval(e.Cond); err != nil {
				return types.Value{}, err
			}
			return types.NewNull(), nil
		}
		if truthy {
			return c.eval(e.Then)
		}
		return c.eval(e.Else)
	default:
		return types.Value{}, chqlerr.NotImplemented("expression type %T", expr)
	}
}

// mustEval is used only where the surrounding call has already committed
// to evaluating unconditionally and an error there is handled by the
// caller re-running eval and propagating the error properly; kept private
// to this file to avoid swallowing errors elsewhere.
func mustEval(c *evalCtx, expr ast.Expression) types.Value {
	v, err := c.eval(expr)
	if err != nil {
		return types.NewNull()
	}
	return v
}

func (c *evalCtx) lookupColumn(table, name string) (types.Value, error) {
	v, err := c.row.lookup(table, name)
	if err == nil {
		return v, nil
	}
	if c.outer != nil {
		return c.outer.lookupColumn(table, name)
	}
	return types.Value{}, err
}

func (c *evalCtx) lookupAgg(key string) (types.Value, error) {
	if c.aggValues == nil {
		return types.Value{}, chqlerr.Type("aggregate or window function used outside of a supported context")
	}
	v, ok := c.aggValues[key]
	if !ok {
		return types.Value{}, chqlerr.Type("internal: no precomputed value for %s", key)
	}
	return v, nil
}

func evalLiteral(lit *ast.Literal) (types.Value, error) {
	switch lit.Kind {
	case token.NULL:
		return types.NewNull(), nil
	case token.TRUE:
		return types.NewBool(true), nil
	case token.FALSE:
		return types.NewBool(false), nil
	case token.INT:
		n, err := strconv.ParseInt(lit.Text, 10, 64)
		if err != nil {
			if u, uerr := strconv.ParseUint(lit.Text, 10, 64); uerr == nil {
				return types.NewUInt64(u), nil
			}
			return types.Value{}, chqlerr.Conversion("invalid integer literal %q", lit.Text)
		}
		return types.NewInt64(n), nil
	case token.FLOAT:
		f, err := strconv.ParseFloat(lit.Text, 64)
		if err != nil {
			return types.Value{}, chqlerr.Conversion("invalid float literal %q", lit.Text)
		}
		return types.NewFloat64(f), nil
	case token.STRING:
		return types.NewString(types.KindString, lit.Text, 0), nil
	default:
		return types.Value{}, chqlerr.NotImplemented("literal kind %s", lit.Kind)
	}
}

func (c *evalCtx) evalUnary(e *ast.UnaryExpr) (types.Value, error) {
	v, err := c.eval(e.Operand)
	if err != nil {
		return types.Value{}, err
	}
	switch e.Op {
	case token.NOT:
		truthy, isNull := types.Truthy(v)
		if isNull {
			return types.NewNull(), nil
		}
		return types.NewBool(!truthy), nil
	case token.MINUS:
		if v.IsNull() {
			return types.NewNull(), nil
		}
		return types.Arith(types.OpSub, types.NewInt64(0), v)
	case token.PLUS:
		return v, nil
	default:
		return types.Value{}, chqlerr.NotImplemented("unary operator %s", e.Op)
	}
}

func (c *evalCtx) evalBinary(e *ast.BinaryExpr) (types.Value, error) {
	if e.Op == token.AND || e.Op == token.OR {
		return c.evalLogical(e)
	}

	left, err := c.eval(e.Left)
	if err != nil {
		return types.Value{}, err
	}
	right, err := c.eval(e.Right)
	if err != nil {
		return types.Value{}, err
	}

	switch e.Op {
	case token.PLUS:
		return arithOrNull(left, right, types.OpAdd)
	case token.MINUS:
		return arithOrNull(left, right, types.OpSub)
	case token.STAR:
		return arithOrNull(left, right, types.OpMul)
	case token.SLASH:
		return arithOrNull(left, right, types.OpDiv)
	case token.PERCENT:
		return modulo(left, right)
	case token.CONCAT:
		return concat(left, right)
	case token.EQ, token.NEQ, token.LT, token.LTE, token.GT, token.GTE:
		return compareOp(e.Op, left, right)
	default:
		return types.Value{}, chqlerr.NotImplemented("binary operator %s", e.Op)
	}
}

// evalLogical implements SQL three-valued AND/OR with short-circuit on the
// determining operand (false for AND, true for OR) even when the other
// side is null.
func (c *evalCtx) evalLogical(e *ast.BinaryExpr) (types.Value, error) {
	left, err := c.eval(e.Left)
	if err != nil {
		return types.Value{}, err
	}
	lt, lnull := types.Truthy(left)
	if e.Op == token.AND && !lnull && !lt {
		return types.NewBool(false), nil
	}
	if e.Op == token.OR && !lnull && lt {
		return types.NewBool(true), nil
	}

	right, err := c.eval(e.Right)
	if err != nil {
		return types.Value{}, err
	}
	rt, rnull := types.Truthy(right)
	if e.Op == token.AND {
		if !rnull && !rt {
			return types.NewBool(false), nil
		}
		if lnull || rnull {
			return types.NewNull(), nil
		}
		return types.NewBool(lt && rt), nil
	}
	if !rnull && rt {
		return types.NewBool(true), nil
	}
	if lnull || rnull {
		return types.NewNull(), nil
	}
	return types.NewBool(lt || rt), nil
}

func arithOrNull(a, b types.Value, op types.ArithOp) (types.Value, error) {
	if a.IsNull() || b.IsNull() {
		return types.NewNull(), nil
	}
	return types.Arith(op, a, b)
}

func modulo(a, b types.Value) (types.Value, error) {
	if a.IsNull() || b.IsNull() {
		return types.NewNull(), nil
	}
	if !a.Kind().IsInteger() || !b.Kind().IsInteger() {
		return types.Value{}, chqlerr.Type("'%%' requires integer operands")
	}
	if b.Int64() == 0 {
		return types.Value{}, chqlerr.Conversion("division by zero")
	}
	return types.NewInt64(a.Int64() % b.Int64()), nil
}

func concat(a, b types.Value) (types.Value, error) {
	if a.IsNull() || b.IsNull() {
		return types.NewNull(), nil
	}
	return types.NewString(types.KindString, types.ToDisplayString(a)+types.ToDisplayString(b), 0), nil
}

func compareOp(op token.Kind, a, b types.Value) (types.Value, error) {
	equal, isNull := types.Equal(a, b)
	if op == token.EQ || op == token.NEQ {
		if isNull {
			return types.NewNull(), nil
		}
		if op == token.EQ {
			return types.NewBool(equal), nil
		}
		return types.NewBool(!equal), nil
	}

	if a.IsNull() || b.IsNull() {
		return types.NewNull(), nil
	}
	cmp, err := types.CompareValues(a, b)
	if err != nil {
		return types.Value{}, err
	}
	switch op {
	case token.LT:
		return types.NewBool(cmp < 0), nil
	case token.LTE:
		return types.NewBool(cmp <= 0), nil
	case token.GT:
		return types.NewBool(cmp > 0), nil
	case token.GTE:
		return types.NewBool(cmp >= 0), nil
	default:
		return types.Value{}, chqlerr.NotImplemented("comparison operator %s", op)
	}
}

func (c *evalCtx) evalFunctionCall(fc *ast.FunctionCall) (types.Value, error) {
	if c.exec.registry.IsAggregate(fc.Name) {
		return c.lookupAgg(exprKey(fc))
	}
	fn, ok := c.exec.registry.Get(fc.Name)
	if !ok {
		return types.Value{}, chqlerr.Name("unknown function %s", fc.Name)
	}
	args := make([]types.Value, len(fc.Args))
	for i, a := range fc.Args {
		v, err := c.eval(a)
		if err != nil {
			return types.Value{}, err
		}
		args[i] = v
	}
	return fn.Execute(args, fc.Distinct)
}

func (c *evalCtx) evalCase(e *ast.CaseExpr) (types.Value, error) {
	var operand types.Value
	if e.Operand != nil {
		v, err := c.eval(e.Operand)
		if err != nil {
			return types.Value{}, err
		}
		operand = v
	}
	for _, when := range e.Whens {
		if e.Operand != nil {
			cmpVal, err := c.eval(when.Cond)
			if err != nil {
				return types.Value{}, err
			}
			eq, isNull := types.Equal(operand, cmpVal)
			if isNull || !eq {
				continue
			}
		} else {
			cond, err := c.eval(when.Cond)
			if err != nil {
				return types.Value{}, err
			}
			truthy, isNull := types.Truthy(cond)
			if isNull || !truthy {
				continue
			}
		}
		return c.eval(when.Result)
	}
	if e.Else != nil {
		return c.eval(e.Else)
	}
	return types.NewNull(), nil
}

func (c *evalCtx) evalIn(e *ast.InExpr) (types.Value, error) {
	left, err := c.eval(e.Expr)
	if err != nil {
		return types.Value{}, err
	}
	if left.IsNull() {
		return types.NewNull(), nil
	}

	var candidates []types.Value
	if e.Subquery != nil {
		result, err := c.exec.runSubquery(c, e.Subquery)
		if err != nil {
			return types.Value{}, err
		}
		for _, r := range result.Rows {
			if len(r.Vals) != 1 {
				return types.Value{}, chqlerr.Type("IN subquery must return exactly one column")
			}
			candidates = append(candidates, r.Vals[0])
		}
	} else {
		for _, ve := range e.Values {
			v, err := c.eval(ve)
			if err != nil {
				return types.Value{}, err
			}
			candidates = append(candidates, v)
		}
	}

	sawNull := false
	for _, v := range candidates {
		if v.IsNull() {
			sawNull = true
			continue
		}
		eq, isNull := types.Equal(left, v)
		if !isNull && eq {
			return types.NewBool(!e.Not), nil
		}
	}
	if sawNull {
		return types.NewNull(), nil
	}
	return types.NewBool(e.Not), nil
}

func (c *evalCtx) evalBetween(e *ast.BetweenExpr) (types.Value, error) {
	v, err := c.eval(e.Expr)
	if err != nil {
		return types.Value{}, err
	}
	low, err := c.eval(e.Low)
	if err != nil {
		return types.Value{}, err
	}
	high, err := c.eval(e.High)
	if err != nil {
		return types.Value{}, err
	}
	if v.IsNull() || low.IsNull() || high.IsNull() {
		return types.NewNull(), nil
	}
	cmpLow, err := types.CompareValues(v, low)
	if err != nil {
		return types.Value{}, err
	}
	cmpHigh, err := types.CompareValues(v, high)
	if err != nil {
		return types.Value{}, err
	}
	result := cmpLow >= 0 && cmpHigh <= 0
	if e.Not {
		result = !result
	}
	return types.NewBool(result), nil
}

func (c *evalCtx) evalLike(e *ast.LikeExpr) (types.Value, error) {
	v, err := c.eval(e.Expr)
	if err != nil {
		return types.Value{}, err
	}
	pat, err := c.eval(e.Pattern)
	if err != nil {
		return types.Value{}, err
	}
	if v.IsNull() || pat.IsNull() {
		return types.NewNull(), nil
	}
	re, err := functions.CompileLike(pat.Str(), e.CaseInsensitive)
	if err != nil {
		return types.Value{}, chqlerr.Type("invalid LIKE pattern: %v", err)
	}
	matched, err := re.MatchString(v.Str())
	if err != nil {
		return types.Value{}, chqlerr.Type("LIKE match failed: %v", err)
	}
	if e.Not {
		matched = !matched
	}
	return types.NewBool(matched), nil
}

func (c *evalCtx) evalScalarSubquery(stmt ast.Statement) (types.Value, error) {
	result, err := c.exec.runSubquery(c, stmt)
	if err != nil {
		return types.Value{}, err
	}
	if len(result.Rows) == 0 {
		return types.NewNull(), nil
	}
	if len(result.Rows) > 1 || len(result.Rows[0].Vals) != 1 {
		return types.Value{}, chqlerr.Type("scalar subquery must return exactly one row and one column")
	}
	return result.Rows[0].Vals[0], nil
}

func (c *evalCtx) evalExists(e *ast.ExistsExpr) (types.Value, error) {
	result, err := c.exec.runSubquery(c, e.Query)
	if err != nil {
		return types.Value{}, err
	}
	exists := len(result.Rows) > 0
	if e.Not {
		exists = !exists
	}
	return types.NewBool(exists), nil
}

func (c *evalCtx) evalArray(e *ast.ArrayExpr) (types.Value, error) {
	vals := make([]types.Value, len(e.Elements))
	elemType := types.NullType
	for i, el := range e.Elements {
		v, err := c.eval(el)
		if err != nil {
			return types.Value{}, err
		}
		vals[i] = v
		if !v.IsNull() {
			elemType = v.Type()
		}
	}
	return types.NewArray(elemType, vals), nil
}

func (c *evalCtx) evalTuple(e *ast.TupleExpr) (types.Value, error) {
	vals := make([]types.Value, len(e.Elements))
	for i, el := range e.Elements {
		v, err := c.eval(el)
		if err != nil {
			return types.Value{}, err
		}
		vals[i] = v
	}
	return types.NewTuple(vals, e.Names), nil
}

func (c *evalCtx) evalIndex(e *ast.IndexExpr) (types.Value, error) {
	v, err := c.eval(e.Expr)
	if err != nil {
		return types.Value{}, err
	}
	idx, err := c.eval(e.Index)
	if err != nil {
		return types.Value{}, err
	}
	if v.IsNull() || idx.IsNull() {
		return types.NewNull(), nil
	}
	i := idx.Int64()
	switch v.Kind() {
	case types.KindArray:
		elems := v.Elements()
		if i < 1 || int(i) > len(elems) {
			return types.NewNull(), nil
		}
		return elems[i-1], nil
	case types.KindTuple:
		elems := v.TupleElements()
		if i < 1 || int(i) > len(elems) {
			return types.Value{}, chqlerr.Type("tuple index %d out of range", i)
		}
		return elems[i-1], nil
	default:
		return types.Value{}, chqlerr.Type("indexing unsupported on kind %s", v.Kind())
	}
}

// exprKey renders a deterministic textual key for an expression, used to
// correlate an aggregate or window FunctionCall appearing in the
// projection/HAVING/ORDER BY list with its precomputed per-group value.
// Two syntactically identical expressions always render the same key,
// which is all correlation needs here.
func exprKey(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.FunctionCall:
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = exprKey(a)
		}
		distinct := ""
		if e.Distinct {
			distinct = "DISTINCT "
		}
		return fmt.Sprintf("%s(%s%s)", strings.ToLower(e.Name), distinct, strings.Join(parts, ","))
	case *ast.WindowFunction:
		return exprKey(&e.Func) + "#" + windowSpecKey(e.Spec)
	case *ast.Literal:
		return "lit:" + e.Kind.String() + ":" + e.Text
	case *ast.ColumnRef:
		return "col:" + e.Table + "." + e.Name
	case *ast.Star:
		return "star:" + e.Table
	case *ast.BinaryExpr:
		return "(" + exprKey(e.Left) + string(rune(e.Op)) + exprKey(e.Right) + ")"
	case *ast.UnaryExpr:
		return "u(" + string(rune(e.Op)) + exprKey(e.Operand) + ")"
	case *ast.Cast:
		return "cast(" + exprKey(e.Expr) + ")"
	default:
		return fmt.Sprintf("%p", expr)
	}
}

func windowSpecKey(spec ast.WindowSpec) string {
	parts := make([]string, len(spec.PartitionBy))
	for i, p := range spec.PartitionBy {
		parts[i] = exprKey(p)
	}
	orderParts := make([]string, len(spec.OrderBy))
	for i, o := range spec.OrderBy {
		orderParts[i] = exprKey(o.Expr)
	}
	return "p[" + strings.Join(parts, ",") + "]o[" + strings.Join(orderParts, ",") + "]"
}
