package executor

import (
	"chlite/pkg/ast"
	"chlite/pkg/chqlerr"
	"chlite/pkg/types"
)

// materializeTableFunction evaluates the small set of generator table
// functions usable in a FROM clause: numbers(n[, start]), zeros(n), one().
func (e *Executor) materializeTableFunction(t *ast.TableFunctionRef, outer *evalCtx) ([]Row, error) {
	args := make([]types.Value, len(t.Args))
	for i, a := range t.Args {
		v, err := (&evalCtx{exec: e, outer: outer}).eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	alias := t.Alias
	if alias == "" {
		alias = t.Name
	}

	switch t.Name {
	case "numbers":
		return numbersRows(args, alias, "number")
	case "zeros":
		return zerosRows(args, alias, "zero")
	case "one":
		return []Row{{
			Cols: []column{{Table: alias, Name: "dummy"}},
			Vals: []types.Value{types.NewUInt8(0)},
		}}, nil
	default:
		return nil, chqlerr.NotImplemented("table function %s", t.Name)
	}
}

func numbersRows(args []types.Value, alias, colName string) ([]Row, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, chqlerr.Arity("numbers() expects 1 or 2 arguments, got %d", len(args))
	}
	count, err := argInt64(args[0])
	if err != nil {
		return nil, err
	}
	start := int64(0)
	if len(args) == 2 {
		start, err = argInt64(args[1])
		if err != nil {
			return nil, err
		}
	}
	rows := make([]Row, count)
	for i := int64(0); i < count; i++ {
		rows[i] = Row{
			Cols: []column{{Table: alias, Name: colName}},
			Vals: []types.Value{types.NewUInt64(uint64(start + i))},
		}
	}
	return rows, nil
}

func zerosRows(args []types.Value, alias, colName string) ([]Row, error) {
	if len(args) != 1 {
		return nil, chqlerr.Arity("zeros() expects 1 argument, got %d", len(args))
	}
	count, err := argInt64(args[0])
	if err != nil {
		return nil, err
	}
	rows := make([]Row, count)
	for i := range rows {
		rows[i] = Row{
			Cols: []column{{Table: alias, Name: colName}},
			Vals: []types.Value{types.NewUInt64(0)},
		}
	}
	return rows, nil
}

func argInt64(v types.Value) (int64, error) {
	cast, err := types.Cast(v, types.Type{Kind: types.KindInt64})
	if err != nil {
		return 0, err
	}
	return cast.Int64(), nil
}
