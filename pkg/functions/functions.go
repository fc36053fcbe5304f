// Package functions supplies chlite's default builtin function registry:
// the scalar and aggregate functions every fresh engine starts with.
package functions

import (
	"strings"
	"time"

	"chlite/pkg/chqlerr"
	"chlite/pkg/registry"
	"chlite/pkg/types"
)

// NewDefaultRegistry returns a registry populated with chlite's builtin
// scalar and aggregate functions. Engines start from this and may
// register additional functions on top via registry.MapRegistry's
// Register* methods.
func NewDefaultRegistry() *registry.MapRegistry {
	r := registry.NewMapRegistry()
	registerScalars(r)
	registerAggregates(r)
	return r
}

func arityErr(name string, want int, got int) error {
	return chqlerr.Arity("function %s expects %d argument(s), got %d", name, want, got)
}

func registerScalars(r *registry.MapRegistry) {
	r.RegisterScalar("length", registry.ScalarFunc(func(args []types.Value, _ bool) (types.Value, error) {
		if len(args) != 1 {
			return types.Value{}, arityErr("length", 1, len(args))
		}
		v := args[0]
		if v.IsNull() {
			return types.NewNull(), nil
		}
		switch {
		case v.Kind() == types.KindString || v.Kind() == types.KindFixedString:
			return types.NewInt64(int64(len(v.Str()))), nil
		case v.Kind() == types.KindArray:
			return types.NewInt64(int64(len(v.Elements()))), nil
		default:
			return types.Value{}, chqlerr.Type("length: unsupported argument kind %s", v.Kind())
		}
	}))

	r.RegisterScalar("upper", stringMap("upper", strings.ToUpper))
	r.RegisterScalar("lower", stringMap("lower", strings.ToLower))

	r.RegisterScalar("tostring", registry.ScalarFunc(func(args []types.Value, _ bool) (types.Value, error) {
		if len(args) != 1 {
			return types.Value{}, arityErr("toString", 1, len(args))
		}
		if args[0].IsNull() {
			return types.NewNull(), nil
		}
		return types.NewString(types.KindString, types.ToDisplayString(args[0]), 0), nil
	}))

	r.RegisterScalar("toint64", castFunc("toInt64", types.Int64Type))
	r.RegisterScalar("tofloat64", castFunc("toFloat64", types.Float64Type))

	r.RegisterScalar("coalesce", registry.ScalarFunc(func(args []types.Value, _ bool) (types.Value, error) {
		for _, a := range args {
			if !a.IsNull() {
				return a, nil
			}
		}
		if len(args) == 0 {
			return types.NewNull(), nil
		}
		return args[len(args)-1], nil
	}))

	r.RegisterScalar("if", registry.ScalarFunc(func(args []types.Value, _ bool) (types.Value, error) {
		if len(args) != 3 {
			return types.Value{}, arityErr("if", 3, len(args))
		}
		truthy, isNull := types.Truthy(args[0])
		if isNull || !truthy {
			return args[2], nil
		}
		return args[1], nil
	}))

	r.RegisterScalar("now", registry.ScalarFunc(func(args []types.Value, _ bool) (types.Value, error) {
		if len(args) != 0 {
			return types.Value{}, arityErr("now", 0, len(args))
		}
		return types.NewDateTime(types.KindDateTime, time.Now().UTC().Unix(), 0, "UTC"), nil
	}))

	r.RegisterScalar("plus", arithFunc("plus", types.OpAdd))
	r.RegisterScalar("minus", arithFunc("minus", types.OpSub))
	r.RegisterScalar("multiply", arithFunc("multiply", types.OpMul))
	r.RegisterScalar("divide", arithFunc("divide", types.OpDiv))
}

func stringMap(name string, f func(string) string) registry.ScalarFunc {
	return func(args []types.Value, _ bool) (types.Value, error) {
		if len(args) != 1 {
			return types.Value{}, arityErr(name, 1, len(args))
		}
		if args[0].IsNull() {
			return types.NewNull(), nil
		}
		return types.NewString(types.KindString, f(args[0].Str()), 0), nil
	}
}

func castFunc(name string, target types.Type) registry.ScalarFunc {
	return func(args []types.Value, _ bool) (types.Value, error) {
		if len(args) != 1 {
			return types.Value{}, arityErr(name, 1, len(args))
		}
		return types.Cast(args[0], target)
	}
}

func arithFunc(name string, op types.ArithOp) registry.ScalarFunc {
	return func(args []types.Value, _ bool) (types.Value, error) {
		if len(args) != 2 {
			return types.Value{}, arityErr(name, 2, len(args))
		}
		if args[0].IsNull() || args[1].IsNull() {
			return types.NewNull(), nil
		}
		return types.Arith(op, args[0], args[1])
	}
}
