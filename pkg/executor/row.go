// Package executor implements chlite's logical query execution: it walks a
// parsed ast.Statement against an in-memory catalog.Catalog, evaluating
// expressions through pkg/types and dispatching functions through
// pkg/registry.
package executor

import (
	"strings"

	"chlite/pkg/chqlerr"
	"chlite/pkg/types"
)

// column names one slot of a Row: an optional table/alias qualifier plus
// the column's own name.
type column struct {
	Table string
	Name  string
}

// Row is one row flowing through the pipeline: parallel Cols/Vals slices,
// in projection/materialization order. Joins concatenate two Rows' slices;
// GROUP BY collapses many Rows into one representative Row per group.
type Row struct {
	Cols []column
	Vals []types.Value
}

func (r Row) clone() Row {
	cols := make([]column, len(r.Cols))
	copy(cols, r.Cols)
	vals := make([]types.Value, len(r.Vals))
	copy(vals, r.Vals)
	return Row{Cols: cols, Vals: vals}
}

func concatRows(left, right Row) Row {
	cols := make([]column, 0, len(left.Cols)+len(right.Cols))
	cols = append(cols, left.Cols...)
	cols = append(cols, right.Cols...)
	vals := make([]types.Value, 0, len(left.Vals)+len(right.Vals))
	vals = append(vals, left.Vals...)
	vals = append(vals, right.Vals...)
	return Row{Cols: cols, Vals: vals}
}

// lookup resolves a (possibly table-qualified) column reference against
// the row. An unqualified name must be unique across the row's columns;
// a qualified name matches the first column whose Table equal-folds it.
func (r Row) lookup(table, name string) (types.Value, error) {
	if table != "" {
		for i, c := range r.Cols {
			if strings.EqualFold(c.Table, table) && strings.EqualFold(c.Name, name) {
				return r.Vals[i], nil
			}
		}
		return types.Value{}, chqlerr.Name("unknown column %s.%s", table, name)
	}

	found := -1
	for i, c := range r.Cols {
		if strings.EqualFold(c.Name, name) {
			if found != -1 {
				return types.Value{}, chqlerr.Name("ambiguous column %s", name)
			}
			found = i
		}
	}
	if found == -1 {
		return types.Value{}, chqlerr.Name("unknown column %s", name)
	}
	return r.Vals[found], nil
}

// namedValues is a materialized table or subquery result: an ordered
// column list plus its rows, independent of the catalog.
type namedValues struct {
	Name    string
	Columns []column
	Rows    []Row
}
