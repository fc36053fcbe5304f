package executor

import (
	"chlite/pkg/ast"
	"chlite/pkg/catalog"
	"chlite/pkg/chqlerr"
	"chlite/pkg/types"
)

func (e *Executor) execInsert(parent *scope, stmt *ast.InsertStmt, params []types.Value) (QueryResult, error) {
	tbl, ok := e.catalog.GetTable(stmt.Table)
	if !ok {
		return QueryResult{}, chqlerr.Name("table %s does not exist", stmt.Table)
	}

	targetCols := stmt.Columns
	if len(targetCols) == 0 {
		targetCols = tbl.ColumnNames()
	}
	idxByTarget := make([]int, len(targetCols))
	for i, name := range targetCols {
		idx, ok := tbl.ColumnIndex(name)
		if !ok {
			return QueryResult{}, chqlerr.Name("unknown column %s in INSERT", name)
		}
		idxByTarget[i] = idx
	}

	var sourceRows [][]types.Value
	c := &evalCtx{exec: e, params: params}

	if stmt.Select != nil {
		nv, err := e.runStatementCorrelated(&scope{parent: parent}, stmt.Select, c)
		if err != nil {
			return QueryResult{}, err
		}
		if len(nv.Columns) != len(targetCols) {
			return QueryResult{}, chqlerr.Type("INSERT SELECT produces %d columns, expected %d", len(nv.Columns), len(targetCols))
		}
		for _, r := range nv.Rows {
			sourceRows = append(sourceRows, r.Vals)
		}
	} else {
		for _, valueRow := range stmt.Values {
			if len(valueRow) != len(targetCols) {
				return QueryResult{}, chqlerr.Type("INSERT row has %d values, expected %d", len(valueRow), len(targetCols))
			}
			vals := make([]types.Value, len(valueRow))
			for i, expr := range valueRow {
				v, err := c.eval(expr)
				if err != nil {
					return QueryResult{}, err
				}
				vals[i] = v
			}
			sourceRows = append(sourceRows, vals)
		}
	}

	colCount := len(tbl.ColumnNames())
	var affected int64
	for _, src := range sourceRows {
		row := defaultRow(tbl, colCount)
		for i, idx := range idxByTarget {
			cast, err := castForColumn(tbl, idx, src[i])
			if err != nil {
				return QueryResult{}, err
			}
			row[idx] = cast
		}
		tbl.AppendRow(row)
		affected++
	}
	return QueryResult{RowsAffected: affected}, nil
}

// defaultRow builds one row's worth of column default values: NULL for a
// nullable column, otherwise the column type's default value. A DEFAULT
// expression recorded on the column is not evaluated.
func defaultRow(tbl *catalog.Table, n int) []types.Value {
	row := make([]types.Value, n)
	for i, col := range tbl.Columns {
		if col.Nullable {
			row[i] = types.NewNull()
			continue
		}
		row[i] = col.Type.DefaultValue()
	}
	return row
}

func castForColumn(tbl *catalog.Table, idx int, v types.Value) (types.Value, error) {
	col := tbl.Columns[idx]
	if v.IsNull() {
		if !col.Nullable {
			return types.Value{}, chqlerr.Type("column %s is not nullable", col.Name)
		}
		return v, nil
	}
	return types.Cast(v, col.Type)
}

func (e *Executor) execUpdate(parent *scope, stmt *ast.UpdateStmt, params []types.Value) (QueryResult, error) {
	tbl, ok := e.catalog.GetTable(stmt.Table)
	if !ok {
		return QueryResult{}, chqlerr.Name("table %s does not exist", stmt.Table)
	}
	names := tbl.ColumnNames()
	snap := tbl.Snapshot()

	idxByAssign := make([]int, len(stmt.Assignments))
	for i, a := range stmt.Assignments {
		idx, ok := tbl.ColumnIndex(a.Column)
		if !ok {
			return QueryResult{}, chqlerr.Name("unknown column %s in UPDATE", a.Column)
		}
		idxByAssign[i] = idx
	}

	var affected int64
	out := make([][]types.Value, len(snap))
	for ri, vals := range snap {
		cols := make([]column, len(names))
		for i, n := range names {
			cols[i] = column{Table: stmt.Table, Name: n}
		}
		row := Row{Cols: cols, Vals: vals}
		rc := &evalCtx{row: row, exec: e, params: params}

		match := true
		if stmt.Where != nil {
			v, err := rc.eval(stmt.Where)
			if err != nil {
				return QueryResult{}, err
			}
			truthy, isNull := types.Truthy(v)
			match = !isNull && truthy
		}

		newVals := append([]types.Value{}, vals...)
		if match {
			for i, a := range stmt.Assignments {
				v, err := rc.eval(a.Value)
				if err != nil {
					return QueryResult{}, err
				}
				cast, err := castForColumn(tbl, idxByAssign[i], v)
				if err != nil {
					return QueryResult{}, err
				}
				newVals[idxByAssign[i]] = cast
			}
			affected++
		}
		out[ri] = newVals
	}
	tbl.ReplaceRows(out)
	return QueryResult{RowsAffected: affected}, nil
}

func (e *Executor) execDelete(parent *scope, stmt *ast.DeleteStmt, params []types.Value) (QueryResult, error) {
	tbl, ok := e.catalog.GetTable(stmt.Table)
	if !ok {
		return QueryResult{}, chqlerr.Name("table %s does not exist", stmt.Table)
	}
	names := tbl.ColumnNames()
	snap := tbl.Snapshot()

	var kept [][]types.Value
	var affected int64
	for _, vals := range snap {
		cols := make([]column, len(names))
		for i, n := range names {
			cols[i] = column{Table: stmt.Table, Name: n}
		}
		rc := &evalCtx{row: Row{Cols: cols, Vals: vals}, exec: e, params: params}

		match := true
		if stmt.Where != nil {
			v, err := rc.eval(stmt.Where)
			if err != nil {
				return QueryResult{}, err
			}
			truthy, isNull := types.Truthy(v)
			match = !isNull && truthy
		}
		if match {
			affected++
			continue
		}
		kept = append(kept, vals)
	}
	tbl.ReplaceRows(kept)
	return QueryResult{RowsAffected: affected}, nil
}
