package executor

import (
	"fmt"
	"strconv"
	"strings"

	"chlite/pkg/ast"
	"chlite/pkg/types"
)

// resolveDataType converts a parsed ast.DataType into a types.Type by
// rendering it back to ClickHouse type-name syntax and handing that to
// types.ParseTypeName, which already implements the full grammar (nested
// wrappers, Decimal width defaults, DateTime64 timezone, named tuples).
// Keeping one type-name grammar (in pkg/types) avoids a second, divergent
// implementation here.
func resolveDataType(dt ast.DataType) (types.Type, error) {
	return types.ParseTypeName(dataTypeString(dt))
}

func dataTypeString(dt ast.DataType) string {
	var b strings.Builder
	b.WriteString(dt.Name)

	hasParams := len(dt.Params) > 0 || len(dt.IntParams) > 0 || len(dt.StringParams) > 0
	if !hasParams {
		return b.String()
	}
	b.WriteString("(")

	upper := strings.ToUpper(dt.Name)
	switch {
	case upper == "TUPLE" && len(dt.StringParams) == len(dt.Params) && len(dt.Params) > 0:
		parts := make([]string, len(dt.Params))
		for i, p := range dt.Params {
			parts[i] = dt.StringParams[i] + " " + dataTypeString(p)
		}
		b.WriteString(strings.Join(parts, ", "))
	case upper == "DATETIME64":
		parts := []string{}
		for _, n := range dt.IntParams {
			parts = append(parts, strconv.Itoa(n))
		}
		for _, s := range dt.StringParams {
			parts = append(parts, fmt.Sprintf("'%s'", s))
		}
		b.WriteString(strings.Join(parts, ", "))
	default:
		var parts []string
		for _, p := range dt.Params {
			parts = append(parts, dataTypeString(p))
		}
		for _, n := range dt.IntParams {
			parts = append(parts, strconv.Itoa(n))
		}
		for _, s := range dt.StringParams {
			parts = append(parts, fmt.Sprintf("'%s'", s))
		}
		b.WriteString(strings.Join(parts, ", "))
	}

	b.WriteString(")")
	return b.String()
}
