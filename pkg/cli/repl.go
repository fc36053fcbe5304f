// pkg/cli/repl.go
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"chlite/pkg/catalog"
	"chlite/pkg/engine"
	"chlite/pkg/types"
)

// REPL provides a Read-Eval-Print Loop for interactive SQL execution
// against an engine.Engine.
type REPL struct {
	// eng is the query engine
	eng *engine.Engine

	// shell handles input/output and statement parsing
	shell *Shell

	// output is where results are written
	output io.Writer

	// errOutput is where errors are written
	errOutput io.Writer

	// running indicates if the REPL is currently running
	running bool

	// exitRequested indicates that .exit was called
	exitRequested bool
}

// NewREPL creates a new REPL over a fresh in-memory engine.
// Output is written to stdout and errors to stderr.
func NewREPL(output, errOutput io.Writer) *REPL {
	return NewREPLWithInput(os.Stdin, output, errOutput)
}

// NewREPLWithInput creates a new REPL with custom input/output streams.
// This is useful for testing or scripted operation.
func NewREPLWithInput(input io.Reader, output, errOutput io.Writer) *REPL {
	shell := NewShell(input, output, errOutput)

	return &REPL{
		eng:       engine.New(),
		shell:     shell,
		output:    output,
		errOutput: errOutput,
		running:   false,
	}
}

// Run starts the REPL loop, reading and executing statements until
// EOF or .exit command.
func (r *REPL) Run() {
	r.running = true
	r.exitRequested = false

	fmt.Fprintln(r.output, "chlite version 0.1.0")
	fmt.Fprintln(r.output, "Enter \".help\" for usage hints.")

	for r.running && !r.exitRequested {
		stmt, eof := r.shell.ReadStatement()

		if eof && stmt == "" {
			fmt.Fprintln(r.output)
			break
		}

		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		if strings.HasPrefix(stmt, ".") {
			r.handleDotCommand(stmt)
			continue
		}

		if err := r.ExecuteStatement(stmt); err != nil {
			r.printError(err)
		}

		if eof {
			break
		}
	}

	r.running = false
}

// ExecuteStatement executes a single SQL statement and displays the result.
func (r *REPL) ExecuteStatement(sql string) error {
	result, err := r.eng.Execute(sql)
	if err != nil {
		return err
	}

	r.displayResult(result)
	return nil
}

// displayResult formats and prints query results.
func (r *REPL) displayResult(result engine.QueryResult) {
	if len(result.Columns) == 0 {
		if result.RowsAffected > 0 {
			fmt.Fprintf(r.output, "Rows affected: %d\n", result.RowsAffected)
		}
		return
	}

	names := make([]string, len(result.Columns))
	for i, c := range result.Columns {
		names[i] = c.Name
	}
	r.displayTable(names, result.Rows)
}

// displayTable formats results as an ASCII table.
func (r *REPL) displayTable(columns []string, rows [][]types.Value) {
	if len(columns) == 0 {
		return
	}

	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}

	for _, row := range rows {
		for i, val := range row {
			if i < len(widths) {
				s := formatValue(val)
				if len(s) > widths[i] {
					widths[i] = len(s)
				}
			}
		}
	}

	r.printSeparator(widths)
	r.printRow(columns, widths)
	r.printSeparator(widths)

	for _, row := range rows {
		r.printDataRow(row, widths)
	}

	r.printSeparator(widths)
	fmt.Fprintf(r.output, "%d row(s)\n", len(rows))
}

// printSeparator prints a horizontal line separator.
func (r *REPL) printSeparator(widths []int) {
	fmt.Fprint(r.output, "+")
	for _, w := range widths {
		fmt.Fprint(r.output, strings.Repeat("-", w+2))
		fmt.Fprint(r.output, "+")
	}
	fmt.Fprintln(r.output)
}

// printRow prints a row of string values.
func (r *REPL) printRow(values []string, widths []int) {
	fmt.Fprint(r.output, "|")
	for i, val := range values {
		w := widths[i]
		fmt.Fprintf(r.output, " %-*s |", w, val)
	}
	fmt.Fprintln(r.output)
}

// printDataRow prints a row of values.
func (r *REPL) printDataRow(row []types.Value, widths []int) {
	fmt.Fprint(r.output, "|")
	for i, val := range row {
		w := widths[i]
		s := formatValue(val)
		fmt.Fprintf(r.output, " %-*s |", w, s)
	}
	fmt.Fprintln(r.output)
}

// formatValue converts a value to its display representation.
func formatValue(v types.Value) string {
	if v.IsNull() {
		return "NULL"
	}
	return types.ToDisplayString(v)
}

// handleDotCommand processes special dot commands.
func (r *REPL) handleDotCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch strings.ToLower(parts[0]) {
	case ".exit", ".quit":
		r.exitRequested = true
	case ".help":
		r.printHelp()
	case ".tables":
		r.showTables()
	case ".schema":
		if len(parts) > 1 {
			r.showSchema(parts[1])
		} else {
			r.showAllSchemas()
		}
	default:
		fmt.Fprintf(r.errOutput, "Unknown command: %s\n", parts[0])
		fmt.Fprintln(r.errOutput, "Use \".help\" for usage hints.")
	}
}

// printHelp displays help information.
func (r *REPL) printHelp() {
	help := `
.exit              Exit this program
.help              Show this help message
.quit              Exit this program
.schema [TABLE]    Show CREATE statement for table(s)
.tables            List all tables

Enter SQL statements terminated with a semicolon.
Multi-line statements are supported.
`
	fmt.Fprintln(r.output, help)
}

// showTables lists all tables in the engine.
func (r *REPL) showTables() {
	tables := r.eng.ListTables()
	if len(tables) == 0 {
		fmt.Fprintln(r.output, "(no tables)")
		return
	}

	for _, name := range tables {
		fmt.Fprintln(r.output, name)
	}
}

// showSchema shows the CREATE statement for a specific table.
func (r *REPL) showSchema(tableName string) {
	table, ok := r.eng.Catalog().GetTable(tableName)
	if !ok {
		fmt.Fprintf(r.errOutput, "Error: no such table: %s\n", tableName)
		return
	}

	fmt.Fprintln(r.output, generateCreateSQL(table))
}

// showAllSchemas shows CREATE statements for all tables.
func (r *REPL) showAllSchemas() {
	for _, name := range r.eng.ListTables() {
		if table, ok := r.eng.Catalog().GetTable(name); ok {
			fmt.Fprintln(r.output, generateCreateSQL(table))
		}
	}
}

// generateCreateSQL generates a CREATE TABLE statement from a catalog.Table.
func generateCreateSQL(table *catalog.Table) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	sb.WriteString(table.Name)
	sb.WriteString(" (")

	for i, col := range table.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(col.Name)
		sb.WriteString(" ")
		sb.WriteString(col.Type.String())
	}

	sb.WriteString(");")
	return sb.String()
}

// printError prints an error message to the error output.
func (r *REPL) printError(err error) {
	fmt.Fprintf(r.errOutput, "Error: %v\n", err)
}
