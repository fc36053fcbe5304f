// Package engine is chlite's stable embedding surface: an in-memory SQL
// engine over pkg/catalog and pkg/registry, fed by pkg/parser and driven by
// pkg/executor.
package engine

import (
	"chlite/pkg/catalog"
	"chlite/pkg/executor"
	"chlite/pkg/functions"
	"chlite/pkg/parser"
	"chlite/pkg/registry"
	"chlite/pkg/types"
)

// QueryResult is the result of one executed statement: a column list and
// rows for a SELECT, or just RowsAffected for INSERT/UPDATE/DELETE/DDL.
type QueryResult = executor.QueryResult

// Engine is one independent, in-memory chlite instance: its own catalog
// and function registry, safe for concurrent Execute calls (the catalog
// guards its own tables with a mutex; the registry is read-only after
// construction).
type Engine struct {
	catalog  *catalog.Catalog
	registry registry.Registry
	exec     *executor.Executor
}

// Option configures a new Engine.
type Option func(*engineConfig)

type engineConfig struct {
	catalog  *catalog.Catalog
	registry registry.Registry
}

// WithCatalog seeds the engine with a pre-populated catalog instead of an
// empty one, useful for sharing tables across Engine instances in tests.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(c *engineConfig) { c.catalog = cat }
}

// WithRegistry overrides the default scalar/aggregate function set,
// useful for embedding additional or restricted builtins.
func WithRegistry(reg registry.Registry) Option {
	return func(c *engineConfig) { c.registry = reg }
}

// New constructs an in-memory Engine. With no options it starts with an
// empty catalog and the default builtin function registry.
func New(opts ...Option) *Engine {
	cfg := &engineConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.catalog == nil {
		cfg.catalog = catalog.New()
	}
	if cfg.registry == nil {
		cfg.registry = functions.NewDefaultRegistry()
	}
	return &Engine{
		catalog:  cfg.catalog,
		registry: cfg.registry,
		exec:     executor.New(cfg.catalog, cfg.registry),
	}
}

// Execute parses and runs one SQL statement, binding params to its `?`
// placeholders in left-to-right appearance order.
func (e *Engine) Execute(sql string, params ...types.Value) (QueryResult, error) {
	stmt, err := parser.New(sql).ParseStatement()
	if err != nil {
		return QueryResult{}, err
	}
	return e.exec.Execute(stmt, params)
}

// ExecuteMany parses and runs a `;`-separated script, returning every
// statement's result in order. It stops and returns what ran so far on
// the first error.
func (e *Engine) ExecuteMany(script string) ([]QueryResult, error) {
	stmts, err := parser.New(script).ParseProgram()
	if err != nil {
		return nil, err
	}
	results := make([]QueryResult, 0, len(stmts))
	for _, stmt := range stmts {
		r, err := e.exec.Execute(stmt, nil)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

// TableExists reports whether name (case-insensitively) names a table.
func (e *Engine) TableExists(name string) bool {
	return e.catalog.TableExists(name)
}

// ListTables returns every table name, sorted.
func (e *Engine) ListTables() []string {
	return e.catalog.ListTables()
}

// Catalog returns the engine's underlying catalog for inspection (schema
// introspection in a REPL's `.tables`/`.schema` commands).
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}
