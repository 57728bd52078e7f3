// Package dsqlc is the public entry point for the declarative-query-to-SQL
// compiler: five build functions, one per query shape, each taking a
// schema.Config and a query value and returning a single SQL string (spec
// §6). It is a thin dispatch layer over internal/plan (select, aggregate)
// and internal/mutate (insert, update, delete); argument schema
// validation, configuration normalization and logging are the caller's
// responsibility, not this package's (spec §1).
package dsqlc

import (
	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/mutate"
	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/plan"
	"github.com/iv-stpn/json-to-sql-parser-sub001/schema"
)

// Re-exported query shapes so callers only need to import this package
// for the common case.
type (
	SelectQuery      = plan.SelectQuery
	OrderField       = plan.OrderField
	Pagination       = plan.Pagination
	AggregationQuery = plan.AggregationQuery
	AggregatedField  = plan.AggregatedField
	InsertQuery      = mutate.InsertQuery
	UpdateQuery      = mutate.UpdateQuery
	DeleteQuery      = mutate.DeleteQuery
)

// BuildSelectQuery compiles a select query (component F) against cfg.
func BuildSelectQuery(cfg *schema.Config, q SelectQuery) (string, error) {
	return plan.Build(cfg, q)
}

// BuildAggregationQuery compiles a group-by/aggregate query (component G)
// against cfg.
func BuildAggregationQuery(cfg *schema.Config, q AggregationQuery) (string, error) {
	return plan.BuildAggregate(cfg, q)
}

// BuildInsertQuery compiles an insert (component H) against cfg. It fails
// with an "Insert condition not met." error if q.Condition folds to false
// against the new row.
func BuildInsertQuery(cfg *schema.Config, q InsertQuery) (string, error) {
	return mutate.BuildInsert(cfg, q)
}

// BuildUpdateQuery compiles an update (component H) against cfg. It fails
// with an "Update condition not met." error if q.Condition folds to false
// against the post-update row image.
func BuildUpdateQuery(cfg *schema.Config, q UpdateQuery) (string, error) {
	return mutate.BuildUpdate(cfg, q)
}

// BuildDeleteQuery compiles a delete (component H) against cfg.
func BuildDeleteQuery(cfg *schema.Config, q DeleteQuery) (string, error) {
	return mutate.BuildDelete(cfg, q)
}
