// Package dialect holds everything that varies between the SQL dialects
// this compiler targets (spec §1: "PostgreSQL, SQLite with extensions, and
// kin"). It is grounded on graphjin's core/internal/dialect package, which
// carries the same idea — one Dialect interface, one struct implementation
// per database, switched on at compiler construction time
// (core/internal/psql/query.go's NewCompiler) — trimmed down to the
// handful of hooks this spec's components actually need: literal casts
// (component A), type casts (component B), the aggregate-function shim
// table (component G) and the LIMIT/OFFSET quirk (invariant 8).
package dialect

import (
	"fmt"
	"strings"

	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/types"
	"github.com/iv-stpn/json-to-sql-parser-sub001/schema"
)

// AggEmitter renders one aggregation function call over an already-quoted
// SQL expression.
type AggEmitter func(expr string) string

// Dialect is the closed set of emission rules a compile is parametrized
// over.
type Dialect interface {
	Name() string

	// Literal casts (component A / §4.D).
	UUIDLiteral(escaped string) string
	DateLiteral(escaped string) string
	TimestampLiteral(escaped string) string
	JSONBLiteral(escaped string) string

	// Cast emits exprSQL wrapped so it evaluates as target (§4.B, §4.E
	// cast rules). exprSQL must already be fully parenthesized if it is
	// anything other than a bare column reference.
	Cast(exprSQL string, target types.ExpressionType) string

	// Aggregate renders dialect-specific aggregate emission (component G).
	// ok is false for an unknown function name.
	Aggregate(name string, expr string) (sql string, ok bool)

	// RegexOperator renders the binary operator used for $regex (§4.E).
	RegexOperator() string

	// RenderLimitOffset renders the trailing LIMIT/OFFSET clause text,
	// including invariant 8's SQLite "LIMIT -1 OFFSET n" quirk.
	RenderLimitOffset(limit, offset *int) string

	// EpochExtract renders the EXTRACT_EPOCH(ts) function (§4.D n-ary).
	EpochExtract(expr string) string
}

// New constructs the Dialect implementation for d.
func New(d schema.Dialect) (Dialect, error) {
	switch d {
	case schema.PostgreSQL:
		return &postgresDialect{}, nil
	case schema.SQLiteExtensions:
		return &sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported dialect %v", d)
	}
}

// populationStdDev expands to the algebraic population-standard-deviation
// formula used by dialects lacking a native STDDEV aggregate.
func populationStdDev(expr string) string {
	return "SQRT(" + populationVariance(expr) + ")"
}

// populationVariance is the shared algebraic expansion for VARIANCE.
func populationVariance(expr string) string {
	return "((SUM((" + expr + ") * (" + expr + ")) - (SUM(" + expr + ") * SUM(" + expr + ") / COUNT(" + expr + "))) / COUNT(" + expr + "))"
}

func joinArgs(args ...string) string {
	return strings.Join(args, ", ")
}
