package dialect

import (
	"strconv"

	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/types"
)

// sqliteDialect implements Dialect for the "sqlite-extensions" config
// option, grounded on graphjin's core/internal/dialect/sqlite.go. SQLite
// has no typed literal casts and no native STDDEV/VARIANCE/STRING_AGG, so
// this dialect falls back to the spec's named algebraic expansion and
// GROUP_CONCAT shim (§4.A, §4.G).
type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite-extensions" }

func (sqliteDialect) UUIDLiteral(escaped string) string      { return escaped }
func (sqliteDialect) DateLiteral(escaped string) string      { return escaped }
func (sqliteDialect) TimestampLiteral(escaped string) string { return escaped }
func (sqliteDialect) JSONBLiteral(escaped string) string     { return escaped }

func (sqliteDialect) Cast(exprSQL string, target types.ExpressionType) string {
	return "CAST(" + exprSQL + " AS " + target.String() + ")"
}

func (sqliteDialect) Aggregate(name string, expr string) (string, bool) {
	switch name {
	case "COUNT":
		return "COUNT(" + expr + ")", true
	case "SUM":
		return "SUM(" + expr + ")", true
	case "AVG":
		return "AVG(" + expr + ")", true
	case "MIN":
		return "MIN(" + expr + ")", true
	case "MAX":
		return "MAX(" + expr + ")", true
	case "STDDEV":
		return populationStdDev(expr), true
	case "VARIANCE":
		return populationVariance(expr), true
	case "COUNT_DISTINCT":
		return "COUNT(DISTINCT " + expr + ")", true
	case "STRING_AGG":
		return "GROUP_CONCAT(" + expr + ", ',')", true
	default:
		return "", false
	}
}

func (sqliteDialect) RegexOperator() string { return "REGEXP" }

// RenderLimitOffset implements invariant 8: SQLite's grammar has no bare
// OFFSET form, so "offset without limit" renders as "LIMIT -1 OFFSET n".
func (sqliteDialect) RenderLimitOffset(limit, offset *int) string {
	switch {
	case limit != nil && offset != nil:
		return "LIMIT " + strconv.Itoa(*limit) + " OFFSET " + strconv.Itoa(*offset)
	case limit != nil:
		return "LIMIT " + strconv.Itoa(*limit)
	case offset != nil:
		return "LIMIT -1 OFFSET " + strconv.Itoa(*offset)
	default:
		return ""
	}
}

func (sqliteDialect) EpochExtract(expr string) string {
	return "CAST(STRFTIME('%s', " + expr + ") AS INTEGER)"
}
