package dialect

import (
	"strconv"

	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/types"
)

// postgresDialect implements Dialect for the "postgresql" config option,
// grounded on graphjin's core/internal/dialect/postgres.go.
type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgresql" }

func (postgresDialect) UUIDLiteral(escaped string) string      { return escaped + "::UUID" }
func (postgresDialect) DateLiteral(escaped string) string      { return escaped + "::DATE" }
func (postgresDialect) TimestampLiteral(escaped string) string { return escaped + "::TIMESTAMP" }
func (postgresDialect) JSONBLiteral(escaped string) string     { return escaped + "::JSONB" }

func (postgresDialect) Cast(exprSQL string, target types.ExpressionType) string {
	return "(" + exprSQL + ")::" + target.String()
}

func (postgresDialect) Aggregate(name string, expr string) (string, bool) {
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
		return "STDDEV(" + expr + ")", true
	case "VARIANCE":
		return "VARIANCE(" + expr + ")", true
	case "COUNT_DISTINCT":
		return "COUNT(DISTINCT " + expr + ")", true
	case "STRING_AGG":
		return "STRING_AGG(" + expr + ", ',')", true
	default:
		return "", false
	}
}

func (postgresDialect) RegexOperator() string { return "~" }

func (postgresDialect) RenderLimitOffset(limit, offset *int) string {
	var out string
	if limit != nil {
		out += "LIMIT " + strconv.Itoa(*limit)
	}
	if offset != nil {
		if out != "" {
			out += " "
		}
		out += "OFFSET " + strconv.Itoa(*offset)
	}
	return out
}

func (postgresDialect) EpochExtract(expr string) string {
	return "EXTRACT(EPOCH FROM " + expr + ")"
}
