package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/datatable"
	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/dialect"
	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/expr"
	"github.com/iv-stpn/json-to-sql-parser-sub001/schema"
)

// AggregatedField is one entry of an AggregationQuery's aggregatedFields
// map (spec §6: alias -> {function, field}).
type AggregatedField struct {
	Function string
	Field    string
}

// AggregationQuery is the aggregate planner's input shape (component G).
type AggregationQuery struct {
	Table            string
	GroupBy          []string
	AggregatedFields map[string]AggregatedField
}

// BuildAggregate compiles an AggregationQuery into a SQL string (component G).
func BuildAggregate(cfg *schema.Config, q AggregationQuery) (string, error) {
	d, err := dialect.New(cfg.Dialect)
	if err != nil {
		return "", err
	}
	if _, ok := cfg.LookupTable(q.Table); !ok {
		return "", fmt.Errorf("Table '%s' is not allowed or does not exist", q.Table)
	}
	if len(q.GroupBy) == 0 && len(q.AggregatedFields) == 0 {
		return "", fmt.Errorf("Aggregation query must have at least one group by field or aggregated field")
	}

	c := expr.New(cfg, d)

	groupExprs := make([]string, len(q.GroupBy))
	projection := make([]string, 0, len(q.GroupBy)+len(q.AggregatedFields))
	for i, g := range q.GroupBy {
		fp, err := datatable.ResolveField(g, cfg)
		if err != nil {
			return "", err
		}
		sql := fp.Render()
		groupExprs[i] = sql
		projection = append(projection, sql+" AS \""+g+"\"")
	}

	aliases := make([]string, 0, len(q.AggregatedFields))
	for alias := range q.AggregatedFields {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	for _, alias := range aliases {
		agg := q.AggregatedFields[alias]
		var fieldSQL string
		if agg.Field == "*" {
			if strings.ToUpper(agg.Function) != "COUNT" {
				return "", fmt.Errorf("wildcard field is only admissible for COUNT")
			}
			fieldSQL = "*"
		} else {
			fp, err := datatable.ResolveField(agg.Field, cfg)
			if err != nil {
				return "", err
			}
			fieldSQL = fp.Render()
		}
		sql, ok := d.Aggregate(strings.ToUpper(agg.Function), fieldSQL)
		if !ok {
			return "", fmt.Errorf("Unknown function or operator")
		}
		projection = append(projection, sql+" AS \""+alias+"\"")
	}

	if len(projection) == 0 {
		return "", fmt.Errorf("Aggregation query must have at least one group by field or aggregated field")
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(projection, ", "))
	b.WriteString(" FROM ")
	b.WriteString(fromClause(cfg, q.Table))
	if len(q.GroupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(groupExprs, ", "))
	}
	if preds := tableDiscriminators(cfg, q.Table); len(preds) > 0 {
		// table discriminators apply as a WHERE, rendered before GROUP BY
		// per invariant 7; rebuild with the predicate inserted at the
		// right position.
		return insertWhereBeforeGroupBy(b.String(), preds), nil
	}
	return b.String(), nil
}

// insertWhereBeforeGroupBy splices a WHERE clause into an already-rendered
// SELECT ... FROM ... [GROUP BY ...] string, ahead of any GROUP BY.
func insertWhereBeforeGroupBy(sql string, preds []string) string {
	where := " WHERE " + strings.Join(preds, " AND ")
	idx := strings.Index(sql, " GROUP BY ")
	if idx == -1 {
		return sql + where
	}
	return sql[:idx] + where + sql[idx:]
}
