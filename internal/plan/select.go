// Package plan implements the select and aggregate planners (components F
// and G): turning a nested selection plus condition/order/pagination
// input into FROM/JOIN/WHERE/ORDER BY/LIMIT/OFFSET clauses. Grounded on
// graphjin's core/internal/qcode/qcode.go (the selector graph walk that
// discovers joins from a nested query document) and
// core/internal/psql/query.go (the clause-ordering renderer), both
// generalized here to the closed, relationship-table-driven join
// discovery this spec describes instead of graphjin's GraphQL-derived
// selector tree.
package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/datatable"
	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/dialect"
	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/expr"
	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/lex"
	"github.com/iv-stpn/json-to-sql-parser-sub001/schema"
)

// OrderField is one entry of a SelectQuery's orderBy list (§4.F step 5).
type OrderField struct {
	Field     string
	Direction string
}

// Pagination is a SelectQuery's limit/offset input (§4.F step 6).
type Pagination struct {
	Limit  *int
	Offset *int
}

// SelectQuery is the planner's input shape (spec §6).
type SelectQuery struct {
	RootTable  string
	Selection  map[string]any
	Condition  any
	OrderBy    []OrderField
	Pagination *Pagination
}

// state accumulates the pieces of the final SELECT as the selection tree
// is walked.
type state struct {
	cfg        *schema.Config
	compiler   *expr.Compiler
	projection []string
	joins      []string
	joinSeen   map[string]bool
}

// findRelationship looks up the declared relationship linking current and
// target, checked symmetrically (spec §3: relationships are traversable
// from either side) via Relationship.Reverse.
func findRelationship(rels []schema.Relationship, current, target string) (curCol, targetCol string, ok bool) {
	for _, r := range rels {
		if r.Table == current && r.ToTable == target {
			return r.Field, r.ToField, true
		}
		rev := r.Reverse()
		if rev.Table == current && rev.ToTable == target {
			return rev.Field, rev.ToField, true
		}
	}
	return "", "", false
}

// fromClause renders the FROM reference for a table, switching to the
// physical document table when data-table rewriting is active (§4.I).
func fromClause(cfg *schema.Config, table string) string {
	if dt := cfg.DataTable; dt != nil {
		return datatable.PhysicalFrom(dt, table)
	}
	return table
}

// tableDiscriminators renders the extra WHERE predicates a data-table
// reference to table (aliased as table) must inject.
func tableDiscriminators(cfg *schema.Config, table string) []string {
	dt := cfg.DataTable
	if dt == nil {
		return nil
	}
	preds := []string{datatable.Discriminator(dt, table)}
	preds = append(preds, datatable.ExtraPredicates(dt, table)...)
	return preds
}

// Build compiles a SelectQuery into a SQL string (component F).
func Build(cfg *schema.Config, q SelectQuery) (string, error) {
	d, err := dialect.New(cfg.Dialect)
	if err != nil {
		return "", err
	}
	if _, ok := cfg.LookupTable(q.RootTable); !ok {
		return "", fmt.Errorf("Table '%s' is not allowed or does not exist", q.RootTable)
	}
	if len(q.Selection) == 0 {
		return "", fmt.Errorf("Selection cannot be empty")
	}

	st := &state{cfg: cfg, compiler: expr.New(cfg, d), joinSeen: map[string]bool{}}
	if err := st.walkSelection(q.RootTable, q.Selection, ""); err != nil {
		return "", err
	}

	extraWhere := tableDiscriminators(cfg, q.RootTable)

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(st.projection, ", "))
	b.WriteString(" FROM ")
	b.WriteString(fromClause(cfg, q.RootTable))
	for _, j := range st.joins {
		b.WriteString(" LEFT JOIN ")
		b.WriteString(j)
	}

	whereParts := make([]string, 0, len(extraWhere)+1)
	if q.Condition != nil {
		condSQL, err := st.compiler.CompileCond(q.Condition)
		if err != nil {
			return "", err
		}
		whereParts = append(whereParts, condSQL)
	}
	whereParts = append(whereParts, extraWhere...)
	if len(whereParts) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(whereParts, " AND "))
	}

	if len(q.OrderBy) > 0 {
		orderParts := make([]string, len(q.OrderBy))
		for i, o := range q.OrderBy {
			fp, err := datatable.ResolveField(o.Field, cfg)
			if err != nil {
				return "", err
			}
			dir := strings.ToUpper(o.Direction)
			if dir == "" {
				dir = "ASC"
			}
			orderParts[i] = fp.Render() + " " + dir
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(orderParts, ", "))
	}

	if q.Pagination != nil {
		if clause := d.RenderLimitOffset(q.Pagination.Limit, q.Pagination.Offset); clause != "" {
			b.WriteString(" ")
			b.WriteString(clause)
		}
	}

	return b.String(), nil
}

// walkSelection implements §4.F step 2: sorted-key traversal of a
// selection object against currentTable, projecting scalar fields and
// expressions and recursing into related tables via joins. prefix is the
// dotted alias prefix accumulated from enclosing nested selections.
func (st *state) walkSelection(currentTable string, sel map[string]any, prefix string) error {
	table, ok := st.cfg.LookupTable(currentTable)
	if !ok {
		return fmt.Errorf("Table '%s' is not allowed or does not exist", currentTable)
	}

	keys := make([]string, 0, len(sel))
	for k := range sel {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		val := sel[key]
		alias := key
		if prefix != "" {
			alias = prefix + "." + key
		}

		if declared, isTrue := val.(bool); isTrue {
			if !declared {
				continue
			}
			if _, ok := table.Field(key); !ok {
				return fmt.Errorf("Field '%s' is not allowed or does not exist in '%s'", key, currentTable)
			}
			fp, err := datatable.ResolveField(currentTable+"."+key, st.cfg)
			if err != nil {
				return err
			}
			st.projection = append(st.projection, fp.Render()+" AS "+lex.DoubleQuote(alias))
			continue
		}

		if m, ok := val.(map[string]any); ok {
			if isTaggedExpr(m) {
				sql, _, err := st.compiler.Compile(m)
				if err != nil {
					return err
				}
				st.projection = append(st.projection, sql+" AS "+lex.DoubleQuote(alias))
				continue
			}
			rels := st.cfg.Relationships
			curCol, targetCol, found := findRelationship(rels, currentTable, key)
			if !found {
				return fmt.Errorf("No relationship found between '%s' and '%s'", currentTable, key)
			}
			if err := st.addJoin(currentTable, curCol, key, targetCol); err != nil {
				return err
			}
			if err := st.walkSelection(key, m, alias); err != nil {
				return err
			}
			continue
		}

		return fmt.Errorf("selection entry %q must be true, an expression, or a nested selection", key)
	}

	if len(st.projection) == 0 {
		return fmt.Errorf("Selection cannot be empty")
	}
	return nil
}

// isTaggedExpr reports whether m is a single-key {$tag: ...} expression
// rather than a nested table selection.
func isTaggedExpr(m map[string]any) bool {
	if len(m) != 1 {
		return false
	}
	for k := range m {
		return strings.HasPrefix(k, "$")
	}
	return false
}

// addJoin records a deduplicated LEFT JOIN from currentTable to
// target (§8.3: every join text appears at most once).
func (st *state) addJoin(currentTable, curCol, target, targetCol string) error {
	if _, ok := st.cfg.LookupTable(target); !ok {
		return fmt.Errorf("Table '%s' is not allowed or does not exist", target)
	}
	curFP, err := datatable.ResolveField(currentTable+"."+curCol, st.cfg)
	if err != nil {
		return err
	}
	targetFP, err := datatable.ResolveField(target+"."+targetCol, st.cfg)
	if err != nil {
		return err
	}
	onClause := curFP.Render() + " = " + targetFP.Render()
	text := fromClause(st.cfg, target) + " ON " + onClause
	preds := tableDiscriminators(st.cfg, target)
	if len(preds) > 0 {
		text += " AND " + strings.Join(preds, " AND ")
	}
	if st.joinSeen[text] {
		return nil
	}
	st.joinSeen[text] = true
	st.joins = append(st.joins, text)
	return nil
}
