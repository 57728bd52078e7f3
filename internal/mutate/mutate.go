// Package mutate implements the mutation partial evaluator (component H):
// insert/update/delete compilation, binding the reserved NEW_ROW table to
// the mutation's target schema and folding any condition subtree that
// depends on it against the literal input row. Grounded on graphjin's
// core/internal/psql/insert.go and update.go (the column/value rendering
// and ON CONFLICT-free insert shape), with the NEW_ROW overlay itself
// grounded on the spec's own canonical redesign of the source's mutable
// global table slot into a per-compile wrapper — see DESIGN.md.
package mutate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/dialect"
	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/expr"
	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/lex"
	"github.com/iv-stpn/json-to-sql-parser-sub001/schema"
)

// RowOverlay implements schema.TableLookup, shadowing NEW_ROW with the
// mutation target's own schema without mutating the caller's Config (spec
// §9 Design Notes, "Global mutable NEW_ROW slot").
type RowOverlay struct {
	Parent schema.TableLookup
	NewRow schema.TableSchema
}

func (o *RowOverlay) LookupTable(name string) (schema.TableSchema, bool) {
	if name == "NEW_ROW" {
		return o.NewRow, true
	}
	return o.Parent.LookupTable(name)
}

func (o *RowOverlay) LookupVariable(name string) (any, bool) { return o.Parent.LookupVariable(name) }
func (o *RowOverlay) DialectOf() schema.Dialect               { return o.Parent.DialectOf() }
func (o *RowOverlay) DataTableOf() *schema.DataTableConfig    { return o.Parent.DataTableOf() }
func (o *RowOverlay) RelationshipList() []schema.Relationship {
	return o.Parent.RelationshipList()
}

// InsertQuery is the insert planner's input shape (spec §6).
type InsertQuery struct {
	Table     string
	NewRow    map[string]any
	Condition any
}

// UpdateQuery is the update planner's input shape (spec §6).
type UpdateQuery struct {
	Table     string
	Updates   map[string]any
	Condition any
}

// DeleteQuery is the delete planner's input shape (spec §6).
type DeleteQuery struct {
	Table     string
	Condition any
}

func sortedStrKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// autoConvert implements the value auto-conversion rule (§4.H): a raw
// string bound to a uuid-typed field is wrapped as {$uuid: value} so
// validation and the dialect's UUID cast apply.
func autoConvert(field schema.Field, val any) any {
	if field.Type == schema.TypeUUID {
		if s, ok := val.(string); ok {
			return map[string]any{"$uuid": s}
		}
	}
	return val
}

func newCompiler(cfg *schema.Config, overlay *RowOverlay) (*expr.Compiler, error) {
	d, err := dialect.New(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	return expr.New(overlay, d), nil
}

// BuildInsert compiles an InsertQuery into a SQL string (component H).
func BuildInsert(cfg *schema.Config, q InsertQuery) (string, error) {
	table, ok := cfg.LookupTable(q.Table)
	if !ok {
		return "", fmt.Errorf("Table '%s' is not allowed or does not exist", q.Table)
	}
	overlay := &RowOverlay{Parent: cfg, NewRow: table}
	c, err := newCompiler(cfg, overlay)
	if err != nil {
		return "", err
	}

	env := &environment{table: q.Table, values: map[string]any{}, updated: map[string]bool{}, variables: cfg.Variables}
	for _, f := range table.Fields {
		if v, ok := q.NewRow[f.Name]; ok {
			env.values[f.Name] = v
			env.updated[f.Name] = true
		} else if f.Default != nil {
			env.values[f.Name] = f.Default
			env.updated[f.Name] = true
		}
	}

	if q.Condition != nil {
		folded := partialEvalCond(q.Condition, env)
		if b, ok := folded.(bool); ok {
			if !b {
				return "", fmt.Errorf("Insert condition not met.")
			}
		} else {
			return "", fmt.Errorf("insert condition could not be fully evaluated against the new row")
		}
	}

	cols := sortedStrKeys(env.values)
	colSQL := make([]string, 0, len(cols))
	valSQL := make([]string, 0, len(cols))
	for _, name := range cols {
		field, _ := table.Field(name)
		val := autoConvert(field, env.values[name])
		sql, _, err := c.Compile(val)
		if err != nil {
			return "", err
		}
		colSQL = append(colSQL, lex.DoubleQuote(name))
		valSQL = append(valSQL, sql)
	}

	return "INSERT INTO " + q.Table + " (" + strings.Join(colSQL, ", ") + ") VALUES (" + strings.Join(valSQL, ", ") + ")", nil
}

// BuildUpdate compiles an UpdateQuery into a SQL string (component H).
func BuildUpdate(cfg *schema.Config, q UpdateQuery) (string, error) {
	table, ok := cfg.LookupTable(q.Table)
	if !ok {
		return "", fmt.Errorf("Table '%s' is not allowed or does not exist", q.Table)
	}
	overlay := &RowOverlay{Parent: cfg, NewRow: table}
	c, err := newCompiler(cfg, overlay)
	if err != nil {
		return "", err
	}

	env := &environment{table: q.Table, values: map[string]any{}, updated: map[string]bool{}, variables: cfg.Variables}
	for _, f := range table.Fields {
		if v, ok := q.Updates[f.Name]; ok {
			env.values[f.Name] = v
			env.updated[f.Name] = true
		}
	}

	var whereSQL string
	hasWhere := false
	if q.Condition != nil {
		folded := partialEvalCond(q.Condition, env)
		if b, ok := folded.(bool); ok {
			if !b {
				return "", fmt.Errorf("Update condition not met.")
			}
		} else {
			sql, err := c.CompileCond(folded)
			if err != nil {
				return "", err
			}
			whereSQL = sql
			hasWhere = true
		}
	}

	cols := sortedStrKeys(q.Updates)
	if len(cols) == 0 {
		return "", fmt.Errorf("update query must set at least one field")
	}
	assignments := make([]string, 0, len(cols))
	for _, name := range cols {
		field, ok := table.Field(name)
		if !ok {
			return "", fmt.Errorf("Field '%s' is not allowed or does not exist in '%s'", name, q.Table)
		}
		val := autoConvert(field, q.Updates[name])
		sql, _, err := c.Compile(val)
		if err != nil {
			return "", err
		}
		assignments = append(assignments, lex.DoubleQuote(name)+" = "+sql)
	}

	stmt := "UPDATE " + q.Table + " SET " + strings.Join(assignments, ", ")
	if hasWhere {
		stmt += " WHERE " + whereSQL
	}
	return stmt, nil
}

// BuildDelete compiles a DeleteQuery into a SQL string (component H).
func BuildDelete(cfg *schema.Config, q DeleteQuery) (string, error) {
	if _, ok := cfg.LookupTable(q.Table); !ok {
		return "", fmt.Errorf("Table '%s' is not allowed or does not exist", q.Table)
	}
	d, err := dialect.New(cfg.Dialect)
	if err != nil {
		return "", err
	}
	c := expr.New(cfg, d)

	stmt := "DELETE FROM " + q.Table
	if q.Condition != nil {
		sql, err := c.CompileCond(q.Condition)
		if err != nil {
			return "", err
		}
		stmt += " WHERE " + sql
	}
	return stmt, nil
}
