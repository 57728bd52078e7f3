// cond.go implements the spec's condition compiler (component E):
// logical combinators, comparison operators, $exists subqueries,
// null-aware equality and the field-shorthand form. Grounded on the same
// qcode/exp.go walker as expr.go — graphjin's where-input compiler
// matches boolean-combinator keys before falling through to per-column
// comparison handling exactly in the order §4.E lists.
package expr

import (
	"fmt"
	"strings"

	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/datatable"
	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/fieldpath"
	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/types"
	"github.com/iv-stpn/json-to-sql-parser-sub001/schema"
)

var fieldOps = map[string]bool{
	"$eq": true, "$ne": true, "$lt": true, "$le": true, "$gt": true, "$ge": true,
	"$in": true, "$nin": true, "$like": true, "$regex": true,
}

func isOperatorMap(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	for k := range m {
		if !fieldOps[k] {
			return false
		}
	}
	return true
}

// CompileCond renders in (expected to be a condition-shaped value, §4.E)
// as a boolean SQL fragment.
func (c *Compiler) CompileCond(in any) (string, error) {
	switch v := in.(type) {
	case bool:
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	case map[string]any:
		if len(v) == 0 {
			return "", fmt.Errorf("condition object must not be empty")
		}
		if len(v) == 1 {
			for k, val := range v {
				switch k {
				case "$and":
					return c.compileAndOr(val, " AND ", "$and")
				case "$or":
					return c.compileAndOr(val, " OR ", "$or")
				case "$not":
					inner, err := c.CompileCond(val)
					if err != nil {
						return "", err
					}
					return "NOT (" + inner + ")", nil
				case "$exists":
					return c.compileExists(val)
				}
			}
		}
		return c.compileImplicitAnd(v)
	default:
		return "", fmt.Errorf("invalid condition value %v (%T)", v, v)
	}
}

func (c *Compiler) compileImplicitAnd(m map[string]any) (string, error) {
	keys := sortedKeys(m)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		val := m[k]
		var sql string
		var err error
		switch k {
		case "$and":
			sql, err = c.compileAndOr(val, " AND ", "$and")
		case "$or":
			sql, err = c.compileAndOr(val, " OR ", "$or")
		case "$not":
			var inner string
			inner, err = c.CompileCond(val)
			if err == nil {
				sql = "NOT (" + inner + ")"
			}
		case "$exists":
			sql, err = c.compileExists(val)
		default:
			sql, err = c.compileFieldPredicate(k, val)
		}
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " AND ") + ")", nil
}

func (c *Compiler) compileAndOr(val any, sep, name string) (string, error) {
	items, ok := val.([]any)
	if !ok {
		return "", fmt.Errorf("%s requires an array of conditions", name)
	}
	if len(items) == 0 {
		return "", fmt.Errorf("No conditions provided for %s condition", name)
	}
	parts := make([]string, len(items))
	for i, it := range items {
		sql, err := c.CompileCond(it)
		if err != nil {
			return "", err
		}
		parts[i] = sql
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

// compileExists implements EXISTS (SELECT 1 FROM subTable WHERE
// subCondition) (§4.E item 4). The sub-condition compiles against the
// same Compiler (and thus the same outer-scope schema lookup) so a
// correlated field reference like {$field: "outer.id"} resolves exactly
// as it would anywhere else — field paths are always fully table-qualified
// in this compiler, so there is no separate "current table" to rebind.
func (c *Compiler) compileExists(val any) (string, error) {
	m, ok := val.(map[string]any)
	if !ok {
		return "", fmt.Errorf("$exists requires an object with table/condition")
	}
	tableName, ok := m["table"].(string)
	if !ok {
		return "", fmt.Errorf("$exists requires a string table name")
	}
	if _, ok := c.Lookup.LookupTable(tableName); !ok {
		return "", fmt.Errorf("Table '%s' is not allowed or does not exist", tableName)
	}
	condSQL, err := c.CompileCond(m["condition"])
	if err != nil {
		return "", err
	}
	from := tableName
	if dt := c.Lookup.DataTableOf(); dt != nil {
		from = datatable.PhysicalFrom(dt, tableName)
		preds := append([]string{datatable.Discriminator(dt, tableName)}, datatable.ExtraPredicates(dt, tableName)...)
		condSQL += " AND " + strings.Join(preds, " AND ")
	}
	return "EXISTS (SELECT 1 FROM " + from + " WHERE " + condSQL + ")", nil
}

func (c *Compiler) compileFieldPredicate(key string, val any) (string, error) {
	fp, err := datatable.ResolveField(key, c.Lookup)
	if err != nil {
		return "", err
	}
	if m, ok := val.(map[string]any); ok && isOperatorMap(m) {
		keys := sortedKeys(m)
		parts := make([]string, 0, len(keys))
		for _, op := range keys {
			sql, err := c.compileFieldOp(fp, op, m[op])
			if err != nil {
				return "", err
			}
			parts = append(parts, sql)
		}
		if len(parts) == 1 {
			return parts[0], nil
		}
		return "(" + strings.Join(parts, " AND ") + ")", nil
	}
	return c.compileFieldOp(fp, "$eq", val)
}

// castField implements the §4.E cast rules: a JSON-extracted text field
// compared against a typed literal gets cast to that type, and a UUID
// field compared against plain text gets cast to TEXT (the invariant
// chosen to resolve the corpus's inconsistent UUID-cast behaviour, spec
// §9 Open Questions — plain equality is used instead whenever the
// counter-side is itself a $uuid-typed expression).
func (c *Compiler) castField(fp *fieldpath.FieldPath, rhsType types.ExpressionType) string {
	sql := fp.Render()
	if fp.FieldConfig.Type == schema.TypeUUID && rhsType == types.TEXT {
		return c.Dialect.Cast(sql, types.TEXT)
	}
	if fp.IsScalarJSON() && (rhsType == types.BOOLEAN || rhsType == types.NUMBER) {
		return c.Dialect.Cast(sql, rhsType)
	}
	return sql
}

func (c *Compiler) compileFieldOp(fp *fieldpath.FieldPath, op string, rhs any) (string, error) {
	switch op {
	case "$eq", "$ne":
		return c.compileEqNe(fp, op, rhs)
	case "$lt", "$le", "$gt", "$ge":
		return c.compileCompare(fp, op, rhs)
	case "$in", "$nin":
		return c.compileInNin(fp, op, rhs)
	case "$like":
		return c.compileLikeRegex(fp, "LIKE", rhs)
	case "$regex":
		return c.compileLikeRegex(fp, c.Dialect.RegexOperator(), rhs)
	default:
		return "", fmt.Errorf("unknown operator: %s", op)
	}
}

func (c *Compiler) compileEqNe(fp *fieldpath.FieldPath, op string, rhs any) (string, error) {
	if rhs == nil {
		sql := fp.Render()
		if op == "$eq" {
			return sql + " IS NULL", nil
		}
		return sql + " IS NOT NULL", nil
	}
	rhsSQL, rhsType, err := c.Compile(rhs)
	if err != nil {
		return "", err
	}
	lhs := c.castField(fp, rhsType)
	symbol := "="
	if op == "$ne" {
		symbol = "!="
	}
	return lhs + " " + symbol + " " + rhsSQL, nil
}

var compareSymbols = map[string]string{"$lt": "<", "$le": "<=", "$gt": ">", "$ge": ">="}

func (c *Compiler) compileCompare(fp *fieldpath.FieldPath, op string, rhs any) (string, error) {
	rhsSQL, rhsType, err := c.Compile(rhs)
	if err != nil {
		return "", err
	}
	lhs := c.castField(fp, rhsType)
	return lhs + " " + compareSymbols[op] + " " + rhsSQL, nil
}

func homogeneousType(items []any) (types.ExpressionType, error) {
	var t types.ExpressionType
	for i, it := range items {
		var cur types.ExpressionType
		switch it.(type) {
		case string:
			cur = types.TEXT
		case float64:
			cur = types.NUMBER
		case int:
			cur = types.NUMBER
		case bool:
			cur = types.BOOLEAN
		default:
			return types.ANY, fmt.Errorf("array elements must be homogeneous primitive values")
		}
		if i == 0 {
			t = cur
		} else if cur != t {
			return types.ANY, fmt.Errorf("array elements must be of a single primitive type")
		}
	}
	return t, nil
}

func (c *Compiler) compileInNin(fp *fieldpath.FieldPath, op string, rhs any) (string, error) {
	label := "IN"
	if op == "$nin" {
		label = "NOT IN"
	}
	items, ok := rhs.([]any)
	if !ok {
		return "", fmt.Errorf("Operator '%s' requires an array", label)
	}
	if len(items) == 0 {
		return "", fmt.Errorf("Operator '%s' requires a non-empty array", label)
	}
	elemType, err := homogeneousType(items)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(items))
	for i, it := range items {
		sql, _, err := c.Compile(it)
		if err != nil {
			return "", err
		}
		parts[i] = sql
	}
	lhs := c.castField(fp, elemType)
	return lhs + " " + label + " (" + strings.Join(parts, ", ") + ")", nil
}

func (c *Compiler) compileLikeRegex(fp *fieldpath.FieldPath, operator string, rhs any) (string, error) {
	rhsSQL, rhsType, err := c.Compile(rhs)
	if err != nil {
		return "", err
	}
	lhs := c.castField(fp, rhsType)
	return lhs + " " + operator + " " + rhsSQL, nil
}
