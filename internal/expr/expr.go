// Package expr implements the spec's expression compiler (component D)
// and, in cond.go, the condition compiler (component E). Both are
// recursive type-directed walkers over the same kind of dynamically-typed
// nested data spec.md describes ({$field: ...}, {$eq: ...}, …) — the shape
// you get back from decoding the caller's query JSON into `any` with the
// standard library. That mirrors graphjin's core/internal/qcode/exp.go,
// which walks a parsed-but-still-generic *graph.Node tree and dispatches
// on its tag name exactly the same way (see Design Notes, "dynamic tagged
// objects").
//
// Per the Design Notes' second option ("carry the inferred type as an
// output of the recursive compile, a tuple (sql, type)"), this compiler
// does not maintain a separate identity-keyed ExpressionTypeMap: each
// Compile call already returns the node's type directly to its caller,
// which is the Go-idiomatic way to thread that information through a
// single-pass recursive walk without relying on pointer equality over
// values that, here, are plain `any` (maps/slices aren't valid hash keys
// in Go, so a literal ExpressionTypeMap would need its own identity
// scheme anyway). See DESIGN.md.
package expr

import (
	"fmt"
	"strings"

	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/datatable"
	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/dialect"
	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/lex"
	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/types"
	"github.com/iv-stpn/json-to-sql-parser-sub001/schema"
)

// Compiler holds everything a single compile needs: the schema lookup
// (possibly a mutation NEW_ROW overlay, see internal/mutate) and the
// target dialect. A Compiler is not safe for concurrent compiles that
// share state (spec §5); build a fresh one per compile.
type Compiler struct {
	Lookup  schema.TableLookup
	Dialect dialect.Dialect
}

// New builds a Compiler over lookup/dialect.
func New(lookup schema.TableLookup, d dialect.Dialect) *Compiler {
	return &Compiler{Lookup: lookup, Dialect: d}
}

// asTaggedObject type-asserts a single-key tagged object and returns its one
// key/value pair, failing if the object doesn't have exactly one key.
func asTaggedObject(in any) (string, any, bool) {
	m, ok := in.(map[string]any)
	if !ok || len(m) != 1 {
		return "", nil, false
	}
	for k, v := range m {
		return k, v, true
	}
	return "", nil, false
}

// Compile renders in (expected to be an expression-shaped value, §4.D) as
// a value-site SQL fragment and returns its inferred type.
func (c *Compiler) Compile(in any) (string, types.ExpressionType, error) {
	if tag, val, ok := asTaggedObject(in); ok && strings.HasPrefix(tag, "$") {
		switch tag {
		case "$field":
			return c.compileField(val)
		case "$var":
			return c.compileVar(val)
		case "$uuid":
			return c.compileUUID(val)
		case "$date":
			return c.compileDate(val)
		case "$timestamp":
			return c.compileTimestamp(val)
		case "$jsonb":
			return c.compileJSONB(val)
		case "$cond":
			return c.compileCondExpr(val)
		case "$func":
			return c.compileFunc(val)
		}
	}
	return c.compileLiteral(in)
}

func (c *Compiler) compileLiteral(in any) (string, types.ExpressionType, error) {
	switch v := in.(type) {
	case nil:
		return lex.EscapeNull(), types.ANY, nil
	case string:
		return lex.EscapeString(v), types.TEXT, nil
	case bool:
		return lex.EscapeBool(v), types.BOOLEAN, nil
	case float64:
		s, err := lex.EscapeNumber(v)
		if err != nil {
			return "", types.ANY, err
		}
		return s, types.NUMBER, nil
	case int:
		s, err := lex.EscapeNumber(float64(v))
		if err != nil {
			return "", types.ANY, err
		}
		return s, types.NUMBER, nil
	case map[string]any:
		return "", types.ANY, fmt.Errorf("$expr must contain exactly one function")
	default:
		return "", types.ANY, fmt.Errorf("unsupported expression value %v (%T)", v, v)
	}
}

func fieldExprType(ft schema.FieldType) types.ExpressionType {
	switch ft {
	case schema.TypeUUID:
		return types.UUID
	case schema.TypeNumber:
		return types.NUMBER
	case schema.TypeBoolean:
		return types.BOOLEAN
	case schema.TypeDateTime:
		return types.TIMESTAMP
	case schema.TypeDate:
		return types.DATE
	case schema.TypeObject:
		return types.JSON
	default:
		return types.TEXT
	}
}

func (c *Compiler) compileField(val any) (string, types.ExpressionType, error) {
	path, ok := val.(string)
	if !ok {
		return "", types.ANY, fmt.Errorf("$field requires a string path")
	}
	fp, err := datatable.ResolveField(path, c.Lookup)
	if err != nil {
		return "", types.ANY, err
	}
	sql := fp.Render()
	if fp.IsScalarJSON() {
		return sql, types.TEXT, nil
	}
	return sql, fieldExprType(fp.FieldConfig.Type), nil
}

func (c *Compiler) compileVar(val any) (string, types.ExpressionType, error) {
	name, ok := val.(string)
	if !ok {
		return "", types.ANY, fmt.Errorf("$var requires a string name")
	}
	v, ok := c.Lookup.LookupVariable(name)
	if !ok {
		return "", types.ANY, fmt.Errorf("Variable '%s' is not allowed or does not exist", name)
	}
	switch tv := v.(type) {
	case nil:
		return lex.EscapeNull(), types.ANY, nil
	case string:
		return lex.EscapeString(tv), types.TEXT, nil
	case bool:
		return lex.EscapeBool(tv), types.BOOLEAN, nil
	case float64:
		s, err := lex.EscapeNumber(tv)
		if err != nil {
			return "", types.ANY, err
		}
		return s, types.NUMBER, nil
	case int:
		s, err := lex.EscapeNumber(float64(tv))
		if err != nil {
			return "", types.ANY, err
		}
		return s, types.NUMBER, nil
	default:
		return "", types.ANY, fmt.Errorf("unsupported variable value type %T for '%s'", v, name)
	}
}

func (c *Compiler) compileUUID(val any) (string, types.ExpressionType, error) {
	s, ok := val.(string)
	if !ok {
		return "", types.ANY, fmt.Errorf("Invalid UUID format")
	}
	if err := validateUUID(s); err != nil {
		return "", types.ANY, err
	}
	return c.Dialect.UUIDLiteral(lex.EscapeString(s)), types.UUID, nil
}

func (c *Compiler) compileDate(val any) (string, types.ExpressionType, error) {
	s, ok := val.(string)
	if !ok {
		return "", types.ANY, fmt.Errorf("Invalid date format")
	}
	if err := validateDate(s); err != nil {
		return "", types.ANY, err
	}
	return c.Dialect.DateLiteral(lex.EscapeString(s)), types.DATE, nil
}

func (c *Compiler) compileTimestamp(val any) (string, types.ExpressionType, error) {
	s, ok := val.(string)
	if !ok {
		return "", types.ANY, fmt.Errorf("Invalid timestamp format")
	}
	normalized, err := validateTimestamp(s)
	if err != nil {
		return "", types.ANY, err
	}
	return c.Dialect.TimestampLiteral(lex.EscapeString(normalized)), types.TIMESTAMP, nil
}

func (c *Compiler) compileJSONB(val any) (string, types.ExpressionType, error) {
	raw, err := marshalJSON(val)
	if err != nil {
		return "", types.ANY, fmt.Errorf("failed to serialize $jsonb value: %w", err)
	}
	return c.Dialect.JSONBLiteral(lex.EscapeString(raw)), types.JSON, nil
}

func (c *Compiler) compileCondExpr(val any) (string, types.ExpressionType, error) {
	m, ok := val.(map[string]any)
	if !ok {
		return "", types.ANY, fmt.Errorf("$cond requires an object with if/then/else")
	}
	condSQL, err := c.CompileCond(m["if"])
	if err != nil {
		return "", types.ANY, err
	}
	thenSQL, thenType, err := c.Compile(m["then"])
	if err != nil {
		return "", types.ANY, err
	}
	elseSQL, elseType, err := c.Compile(m["else"])
	if err != nil {
		return "", types.ANY, err
	}
	var b strings.Builder
	b.WriteString("(CASE WHEN ")
	b.WriteString(condSQL)
	b.WriteString(" THEN ")
	b.WriteString(thenSQL)
	b.WriteString(" ELSE ")
	b.WriteString(elseSQL)
	b.WriteString(" END)")
	return b.String(), types.Unify(thenType, elseType), nil
}
