package expr

import (
	"testing"

	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/dialect"
	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/types"
	"github.com/iv-stpn/json-to-sql-parser-sub001/schema"
)

func testCompiler(t *testing.T, d schema.Dialect) *Compiler {
	t.Helper()
	cfg := &schema.Config{
		Dialect: d,
		Tables: map[string]schema.TableSchema{
			"users": {Name: "users", Fields: []schema.Field{
				{Name: "id", Type: schema.TypeUUID},
				{Name: "name", Type: schema.TypeString},
				{Name: "age", Type: schema.TypeNumber},
				{Name: "metadata", Type: schema.TypeObject},
			}},
			"posts": {Name: "posts", Fields: []schema.Field{
				{Name: "id", Type: schema.TypeUUID},
				{Name: "user_id", Type: schema.TypeUUID},
				{Name: "published", Type: schema.TypeBoolean},
			}},
		},
		Variables: map[string]any{"current_user_id": "123"},
		Relationships: []schema.Relationship{
			{Table: "posts", Field: "user_id", ToTable: "users", ToField: "id"},
		},
	}
	dl, err := dialect.New(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return New(cfg, dl)
}

func TestCompileLiteral(t *testing.T) {
	c := testCompiler(t, schema.PostgreSQL)
	sql, typ, err := c.Compile("hello")
	if err != nil || sql != "'hello'" || typ != types.TEXT {
		t.Errorf("Compile(string) = %q, %v, %v", sql, typ, err)
	}
	sql, typ, err = c.Compile(nil)
	if err != nil || sql != "NULL" || typ != types.ANY {
		t.Errorf("Compile(nil) = %q, %v, %v", sql, typ, err)
	}
}

func TestCompileField(t *testing.T) {
	c := testCompiler(t, schema.PostgreSQL)
	sql, typ, err := c.Compile(map[string]any{"$field": "users.name"})
	if err != nil || sql != "users.name" || typ != types.TEXT {
		t.Errorf("Compile($field) = %q, %v, %v", sql, typ, err)
	}
}

func TestCompileVar(t *testing.T) {
	c := testCompiler(t, schema.PostgreSQL)
	sql, typ, err := c.Compile(map[string]any{"$var": "current_user_id"})
	if err != nil || sql != "'123'" || typ != types.TEXT {
		t.Errorf("Compile($var) = %q, %v, %v", sql, typ, err)
	}
	if _, _, err := c.Compile(map[string]any{"$var": "missing"}); err == nil {
		t.Errorf("expected an error for an unknown variable")
	}
}

func TestCompileUUID(t *testing.T) {
	c := testCompiler(t, schema.PostgreSQL)
	sql, typ, err := c.Compile(map[string]any{"$uuid": "6ba7b810-9dad-11d1-80b4-00c04fd430c8"})
	if err != nil || typ != types.UUID {
		t.Fatalf("unexpected error/type: %v %v", err, typ)
	}
	if sql != "'6ba7b810-9dad-11d1-80b4-00c04fd430c8'::UUID" {
		t.Errorf("Compile($uuid) = %q", sql)
	}
	if _, _, err := c.Compile(map[string]any{"$uuid": "not-a-uuid"}); err == nil {
		t.Errorf("expected an error for an invalid UUID")
	}
}

func TestCompileCondExpr(t *testing.T) {
	c := testCompiler(t, schema.PostgreSQL)
	sql, typ, err := c.Compile(map[string]any{"$cond": map[string]any{
		"if":   map[string]any{"users.age": map[string]any{"$ge": float64(18)}},
		"then": "adult",
		"else": "minor",
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "(CASE WHEN users.age >= 18 THEN 'adult' ELSE 'minor' END)"
	if sql != want {
		t.Errorf("Compile($cond) = %q, want %q", sql, want)
	}
	if typ != types.TEXT {
		t.Errorf("unexpected type %v", typ)
	}
}

func TestCompileFuncArithmetic(t *testing.T) {
	c := testCompiler(t, schema.PostgreSQL)
	sql, typ, err := c.Compile(map[string]any{"$func": map[string]any{"ADD": []any{float64(1), float64(2)}}})
	if err != nil || sql != "(1 + 2)" || typ != types.NUMBER {
		t.Errorf("Compile($func ADD) = %q, %v, %v", sql, typ, err)
	}
	if _, _, err := c.Compile(map[string]any{"$func": map[string]any{"DIVIDE": []any{float64(1), float64(0)}}}); err == nil {
		t.Errorf("expected a division-by-zero error")
	}
}

func TestCompileFuncUnknown(t *testing.T) {
	c := testCompiler(t, schema.PostgreSQL)
	if _, _, err := c.Compile(map[string]any{"$func": map[string]any{"SUBSTRING": []any{"x"}}}); err == nil {
		t.Errorf("expected SUBSTRING to be rejected in favour of SUBSTR")
	}
}
