package expr

import (
	"testing"

	"github.com/iv-stpn/json-to-sql-parser-sub001/schema"
)

func TestCompileCondBoolLiteral(t *testing.T) {
	c := testCompiler(t, schema.PostgreSQL)
	if sql, err := c.CompileCond(true); err != nil || sql != "TRUE" {
		t.Errorf("CompileCond(true) = %q, %v", sql, err)
	}
	if sql, err := c.CompileCond(false); err != nil || sql != "FALSE" {
		t.Errorf("CompileCond(false) = %q, %v", sql, err)
	}
}

func TestCompileCondImplicitEq(t *testing.T) {
	c := testCompiler(t, schema.PostgreSQL)
	sql, err := c.CompileCond(map[string]any{"users.name": "bob"})
	if err != nil || sql != "users.name = 'bob'" {
		t.Errorf("CompileCond(implicit eq) = %q, %v", sql, err)
	}
}

func TestCompileCondNullEquality(t *testing.T) {
	c := testCompiler(t, schema.PostgreSQL)
	sql, err := c.CompileCond(map[string]any{"users.name": nil})
	if err != nil || sql != "users.name IS NULL" {
		t.Errorf("CompileCond(null eq) = %q, %v", sql, err)
	}
}

func TestCompileCondAndOr(t *testing.T) {
	c := testCompiler(t, schema.PostgreSQL)
	sql, err := c.CompileCond(map[string]any{"$and": []any{
		map[string]any{"users.name": "bob"},
		map[string]any{"users.age": map[string]any{"$gt": float64(18)}},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "(users.name = 'bob' AND users.age > 18)"
	if sql != want {
		t.Errorf("CompileCond($and) = %q, want %q", sql, want)
	}
}

func TestCompileCondEmptyAndFails(t *testing.T) {
	c := testCompiler(t, schema.PostgreSQL)
	if _, err := c.CompileCond(map[string]any{"$and": []any{}}); err == nil {
		t.Errorf("expected an error for an empty $and")
	}
}

func TestCompileCondNot(t *testing.T) {
	c := testCompiler(t, schema.PostgreSQL)
	sql, err := c.CompileCond(map[string]any{"$not": map[string]any{"users.name": "bob"}})
	if err != nil || sql != "NOT (users.name = 'bob')" {
		t.Errorf("CompileCond($not) = %q, %v", sql, err)
	}
}

func TestCompileCondExists(t *testing.T) {
	c := testCompiler(t, schema.PostgreSQL)
	sql, err := c.CompileCond(map[string]any{"$exists": map[string]any{
		"table": "posts",
		"condition": map[string]any{"$and": []any{
			map[string]any{"posts.user_id": map[string]any{"$eq": map[string]any{"$field": "users.id"}}},
			map[string]any{"posts.published": true},
		}},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "EXISTS (SELECT 1 FROM posts WHERE (posts.user_id = users.id AND posts.published = TRUE))"
	if sql != want {
		t.Errorf("CompileCond($exists) = %q, want %q", sql, want)
	}
}

func TestCompileCondUUIDCast(t *testing.T) {
	c := testCompiler(t, schema.PostgreSQL)
	sql, err := c.CompileCond(map[string]any{"users.id": map[string]any{"$eq": map[string]any{"$var": "current_user_id"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "(users.id)::TEXT = '123'"
	if sql != want {
		t.Errorf("CompileCond(uuid eq) = %q, want %q", sql, want)
	}
}

func TestCompileCondIn(t *testing.T) {
	c := testCompiler(t, schema.PostgreSQL)
	sql, err := c.CompileCond(map[string]any{"users.name": map[string]any{"$in": []any{"a", "b"}}})
	if err != nil || sql != "users.name IN ('a', 'b')" {
		t.Errorf("CompileCond($in) = %q, %v", sql, err)
	}
	if _, err := c.CompileCond(map[string]any{"users.name": map[string]any{"$in": []any{}}}); err == nil {
		t.Errorf("expected an error for an empty $in array")
	}
}

func TestCompileCondJSONScalarEquality(t *testing.T) {
	c := testCompiler(t, schema.PostgreSQL)
	sql, err := c.CompileCond(map[string]any{"users.metadata->department": "engineering"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "users.metadata->>'department' = 'engineering'"
	if sql != want {
		t.Errorf("CompileCond(json eq) = %q, want %q", sql, want)
	}
}
