package plan

import (
	"testing"

	"github.com/iv-stpn/json-to-sql-parser-sub001/schema"
)

func testConfig(d schema.Dialect) *schema.Config {
	return &schema.Config{
		Dialect: d,
		Tables: map[string]schema.TableSchema{
			"users": {Name: "users", Fields: []schema.Field{
				{Name: "id", Type: schema.TypeUUID},
				{Name: "name", Type: schema.TypeString},
			}},
			"posts": {Name: "posts", Fields: []schema.Field{
				{Name: "id", Type: schema.TypeUUID},
				{Name: "user_id", Type: schema.TypeUUID},
				{Name: "title", Type: schema.TypeString},
			}},
		},
		Relationships: []schema.Relationship{
			{Table: "posts", Field: "user_id", ToTable: "users", ToField: "id"},
		},
	}
}

func TestBuildSelectOrderBy(t *testing.T) {
	cfg := testConfig(schema.PostgreSQL)
	sql, err := Build(cfg, SelectQuery{
		RootTable: "users",
		Selection: map[string]any{"id": true, "name": true},
		OrderBy:   []OrderField{{Field: "users.name", Direction: "ASC"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `SELECT users.id AS "id", users.name AS "name" FROM users ORDER BY users.name ASC`
	if sql != want {
		t.Errorf("Build() = %q, want %q", sql, want)
	}
}

func TestBuildSelectOffsetWithoutLimitSQLite(t *testing.T) {
	cfg := testConfig(schema.SQLiteExtensions)
	offset := 10
	sql, err := Build(cfg, SelectQuery{
		RootTable:  "users",
		Selection:  map[string]any{"id": true},
		Pagination: &Pagination{Offset: &offset},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := sql; !contains(got, "LIMIT -1 OFFSET 10") {
		t.Errorf("Build() = %q, expected it to contain LIMIT -1 OFFSET 10", got)
	}
}

func TestBuildSelectEmptySelectionFails(t *testing.T) {
	cfg := testConfig(schema.PostgreSQL)
	if _, err := Build(cfg, SelectQuery{RootTable: "users", Selection: map[string]any{}}); err == nil {
		t.Errorf("expected an error for an empty selection")
	}
}

func TestBuildSelectNestedJoin(t *testing.T) {
	cfg := testConfig(schema.PostgreSQL)
	sql, err := Build(cfg, SelectQuery{
		RootTable: "users",
		Selection: map[string]any{
			"id": true,
			"posts": map[string]any{
				"title": true,
			},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `SELECT users.id AS "id", posts.title AS "posts.title" FROM users LEFT JOIN posts ON users.id = posts.user_id`
	if sql != want {
		t.Errorf("Build() = %q, want %q", sql, want)
	}
}

func TestBuildSelectUnknownRelationshipFails(t *testing.T) {
	cfg := testConfig(schema.PostgreSQL)
	cfg.Relationships = nil
	_, err := Build(cfg, SelectQuery{
		RootTable: "users",
		Selection: map[string]any{"id": true, "posts": map[string]any{"title": true}},
	})
	if err == nil {
		t.Errorf("expected an error when no relationship links users and posts")
	}
}

func contains(s, substr string) bool {
	return len(s) >= len(substr) && (func() bool {
		for i := 0; i+len(substr) <= len(s); i++ {
			if s[i:i+len(substr)] == substr {
				return true
			}
		}
		return false
	})()
}
