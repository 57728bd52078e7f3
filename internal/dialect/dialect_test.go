package dialect

import (
	"testing"

	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/types"
	"github.com/iv-stpn/json-to-sql-parser-sub001/schema"
)

func TestNewUnsupportedDialect(t *testing.T) {
	if _, err := New(schema.Dialect(99)); err == nil {
		t.Fatalf("expected an error for an unsupported dialect")
	}
}

func TestPostgresLiteralsAndCast(t *testing.T) {
	d, err := New(schema.PostgreSQL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := d.UUIDLiteral("'123'"), "'123'::UUID"; got != want {
		t.Errorf("UUIDLiteral() = %q, want %q", got, want)
	}
	if got, want := d.Cast("users.id", types.TEXT), "(users.id)::TEXT"; got != want {
		t.Errorf("Cast() = %q, want %q", got, want)
	}
	if sql, ok := d.Aggregate("STRING_AGG", "users.name"); !ok || sql != "STRING_AGG(users.name, ',')" {
		t.Errorf("Aggregate(STRING_AGG) = %q, %v", sql, ok)
	}
	if d.RegexOperator() != "~" {
		t.Errorf("unexpected regex operator %q", d.RegexOperator())
	}
}

func TestPostgresLimitOffset(t *testing.T) {
	d, _ := New(schema.PostgreSQL)
	ten := 10
	if got := d.RenderLimitOffset(&ten, nil); got != "LIMIT 10" {
		t.Errorf("RenderLimitOffset(limit) = %q", got)
	}
	if got := d.RenderLimitOffset(nil, &ten); got != "OFFSET 10" {
		t.Errorf("RenderLimitOffset(offset) = %q", got)
	}
	if got := d.RenderLimitOffset(nil, nil); got != "" {
		t.Errorf("RenderLimitOffset(none) = %q", got)
	}
}

func TestSQLiteOffsetWithoutLimit(t *testing.T) {
	d, err := New(schema.SQLiteExtensions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ten := 10
	got := d.RenderLimitOffset(nil, &ten)
	want := "LIMIT -1 OFFSET 10"
	if got != want {
		t.Errorf("RenderLimitOffset() = %q, want %q", got, want)
	}
}

func TestSQLiteAggregateStringAgg(t *testing.T) {
	d, _ := New(schema.SQLiteExtensions)
	sql, ok := d.Aggregate("STRING_AGG", "posts.title")
	if !ok || sql != "GROUP_CONCAT(posts.title, ',')" {
		t.Errorf("Aggregate(STRING_AGG) = %q, %v", sql, ok)
	}
}

func TestUnknownAggregate(t *testing.T) {
	d, _ := New(schema.PostgreSQL)
	if _, ok := d.Aggregate("MEDIAN", "x"); ok {
		t.Errorf("expected MEDIAN to be an unknown aggregate")
	}
}
