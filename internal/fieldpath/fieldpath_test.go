package fieldpath

import (
	"testing"

	"github.com/iv-stpn/json-to-sql-parser-sub001/schema"
)

func testConfig() *schema.Config {
	return &schema.Config{
		Dialect: schema.PostgreSQL,
		Tables: map[string]schema.TableSchema{
			"users": {Name: "users", Fields: []schema.Field{
				{Name: "id", Type: schema.TypeUUID},
				{Name: "name", Type: schema.TypeString},
				{Name: "metadata", Type: schema.TypeObject},
			}},
		},
	}
}

func TestParseScalarField(t *testing.T) {
	fp, err := Parse("users.name", testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fp.Render() != "users.name" {
		t.Errorf("Render() = %q", fp.Render())
	}
	if fp.IsScalarJSON() {
		t.Errorf("expected IsScalarJSON() = false")
	}
}

func TestParseJSONAccess(t *testing.T) {
	fp, err := Parse("users.metadata->department", testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := fp.Render(), "users.metadata->>'department'"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
	if !fp.IsScalarJSON() {
		t.Errorf("expected IsScalarJSON() = true")
	}
}

func TestParseMultiSegmentJSONAccess(t *testing.T) {
	fp, err := Parse("users.metadata->a->'b'", testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := fp.Render(), "users.metadata->'a'->>'b'"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestParseUnknownTable(t *testing.T) {
	_, err := Parse("orders.id", testConfig())
	if err == nil {
		t.Fatalf("expected an error for unknown table")
	}
}

func TestParseUnknownField(t *testing.T) {
	_, err := Parse("users.age", testConfig())
	if err == nil {
		t.Fatalf("expected an error for unknown field")
	}
}

func TestParseJSONAccessOnScalarField(t *testing.T) {
	_, err := Parse("users.name->seg", testConfig())
	if err == nil {
		t.Fatalf("expected an error for JSON access on a non-object field")
	}
}

func TestParseNewRowBypassesIdentifierValidation(t *testing.T) {
	cfg := testConfig()
	cfg.Tables["NEW_ROW"] = cfg.Tables["users"]
	fp, err := Parse("NEW_ROW.name", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fp.Table != "NEW_ROW" {
		t.Errorf("expected table NEW_ROW, got %q", fp.Table)
	}
}
