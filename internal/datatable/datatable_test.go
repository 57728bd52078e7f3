package datatable_test

import (
	"strings"
	"testing"

	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/datatable"
	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/fieldpath"
	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/plan"
	"github.com/iv-stpn/json-to-sql-parser-sub001/schema"
)

func testDataTableConfig() *schema.Config {
	return &schema.Config{
		Dialect: schema.PostgreSQL,
		Tables: map[string]schema.TableSchema{
			"users": {Name: "users", Fields: []schema.Field{
				{Name: "id", Type: schema.TypeUUID},
				{Name: "name", Type: schema.TypeString},
			}},
		},
		DataTable: &schema.DataTableConfig{
			Table:           "documents",
			DataField:       "data",
			TableField:      "kind",
			WhereConditions: []string{"tenant_id = 1"},
		},
	}
}

func TestRewriteAppendsFieldToJSONAccess(t *testing.T) {
	cfg := testDataTableConfig()
	fp, err := fieldpath.Parse("users.id", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rewritten := datatable.Rewrite(fp, cfg.DataTable)
	if got, want := rewritten.Render(), "users.data->>'id'"; got != want {
		t.Errorf("Rewrite().Render() = %q, want %q", got, want)
	}
}

func TestPhysicalFrom(t *testing.T) {
	dt := &schema.DataTableConfig{Table: "documents"}
	if got, want := datatable.PhysicalFrom(dt, "users"), "documents AS users"; got != want {
		t.Errorf("PhysicalFrom() = %q, want %q", got, want)
	}
}

func TestDiscriminatorAndExtraPredicates(t *testing.T) {
	dt := &schema.DataTableConfig{TableField: "kind", WhereConditions: []string{"tenant_id = 1"}}
	if got, want := datatable.Discriminator(dt, "users"), "users.kind = 'users'"; got != want {
		t.Errorf("Discriminator() = %q, want %q", got, want)
	}
	preds := datatable.ExtraPredicates(dt, "users")
	if len(preds) != 1 || preds[0] != "users.tenant_id = 1" {
		t.Errorf("ExtraPredicates() = %v, want [\"users.tenant_id = 1\"]", preds)
	}
}

func TestBuildSelectUnderDataTableRewriting(t *testing.T) {
	cfg := testDataTableConfig()
	sql, err := plan.Build(cfg, plan.SelectQuery{
		RootTable: "users",
		Selection: map[string]any{"id": true, "name": true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `SELECT users.data->>'id' AS "id", users.data->>'name' AS "name" FROM documents AS users WHERE users.kind = 'users' AND users.tenant_id = 1`
	if sql != want {
		t.Errorf("Build() = %q, want %q", sql, want)
	}
	if strings.Contains(sql, "users.id") || strings.Contains(sql, "users.name") {
		t.Errorf("Build() = %q, expected no bare logical field reference outside the alias/discriminator", sql)
	}
}
