package plan

import (
	"testing"

	"github.com/iv-stpn/json-to-sql-parser-sub001/schema"
)

func testAggConfig() *schema.Config {
	return &schema.Config{
		Dialect: schema.PostgreSQL,
		Tables: map[string]schema.TableSchema{
			"orders": {Name: "orders", Fields: []schema.Field{
				{Name: "id", Type: schema.TypeUUID},
				{Name: "status", Type: schema.TypeString},
				{Name: "total", Type: schema.TypeNumber},
			}},
		},
	}
}

func TestBuildAggregateGroupBy(t *testing.T) {
	cfg := testAggConfig()
	sql, err := BuildAggregate(cfg, AggregationQuery{
		Table:   "orders",
		GroupBy: []string{"orders.status"},
		AggregatedFields: map[string]AggregatedField{
			"total_amount": {Function: "SUM", Field: "orders.total"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `SELECT orders.status AS "orders.status", SUM(orders.total) AS "total_amount" FROM orders GROUP BY orders.status`
	if sql != want {
		t.Errorf("BuildAggregate() = %q, want %q", sql, want)
	}
}

func TestBuildAggregateCountWildcard(t *testing.T) {
	cfg := testAggConfig()
	sql, err := BuildAggregate(cfg, AggregationQuery{
		Table: "orders",
		AggregatedFields: map[string]AggregatedField{
			"total_rows": {Function: "COUNT", Field: "*"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `SELECT COUNT(*) AS "total_rows" FROM orders`
	if sql != want {
		t.Errorf("BuildAggregate() = %q, want %q", sql, want)
	}
}

func TestBuildAggregateWildcardNonCountFails(t *testing.T) {
	cfg := testAggConfig()
	_, err := BuildAggregate(cfg, AggregationQuery{
		Table: "orders",
		AggregatedFields: map[string]AggregatedField{
			"bad": {Function: "SUM", Field: "*"},
		},
	})
	if err == nil {
		t.Errorf("expected an error for wildcard field on a non-COUNT aggregate")
	}
}

func TestBuildAggregateRequiresGroupByOrFields(t *testing.T) {
	cfg := testAggConfig()
	if _, err := BuildAggregate(cfg, AggregationQuery{Table: "orders"}); err == nil {
		t.Errorf("expected an error when neither groupBy nor aggregatedFields is set")
	}
}
