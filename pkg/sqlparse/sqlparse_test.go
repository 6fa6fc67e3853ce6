package sqlparse

import (
	"reflect"
	"sort"
	"testing"
)

func TestExtractCTENames(t *testing.T) {
	sql := `
		WITH recent_orders AS (
			SELECT * FROM hive.sales.fact_orders WHERE ts > now() - interval '7' day
		),
		ranked AS (
			SELECT *, row_number() OVER (PARTITION BY customer_id) AS rn FROM recent_orders
		)
		SELECT * FROM ranked JOIN hive.sales.dim_customer c ON ranked.customer_id = c.id
	`
	ctes := ExtractCTENames(sql)
	if !ctes["recent_orders"] || !ctes["ranked"] {
		t.Errorf("ExtractCTENames() = %v, want recent_orders and ranked", ctes)
	}
}

func TestExtractCTENames_NoWith(t *testing.T) {
	ctes := ExtractCTENames("SELECT * FROM hive.sales.fact_orders")
	if len(ctes) != 0 {
		t.Errorf("ExtractCTENames() = %v, want empty", ctes)
	}
}

func TestExtractTableReferences_ExcludesCTEs(t *testing.T) {
	sql := `
		WITH recent_orders AS (
			SELECT * FROM hive.sales.fact_orders
		)
		SELECT * FROM recent_orders JOIN hive.sales.dim_customer c ON recent_orders.customer_id = c.id
	`
	refs := ExtractTableReferences(sql)

	var names []string
	for _, r := range refs {
		names = append(names, r.Name)
	}
	sort.Strings(names)

	want := []string{"hive.sales.dim_customer", "hive.sales.fact_orders"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("ExtractTableReferences() names = %v, want %v (recent_orders is a CTE, must be excluded)", names, want)
	}
}

func TestExtractTableReferences_DedupesRepeatedReferences(t *testing.T) {
	sql := `SELECT * FROM hive.sales.fact_orders a JOIN hive.sales.fact_orders b ON a.id = b.parent_id`
	refs := ExtractTableReferences(sql)
	if len(refs) != 2 {
		t.Fatalf("ExtractTableReferences() = %v, want 2 distinct aliases of the same table", refs)
	}
}

func TestNormalizeTableName(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{`"hive"."Sales"."Fact_Orders"`, "hive.sales.fact_orders"},
		{"sales.fact_orders", "hive.sales.fact_orders"},
		{"fact_orders", "hive.default.fact_orders"},
		{"HIVE.SALES.FACT_ORDERS", "hive.sales.fact_orders"},
	}

	for _, tt := range tests {
		if got := NormalizeTableName(tt.raw, "hive"); got != tt.expected {
			t.Errorf("NormalizeTableName(%q) = %q, want %q", tt.raw, got, tt.expected)
		}
	}
}
