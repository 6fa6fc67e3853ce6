package logging

import (
	"errors"
	"testing"
	"time"
)

func TestNewFields(t *testing.T) {
	fields := NewFields()
	if fields == nil {
		t.Fatal("NewFields() returned nil")
	}
	if len(fields) != 0 {
		t.Errorf("NewFields() should be empty, got %d fields", len(fields))
	}
}

func TestStandardFields_Component(t *testing.T) {
	fields := NewFields().Component("test-component")
	if fields["component"] != "test-component" {
		t.Errorf("Component() = %v, want %v", fields["component"], "test-component")
	}
}

func TestStandardFields_Resource(t *testing.T) {
	fields := NewFields().Resource("table", "hive.schema.fact_sales")
	if fields["resource_type"] != "table" {
		t.Errorf("Resource() resource_type = %v, want %v", fields["resource_type"], "table")
	}
	if fields["resource_name"] != "hive.schema.fact_sales" {
		t.Errorf("Resource() resource_name = %v, want %v", fields["resource_name"], "hive.schema.fact_sales")
	}
}

func TestStandardFields_ResourceWithoutName(t *testing.T) {
	fields := NewFields().Resource("table", "")
	if _, exists := fields["resource_name"]; exists {
		t.Error("Resource() should not set resource_name when empty")
	}
}

func TestStandardFields_Duration(t *testing.T) {
	fields := NewFields().Duration(150 * time.Millisecond)
	if fields["duration_ms"] != int64(150) {
		t.Errorf("Duration() = %v, want %v", fields["duration_ms"], int64(150))
	}
}

func TestStandardFields_Error(t *testing.T) {
	err := errors.New("test error")
	fields := NewFields().Error(err)
	if fields["error"] != "test error" {
		t.Errorf("Error() = %v, want %v", fields["error"], "test error")
	}
}

func TestStandardFields_ErrorNil(t *testing.T) {
	fields := NewFields().Error(nil)
	if _, exists := fields["error"]; exists {
		t.Error("Error(nil) should not set error field")
	}
}

func TestStandardFields_ChainedCalls(t *testing.T) {
	fields := NewFields().
		Component("phaseengine").
		Operation("extract").
		Resource("dashboard", "964").
		Duration(100 * time.Millisecond).
		Count(5)

	expected := map[string]interface{}{
		"component":     "phaseengine",
		"operation":     "extract",
		"resource_type": "dashboard",
		"resource_name": "964",
		"duration_ms":   int64(100),
		"count":         5,
	}
	for key, want := range expected {
		if fields[key] != want {
			t.Errorf("Chained calls: %s = %v, want %v", key, fields[key], want)
		}
	}
}

func TestStandardFields_ToZap(t *testing.T) {
	fields := NewFields().Component("phaseengine").Operation("extract")
	zapFields := fields.ToZap()
	if len(zapFields) != 2 {
		t.Fatalf("ToZap() len = %d, want 2", len(zapFields))
	}
}

func TestDatabaseFields(t *testing.T) {
	fields := DatabaseFields("select", "active_datasets_snapshot_v3")
	expected := map[string]interface{}{
		"component":     "database",
		"operation":     "select",
		"resource_type": "table",
		"resource_name": "active_datasets_snapshot_v3",
	}
	for key, want := range expected {
		if fields[key] != want {
			t.Errorf("DatabaseFields() %s = %v, want %v", key, fields[key], want)
		}
	}
}

func TestHTTPFields(t *testing.T) {
	fields := HTTPFields("GET", "/api/v1/chart/964", 200)
	expected := map[string]interface{}{
		"component":   "http",
		"method":      "GET",
		"url":         "/api/v1/chart/964",
		"status_code": 200,
	}
	for key, want := range expected {
		if fields[key] != want {
			t.Errorf("HTTPFields() %s = %v, want %v", key, fields[key], want)
		}
	}
}

func TestDashboardFields(t *testing.T) {
	fields := DashboardFields("extract", 964)
	expected := map[string]interface{}{
		"component":    "dashboard",
		"operation":    "extract",
		"dashboard_id": 964,
	}
	for key, want := range expected {
		if fields[key] != want {
			t.Errorf("DashboardFields() %s = %v, want %v", key, fields[key], want)
		}
	}
}

func TestPhaseFields(t *testing.T) {
	fields := PhaseFields(964, "tables_and_columns")
	expected := map[string]interface{}{
		"component":    "phaseengine",
		"dashboard_id": 964,
		"phase":        "tables_and_columns",
	}
	for key, want := range expected {
		if fields[key] != want {
			t.Errorf("PhaseFields() %s = %v, want %v", key, fields[key], want)
		}
	}
}

func TestAIFields(t *testing.T) {
	fields := AIFields("describe_table", "claude-3")
	expected := map[string]interface{}{
		"component": "ai",
		"operation": "describe_table",
		"model":     "claude-3",
	}
	for key, want := range expected {
		if fields[key] != want {
			t.Errorf("AIFields() %s = %v, want %v", key, fields[key], want)
		}
	}
}

func TestPerformanceFields(t *testing.T) {
	duration := 250 * time.Millisecond
	fields := PerformanceFields("query_catalog", duration, true)
	expected := map[string]interface{}{
		"component":   "performance",
		"operation":   "query_catalog",
		"duration_ms": int64(250),
		"success":     true,
	}
	for key, want := range expected {
		if fields[key] != want {
			t.Errorf("PerformanceFields() %s = %v, want %v", key, fields[key], want)
		}
	}
}
