package artifactstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDashboardDirLayout(t *testing.T) {
	s := New("/tmp/base")
	if got, want := s.Root(), "/tmp/base/extracted_meta"; got != want {
		t.Errorf("Root() = %q, want %q", got, want)
	}
	if got, want := s.DashboardDir(964), "/tmp/base/extracted_meta/964"; got != want {
		t.Errorf("DashboardDir() = %q, want %q", got, want)
	}
	if got, want := s.TablesColumnsPath(964), "/tmp/base/extracted_meta/964/964_tables_columns.csv"; got != want {
		t.Errorf("TablesColumnsPath() = %q, want %q", got, want)
	}
}

func TestDeleteDashboardDir_FreshSemantics(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	if err := s.EnsureDashboardDir(964); err != nil {
		t.Fatalf("EnsureDashboardDir: %v", err)
	}
	stale := s.TableMetadataPath(964)
	if err := WriteText(stale, "stale content"); err != nil {
		t.Fatalf("WriteText: %v", err)
	}

	if err := s.DeleteDashboardDir(964); err != nil {
		t.Fatalf("DeleteDashboardDir: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("expected stale artifact to be removed before a fresh run")
	}

	// Deleting a nonexistent dir is not an error.
	if err := s.DeleteDashboardDir(12345); err != nil {
		t.Errorf("DeleteDashboardDir on missing dir: %v", err)
	}
}

func TestHasAllRequiredArtifacts(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	s.EnsureDashboardDir(964)

	if s.HasAllRequiredArtifacts(964) {
		t.Error("expected false with no artifacts present")
	}

	for _, p := range s.RequiredMetadataArtifacts(964) {
		if err := WriteText(p, ""); err != nil {
			t.Fatalf("WriteText(%s): %v", p, err)
		}
	}

	if !s.HasAllRequiredArtifacts(964) {
		t.Error("expected true once all five required artifacts exist")
	}
}

func TestWriteReadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.json")

	type payload struct {
		Name string `json:"name"`
	}
	in := payload{Name: "UPI Traffic Dashboard"}
	if err := WriteJSON(path, in); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var out payload
	if err := ReadJSON(path, &out); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if out.Name != in.Name {
		t.Errorf("roundtrip Name = %q, want %q", out.Name, in.Name)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("tmp file should not remain after write-then-rename")
	}
}

func TestWriteReadCSV_EmptyTableHasHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	header := []string{"table_name", "column_name"}

	if err := WriteCSV(path, header, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	gotHeader, rows, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("rows = %v, want empty", rows)
	}
	if len(gotHeader) != len(header) {
		t.Fatalf("header len = %d, want %d", len(gotHeader), len(header))
	}
	for i := range header {
		if gotHeader[i] != header[i] {
			t.Errorf("header[%d] = %q, want %q", i, gotHeader[i], header[i])
		}
	}
}

func TestWriteReadCSV_RoundTripPreservesValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.csv")
	header := []string{"table_name", "column_name", "source_or_derived"}
	rows := [][]string{
		{"hive.sales.fact_orders", "amount", "SOURCE"},
		{"hive.sales.fact_orders", "total_with_tax", "DERIVED"},
	}

	if err := WriteCSV(path, header, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	_, gotRows, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(gotRows) != len(rows) {
		t.Fatalf("rows len = %d, want %d", len(gotRows), len(rows))
	}
	for i := range rows {
		for j := range rows[i] {
			if gotRows[i][j] != rows[i][j] {
				t.Errorf("row %d col %d = %q, want %q", i, j, gotRows[i][j], rows[i][j])
			}
		}
	}
}
