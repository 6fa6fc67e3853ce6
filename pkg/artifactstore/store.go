// Package artifactstore implements the on-disk layout described in
// spec.md §6: per-dashboard artifacts under <base>/extracted_meta/<id>/,
// merged artifacts under <base>/extracted_meta/merged_metadata/, and
// durable progress.json. Serialization uses goccy/go-json as a
// drop-in, faster encoding/json replacement.
package artifactstore

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
)

// Store roots every artifact path at BaseDir/extracted_meta.
type Store struct {
	BaseDir string
}

// New returns a Store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{BaseDir: baseDir}
}

// Root is <base>/extracted_meta.
func (s *Store) Root() string {
	return filepath.Join(s.BaseDir, "extracted_meta")
}

// DashboardDir is <base>/extracted_meta/<id>.
func (s *Store) DashboardDir(id int) string {
	return filepath.Join(s.Root(), fmt.Sprintf("%d", id))
}

// MergedDir is <base>/extracted_meta/merged_metadata.
func (s *Store) MergedDir() string {
	return filepath.Join(s.Root(), "merged_metadata")
}

// ProgressPath is <base>/extracted_meta/progress.json.
func (s *Store) ProgressPath() string {
	return filepath.Join(s.Root(), "progress.json")
}

// dashboardFile maps a phase artifact name to its file within a
// dashboard's directory, per the table in spec.md §6.
func (s *Store) dashboardFile(id int, name string) string {
	return filepath.Join(s.DashboardDir(id), fmt.Sprintf("%d_%s", id, name))
}

func (s *Store) JSONPath(id int) string              { return s.dashboardFile(id, "json.json") }
func (s *Store) CSVPath(id int) string                { return s.dashboardFile(id, "csv.csv") }
func (s *Store) QueriesPath(id int) string            { return s.dashboardFile(id, "queries.sql") }
func (s *Store) TablesColumnsPath(id int) string      { return s.dashboardFile(id, "tables_columns.csv") }
func (s *Store) TablesColumnsEnrichedPath(id int) string {
	return s.dashboardFile(id, "tables_columns_enriched.csv")
}
func (s *Store) TableMetadataPath(id int) string   { return s.dashboardFile(id, "table_metadata.csv") }
func (s *Store) ColumnsMetadataPath(id int) string { return s.dashboardFile(id, "columns_metadata.csv") }
func (s *Store) JoiningConditionsPath(id int) string {
	return s.dashboardFile(id, "joining_conditions.csv")
}
func (s *Store) FilterConditionsPath(id int) string { return s.dashboardFile(id, "filter_conditions.txt") }
func (s *Store) DefinitionsPath(id int) string      { return s.dashboardFile(id, "definitions.csv") }

// RequiredMetadataArtifacts are the five files USE_EXISTING mode
// requires to already be on disk (spec.md §4.5).
func (s *Store) RequiredMetadataArtifacts(id int) []string {
	return []string{
		s.TableMetadataPath(id),
		s.ColumnsMetadataPath(id),
		s.JoiningConditionsPath(id),
		s.FilterConditionsPath(id),
		s.DefinitionsPath(id),
	}
}

// HasAllRequiredArtifacts checks USE_EXISTING's precondition.
func (s *Store) HasAllRequiredArtifacts(id int) bool {
	for _, p := range s.RequiredMetadataArtifacts(id) {
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// DeleteDashboardDir removes a dashboard's artifact directory
// recursively — the FRESH-mode precondition in spec.md §3. Removing a
// directory that doesn't exist is not an error.
func (s *Store) DeleteDashboardDir(id int) error {
	return os.RemoveAll(s.DashboardDir(id))
}

// EnsureDashboardDir creates the dashboard's artifact directory if absent.
func (s *Store) EnsureDashboardDir(id int) error {
	return os.MkdirAll(s.DashboardDir(id), 0o755)
}

// EnsureMergedDir creates the merged-artifacts directory if absent.
func (s *Store) EnsureMergedDir() error {
	return os.MkdirAll(s.MergedDir(), 0o755)
}

// WriteJSON atomically writes v as JSON to path (write-then-rename,
// per spec.md §4.8's durability requirement applied to any artifact).
func WriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json for %s: %w", path, err)
	}
	return writeThenRename(path, data)
}

// ReadJSON reads and unmarshals the JSON artifact at path into v.
func ReadJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// WriteCSV writes header + rows to path. Every artifact is written
// with a header even when rows is empty, satisfying the "valid empty
// tables with headers" boundary behavior in spec.md §8.
func WriteCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadCSV reads path and returns (header, rows). It errors if the
// file has no header row at all.
func ReadCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s: missing header row", path)
	}
	return records[0], records[1:], nil
}

// WriteText writes raw text to path, creating parent directories as needed.
func WriteText(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}

// ReadText reads the raw text artifact at path.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func writeThenRename(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
