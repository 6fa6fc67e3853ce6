package mergeengine

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/artifactstore"
)

func mergedTableMetadataPath(s *artifactstore.Store) string   { return filepath.Join(s.MergedDir(), "table_metadata.csv") }
func mergedColumnsMetadataPath(s *artifactstore.Store) string { return filepath.Join(s.MergedDir(), "columns_metadata.csv") }
func mergedJoiningConditionsPath(s *artifactstore.Store) string {
	return filepath.Join(s.MergedDir(), "joining_conditions.csv")
}
func mergedDefinitionsPath(s *artifactstore.Store) string { return filepath.Join(s.MergedDir(), "definitions.csv") }
func mergedConflictsPath(s *artifactstore.Store) string   { return filepath.Join(s.MergedDir(), "conflicts.json") }

// persist writes the merged result to <base>/extracted_meta/merged_metadata/.
func (e *Engine) persist(res *Result) error {
	if err := e.store.EnsureMergedDir(); err != nil {
		return err
	}

	tableHeader := []string{"table_name", "description", "refresh_frequency", "vertical", "partition_column", "remarks", "relationship_context"}
	var tableRows [][]string
	for _, t := range res.Tables {
		tableRows = append(tableRows, []string{t.TableName, t.Description, t.RefreshFrequency, t.Vertical, t.PartitionColumn, t.Remarks, t.RelationshipContext})
	}
	if err := artifactstore.WriteCSV(mergedTableMetadataPath(e.store), tableHeader, tableRows); err != nil {
		return err
	}

	columnHeader := []string{"table_name", "column_name", "variable_type", "description", "required_flag"}
	var columnRows [][]string
	for _, c := range res.Columns {
		columnRows = append(columnRows, []string{c.TableName, c.ColumnName, c.VariableType, c.Description, strconv.FormatBool(c.RequiredFlag)})
	}
	if err := artifactstore.WriteCSV(mergedColumnsMetadataPath(e.store), columnHeader, columnRows); err != nil {
		return err
	}

	joinHeader := []string{"table1", "table2", "joining_condition", "joining_type", "remarks"}
	var joinRows [][]string
	for _, j := range res.Joins {
		joinRows = append(joinRows, []string{j.Table1, j.Table2, j.JoiningCondition, string(j.JoiningType), j.Remarks})
	}
	if err := artifactstore.WriteCSV(mergedJoiningConditionsPath(e.store), joinHeader, joinRows); err != nil {
		return err
	}

	termHeader := []string{"term", "type", "definition", "business_alias"}
	var termRows [][]string
	for _, t := range res.Terms {
		termRows = append(termRows, []string{t.Term, string(t.Type), t.Definition, strings.Join(t.BusinessAlias, "|")})
	}
	if err := artifactstore.WriteCSV(mergedDefinitionsPath(e.store), termHeader, termRows); err != nil {
		return err
	}

	return artifactstore.WriteJSON(mergedConflictsPath(e.store), res.Conflicts)
}
