package mergeengine

import (
	"strconv"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/artifactstore"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/model"
)

// loadDashboard reads one dashboard's four metadata CSVs and appends
// each row, tagged with its source dashboard id, into agg.
func (e *Engine) loadDashboard(id int, agg *aggregate) error {
	if _, rows, err := artifactstore.ReadCSV(e.store.TableMetadataPath(id)); err == nil {
		for _, r := range rows {
			if len(r) < 7 {
				continue
			}
			agg.tables = append(agg.tables, tableContribution{
				TableMetadata: model.TableMetadata{
					TableName: r[0], Description: r[1], RefreshFrequency: r[2],
					Vertical: r[3], PartitionColumn: r[4], Remarks: r[5], RelationshipContext: r[6],
				},
				source: id,
			})
		}
	}

	if _, rows, err := artifactstore.ReadCSV(e.store.ColumnsMetadataPath(id)); err == nil {
		for _, r := range rows {
			if len(r) < 5 {
				continue
			}
			required, _ := strconv.ParseBool(r[4])
			agg.columns = append(agg.columns, columnContribution{
				ColumnMetadata: model.ColumnMetadata{
					TableName: r[0], ColumnName: r[1], VariableType: r[2], Description: r[3], RequiredFlag: required,
				},
				source: id,
			})
		}
	}

	if _, rows, err := artifactstore.ReadCSV(e.store.JoiningConditionsPath(id)); err == nil {
		for _, r := range rows {
			if len(r) < 5 {
				continue
			}
			agg.joins = append(agg.joins, joinContribution{
				JoiningCondition: model.JoiningCondition{
					Table1: r[0], Table2: r[1], JoiningCondition: r[2], JoiningType: model.JoiningType(r[3]), Remarks: r[4],
				},
				source: id,
			})
		}
	}

	if _, rows, err := artifactstore.ReadCSV(e.store.DefinitionsPath(id)); err == nil {
		for _, r := range rows {
			if len(r) < 4 {
				continue
			}
			agg.terms = append(agg.terms, termContribution{
				TermDefinition: model.TermDefinition{
					Term: r[0], Type: model.TermType(r[1]), Definition: r[2], BusinessAlias: splitAlias(r[3]),
				},
				source: id,
			})
		}
	}

	return nil
}

func splitAlias(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '|' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return out
}

// loadExistingMerge reads the previously merged table metadata, if
// present, for incremental-merge baseline comparisons. A missing or malformed
// prior merge is treated as "no baseline" rather than an error.
func (e *Engine) loadExistingMerge() *Result {
	res := &Result{}
	any := false

	if _, rows, err := artifactstore.ReadCSV(mergedTableMetadataPath(e.store)); err == nil {
		any = true
		for _, r := range rows {
			if len(r) < 7 {
				continue
			}
			res.Tables = append(res.Tables, model.TableMetadata{
				TableName: r[0], Description: r[1], RefreshFrequency: r[2],
				Vertical: r[3], PartitionColumn: r[4], Remarks: r[5], RelationshipContext: r[6],
			})
		}
	}
	if !any {
		return nil
	}
	return res
}
