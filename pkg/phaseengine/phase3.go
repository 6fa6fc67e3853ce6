package phaseengine

import (
	"context"
	"strconv"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/artifactstore"
)

// phase3SchemaEnrichment validates every table referenced in phase 2
// and, for valid tables, enriches each row's Datatype from a live
// DESCRIBE. A table that fails validation is marked invalid in
// st.validTables: phases 4-6 skip rows belonging to it, per spec.md
// §4.5's table-validity gate.
func (e *Engine) phase3SchemaEnrichment(ctx context.Context, st *dashboardState) error {
	var tables []string
	for t := range st.validTables {
		tables = append(tables, t)
	}

	if e.cfg.EnableTableValidation && e.validator != nil {
		for _, res := range e.validator.Validate(ctx, tables) {
			st.validTables[res.TableName] = res.Valid
		}
	} else {
		for _, t := range tables {
			st.validTables[t] = true
		}
	}

	datatypes := map[[2]string]string{} // (table, column) -> datatype
	if e.cfg.EnableSchemaEnrichment && e.schema != nil {
		var validTables []string
		for t, ok := range st.validTables {
			if ok {
				validTables = append(validTables, t)
			}
		}
		for _, res := range e.schema.Describe(ctx, validTables) {
			if res.Err != nil {
				continue
			}
			for _, col := range res.Columns {
				datatypes[[2]string{col.TableName, col.ColumnName}] = col.DataType
			}
		}
	}

	header := []string{"table_name", "column_name", "alias", "source_or_derived", "derived_logic", "chart_id", "chart_label", "datatype", "valid"}
	var records [][]string
	for i := range st.tableRows {
		row := &st.tableRows[i]
		if dt, ok := datatypes[[2]string{row.TableName, row.ColumnName}]; ok {
			row.Datatype = dt
		}
		valid := st.validTables[row.TableName]
		records = append(records, []string{
			row.TableName, row.ColumnName, row.Alias, string(row.SourceOrDerived), row.DerivedLogic,
			strconv.Itoa(row.ChartID), row.ChartLabel, row.Datatype, strconv.FormatBool(valid),
		})
	}
	return artifactstore.WriteCSV(e.store.TablesColumnsEnrichedPath(st.id), header, records)
}
