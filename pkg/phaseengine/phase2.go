package phaseengine

import (
	"context"
	"strconv"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/artifactstore"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/model"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/sqlparse"
)

// phase2TablesAndColumns extracts table references and selected
// columns from every chart's SQL. A chart's non-derived (groupby)
// columns are attributed to every table reference the chart's SQL
// names, since the rule-based parser does not bind a column to a
// specific source table across joins; its metric expressions are
// attributed to the chart's primary (first-referenced) table, per
// pkg/sqlparse's documented scope.
func (e *Engine) phase2TablesAndColumns(ctx context.Context, st *dashboardState) error {
	var rows []model.TableColumnRow
	tableSet := map[string]bool{}

	for _, chart := range st.dashboard.Charts {
		if !chart.HasSQL() {
			continue
		}
		refs := sqlparse.ExtractTableReferences(*chart.SQLQuery)
		if len(refs) == 0 {
			continue
		}

		var normalized []string
		for _, ref := range refs {
			name := sqlparse.NormalizeTableName(ref.Name, e.cfg.DefaultCatalog)
			normalized = append(normalized, name)
			tableSet[name] = true
		}

		for _, table := range normalized {
			for _, col := range chart.Columns {
				rows = append(rows, model.TableColumnRow{
					TableName: table, ColumnName: col, SourceOrDerived: model.Source,
					ChartID: chart.ChartID, ChartLabel: chart.ChartName,
				})
			}
		}

		primary := primaryTable(refs, e.cfg.DefaultCatalog)
		for _, metric := range chart.Metrics {
			rows = append(rows, model.TableColumnRow{
				TableName: primary, ColumnName: metric.Label, Alias: metric.Label,
				SourceOrDerived: model.Derived, DerivedLogic: metric.Expression,
				ChartID: chart.ChartID, ChartLabel: chart.ChartName,
			})
		}

		for i := 0; i < len(normalized); i++ {
			for j := i + 1; j < len(normalized); j++ {
				st.tablePairs = append(st.tablePairs, [2]string{normalized[i], normalized[j]})
			}
		}
	}

	st.tableRows = rows
	for t := range tableSet {
		st.validTables[t] = false // validity resolved in phase 3
	}

	header := []string{"table_name", "column_name", "alias", "source_or_derived", "derived_logic", "chart_id", "chart_label"}
	var records [][]string
	for _, r := range rows {
		records = append(records, []string{r.TableName, r.ColumnName, r.Alias, string(r.SourceOrDerived), r.DerivedLogic, strconv.Itoa(r.ChartID), r.ChartLabel})
	}
	return artifactstore.WriteCSV(e.store.TablesColumnsPath(st.id), header, records)
}
