package phaseengine

import (
	"context"
	"fmt"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/artifactstore"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/llmgateway"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/model"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/shared/workerpool"
)

type tableMetadataPromptData struct {
	TableName    string
	Columns      string
	ChartContext string
}

// phase4TableMetadata asks the LLM to describe each distinct valid
// table once, from the columns and chart labels observed for it.
func (e *Engine) phase4TableMetadata(ctx context.Context, st *dashboardState) error {
	if !e.cfg.EnableLLMExtraction || e.llm == nil {
		return artifactstore.WriteCSV(e.store.TableMetadataPath(st.id), tableMetadataHeader(), nil)
	}

	tables := distinctValidTables(st)
	results := make([]model.TableMetadata, len(tables))
	errs := workerpool.Run(ctx, chartWorkers(e.cfg.ChartWorkers), tables, false, func(ctx context.Context, table string) error {
		idx := indexOfString(tables, table)
		cols, chartContext := columnSummary(st, table)
		var out model.TableMetadata
		err := e.llm.Invoke(ctx, llmgateway.PromptTableMetadata, tableMetadataPromptData{
			TableName: table, Columns: cols, ChartContext: chartContext,
		}, &out)
		if err == nil {
			out.TableName = table
			results[idx] = out
		}
		return err
	})
	if allFailed(errs) {
		return fmt.Errorf("phaseengine: table metadata: all %d tables failed: %w", len(errs), firstError(errs))
	}

	var records [][]string
	for _, r := range results {
		if r.TableName == "" {
			continue
		}
		records = append(records, []string{r.TableName, r.Description, r.RefreshFrequency, r.Vertical, r.PartitionColumn, r.Remarks, r.RelationshipContext})
	}
	return artifactstore.WriteCSV(e.store.TableMetadataPath(st.id), tableMetadataHeader(), records)
}

func tableMetadataHeader() []string {
	return []string{"table_name", "description", "refresh_frequency", "vertical", "partition_column", "remarks", "relationship_context"}
}

func distinctValidTables(st *dashboardState) []string {
	var out []string
	for t, valid := range st.validTables {
		if valid {
			out = append(out, t)
		}
	}
	return out
}

func columnSummary(st *dashboardState, table string) (columns, chartContext string) {
	seenCols := map[string]bool{}
	seenCharts := map[string]bool{}
	for _, r := range st.tableRows {
		if r.TableName != table {
			continue
		}
		if r.ColumnName != "" && !seenCols[r.ColumnName] {
			seenCols[r.ColumnName] = true
			if columns != "" {
				columns += ", "
			}
			columns += r.ColumnName
		}
		if r.ChartLabel != "" && !seenCharts[r.ChartLabel] {
			seenCharts[r.ChartLabel] = true
			if chartContext != "" {
				chartContext += ", "
			}
			chartContext += r.ChartLabel
		}
	}
	return columns, chartContext
}

func indexOfString(ss []string, target string) int {
	for i, s := range ss {
		if s == target {
			return i
		}
	}
	return -1
}

func chartWorkers(n int) int {
	if n <= 0 {
		return 8
	}
	return n
}
