package phaseengine

import (
	"context"
	"fmt"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/artifactstore"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/llmgateway"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/model"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/shared/workerpool"
)

type columnMetadataPromptData struct {
	TableName  string
	ColumnName string
	DataType   string
	Usage      string
}

// phase5ColumnMetadata asks the LLM to describe each column belonging
// to a valid table, once per distinct (table, column) pair.
func (e *Engine) phase5ColumnMetadata(ctx context.Context, st *dashboardState) error {
	type key struct{ table, column string }
	seen := map[key]string{} // -> datatype
	var order []key
	for _, r := range st.tableRows {
		if !st.validTables[r.TableName] || r.ColumnName == "" {
			continue
		}
		k := key{r.TableName, r.ColumnName}
		if _, ok := seen[k]; !ok {
			order = append(order, k)
		}
		seen[k] = r.Datatype
	}

	if !e.cfg.EnableLLMExtraction || e.llm == nil {
		return artifactstore.WriteCSV(e.store.ColumnsMetadataPath(st.id), columnMetadataHeader(), nil)
	}

	results := make([]model.ColumnMetadata, len(order))
	errs := workerpool.Run(ctx, chartWorkers(e.cfg.ChartWorkers), order, false, func(ctx context.Context, k key) error {
		idx := -1
		for i, o := range order {
			if o == k {
				idx = i
				break
			}
		}
		var out model.ColumnMetadata
		err := e.llm.Invoke(ctx, llmgateway.PromptColumnMetadata, columnMetadataPromptData{
			TableName: k.table, ColumnName: k.column, DataType: seen[k], Usage: "observed in dashboard charts",
		}, &out)
		if err == nil {
			out.TableName, out.ColumnName = k.table, k.column
			results[idx] = out
		}
		return err
	})
	if allFailed(errs) {
		return fmt.Errorf("phaseengine: column metadata: all %d columns failed: %w", len(errs), firstError(errs))
	}

	var records [][]string
	for _, r := range results {
		if r.TableName == "" {
			continue
		}
		required := "false"
		if r.RequiredFlag {
			required = "true"
		}
		records = append(records, []string{r.TableName, r.ColumnName, r.VariableType, r.Description, required})
	}
	return artifactstore.WriteCSV(e.store.ColumnsMetadataPath(st.id), columnMetadataHeader(), records)
}

func columnMetadataHeader() []string {
	return []string{"table_name", "column_name", "variable_type", "description", "required_flag"}
}
