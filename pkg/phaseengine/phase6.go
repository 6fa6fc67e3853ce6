package phaseengine

import (
	"context"
	"fmt"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/artifactstore"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/llmgateway"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/model"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/shared/workerpool"
)

type joiningConditionPromptData struct {
	Table1        string
	Table2        string
	ObservedJoins string
}

// phase6JoiningConditions asks the LLM to classify how each pair of
// co-referenced, valid tables relates, once per distinct unordered pair.
func (e *Engine) phase6JoiningConditions(ctx context.Context, st *dashboardState) error {
	type pair struct{ a, b string }
	seen := map[pair]bool{}
	var pairs []pair
	for _, p := range st.tablePairs {
		if !st.validTables[p[0]] || !st.validTables[p[1]] {
			continue
		}
		key := pair{p[0], p[1]}
		if p[0] > p[1] {
			key = pair{p[1], p[0]}
		}
		if !seen[key] {
			seen[key] = true
			pairs = append(pairs, key)
		}
	}

	if !e.cfg.EnableLLMExtraction || e.llm == nil || len(pairs) == 0 {
		return artifactstore.WriteCSV(e.store.JoiningConditionsPath(st.id), joiningConditionHeader(), nil)
	}

	results := make([]model.JoiningCondition, len(pairs))
	errs := workerpool.Run(ctx, chartWorkers(e.cfg.ChartWorkers), pairs, false, func(ctx context.Context, p pair) error {
		idx := -1
		for i, pp := range pairs {
			if pp == p {
				idx = i
				break
			}
		}
		var out model.JoiningCondition
		err := e.llm.Invoke(ctx, llmgateway.PromptJoiningCondition, joiningConditionPromptData{
			Table1: p.a, Table2: p.b, ObservedJoins: "co-referenced by the same chart SQL",
		}, &out)
		if err == nil {
			out.Table1, out.Table2 = p.a, p.b
			results[idx] = out
		}
		return err
	})
	if allFailed(errs) {
		return fmt.Errorf("phaseengine: joining conditions: all %d pairs failed: %w", len(errs), firstError(errs))
	}

	var records [][]string
	for _, r := range results {
		if r.Table1 == "" {
			continue
		}
		records = append(records, []string{r.Table1, r.Table2, r.JoiningCondition, string(r.JoiningType), r.Remarks})
	}
	return artifactstore.WriteCSV(e.store.JoiningConditionsPath(st.id), joiningConditionHeader(), records)
}

func joiningConditionHeader() []string {
	return []string{"table1", "table2", "joining_condition", "joining_type", "remarks"}
}
