package phaseengine

import (
	"context"
	"strings"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/artifactstore"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/llmgateway"
)

type filterConditionPromptData struct {
	DashboardTitle string
	Filters        string
}

// phase7FilterConditions renders a single free-text documentation
// block summarizing every filter predicate observed across the
// dashboard's charts.
func (e *Engine) phase7FilterConditions(ctx context.Context, st *dashboardState) error {
	var filters []string
	for _, c := range st.dashboard.Charts {
		for _, f := range c.Filters {
			filters = append(filters, f.Column+" "+f.Operator+" "+f.Value)
		}
		if c.TimeRange != nil {
			filters = append(filters, c.TimeRange.Column+" within "+c.TimeRange.Range)
		}
	}

	if len(filters) == 0 {
		return artifactstore.WriteText(e.store.FilterConditionsPath(st.id), "No filters observed for this dashboard.\n")
	}
	if !e.cfg.EnableLLMExtraction || e.llm == nil {
		return artifactstore.WriteText(e.store.FilterConditionsPath(st.id), strings.Join(filters, "\n")+"\n")
	}

	var text string
	err := e.llm.Invoke(ctx, llmgateway.PromptFilterCondition, filterConditionPromptData{
		DashboardTitle: st.dashboard.Title, Filters: strings.Join(filters, "; "),
	}, &text)
	if err != nil {
		return artifactstore.WriteText(e.store.FilterConditionsPath(st.id), strings.Join(filters, "\n")+"\n")
	}
	return artifactstore.WriteText(e.store.FilterConditionsPath(st.id), text)
}
