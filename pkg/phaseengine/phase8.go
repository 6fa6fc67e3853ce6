package phaseengine

import (
	"context"
	"fmt"
	"strings"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/artifactstore"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/llmgateway"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/model"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/shared/workerpool"
)

type termDefinitionPromptData struct {
	Term    string
	Context string
}

// phase8TermDefinitions collects candidate business terms from chart
// metric labels and the dashboard title's significant words, then
// asks the LLM to define each distinct candidate once.
func (e *Engine) phase8TermDefinitions(ctx context.Context, st *dashboardState) error {
	terms := candidateTerms(st)

	if !e.cfg.EnableLLMExtraction || e.llm == nil || len(terms) == 0 {
		return artifactstore.WriteCSV(e.store.DefinitionsPath(st.id), termDefinitionHeader(), nil)
	}

	results := make([]model.TermDefinition, len(terms))
	errs := workerpool.Run(ctx, chartWorkers(e.cfg.ChartWorkers), terms, false, func(ctx context.Context, term string) error {
		idx := indexOfString(terms, term)
		var out model.TermDefinition
		err := e.llm.Invoke(ctx, llmgateway.PromptTermDefinition, termDefinitionPromptData{
			Term: term, Context: "chart metric label or dashboard title in " + st.dashboard.Title,
		}, &out)
		if err == nil {
			out.Term = term
			results[idx] = out
		}
		return err
	})
	if allFailed(errs) {
		return fmt.Errorf("phaseengine: term definitions: all %d terms failed: %w", len(errs), firstError(errs))
	}

	var records [][]string
	for _, r := range results {
		if r.Term == "" {
			continue
		}
		records = append(records, []string{r.Term, string(r.Type), r.Definition, strings.Join(r.BusinessAlias, "|")})
	}
	return artifactstore.WriteCSV(e.store.DefinitionsPath(st.id), termDefinitionHeader(), records)
}

func termDefinitionHeader() []string {
	return []string{"term", "type", "definition", "business_alias"}
}

func candidateTerms(st *dashboardState) []string {
	seen := map[string]bool{}
	var out []string
	add := func(term string) {
		term = strings.TrimSpace(term)
		if term == "" || seen[strings.ToLower(term)] {
			return
		}
		seen[strings.ToLower(term)] = true
		out = append(out, term)
	}

	for _, c := range st.dashboard.Charts {
		for _, m := range c.Metrics {
			add(m.Label)
		}
	}
	for _, word := range strings.Fields(st.dashboard.Title) {
		if len(word) > 3 {
			add(word)
		}
	}
	return out
}
