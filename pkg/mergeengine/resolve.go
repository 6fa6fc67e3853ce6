package mergeengine

import (
	"context"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/llmgateway"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/model"
)

// voteResult is the outcome of a most-common-wins tally.
type voteResult struct {
	winner   string
	distinct int
	values   []string
	sources  []int
}

// tally counts occurrences of each non-empty value and returns the
// most frequent one (first-seen wins ties, for determinism).
func tally(values []string, sources []int) voteResult {
	counts := map[string]int{}
	firstSeenOrder := []string{}
	valueSources := map[string][]int{}
	for i, v := range values {
		if v == "" {
			continue
		}
		if _, ok := counts[v]; !ok {
			firstSeenOrder = append(firstSeenOrder, v)
		}
		counts[v]++
		valueSources[v] = append(valueSources[v], sources[i])
	}

	var winner string
	best := -1
	for _, v := range firstSeenOrder {
		if counts[v] > best {
			best = counts[v]
			winner = v
		}
	}

	var distinctValues []string
	var distinctSources []int
	for _, v := range firstSeenOrder {
		distinctValues = append(distinctValues, v)
		distinctSources = append(distinctSources, valueSources[v]...)
	}

	return voteResult{winner: winner, distinct: len(firstSeenOrder), values: distinctValues, sources: distinctSources}
}

// resolveFreeText reconciles a free-text field across contributions.
// When every contribution agrees there is nothing to reconcile; when
// they disagree and an LLMResolver is available it asks the named
// merge prompt to produce one coherent value that preserves each
// candidate's distinct content, per spec.md §4.7. It falls back to the
// most-common-wins vote when there is no resolver or the call fails.
func resolveFreeText(ctx context.Context, llm LLMResolver, prompt llmgateway.PromptName, subjectKey, field string, vote voteResult) string {
	if vote.distinct < 2 || llm == nil {
		return vote.winner
	}
	var out string
	if err := llm.Invoke(ctx, prompt, mergeConflictResolvePromptData{
		SubjectKey: subjectKey, Field: field, Values: joinValues(vote.values),
	}, &out); err == nil && out != "" {
		return out
	}
	return vote.winner
}

func resolveTables(ctx context.Context, llm LLMResolver, agg *aggregate, baseline *Result, res *Result) {
	byName := map[string][]tableContribution{}
	var order []string
	for _, c := range agg.tables {
		if _, ok := byName[c.TableName]; !ok {
			order = append(order, c.TableName)
		}
		byName[c.TableName] = append(byName[c.TableName], c)
	}

	baselineByName := map[string]model.TableMetadata{}
	if baseline != nil {
		for _, t := range baseline.Tables {
			baselineByName[t.TableName] = t
		}
	}

	for _, name := range order {
		contribs := byName[name]
		if existing, ok := baselineByName[name]; ok {
			// Non-relitigation: keep the prior resolution, but log any
			// newly observed differing value as a conflict.
			for _, c := range contribs {
				if c.Description != "" && c.Description != existing.Description {
					res.Conflicts = append(res.Conflicts, model.ConflictRecord{
						Kind: model.ConflictTable, SubjectKey: name, Field: "description",
						Sources: []int{c.source}, Values: []string{c.Description},
						Resolution: "kept prior merge resolution (incremental, non-relitigated)",
					})
				}
			}
			res.Tables = append(res.Tables, existing)
			continue
		}

		var descs, refresh, vertical, partition, remarks, relContext []string
		var sources []int
		for _, c := range contribs {
			descs = append(descs, c.Description)
			refresh = append(refresh, c.RefreshFrequency)
			vertical = append(vertical, c.Vertical)
			partition = append(partition, c.PartitionColumn)
			remarks = append(remarks, c.Remarks)
			relContext = append(relContext, c.RelationshipContext)
			sources = append(sources, c.source)
		}

		refreshVote := tally(refresh, sources)
		verticalVote := tally(vertical, sources)
		partitionVote := tally(partition, sources)
		descVote := tally(descs, sources)
		remarksVote := tally(remarks, sources)
		relVote := tally(relContext, sources)

		mergedDesc := resolveFreeText(ctx, llm, llmgateway.PromptMergeTable, name, "description", descVote)
		mergedRemarks := resolveFreeText(ctx, llm, llmgateway.PromptMergeTable, name, "remarks", remarksVote)
		mergedRel := resolveFreeText(ctx, llm, llmgateway.PromptMergeTable, name, "relationship_context", relVote)

		merged := model.TableMetadata{
			TableName: name, Description: mergedDesc, RefreshFrequency: refreshVote.winner,
			Vertical: verticalVote.winner, PartitionColumn: partitionVote.winner,
			Remarks: mergedRemarks, RelationshipContext: mergedRel,
		}
		res.Tables = append(res.Tables, merged)

		recordConflict(res, model.ConflictTable, name, "refresh_frequency", refreshVote, "most-common-wins")
		recordConflict(res, model.ConflictTable, name, "vertical", verticalVote, "most-common-wins")
		recordConflict(res, model.ConflictTable, name, "partition_column", partitionVote, "most-common-wins")
		recordConflict(res, model.ConflictTable, name, "description", descVote, "LLM-reconciled or most-common-wins")
		recordConflict(res, model.ConflictTable, name, "remarks", remarksVote, "LLM-reconciled or most-common-wins")
		recordConflict(res, model.ConflictTable, name, "relationship_context", relVote, "LLM-reconciled or most-common-wins")
	}
}

func resolveColumns(ctx context.Context, llm LLMResolver, agg *aggregate, baseline *Result, res *Result) {
	type key struct{ table, column string }
	byKey := map[key][]columnContribution{}
	var order []key
	for _, c := range agg.columns {
		k := key{c.TableName, c.ColumnName}
		if _, ok := byKey[k]; !ok {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], c)
	}

	for _, k := range order {
		contribs := byKey[k]
		var types, descs []string
		var sources []int
		required := false
		for _, c := range contribs {
			types = append(types, c.VariableType)
			descs = append(descs, c.Description)
			sources = append(sources, c.source)
			if c.RequiredFlag {
				required = true
			}
		}
		typeVote := tally(types, sources)
		descVote := tally(descs, sources)
		subjectKey := k.table + "." + k.column
		mergedDesc := resolveFreeText(ctx, llm, llmgateway.PromptMergeColumn, subjectKey, "description", descVote)

		res.Columns = append(res.Columns, model.ColumnMetadata{
			TableName: k.table, ColumnName: k.column, VariableType: typeVote.winner,
			Description: mergedDesc, RequiredFlag: required,
		})
		recordConflict(res, model.ConflictColumn, subjectKey, "variable_type", typeVote, "most-common-wins")
		recordConflict(res, model.ConflictColumn, subjectKey, "description", descVote, "LLM-reconciled or most-common-wins")
	}
}

func resolveJoins(ctx context.Context, llm LLMResolver, agg *aggregate, baseline *Result, res *Result) {
	// Keyed by table pair and predicate: different joining conditions
	// for the same pair stay separate rows; only exact duplicates merge.
	type key struct{ a, b, cond string }
	byKey := map[key][]joinContribution{}
	var order []key
	for _, c := range agg.joins {
		k := key{c.Table1, c.Table2, c.JoiningCondition}
		if c.Table1 > c.Table2 {
			k = key{c.Table2, c.Table1, c.JoiningCondition}
		}
		if _, ok := byKey[k]; !ok {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], c)
	}

	for _, k := range order {
		contribs := byKey[k]
		var conds, types, remarks []string
		var sources []int
		for _, c := range contribs {
			conds = append(conds, c.JoiningCondition)
			types = append(types, string(c.JoiningType))
			remarks = append(remarks, c.Remarks)
			sources = append(sources, c.source)
		}
		condVote := tally(conds, sources)
		typeVote := tally(types, sources)
		remarksVote := tally(remarks, sources)
		subjectKey := k.a + "<->" + k.b
		mergedRemarks := resolveFreeText(ctx, llm, llmgateway.PromptMergeJoin, subjectKey, "remarks", remarksVote)

		res.Joins = append(res.Joins, model.JoiningCondition{
			Table1: k.a, Table2: k.b, JoiningCondition: condVote.winner,
			JoiningType: model.JoiningType(typeVote.winner), Remarks: mergedRemarks,
		})
		recordConflict(res, model.ConflictJoin, subjectKey, "joining_type", typeVote, "most-common-wins")
		recordConflict(res, model.ConflictJoin, subjectKey, "remarks", remarksVote, "LLM-reconciled or most-common-wins")
	}
}

type mergeConflictResolvePromptData struct {
	SubjectKey string
	Field      string
	Values     string
}

func resolveTerms(ctx context.Context, llm LLMResolver, agg *aggregate, baseline *Result, res *Result) {
	byTerm := map[string][]termContribution{}
	var order []string
	for _, c := range agg.terms {
		key := string(c.Type) + ":" + c.Term
		if _, ok := byTerm[key]; !ok {
			order = append(order, key)
		}
		byTerm[key] = append(byTerm[key], c)
	}

	for _, key := range order {
		contribs := byTerm[key]
		var defs []string
		var sources []int
		aliasSet := map[string]bool{}
		for _, c := range contribs {
			defs = append(defs, c.Definition)
			sources = append(sources, c.source)
			for _, a := range c.BusinessAlias {
				aliasSet[a] = true
			}
		}
		defVote := tally(defs, sources)

		resolution := resolveFreeText(ctx, llm, llmgateway.PromptMergeTerm, key, "definition", defVote)

		var aliases []string
		for a := range aliasSet {
			aliases = append(aliases, a)
		}

		res.Terms = append(res.Terms, model.TermDefinition{
			Term: contribs[0].Term, Type: contribs[0].Type, Definition: resolution, BusinessAlias: aliases,
		})
		recordConflict(res, model.ConflictTerm, key, "definition", defVote, "LLM-reconciled or most-common-wins")
	}
}

func recordConflict(res *Result, kind model.ConflictKind, subject, field string, vote voteResult, resolution string) {
	if vote.distinct < 2 {
		return
	}
	res.Conflicts = append(res.Conflicts, model.ConflictRecord{
		Kind: kind, SubjectKey: subject, Field: field,
		Sources: vote.sources, Values: vote.values, Resolution: resolution + ": " + vote.winner,
	})
}

func joinValues(values []string) string {
	out := ""
	for i, v := range values {
		if i > 0 {
			out += " | "
		}
		out += v
	}
	return out
}
