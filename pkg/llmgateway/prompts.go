package llmgateway

// PromptName identifies one entry in the gateway's prompt registry.
// The registry is a closed, typed set rather than a free-form
// template lookup: every phase that calls the LLM references one of
// these constants, so a missing or misspelled prompt name fails at
// compile time instead of at runtime.
type PromptName string

const (
	PromptTableMetadata         PromptName = "table_metadata"
	PromptColumnMetadata        PromptName = "column_metadata"
	PromptJoiningCondition      PromptName = "joining_condition"
	PromptFilterCondition       PromptName = "filter_condition"
	PromptTermDefinition        PromptName = "term_definition"
	PromptTableEnrichment       PromptName = "table_enrichment"
	PromptMergeTable            PromptName = "merge_table"
	PromptMergeColumn           PromptName = "merge_column"
	PromptMergeJoin             PromptName = "merge_join"
	PromptMergeTerm             PromptName = "merge_term"
	PromptChartMetricExplainer  PromptName = "chart_metric_explainer"
	PromptGlossaryAliasExpand   PromptName = "glossary_alias_expand"
	PromptDashboardSummary      PromptName = "dashboard_summary"
)

// promptTemplate holds the system instruction and the Go text/template
// body for one registry entry.
type promptTemplate struct {
	system   string
	template string
}

var registry = map[PromptName]promptTemplate{
	PromptTableMetadata: {
		system: "You are a data cataloguer. Describe the given table concisely and factually from its columns and usage context. Respond with a single JSON object matching the requested schema, no prose.",
		template: `Table: {{.TableName}}
Columns observed: {{.Columns}}
Used by charts: {{.ChartContext}}

Produce: description, refresh_frequency, vertical, partition_column, remarks, relationship_context.`,
	},
	PromptColumnMetadata: {
		system: "You are a data cataloguer describing individual columns. Respond with a single JSON object, no prose.",
		template: `Table: {{.TableName}}
Column: {{.ColumnName}} ({{.DataType}})
Observed usage: {{.Usage}}

Produce: variable_type, description, required_flag.`,
	},
	PromptJoiningCondition: {
		system: "You infer how two tables relate from SQL join clauses observed across dashboards. Respond with a single JSON object, no prose.",
		template: `Table1: {{.Table1}}
Table2: {{.Table2}}
Observed join clauses: {{.ObservedJoins}}

Produce: joining_condition, joining_type, remarks.`,
	},
	PromptFilterCondition: {
		system: "You summarize the filter predicates applied throughout a dashboard's charts into documentation prose for a data consumer.",
		template: `Dashboard: {{.DashboardTitle}}
Filters observed across charts: {{.Filters}}

Produce a short paragraph documenting what this dashboard filters by and why, in plain business language.`,
	},
	PromptTermDefinition: {
		system: "You define business metrics and terms used in dashboard titles, chart labels, and metric expressions. Respond with a single JSON object, no prose.",
		template: `Term candidate: {{.Term}}
Observed in: {{.Context}}

Produce: type (metric|term), definition, business_alias (list of synonyms observed).`,
	},
	PromptTableEnrichment: {
		system: "You enrich a table's catalog description using the schema returned by a live DESCRIBE, reconciling it with SQL usage context.",
		template: `Table: {{.TableName}}
DESCRIBE output: {{.DescribeColumns}}
SQL usage: {{.Usage}}

Produce an updated description and partition_column guess.`,
	},
	PromptMergeTable: {
		system: "You reconcile multiple dashboards' free-text descriptions of the same table into one coherent value, preserving every distinct piece of content instead of discarding any.",
		template: `Table: {{.SubjectKey}}
Field: {{.Field}}
Candidate values from different dashboards: {{.Values}}

Produce a single coherent value that preserves the distinct content of each candidate without contradiction.`,
	},
	PromptMergeColumn: {
		system: "You reconcile multiple dashboards' free-text descriptions of the same column into one coherent value, preserving every distinct piece of content instead of discarding any.",
		template: `Column: {{.SubjectKey}}
Field: {{.Field}}
Candidate values from different dashboards: {{.Values}}

Produce a single coherent value that preserves the distinct content of each candidate without contradiction.`,
	},
	PromptMergeJoin: {
		system: "You reconcile multiple dashboards' free-text remarks about the same table join into one coherent value, preserving every distinct piece of content instead of discarding any.",
		template: `Join: {{.SubjectKey}}
Field: {{.Field}}
Candidate values from different dashboards: {{.Values}}

Produce a single coherent value that preserves the distinct content of each candidate without contradiction.`,
	},
	PromptMergeTerm: {
		system: "You reconcile multiple dashboards' free-text definitions of the same business term into one coherent value, preserving every distinct piece of content instead of discarding any.",
		template: `Term: {{.SubjectKey}}
Field: {{.Field}}
Candidate values from different dashboards: {{.Values}}

Produce a single coherent value that preserves the distinct content of each candidate without contradiction.`,
	},
	PromptChartMetricExplainer: {
		system: "You explain what a chart metric computes in plain business language from its SQL expression.",
		template: `Metric label: {{.Label}}
Expression: {{.Expression}}

Produce a one-sentence explanation.`,
	},
	PromptGlossaryAliasExpand: {
		system: "You expand a business term into likely synonyms and abbreviations a business user might type instead.",
		template: `Term: {{.Term}}
Definition: {{.Definition}}

Produce a list of 2-5 plausible aliases.`,
	},
	PromptDashboardSummary: {
		system: "You summarize a dashboard's overall purpose from its title, tags, and chart list.",
		template: `Title: {{.Title}}
Tags: {{.Tags}}
Charts: {{.ChartNames}}

Produce a one-paragraph summary of what this dashboard is for.`,
	},
}
