// Package model holds the ground-truth entities of the extraction
// pipeline: per-dashboard artifacts, per-dashboard progress, and the
// merge engine's conflict records. Nothing here performs I/O; see
// pkg/artifactstore for serialization.
package model

import "time"

// ChartType is a closed enum for the chart's visualization kind.
// Unrecognized upstream values degrade to ChartTypeOther rather than
// erroring, since chart type only informs prompt context, never gates
// a phase.
type ChartType string

const (
	ChartTypeBar        ChartType = "bar"
	ChartTypeLine       ChartType = "line"
	ChartTypePie        ChartType = "pie"
	ChartTypeTable      ChartType = "table"
	ChartTypeBigNumber  ChartType = "big_number"
	ChartTypePivotTable ChartType = "pivot_table"
	ChartTypeArea       ChartType = "area"
	ChartTypeScatter    ChartType = "scatter"
	ChartTypeMap        ChartType = "map"
	ChartTypeOther      ChartType = "other"
)

// NormalizeChartType maps an arbitrary upstream string onto the closed enum.
func NormalizeChartType(raw string) ChartType {
	switch ChartType(raw) {
	case ChartTypeBar, ChartTypeLine, ChartTypePie, ChartTypeTable, ChartTypeBigNumber,
		ChartTypePivotTable, ChartTypeArea, ChartTypeScatter, ChartTypeMap:
		return ChartType(raw)
	default:
		return ChartTypeOther
	}
}

// Metric is a single measure expression referenced by a chart (e.g. SUM(amount)).
type Metric struct {
	Label      string `json:"label"`
	Expression string `json:"expression"`
}

// Filter is a single predicate applied by a chart.
type Filter struct {
	Column   string `json:"column"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// TimeRange is the chart's configured time window, if any.
type TimeRange struct {
	Column string `json:"column"`
	Range  string `json:"range"` // e.g. "Last 90 days", "No filter"
}

// ChartRecord is one chart belonging to a dashboard. Charts with no
// SQL are retained but skipped by SQL-consuming phases.
type ChartRecord struct {
	ChartID         int       `json:"chart_id"`
	ChartName       string    `json:"chart_name"`
	ChartType       ChartType `json:"chart_type"`
	DatasetID       int       `json:"dataset_id"`
	DatasetName     string    `json:"dataset_name"`
	DatabaseName    string    `json:"database_name"`
	SQLQuery        *string   `json:"sql_query,omitempty"`
	Metrics         []Metric  `json:"metrics"`
	Columns         []string  `json:"columns"`
	GroupbyColumns  []string  `json:"groupby_columns"`
	Filters         []Filter  `json:"filters"`
	TimeRange       *TimeRange `json:"time_range,omitempty"`
}

// HasSQL reports whether the chart carries a non-empty SQL query.
func (c ChartRecord) HasSQL() bool {
	return c.SQLQuery != nil && *c.SQLQuery != ""
}

// DashboardRecord is the complete header + charts for one dashboard.
type DashboardRecord struct {
	ID        int           `json:"id"`
	Title     string        `json:"title"`
	URL       string        `json:"url"`
	Owner     string        `json:"owner"`
	Tags      []string      `json:"tags"`
	CreatedAt time.Time     `json:"created_at"`
	ChangedAt time.Time     `json:"changed_at"`
	Charts    []ChartRecord `json:"charts"`
}

// DashboardSummary is the lightweight shape returned by tag-based listing.
type DashboardSummary struct {
	ID    int      `json:"id"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

// SourceOrDerived distinguishes physical table columns from
// SQL-computed aliases/expressions.
type SourceOrDerived string

const (
	Source  SourceOrDerived = "SOURCE"
	Derived SourceOrDerived = "DERIVED"
)

// TableColumnRow is the flat per-dashboard table produced by phase 2
// and enriched with datatypes by phase 3.
type TableColumnRow struct {
	TableName      string          `json:"table_name"`
	ColumnName     string          `json:"column_name"`
	Alias          string          `json:"alias"`
	SourceOrDerived SourceOrDerived `json:"source_or_derived"`
	DerivedLogic   string          `json:"derived_logic,omitempty"`
	ChartID        int             `json:"chart_id"`
	ChartLabel     string          `json:"chart_label"`
	Datatype       string          `json:"datatype,omitempty"`
}

// TableMetadata is a phase-4 LLM-produced row describing one table.
type TableMetadata struct {
	TableName           string `json:"table_name"`
	Description         string `json:"description"`
	RefreshFrequency    string `json:"refresh_frequency"`
	Vertical            string `json:"vertical"`
	PartitionColumn     string `json:"partition_column"`
	Remarks             string `json:"remarks"`
	RelationshipContext string `json:"relationship_context"`
}

// ColumnMetadata is a phase-5 LLM-produced row describing one column.
type ColumnMetadata struct {
	TableName     string `json:"table_name"`
	ColumnName    string `json:"column_name"`
	VariableType  string `json:"variable_type"`
	Description   string `json:"description"`
	RequiredFlag  bool   `json:"required_flag"`
}

// JoiningType is the closed set of SQL join kinds the LLM is asked to classify.
type JoiningType string

const (
	JoinInner JoiningType = "INNER"
	JoinLeft  JoiningType = "LEFT"
	JoinRight JoiningType = "RIGHT"
	JoinFull  JoiningType = "FULL"
)

// JoiningCondition is a phase-6 LLM-produced row describing how two
// tables relate.
type JoiningCondition struct {
	Table1           string      `json:"table1"`
	Table2           string      `json:"table2"`
	JoiningCondition string      `json:"joining_condition"`
	JoiningType      JoiningType `json:"joining_type"`
	Remarks          string      `json:"remarks"`
}

// FilterCondition is the phase-7 textual documentation block for one dashboard.
type FilterCondition struct {
	DashboardID int    `json:"dashboard_id"`
	Text        string `json:"text"`
}

// TermType distinguishes a business metric from a general glossary term.
type TermType string

const (
	TermTypeMetric TermType = "metric"
	TermTypeTerm   TermType = "term"
)

// TermDefinition is a phase-8 LLM-produced row defining a business term.
type TermDefinition struct {
	Term           string   `json:"term"`
	Type           TermType `json:"type"`
	Definition     string   `json:"definition"`
	BusinessAlias  []string `json:"business_alias"`
}

// ConflictKind identifies which entity type a conflict record describes.
type ConflictKind string

const (
	ConflictTable  ConflictKind = "table_metadata"
	ConflictColumn ConflictKind = "column_metadata"
	ConflictJoin   ConflictKind = "joining_condition"
	ConflictTerm   ConflictKind = "term_definition"
)

// ConflictRecord documents a lossy merge resolution: >=2 distinct
// source dashboards contributed >=2 distinct values for the same
// field, and the merge engine had to pick one (or LLM-merge free text).
type ConflictRecord struct {
	Kind       ConflictKind `json:"kind"`
	SubjectKey string       `json:"subject_key"`
	Field      string       `json:"field"`
	Sources    []int        `json:"sources"`
	Values     []string     `json:"values"`
	Resolution string       `json:"resolution"`
}
