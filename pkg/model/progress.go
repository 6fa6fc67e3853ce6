package model

import "time"

// OverallStatus is the top-level run state.
type OverallStatus string

const (
	OverallIdle       OverallStatus = "IDLE"
	OverallExtracting OverallStatus = "EXTRACTING"
	OverallMerging    OverallStatus = "MERGING"
	OverallBuildingKB OverallStatus = "BUILDING_KB"
	OverallCompleted  OverallStatus = "COMPLETED"
)

// DashboardStatus is a single dashboard's state machine value.
type DashboardStatus string

const (
	DashboardPending    DashboardStatus = "PENDING"
	DashboardProcessing DashboardStatus = "PROCESSING"
	DashboardCompleted  DashboardStatus = "COMPLETED"
	DashboardError      DashboardStatus = "ERROR"
)

// PhaseNames is the ordered, 1-indexed list of phase engine stage names.
var PhaseNames = []string{
	"",
	"dashboard_extraction",
	"tables_and_columns",
	"schema_enrichment",
	"table_metadata",
	"column_metadata",
	"joining_conditions",
	"filter_conditions",
	"term_definitions",
}

// DashboardProgress is the per-dashboard slice of ProgressState.
type DashboardProgress struct {
	ID             int             `json:"id"`
	Status         DashboardStatus `json:"status"`
	Phase          int             `json:"phase,omitempty"`
	PhaseName      string          `json:"phase_name,omitempty"`
	CurrentFile    string          `json:"current_file,omitempty"`
	CompletedFiles []string        `json:"completed_files"`
	Error          string          `json:"error,omitempty"`
	StartedAt      time.Time       `json:"started_at,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at,omitempty"`
}

// SubStepStatus is shared by the merge and KB-build sub-state machines.
type SubStepStatus string

const (
	SubStepIdle       SubStepStatus = "IDLE"
	SubStepInProgress SubStepStatus = "IN_PROGRESS"
	SubStepCompleted  SubStepStatus = "COMPLETED"
	SubStepFailed     SubStepStatus = "FAILED"
)

// MergeProgress is the merge engine's sub-state.
type MergeProgress struct {
	Status      SubStepStatus `json:"status"`
	CurrentStep string        `json:"current_step,omitempty"`
}

// KBBuildProgress is the knowledge-base packaging sub-state.
type KBBuildProgress struct {
	Status      SubStepStatus `json:"status"`
	CurrentStep string        `json:"current_step,omitempty"`
}

// ProgressState is the single source of truth consumed by the REST
// progress endpoint. All mutations go through the Progress Tracker.
type ProgressState struct {
	RunID            string                     `json:"run_id"`
	OverallStatus    OverallStatus              `json:"overall_status"`
	CurrentOperation string                     `json:"current_operation,omitempty"`
	Dashboards       map[int]DashboardProgress  `json:"dashboards"`
	Merge            MergeProgress              `json:"merge"`
	KBBuild          KBBuildProgress            `json:"kb_build"`
	StartTime        time.Time                  `json:"start_time"`
	LastUpdate       time.Time                  `json:"last_update"`
	CompletedCount   int                        `json:"completed_count"`
	FailedCount      int                        `json:"failed_count"`
}

// Clone returns a deep copy so concurrent readers never observe a
// partially-mutated map underneath a snapshot.
func (p ProgressState) Clone() ProgressState {
	out := p
	out.Dashboards = make(map[int]DashboardProgress, len(p.Dashboards))
	for id, dp := range p.Dashboards {
		cp := dp
		cp.CompletedFiles = append([]string(nil), dp.CompletedFiles...)
		out.Dashboards[id] = cp
	}
	return out
}
