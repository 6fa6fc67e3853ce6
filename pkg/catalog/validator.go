// Package catalog implements the Table Validator from spec.md §4.3:
// confirming a table reference extracted from SQL actually exists,
// first against a local catalog cache, falling back to a live
// DESCRIBE when the cache is stale or unreachable.
package catalog

import (
	"context"

	"github.com/jmoiron/sqlx"

	dserrors "github.com/kakumanuram-sai-ram/metamind-sub000/pkg/shared/errors"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/shared/workerpool"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/schemasource"
)

// Method records which path produced a table's validity verdict.
type Method string

const (
	MethodMetadata         Method = "METADATA"
	MethodDescribeFallback Method = "DESCRIBE_FALLBACK"
	MethodFailed           Method = "METADATA_FAILED"
)

// Result is one table's validation outcome. Valid is true both when
// the table was confirmed to exist and when validation itself could
// not be performed (MethodFailed): a catalog outage degrades to
// letting the table through rather than dropping it.
type Result struct {
	TableName string
	Valid     bool
	Method    Method
	Error     error
}

// Validator checks table existence against a local Postgres catalog
// cache table, falling back to schemasource.Client.Describe when the
// cache query itself errors (not merely returns zero rows — a clean
// zero-row answer is trusted as "table does not exist").
type Validator struct {
	db          *sqlx.DB
	tableName   string
	describer   *schemasource.Client
	workers     int
}

// New builds a Validator. tableName is the catalog cache table to
// query (spec.md default "active_datasets_snapshot_v3", overridable
// via CATALOG_TABLE_NAME). describer may be nil to disable the
// DESCRIBE fallback.
func New(db *sqlx.DB, tableName string, describer *schemasource.Client, workers int) *Validator {
	if workers <= 0 {
		workers = 4
	}
	return &Validator{db: db, tableName: tableName, describer: describer, workers: workers}
}

// Validate checks every table name, at most v.workers concurrently
// for the catalog-cache lookups, and returns one Result per input
// (order matches input order).
func (v *Validator) Validate(ctx context.Context, tableNames []string) []Result {
	results := make([]Result, len(tableNames))
	_ = workerpool.Run(ctx, v.workers, tableNames, false, func(ctx context.Context, table string) error {
		idx := indexOf(tableNames, table)
		results[idx] = v.validateOne(ctx, table)
		return nil
	})
	return results
}

func indexOf(ss []string, target string) int {
	for i, s := range ss {
		if s == target {
			return i
		}
	}
	return -1
}

func (v *Validator) validateOne(ctx context.Context, table string) Result {
	exists, err := v.queryMetadata(ctx, table)
	if err == nil {
		return Result{TableName: table, Valid: exists, Method: MethodMetadata}
	}

	if v.describer == nil {
		return Result{
			TableName: table,
			Valid:     true,
			Method:    MethodFailed,
			Error:     dserrors.FailedToWithDetails("validate table", "table_validator", table, err),
		}
	}

	fallback := v.describer.Describe(ctx, []string{table})
	if len(fallback) == 1 && fallback[0].Err == nil {
		return Result{TableName: table, Valid: len(fallback[0].Columns) > 0, Method: MethodDescribeFallback}
	}

	combined := err
	if len(fallback) == 1 && fallback[0].Err != nil {
		combined = fallback[0].Err
	}
	// Validation itself could not be performed, not a confirmed
	// absence: degrade defensively and let the table through rather
	// than silently dropping it from the remaining phases.
	return Result{
		TableName: table,
		Valid:     true,
		Method:    MethodFailed,
		Error:     dserrors.FailedToWithDetails("validate table", "table_validator", table, combined),
	}
}

func (v *Validator) queryMetadata(ctx context.Context, table string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM ` + v.tableName + ` WHERE full_table_name = $1)`
	var exists bool
	err := v.db.QueryRowxContext(ctx, query, table).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
