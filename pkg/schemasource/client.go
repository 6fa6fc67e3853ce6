// Package schemasource implements the Schema Source Client from
// spec.md §4.2: resolving column datatypes for a set of tables via
// DESCRIBE queries against the query engine, bounded to a small worker
// pool since each DESCRIBE is its own round trip.
package schemasource

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	dserrors "github.com/kakumanuram-sai-ram/metamind-sub000/pkg/shared/errors"
	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/shared/workerpool"
)

// DefaultWorkers is the default DESCRIBE concurrency, per spec.md §5.
const DefaultWorkers = 4

// ColumnDescription is one row of a DESCRIBE result.
type ColumnDescription struct {
	TableName  string
	ColumnName string
	DataType   string
}

// Client runs DESCRIBE queries against the query engine that fronts
// the data catalog (Presto/Trino/Hive-style `DESCRIBE <table>`).
type Client struct {
	db      *sqlx.DB
	workers int
}

// New builds a Client over an already-open *sqlx.DB. workers bounds
// concurrent DESCRIBE statements; 0 uses DefaultWorkers.
func New(db *sqlx.DB, workers int) *Client {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Client{db: db, workers: workers}
}

// TableResult is one table's DESCRIBE outcome. Err is non-nil when
// that single table's DESCRIBE failed; callers treat per-table
// failures as non-fatal per spec.md §4.2.
type TableResult struct {
	TableName string
	Columns   []ColumnDescription
	Err       error
}

// Describe runs `DESCRIBE <table>` for every table name, at most
// c.workers concurrently, and returns one TableResult per input table
// (order matches input order).
func (c *Client) Describe(ctx context.Context, tableNames []string) []TableResult {
	results := make([]TableResult, len(tableNames))
	errs := workerpool.Run(ctx, c.workers, tableNames, false, func(ctx context.Context, table string) error {
		idx := indexOf(tableNames, table)
		cols, err := c.describeOne(ctx, table)
		results[idx] = TableResult{TableName: table, Columns: cols, Err: err}
		return err
	})
	_ = errs // per-table errors are already captured in results
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

func (c *Client) describeOne(ctx context.Context, table string) ([]ColumnDescription, error) {
	rows, err := c.db.QueryxContext(ctx, fmt.Sprintf("DESCRIBE %s", table))
	if err != nil {
		return nil, dserrors.FailedToWithDetails("describe table", "schema_source", table, err)
	}
	defer rows.Close()

	var out []ColumnDescription
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return nil, err
		}
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, dserrors.FailedToWithDetails("scan describe row", "schema_source", table, err)
		}
		// Column/Type (or column_name/data_type) are always the first
		// two positions regardless of engine naming convention.
		colName := fmt.Sprintf("%v", vals[0])
		dataType := fmt.Sprintf("%v", vals[1])
		out = append(out, ColumnDescription{TableName: table, ColumnName: colName, DataType: dataType})
	}
	return out, rows.Err()
}
