package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/schemasource"
)

func TestValidate_MetadataHit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	mock.ExpectQuery("SELECT EXISTS").WithArgs("hive.sales.fact_orders").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	v := New(sqlxDB, "active_datasets_snapshot_v3", nil, 1)
	results := v.Validate(context.Background(), []string{"hive.sales.fact_orders"})

	if len(results) != 1 || !results[0].Valid || results[0].Method != MethodMetadata {
		t.Fatalf("Validate() = %+v, want valid via METADATA", results)
	}
}

func TestValidate_MetadataErrorFallsBackToDescribe(t *testing.T) {
	catalogDB, catalogMock, _ := sqlmock.New()
	catalogSqlx := sqlx.NewDb(catalogDB, "sqlmock")
	catalogMock.ExpectQuery("SELECT EXISTS").WillReturnError(errors.New("connection reset"))

	schemaDB, schemaMock, _ := sqlmock.New()
	schemaSqlx := sqlx.NewDb(schemaDB, "sqlmock")
	schemaMock.ExpectQuery("DESCRIBE hive.sales.fact_orders").WillReturnRows(
		sqlmock.NewRows([]string{"Column", "Type"}).AddRow("order_id", "bigint"),
	)

	v := New(catalogSqlx, "active_datasets_snapshot_v3", schemasource.New(schemaSqlx, 1), 1)
	results := v.Validate(context.Background(), []string{"hive.sales.fact_orders"})

	if len(results) != 1 || !results[0].Valid || results[0].Method != MethodDescribeFallback {
		t.Fatalf("Validate() = %+v, want valid via DESCRIBE_FALLBACK", results)
	}
}

func TestValidate_BothFailuresDefensivelyDegradeToValid(t *testing.T) {
	catalogDB, catalogMock, _ := sqlmock.New()
	catalogSqlx := sqlx.NewDb(catalogDB, "sqlmock")
	catalogMock.ExpectQuery("SELECT EXISTS").WillReturnError(errors.New("connection reset"))

	v := New(catalogSqlx, "active_datasets_snapshot_v3", nil, 1)
	results := v.Validate(context.Background(), []string{"hive.sales.fact_orders"})

	if len(results) != 1 || !results[0].Valid || results[0].Method != MethodFailed || results[0].Error == nil {
		t.Fatalf("Validate() = %+v, want defensively valid METADATA_FAILED with error", results)
	}
}
