package kbpackage

import (
	"archive/zip"
	"context"
	"testing"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/artifactstore"
)

func TestBuild_ZipsMergedArtifacts(t *testing.T) {
	dir := t.TempDir()
	store := artifactstore.New(dir)
	if err := store.EnsureMergedDir(); err != nil {
		t.Fatal(err)
	}
	if err := artifactstore.WriteCSV(store.MergedDir()+"/table_metadata.csv", []string{"table_name"}, [][]string{{"hive.sales.fact_orders"}}); err != nil {
		t.Fatal(err)
	}

	b := New(store)
	path, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("zip.OpenReader() error = %v", err)
	}
	defer r.Close()

	if len(r.File) != 1 || r.File[0].Name != "table_metadata.csv" {
		t.Errorf("archive contents = %+v, want one table_metadata.csv entry", r.File)
	}
}
