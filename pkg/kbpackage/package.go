// Package kbpackage zips the merged knowledge-base artifacts into a
// single downloadable archive, the boundary emission described at the
// end of spec.md §4.6: everything after this point (loading the
// archive into a vector store, an embeddings pipeline, etc.) is out of
// scope per spec.md's Non-goals.
package kbpackage

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kakumanuram-sai-ram/metamind-sub000/pkg/artifactstore"
)

// Builder zips the merged_metadata directory into a single archive.
type Builder struct {
	store *artifactstore.Store
}

// New builds a Builder over store.
func New(store *artifactstore.Store) *Builder {
	return &Builder{store: store}
}

// Build zips every file under the merged artifacts directory into
// <base>/extracted_meta/knowledge_base.zip and returns its path.
func (b *Builder) Build(ctx context.Context) (string, error) {
	mergedDir := b.store.MergedDir()
	entries, err := os.ReadDir(mergedDir)
	if err != nil {
		return "", fmt.Errorf("kbpackage: read merged dir: %w", err)
	}

	outPath := filepath.Join(b.store.Root(), "knowledge_base.zip")
	tmpPath := outPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("kbpackage: create archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, entry := range entries {
		if ctx.Err() != nil {
			zw.Close()
			return "", ctx.Err()
		}
		if entry.IsDir() {
			continue
		}
		if err := addFileToZip(zw, filepath.Join(mergedDir, entry.Name()), entry.Name()); err != nil {
			zw.Close()
			return "", fmt.Errorf("kbpackage: add %s: %w", entry.Name(), err)
		}
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("kbpackage: finalize archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return "", fmt.Errorf("kbpackage: rename archive into place: %w", err)
	}
	return outPath, nil
}

func addFileToZip(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	return err
}
