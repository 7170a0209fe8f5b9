package main

import (
	"context"
	"path/filepath"

	"github.com/hupe1980/palette/blobstore"
)

// readFile reads a local file through the mmap-backed store.
func readFile(ctx context.Context, path string) ([]byte, error) {
	return blobstore.Get(ctx, blobstore.NewLocalStore(filepath.Dir(path)), filepath.Base(path))
}

// writeFile replaces path atomically.
func writeFile(ctx context.Context, path string, data []byte) error {
	return blobstore.NewLocalStore(filepath.Dir(path)).Put(ctx, filepath.Base(path), data)
}
