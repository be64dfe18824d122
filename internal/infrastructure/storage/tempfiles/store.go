// Package tempfiles stages uploaded files on local disk for the duration
// of one ingestion batch. Staged files are removed when the batch scope is
// closed, on every exit path.
package tempfiles

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

type Store struct {
	basePath string
}

func New(basePath string) (*Store, error) {
	if basePath == "" {
		basePath = filepath.Join(os.TempDir(), "docscope-uploads")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// NewBatch opens a staging scope for one ingestion batch.
func (s *Store) NewBatch() *Batch {
	return &Batch{store: s}
}

// Batch tracks files staged for a single ingestion run.
type Batch struct {
	store *Store

	mu    sync.Mutex
	paths []string
}

// Save writes data to a unique file under the staging dir and records it
// for cleanup.
func (b *Batch) Save(_ context.Context, name string, data io.Reader) (string, error) {
	f, err := os.CreateTemp(b.store.basePath, "upload-*-"+filepath.Base(name))
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}

	if _, err := io.Copy(f, data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write staged file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close staged file: %w", err)
	}

	b.mu.Lock()
	b.paths = append(b.paths, f.Name())
	b.mu.Unlock()
	return f.Name(), nil
}

// Close removes every staged file. The first removal error is returned
// but does not stop the remaining removals.
func (b *Batch) Close() error {
	b.mu.Lock()
	paths := b.paths
	b.paths = nil
	b.mu.Unlock()

	var firstErr error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = fmt.Errorf("remove staged file: %w", err)
		}
	}
	return firstErr
}
