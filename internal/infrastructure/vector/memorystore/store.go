// Package memorystore is an in-process vector index for local development
// and tests. It ranks by cosine similarity and honors the same document-id
// scope filter as the Qdrant adapter.
package memorystore

import (
	"context"
	"sort"
	"sync"

	"github.com/rvaldezm/docscope/internal/core/domain"
	"github.com/rvaldezm/docscope/internal/core/usecase"
)

type Store struct {
	mu      sync.RWMutex
	records map[string]domain.ChunkRecord
}

func New() *Store {
	return &Store{records: make(map[string]domain.ChunkRecord)}
}

func (s *Store) Upsert(_ context.Context, records []domain.ChunkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.records[rec.ID] = rec
	}
	return nil
}

func (s *Store) Query(
	_ context.Context,
	vector []float32,
	topK int,
	filter domain.ScopeFilter,
) ([]domain.RetrievedFragment, error) {
	if len(filter.DocumentIDs) == 0 {
		return nil, nil
	}
	allowed := make(map[string]struct{}, len(filter.DocumentIDs))
	for _, id := range filter.DocumentIDs {
		allowed[id] = struct{}{}
	}

	s.mu.RLock()
	scored := make([]domain.RetrievedFragment, 0, len(s.records))
	for _, rec := range s.records {
		if _, ok := allowed[rec.DocumentID]; !ok {
			continue
		}
		scored = append(scored, domain.RetrievedFragment{
			DocumentID:   rec.DocumentID,
			OriginalName: rec.OriginalName,
			Text:         rec.Text,
			Score:        usecase.CosineSimilarity(vector, rec.Vector),
		})
	}
	s.mu.RUnlock()

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

func (s *Store) DeleteByDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rec := range s.records {
		if rec.DocumentID == documentID {
			delete(s.records, id)
		}
	}
	return nil
}

// Len reports the number of stored chunks. Handy in tests.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
