package memorystore

import (
	"context"
	"testing"

	"github.com/rvaldezm/docscope/internal/core/domain"
)

func seed(t *testing.T) *Store {
	t.Helper()
	s := New()
	err := s.Upsert(context.Background(), []domain.ChunkRecord{
		{ID: "d1_chunk_0", DocumentID: "d1", Text: "aligned", Vector: []float32{1, 0}},
		{ID: "d1_chunk_1", DocumentID: "d1", Text: "diagonal", Vector: []float32{1, 1}},
		{ID: "d2_chunk_0", DocumentID: "d2", Text: "other doc", Vector: []float32{1, 0}},
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	return s
}

func TestQueryRanksByCosineWithinScope(t *testing.T) {
	s := seed(t)

	fragments, err := s.Query(context.Background(), []float32{1, 0}, 5, domain.ScopeFilter{DocumentIDs: []string{"d1"}})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(fragments) != 2 {
		t.Fatalf("fragments = %+v", fragments)
	}
	if fragments[0].Text != "aligned" || fragments[1].Text != "diagonal" {
		t.Fatalf("ranking wrong: %+v", fragments)
	}
	for _, f := range fragments {
		if f.DocumentID == "d2" {
			t.Fatal("scope filter leaked another document")
		}
	}
}

func TestQueryHonorsTopK(t *testing.T) {
	s := seed(t)
	fragments, err := s.Query(context.Background(), []float32{1, 0}, 1, domain.ScopeFilter{DocumentIDs: []string{"d1"}})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(fragments) != 1 || fragments[0].Text != "aligned" {
		t.Fatalf("fragments = %+v", fragments)
	}
}

func TestQueryEmptyFilter(t *testing.T) {
	s := seed(t)
	fragments, err := s.Query(context.Background(), []float32{1, 0}, 5, domain.ScopeFilter{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if fragments != nil {
		t.Fatalf("expected nil for empty filter, got %+v", fragments)
	}
}

func TestDeleteByDocumentRemovesAllChunks(t *testing.T) {
	s := seed(t)
	if err := s.DeleteByDocument(context.Background(), "d1"); err != nil {
		t.Fatalf("DeleteByDocument() error = %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 surviving chunk, got %d", s.Len())
	}

	fragments, _ := s.Query(context.Background(), []float32{1, 0}, 5, domain.ScopeFilter{DocumentIDs: []string{"d1"}})
	if len(fragments) != 0 {
		t.Fatalf("deleted document still searchable: %+v", fragments)
	}
}

func TestUpsertOverwritesSameChunkID(t *testing.T) {
	s := seed(t)
	err := s.Upsert(context.Background(), []domain.ChunkRecord{
		{ID: "d1_chunk_0", DocumentID: "d1", Text: "replaced", Vector: []float32{0, 1}},
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("re-upsert must not grow the store, got %d", s.Len())
	}
}
