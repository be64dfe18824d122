package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/rvaldezm/docscope/internal/core/domain"
)

func TestRetrieveEmptyScopeIsSilent(t *testing.T) {
	embedder := &embedderFake{vector: []float32{1}}
	index := &indexFake{}
	uc := NewRetrieveUseCase(embedder, index, 5)

	fragments, err := uc.Retrieve(context.Background(), "query", nil, 0)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if fragments != nil {
		t.Fatalf("expected no fragments, got %v", fragments)
	}
	if len(index.queries) != 0 {
		t.Fatal("index must not be queried for an empty scope")
	}
}

func TestRetrievePassesScopeFilter(t *testing.T) {
	index := &indexFake{fragments: []domain.RetrievedFragment{{DocumentID: "d1", Text: "x"}}}
	uc := NewRetrieveUseCase(&embedderFake{vector: []float32{1}}, index, 5)

	fragments, err := uc.Retrieve(context.Background(), "query", []string{"d1", "d3"}, 0)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(fragments))
	}
	if len(index.queries) != 1 {
		t.Fatalf("expected 1 index query, got %d", len(index.queries))
	}
	got := index.queries[0].DocumentIDs
	if len(got) != 2 || got[0] != "d1" || got[1] != "d3" {
		t.Fatalf("scope filter ids = %v, want [d1 d3]", got)
	}
}

func TestRetrieveRecordsInstruments(t *testing.T) {
	index := &indexFake{fragments: []domain.RetrievedFragment{
		{DocumentID: "d1", Text: "x"},
		{DocumentID: "d1", Text: "y"},
	}}
	instruments := &instrumentsFake{}
	uc := NewRetrieveUseCase(&embedderFake{vector: []float32{1}}, index, 5).
		WithInstruments(instruments)

	if _, err := uc.Retrieve(context.Background(), "query", []string{"d1"}, 0); err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(instruments.retrievals) != 1 || instruments.retrievals[0] != 2 {
		t.Fatalf("retrieval observations = %v, want one entry of 2", instruments.retrievals)
	}

	// An empty scope short-circuits before the index; nothing is observed.
	if _, err := uc.Retrieve(context.Background(), "query", nil, 0); err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(instruments.retrievals) != 1 {
		t.Fatalf("empty scope must not be observed, got %v", instruments.retrievals)
	}
}

func TestRetrieveWrapsIndexError(t *testing.T) {
	index := &indexFake{queryErr: context.DeadlineExceeded}
	uc := NewRetrieveUseCase(&embedderFake{vector: []float32{1}}, index, 5)

	_, err := uc.Retrieve(context.Background(), "query", []string{"d1"}, 0)
	if !domain.IsKind(err, domain.ErrVectorIndex) {
		t.Fatalf("expected ErrVectorIndex, got %v", err)
	}
}

func TestBuildGroundingBlock(t *testing.T) {
	if got := BuildGroundingBlock(nil); got != "" {
		t.Fatalf("empty fragments must yield no block, got %q", got)
	}

	block := BuildGroundingBlock([]domain.RetrievedFragment{
		{Text: "first"},
		{Text: "second"},
	})
	if !strings.HasPrefix(block, "Context extracted from attached documents.") {
		t.Fatalf("missing framing instruction: %q", block)
	}
	if !strings.Contains(block, "first"+FragmentDelimiter+"second") {
		t.Fatalf("fragments must be delimiter-joined in order: %q", block)
	}
}
