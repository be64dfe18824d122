package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rvaldezm/docscope/internal/core/domain"
	"github.com/rvaldezm/docscope/internal/core/ports"
)

// FragmentDelimiter separates retrieved fragments inside a grounding block.
const FragmentDelimiter = "\n---\n"

// RetrieveUseCase embeds a query once, issues a single filtered
// nearest-neighbor query and returns the topK fragments in descending score
// order. It is a thin composition: no second ranking stage.
type RetrieveUseCase struct {
	embedder    ports.Embedder
	index       ports.VectorIndex
	instruments ports.PipelineInstruments
	topK        int
}

func NewRetrieveUseCase(embedder ports.Embedder, index ports.VectorIndex, topK int) *RetrieveUseCase {
	if topK <= 0 {
		topK = 5
	}
	return &RetrieveUseCase{embedder: embedder, index: index, instruments: noopInstruments{}, topK: topK}
}

// WithInstruments attaches the metric registry; round-trip duration and
// fragment counts are recorded per query.
func (uc *RetrieveUseCase) WithInstruments(in ports.PipelineInstruments) *RetrieveUseCase {
	if in != nil {
		uc.instruments = in
	}
	return uc
}

// Retrieve returns the grounding fragments for the query within the
// searchable ids. An empty id set or an empty result is a valid, silent
// outcome.
func (uc *RetrieveUseCase) Retrieve(ctx context.Context, query string, searchableIDs []string, topK int) ([]domain.RetrievedFragment, error) {
	if len(searchableIDs) == 0 {
		return nil, nil
	}
	vector, err := uc.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, domain.WrapError(domain.ErrEmbedding, "embed query", err)
	}
	return uc.RetrieveVector(ctx, vector, searchableIDs, topK)
}

// RetrieveVector is the variant used when the caller already holds the
// utterance embedding (the detector computes it first on every turn).
func (uc *RetrieveUseCase) RetrieveVector(ctx context.Context, vector []float32, searchableIDs []string, topK int) ([]domain.RetrievedFragment, error) {
	if len(searchableIDs) == 0 {
		return nil, nil
	}
	if topK <= 0 {
		topK = uc.topK
	}

	start := time.Now()
	fragments, err := uc.index.Query(ctx, vector, topK, domain.ScopeFilter{DocumentIDs: searchableIDs})
	if err != nil {
		return nil, domain.WrapError(domain.ErrVectorIndex, "query vector index", err)
	}
	uc.instruments.ObserveRetrieval(time.Since(start), len(fragments))
	return fragments, nil
}

// BuildGroundingBlock concatenates fragments under a framing instruction
// that constrains the completion to the supplied context. The fragment set
// and order are this component's contract; the exact wording belongs to
// the generation collaborator.
func BuildGroundingBlock(fragments []domain.RetrievedFragment) string {
	if len(fragments) == 0 {
		return ""
	}
	texts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		texts = append(texts, f.Text)
	}
	return fmt.Sprintf(
		"Context extracted from attached documents. Answer using only this context.%s%s",
		FragmentDelimiter,
		strings.Join(texts, FragmentDelimiter),
	)
}
