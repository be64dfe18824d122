package usecase

import (
	"context"
	"fmt"

	"github.com/rvaldezm/docscope/internal/core/domain"
	"github.com/rvaldezm/docscope/internal/core/ports"
)

// ScopeResolver computes the set of document ids eligible for retrieval in
// a session: the active category's list, optionally unioned with the
// global partition. Documents never leak across categories implicitly.
type ScopeResolver struct {
	catalog ports.DocumentCatalog
}

func NewScopeResolver(catalog ports.DocumentCatalog) *ScopeResolver {
	return &ScopeResolver{catalog: catalog}
}

// Resolve returns the searchable ids for the session. An empty result is
// valid: it means no grounding is available, never an error.
func (r *ScopeResolver) Resolve(ctx context.Context, session *domain.Session) ([]string, error) {
	if !session.ActiveCategory.Valid() {
		return nil, domain.WrapError(domain.ErrScopeConfiguration, "resolve scope",
			fmt.Errorf("session %s has active category %q outside the closed set", session.ID, session.ActiveCategory))
	}

	var global []domain.Document
	if session.SearchGlobal {
		docs, err := r.catalog.ListByScope(ctx, domain.ScopeGlobal)
		if err != nil {
			return nil, fmt.Errorf("list global partition: %w", err)
		}
		global = docs
	}
	return SearchableIDs(session, global), nil
}

// SearchableIDs is the pure core of scope resolution: active-category ids
// unioned with the supplied global documents, de-duplicated, in first-seen
// order.
func SearchableIDs(session *domain.Session, global []domain.Document) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0, len(session.ActiveDocuments())+len(global))

	add := func(id string) {
		if _, dup := seen[id]; dup || id == "" {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, doc := range session.ActiveDocuments() {
		add(doc.ID)
	}
	for _, doc := range global {
		add(doc.ID)
	}
	return ids
}
