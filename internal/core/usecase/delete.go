package usecase

import (
	"context"
	"fmt"

	"github.com/rvaldezm/docscope/internal/core/domain"
	"github.com/rvaldezm/docscope/internal/core/ports"
)

// DeleteDocumentUseCase removes a document everywhere it lives: every chunk
// in the vector index, the catalog record, and the owning session's
// category list. Index deletion runs first so a partial failure never
// leaves searchable chunks behind a missing catalog entry.
type DeleteDocumentUseCase struct {
	catalog  ports.DocumentCatalog
	index    ports.VectorIndex
	sessions ports.SessionStore
}

func NewDeleteDocumentUseCase(catalog ports.DocumentCatalog, index ports.VectorIndex, sessions ports.SessionStore) *DeleteDocumentUseCase {
	return &DeleteDocumentUseCase{catalog: catalog, index: index, sessions: sessions}
}

func (uc *DeleteDocumentUseCase) Delete(ctx context.Context, sessionID, documentID string) error {
	doc, err := uc.catalog.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document: %w", err)
	}

	if err := uc.index.DeleteByDocument(ctx, documentID); err != nil {
		return domain.WrapError(domain.ErrVectorIndex, "delete chunks", err)
	}
	if err := uc.catalog.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("delete catalog entry: %w", err)
	}
	if !doc.Scope.IsGlobal() && sessionID != "" {
		if err := uc.sessions.RemoveDocument(ctx, sessionID, documentID); err != nil {
			return fmt.Errorf("remove session document reference: %w", err)
		}
	}
	return nil
}
