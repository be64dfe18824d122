package ports

import (
	"context"

	"github.com/rvaldezm/docscope/internal/core/domain"
)

// BatchIngestor is the inbound contract for document upload orchestration.
type BatchIngestor interface {
	IngestBatch(ctx context.Context, sessionID string, files []domain.FileUpload) (*domain.BatchResult, error)
}

// ChatResponder handles one conversational turn: context-switch detection
// first, then scoped retrieval and grounded completion.
type ChatResponder interface {
	StartSession(ctx context.Context, sessionID string) (*domain.Session, error)
	Respond(ctx context.Context, sessionID, utterance string) (*TurnResult, error)
	SwitchCategory(ctx context.Context, sessionID, category string) (*domain.Session, error)
}

// TurnResult is one chat turn's outcome. A detected switch short-circuits
// the turn: Reply holds the trigger's canned confirmation and Sources is
// empty.
type TurnResult struct {
	Reply    string                     `json:"reply"`
	Switched bool                       `json:"switched"`
	Category domain.Category            `json:"category"`
	Sources  []domain.RetrievedFragment `json:"sources,omitempty"`
}

// FormFiller runs structured extraction over per-slot file batches.
type FormFiller interface {
	FillForms(ctx context.Context, filesBySlot map[string][]domain.FileUpload) (map[string]domain.SlotResult, error)
}

// ReportGenerator synthesizes a report from extracted slot JSONs.
type ReportGenerator interface {
	Generate(ctx context.Context, sessionID, kind string, filesBySlot map[string][]domain.FileUpload) (string, error)
}

// DocumentRemover deletes a document from index, catalog and session list.
type DocumentRemover interface {
	Delete(ctx context.Context, sessionID, documentID string) error
}
