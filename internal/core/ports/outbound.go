package ports

import (
	"context"
	"time"

	"github.com/rvaldezm/docscope/internal/core/domain"
)

// Embedder maps text to fixed-length vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex stores chunk records and answers filtered nearest-neighbor
// queries. Implementations must treat an empty filter id set as "match
// nothing is allowed" only when the caller supplies it; callers short-cut
// empty scopes before reaching the index.
type VectorIndex interface {
	Upsert(ctx context.Context, records []domain.ChunkRecord) error
	Query(ctx context.Context, vector []float32, topK int, filter domain.ScopeFilter) ([]domain.RetrievedFragment, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}

// TextExtractor turns one uploaded file into plain text. It reads the
// temporary file but never deletes it; cleanup belongs to the caller.
type TextExtractor interface {
	Extract(ctx context.Context, file domain.FileUpload) (string, error)
}

// Chunker splits extracted text into overlapping retrievable units.
type Chunker interface {
	Split(text string) []string
}

// OCRService recognizes text in PDFs and images. Used as the strict
// second step of the PDF fallback chain and as the direct path for images.
type OCRService interface {
	Recognize(ctx context.Context, data []byte, mimeType string) (string, error)
}

// DocumentConverter turns legacy office formats into PDF bytes. Any
// non-success response is a hard error for that file.
type DocumentConverter interface {
	ConvertToPDF(ctx context.Context, data []byte, originalName string) ([]byte, error)
}

// CompletionService generates text; the JSON variant constrains output to a
// single JSON object for structured extraction.
type CompletionService interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteJSON(ctx context.Context, prompt string) (string, error)
}

// DocumentCatalog persists document records per scope.
type DocumentCatalog interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByScope(ctx context.Context, scope domain.Scope) ([]domain.Document, error)
	CountByScope(ctx context.Context, scope domain.Scope) (int, error)
	Delete(ctx context.Context, id string) error
}

// SessionStore is the narrow accessor contract onto the external session
// collaborator: create sessions, read the scoping fields, append document
// references and transcript messages.
type SessionStore interface {
	Create(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	SetActiveCategory(ctx context.Context, sessionID string, category domain.Category) error
	AppendDocument(ctx context.Context, sessionID string, category domain.Category, doc domain.Document) error
	RemoveDocument(ctx context.Context, sessionID string, documentID string) error
	AppendMessage(ctx context.Context, sessionID string, msg domain.Message) error
}

// PipelineInstruments records pipeline counters and timings. Usecases hold
// a no-op implementation until one is attached, so instrumentation never
// becomes a nil check at call sites.
type PipelineInstruments interface {
	ObserveFileIngested(status string, duration time.Duration)
	AddChunksIndexed(n int)
	ObserveRetrieval(duration time.Duration, fragments int)
	IncContextSwitch(category string)
	IncFormSlot(outcome string)
}

// StatusQueue publishes/consumes ingestion status events.
type StatusQueue interface {
	PublishIngestionStatus(ctx context.Context, status domain.IngestionStatus) error
	SubscribeIngestionStatus(ctx context.Context, handler func(context.Context, domain.IngestionStatus) error) error
}
