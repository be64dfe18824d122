package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rvaldezm/docscope/internal/core/domain"
	"github.com/rvaldezm/docscope/internal/core/ports"
)

// IngestBatchUseCase composes extract → chunk → embed → upsert for one or
// many files, isolating per-file failures. A batch with zero successes is a
// hard failure for the whole call.
//
// Cancellation note: if the enclosing request is aborted, in-flight
// per-file tasks run to completion and the caller discards the result.
type IngestBatchUseCase struct {
	catalog   ports.DocumentCatalog
	sessions  ports.SessionStore
	extractor ports.TextExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
	index     ports.VectorIndex
	queue       ports.StatusQueue
	logger      *slog.Logger
	instruments ports.PipelineInstruments

	categoryLimit int
	fileFanout    int
	embedFanout   int
}

func NewIngestBatchUseCase(
	catalog ports.DocumentCatalog,
	sessions ports.SessionStore,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	index ports.VectorIndex,
	queue ports.StatusQueue,
	logger *slog.Logger,
	categoryLimit, fileFanout, embedFanout int,
) *IngestBatchUseCase {
	if categoryLimit <= 0 {
		categoryLimit = 20
	}
	if fileFanout <= 0 {
		fileFanout = 4
	}
	if embedFanout <= 0 {
		embedFanout = 8
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestBatchUseCase{
		catalog:       catalog,
		sessions:      sessions,
		extractor:     extractor,
		chunker:       chunker,
		embedder:      embedder,
		index:         index,
		queue:         queue,
		logger:        logger,
		instruments:   noopInstruments{},
		categoryLimit: categoryLimit,
		fileFanout:    fileFanout,
		embedFanout:   embedFanout,
	}
}

// WithInstruments attaches the metric registry; per-file durations and
// indexed chunk counts are recorded through it.
func (uc *IngestBatchUseCase) WithInstruments(in ports.PipelineInstruments) *IngestBatchUseCase {
	if in != nil {
		uc.instruments = in
	}
	return uc
}

func (uc *IngestBatchUseCase) IngestBatch(ctx context.Context, sessionID string, files []domain.FileUpload) (*domain.BatchResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("ingest batch: no files supplied")
	}

	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	scope, err := uc.targetScope(ctx, session, len(files))
	if err != nil {
		return nil, err
	}

	outcomes := make([]domain.FileOutcome, len(files))
	var group sync.WaitGroup
	sem := make(chan struct{}, uc.fileFanout)
	for i := range files {
		group.Add(1)
		go func(i int) {
			defer group.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[i] = uc.processFile(ctx, session, scope, files[i])
		}(i)
	}
	group.Wait()

	result := &domain.BatchResult{SessionID: sessionID, Scope: scope, Outcomes: outcomes}
	uc.publishStatus(ctx, result)

	if result.Succeeded() == 0 {
		return result, fmt.Errorf("ingest batch: none of %d files could be processed", len(files))
	}
	return result, nil
}

// targetScope picks the write partition for this batch and enforces the
// per-category document limit up front: scope is a precondition of the
// whole request, not a per-item concern.
func (uc *IngestBatchUseCase) targetScope(ctx context.Context, session *domain.Session, incoming int) (domain.Scope, error) {
	if session.GlobalWrite {
		return domain.ScopeGlobal, nil
	}
	if !session.ActiveCategory.Valid() {
		return "", domain.WrapError(domain.ErrScopeConfiguration, "ingest batch",
			fmt.Errorf("active category %q outside the closed set", session.ActiveCategory))
	}

	scope := session.ActiveCategory.Scope()
	count, err := uc.catalog.CountByScope(ctx, scope)
	if err != nil {
		return "", fmt.Errorf("count documents in %s: %w", scope, err)
	}
	if count+incoming > uc.categoryLimit {
		return "", domain.WrapError(domain.ErrCategoryLimit, "ingest batch",
			fmt.Errorf("category %s holds %d documents, batch of %d exceeds limit %d",
				session.ActiveCategory, count, incoming, uc.categoryLimit))
	}
	return scope, nil
}

func (uc *IngestBatchUseCase) processFile(ctx context.Context, session *domain.Session, scope domain.Scope, file domain.FileUpload) domain.FileOutcome {
	outcome := domain.FileOutcome{OriginalName: file.OriginalName}
	start := time.Now()
	defer func() {
		uc.instruments.ObserveFileIngested(string(outcome.Status), time.Since(start))
	}()

	text, err := uc.extractor.Extract(ctx, file)
	if err != nil {
		uc.logger.Warn("file_extraction_failed", "file", file.OriginalName, "error", err)
		outcome.Status = domain.FileFailed
		outcome.Reason = err.Error()
		return outcome
	}
	if strings.TrimSpace(text) == "" {
		// Empty extraction is a warning, not a batch abort.
		uc.logger.Warn("file_extraction_empty", "file", file.OriginalName)
		outcome.Status = domain.FileSkipped
		outcome.Reason = "no text content extracted"
		return outcome
	}

	chunks := uc.chunker.Split(text)
	if len(chunks) == 0 {
		outcome.Status = domain.FileSkipped
		outcome.Reason = "chunking produced zero fragments"
		return outcome
	}

	documentID := newDocumentID(scope, file.OriginalName)
	records, err := uc.embedChunks(ctx, documentID, file.OriginalName, chunks)
	if err != nil {
		outcome.Status = domain.FileFailed
		outcome.Reason = err.Error()
		return outcome
	}

	if err := uc.index.Upsert(ctx, records); err != nil {
		outcome.Status = domain.FileFailed
		outcome.Reason = domain.WrapError(domain.ErrVectorIndex, "upsert chunks", err).Error()
		return outcome
	}
	uc.instruments.AddChunksIndexed(len(records))

	doc := domain.Document{
		ID:           documentID,
		OriginalName: file.OriginalName,
		Scope:        scope,
		ChunkCount:   len(chunks),
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.catalog.Create(ctx, &doc); err != nil {
		outcome.Status = domain.FileFailed
		outcome.Reason = fmt.Sprintf("create catalog entry: %v", err)
		return outcome
	}
	if !scope.IsGlobal() {
		if err := uc.sessions.AppendDocument(ctx, session.ID, session.ActiveCategory, doc); err != nil {
			outcome.Status = domain.FileFailed
			outcome.Reason = fmt.Sprintf("append session document: %v", err)
			return outcome
		}
	}

	uc.logger.Info("file_ingested", "file", file.OriginalName, "document_id", documentID, "chunks", len(chunks), "scope", scope)
	outcome.Status = domain.FileIngested
	outcome.DocumentID = documentID
	outcome.ChunkCount = len(chunks)
	return outcome
}

// embedChunks obtains one embedding per chunk with bounded fan-out; chunk
// counts can reach tens of units per file.
func (uc *IngestBatchUseCase) embedChunks(ctx context.Context, documentID, originalName string, chunks []string) ([]domain.ChunkRecord, error) {
	records := make([]domain.ChunkRecord, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.embedFanout)
	for i := range chunks {
		g.Go(func() error {
			vectors, err := uc.embedder.Embed(gctx, []string{chunks[i]})
			if err != nil {
				return domain.WrapError(domain.ErrEmbedding, fmt.Sprintf("embed chunk %d", i), err)
			}
			if len(vectors) != 1 {
				return domain.WrapError(domain.ErrEmbedding, fmt.Sprintf("embed chunk %d", i),
					fmt.Errorf("expected 1 vector, got %d", len(vectors)))
			}
			records[i] = domain.ChunkRecord{
				ID:            fmt.Sprintf("%s_chunk_%d", documentID, i),
				Vector:        vectors[0],
				DocumentID:    documentID,
				OriginalName:  originalName,
				SequenceIndex: i,
				Text:          chunks[i],
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func (uc *IngestBatchUseCase) publishStatus(ctx context.Context, result *domain.BatchResult) {
	if uc.queue == nil {
		return
	}
	status := domain.IngestionStatus{
		SessionID:  result.SessionID,
		Scope:      result.Scope,
		Succeeded:  result.Succeeded(),
		Failed:     result.Failed(),
		Outcomes:   result.Outcomes,
		FinishedAt: time.Now().UTC(),
	}
	if err := uc.queue.PublishIngestionStatus(ctx, status); err != nil {
		uc.logger.Warn("publish_ingestion_status_failed", "session_id", result.SessionID, "error", err)
	}
}

// newDocumentID builds a human-traceable, never-reused id embedding a
// timestamp and the sanitized filename. Global-partition ids carry the
// "global" prefix, mirroring their partition.
func newDocumentID(scope domain.Scope, originalName string) string {
	prefix := "doc"
	if scope.IsGlobal() {
		prefix = "global"
	}
	return fmt.Sprintf("%s_%d_%s_%s", prefix, time.Now().UnixMilli(), uuid.NewString()[:8], sanitizeFilename(originalName))
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}
