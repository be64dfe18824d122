package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rvaldezm/docscope/internal/config"
	"github.com/rvaldezm/docscope/internal/core/domain"
	"github.com/rvaldezm/docscope/internal/core/ports"
	"github.com/rvaldezm/docscope/internal/core/usecase"
	"github.com/rvaldezm/docscope/internal/infrastructure/chunking"
	"github.com/rvaldezm/docscope/internal/infrastructure/conversion/gotenberg"
	"github.com/rvaldezm/docscope/internal/infrastructure/extractor"
	"github.com/rvaldezm/docscope/internal/infrastructure/llm/ollama"
	"github.com/rvaldezm/docscope/internal/infrastructure/ocr/mistral"
	"github.com/rvaldezm/docscope/internal/infrastructure/queue/nats"
	"github.com/rvaldezm/docscope/internal/infrastructure/repository/postgres"
	"github.com/rvaldezm/docscope/internal/infrastructure/resilience"
	"github.com/rvaldezm/docscope/internal/infrastructure/storage/tempfiles"
	"github.com/rvaldezm/docscope/internal/infrastructure/vector/qdrant"
	"github.com/rvaldezm/docscope/internal/observability/logging"
	"github.com/rvaldezm/docscope/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *metrics.PipelineMetrics

	Queue    ports.StatusQueue
	Catalog  ports.DocumentCatalog
	Sessions ports.SessionStore
	Staging  *tempfiles.Store

	Ingestor ports.BatchIngestor
	Chat     ports.ChatResponder
	Forms    ports.FormFiller
	Reports  ports.ReportGenerator
	Remover  ports.DocumentRemover

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger := logging.New("docscope", cfg.LogLevel, nil)
	pipelineMetrics := metrics.NewPipelineMetrics("docscope")

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	catalog := postgres.NewDocumentCatalog(db)
	if err := catalog.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure catalog schema: %w", err)
	}
	sessions := postgres.NewSessionStore(db)
	if err := sessions.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure session schema: %w", err)
	}

	staging, err := tempfiles.New(cfg.StagingPath)
	if err != nil {
		return nil, fmt.Errorf("init staging store: %w", err)
	}

	executorCfg := resilience.DefaultConfig()
	executorCfg.PaceInterval = cfg.ProviderPaceInterval
	executor := resilience.NewExecutor(executorCfg)

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init status queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	ocr := mistral.NewClient(cfg.OCRBaseURL, cfg.OCRAPIKey, cfg.OCRModel, executor)
	converter := gotenberg.NewClient(cfg.ConversionURL)
	dispatcher := extractor.NewDispatcher(ocr, converter, logging.ForComponent(logger, "extractor"))

	index := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)

	chunker, err := newChunker(cfg)
	if err != nil {
		return nil, err
	}

	triggers, err := config.LoadTriggers(cfg.TriggerTablePath)
	if err != nil {
		return nil, fmt.Errorf("load trigger table: %w", err)
	}
	table, err := prepareTriggerTable(ctx, embedder, triggers)
	if err != nil {
		return nil, fmt.Errorf("prepare trigger table: %w", err)
	}
	detector := usecase.NewContextSwitchDetector(table, cfg.ContextSwitchThreshold)

	forms, reports, err := config.LoadReportSpec(cfg.ReportTemplatesPath)
	if err != nil {
		return nil, fmt.Errorf("load report spec: %w", err)
	}

	scope := usecase.NewScopeResolver(catalog)
	retriever := usecase.NewRetrieveUseCase(embedder, index, cfg.RetrievalTopK).
		WithInstruments(pipelineMetrics)

	ingestor := usecase.NewIngestBatchUseCase(
		catalog, sessions, dispatcher, chunker, embedder, index, queue,
		logging.ForComponent(logger, "ingest"),
		cfg.CategoryDocumentLimit, cfg.IngestFileFanout, cfg.EmbedFanout,
	).WithInstruments(pipelineMetrics)
	formFiller := usecase.NewFormFillUseCase(dispatcher, generator, forms, logging.ForComponent(logger, "forms")).
		WithInstruments(pipelineMetrics)
	reporter := usecase.NewReportUseCase(formFiller, generator, sessions, reports, logging.ForComponent(logger, "reports"))
	remover := usecase.NewDeleteDocumentUseCase(catalog, index, sessions)
	chat := usecase.NewChatTurnUseCase(
		sessions, embedder, detector, scope, retriever, generator,
		logging.ForComponent(logger, "chat"),
		cfg.ScopeIncludeGlobal,
	).WithInstruments(pipelineMetrics)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: pipelineMetrics,

		Queue:    queue,
		Catalog:  catalog,
		Sessions: sessions,
		Staging:  staging,

		Ingestor: ingestor,
		Chat:     chat,
		Forms:    formFiller,
		Reports:  reporter,
		Remover:  remover,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func newChunker(cfg config.Config) (ports.Chunker, error) {
	switch cfg.ChunkStrategy {
	case "", "sentence":
		return chunking.NewSentenceSplitter(cfg.ChunkSize, cfg.ChunkOverlap), nil
	case "fixed":
		return chunking.NewFixedSplitter(cfg.ChunkSize, cfg.ChunkOverlap), nil
	default:
		return nil, fmt.Errorf("unknown chunk strategy %q", cfg.ChunkStrategy)
	}
}

// prepareTriggerTable embeds every trigger phrase once. The result is
// immutable for the process lifetime.
func prepareTriggerTable(ctx context.Context, embedder ports.Embedder, triggers []domain.Trigger) (domain.TriggerTable, error) {
	phrases := make([]string, len(triggers))
	for i, t := range triggers {
		phrases[i] = t.Phrase
	}

	vectors, err := embedder.Embed(ctx, phrases)
	if err != nil {
		return nil, fmt.Errorf("embed trigger phrases: %w", err)
	}
	if len(vectors) != len(triggers) {
		return nil, fmt.Errorf("trigger embedding count mismatch: %d phrases, %d vectors", len(triggers), len(vectors))
	}

	table := make(domain.TriggerTable, len(triggers))
	for i, t := range triggers {
		table[i] = domain.PreparedTrigger{Trigger: t, Vector: vectors[i]}
	}
	return table, nil
}
