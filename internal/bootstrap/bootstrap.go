package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/docuchat/docuchat/internal/config"
	"github.com/docuchat/docuchat/internal/core/ports"
	"github.com/docuchat/docuchat/internal/core/usecase"
	"github.com/docuchat/docuchat/internal/infrastructure/cache"
	"github.com/docuchat/docuchat/internal/infrastructure/chunking"
	"github.com/docuchat/docuchat/internal/infrastructure/extractor"
	"github.com/docuchat/docuchat/internal/infrastructure/llm/gemini"
	"github.com/docuchat/docuchat/internal/infrastructure/queue/nats"
	"github.com/docuchat/docuchat/internal/infrastructure/repository/postgres"
	"github.com/docuchat/docuchat/internal/infrastructure/resilience"
	"github.com/docuchat/docuchat/internal/infrastructure/storage/localfs"
	"github.com/docuchat/docuchat/internal/observability/logging"
)

// App wires configuration, storage, transport and use cases for both the
// api and the worker binaries.
type App struct {
	Config config.Config

	Queue     *nats.Queue
	Tenants   ports.TenantRepository
	Documents ports.DocumentRepository
	Tasks     ports.TaskRepository
	Generator ports.AnswerGenerator

	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	AskUC     ports.QuestionAnswerer
	AgentUC   ports.ResearchAgent

	closeFn func()
}

func New(ctx context.Context, service string, cfg config.Config) (*App, error) {
	slog.SetDefault(logging.NewJSONLogger(service, cfg.LogLevel))

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	tenants := postgres.NewTenantRepository(db)
	documents := postgres.NewDocumentRepository(db)
	chunks := postgres.NewChunkRepository(db)
	tasks := postgres.NewTaskRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSIngestSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	generator := gemini.New(gemini.Config{
		APIKey:      cfg.GeminiAPIKey,
		Model:       cfg.GeminiModel,
		Temperature: cfg.GeminiTemperature,
		MaxTokens:   cfg.GeminiMaxTokens,
		Timeout:     time.Duration(cfg.GeminiTimeoutSec) * time.Second,
	}, executor)

	hints, err := usecase.LoadHints(cfg.HintsPath)
	if err != nil {
		return nil, fmt.Errorf("load domain hints: %w", err)
	}

	retrievalCache := cache.NewTTLCache(time.Duration(cfg.RAGCacheTTLSeconds) * time.Second)
	retrieveUC := usecase.NewRetrieveUseCase(chunks, retrievalCache, usecase.RankerConfig{
		TopK:            cfg.RAGTopK,
		CandidateFactor: cfg.RAGCandidateFactor,
		TFIDFWeight:     cfg.RAGTFIDFWeight,
		BM25Weight:      cfg.RAGBM25Weight,
	})

	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	textExtractor := extractor.New(storage)

	ingestUC := usecase.NewIngestDocumentUseCase(documents, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(documents, chunks, textExtractor, chunker)
	askUC := usecase.NewAskUseCase(retrieveUC, generator, hints, usecase.AskConfig{
		TopK:             cfg.RAGTopK,
		ContextCharLimit: cfg.RAGContextCharLimit,
	})
	agentUC := usecase.NewAgentUseCase(tasks, retrieveUC, queue, hints, cfg.RAGTopK)

	return &App{
		Config: cfg,

		Queue:     queue,
		Tenants:   tenants,
		Documents: documents,
		Tasks:     tasks,
		Generator: generator,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		AskUC:     askUC,
		AgentUC:   agentUC,

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
