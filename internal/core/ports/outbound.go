package ports

import (
	"context"
	"io"

	"github.com/docuchat/docuchat/internal/core/domain"
)

// TenantRepository resolves tenants by name, creating them on first use.
type TenantRepository interface {
	GetOrCreate(ctx context.Context, name string) (*domain.Tenant, error)
}

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, tenantID string, limit int) ([]domain.Document, error)
	Delete(ctx context.Context, tenantID, id string) error
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveExtractedText(ctx context.Context, id, text string) error
}

// ChunkRepository persists chunk rows and serves the tenant-scoped corpus.
type ChunkRepository interface {
	ReplaceForDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error
	ListByTenant(ctx context.Context, tenantID string) ([]domain.CorpusChunk, error)
}

// TaskRepository persists research tasks and their reports.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *domain.Task) error
	UpdateTask(ctx context.Context, task *domain.Task) error
	GetTaskByID(ctx context.Context, tenantID, id string) (*domain.Task, error)
	CreateReport(ctx context.Context, report *domain.Report) error
	GetReportByID(ctx context.Context, tenantID, id string) (*domain.Report, error)
}

// ObjectStorage stores uploaded source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// ProgressPublisher fans task progress out to subscribers. Delivery is
// best-effort; a lost notice must not fail the task.
type ProgressPublisher interface {
	PublishTaskEvent(ctx context.Context, subject string, event domain.TaskEvent) error
}

// TextExtractor extracts plain text sections from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) ([]domain.Section, error)
}

// Chunker splits extracted text into fixed-size overlapping chunks.
type Chunker interface {
	Split(text string) []string
}

// AnswerGenerator is the outbound contract for the hosted generative model.
// Generate takes one fully assembled prompt; no streaming, no turn state.
type AnswerGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Health(ctx context.Context) domain.LLMHealth
}

// RetrievalCache is a short-lived cache for ranked candidate lists. Staleness
// and redundant recomputation are acceptable; serving one tenant's entry to
// another is not, so keys must carry tenant identity.
type RetrievalCache interface {
	Get(key string) ([]domain.RetrievedChunk, bool)
	Set(key string, value []domain.RetrievedChunk)
}
