package ports

import (
	"context"
	"io"

	"github.com/docuchat/docuchat/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, tenant *domain.Tenant, filename, mimeType string, size int64, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous document processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// QuestionAnswerer is the inbound contract for document Q&A.
type QuestionAnswerer interface {
	Ask(ctx context.Context, tenant *domain.Tenant, question string) (*domain.Answer, error)
}

// ResearchAgent runs the canned multi-step research task for a tenant.
type ResearchAgent interface {
	Run(ctx context.Context, tenant *domain.Tenant, topic string) (*domain.Task, error)
}
