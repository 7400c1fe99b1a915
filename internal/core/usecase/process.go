package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/docuchat/docuchat/internal/core/domain"
	"github.com/docuchat/docuchat/internal/core/ports"
)

type ProcessDocumentUseCase struct {
	repo      ports.DocumentRepository
	chunks    ports.ChunkRepository
	extractor ports.TextExtractor
	chunker   ports.Chunker
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	chunks ports.ChunkRepository,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:      repo,
		chunks:    chunks,
		extractor: extractor,
		chunker:   chunker,
	}
}

// ProcessByID runs the ingestion pipeline for one uploaded document:
// extract text sections, persist the full text, rewrite the chunk rows.
// Failures land the document in status=failed with the cause recorded.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	if err := uc.processPipeline(ctx, documentID); err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	sections, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}

	text := joinSections(sections)
	if text == "" {
		return domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}
	if err := uc.repo.SaveExtractedText(ctx, doc.ID, text); err != nil {
		return fmt.Errorf("save extracted text: %w", err)
	}

	chunks := uc.chunkSections(doc, sections)
	if len(chunks) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("chunking produced zero chunks"))
	}
	if err := uc.chunks.ReplaceForDocument(ctx, doc, chunks); err != nil {
		return fmt.Errorf("replace chunk rows: %w", err)
	}
	return nil
}

// chunkSections windows each extracted section separately so PDF chunks keep
// their page number. Chunk indexes run continuously across the document.
func (uc *ProcessDocumentUseCase) chunkSections(doc *domain.Document, sections []domain.Section) []domain.Chunk {
	out := make([]domain.Chunk, 0, len(sections))
	index := 0
	for _, section := range sections {
		for _, piece := range uc.chunker.Split(section.Text) {
			out = append(out, domain.Chunk{
				ID:         uuid.NewString(),
				TenantID:   doc.TenantID,
				DocumentID: doc.ID,
				Index:      index,
				Page:       section.Page,
				Text:       piece,
			})
			index++
		}
	}
	return out
}

func (uc *ProcessDocumentUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.repo.UpdateStatus(ctx, documentID, domain.StatusFailed, processErr.Error())
}

func joinSections(sections []domain.Section) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}
