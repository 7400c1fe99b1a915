package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/docuchat/docuchat/internal/core/domain"
)

type ChunkRepository struct {
	db *sql.DB
}

func NewChunkRepository(db *sql.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// ReplaceForDocument atomically rewrites a document's chunk rows. Reprocessing
// an upload must not leave a mix of old and new chunks behind.
func (r *ChunkRepository) ReplaceForDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chunk tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = $1`, doc.ID); err != nil {
		return fmt.Errorf("delete old chunks: %w", err)
	}

	for _, chunk := range chunks {
		var page sql.NullInt64
		if chunk.Page != nil {
			page = sql.NullInt64{Int64: int64(*chunk.Page), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO chunks (id, tenant_id, document_id, chunk_index, page, text)
VALUES ($1,$2,$3,$4,$5,$6)
`, chunk.ID, chunk.TenantID, chunk.DocumentID, chunk.Index, page, chunk.Text); err != nil {
			return fmt.Errorf("insert chunk %d: %w", chunk.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chunk tx: %w", err)
	}
	return nil
}

// ListByTenant loads the tenant's whole corpus joined with document names.
// The WHERE clause is the tenant isolation boundary for ranking.
func (r *ChunkRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.CorpusChunk, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT c.id, c.document_id, d.filename, c.chunk_index, c.page, c.text
FROM chunks c
JOIN documents d ON d.id = c.document_id
WHERE c.tenant_id = $1
ORDER BY c.document_id, c.chunk_index
`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list tenant chunks: %w", err)
	}
	defer rows.Close()

	out := make([]domain.CorpusChunk, 0, 64)
	for rows.Next() {
		var chunk domain.CorpusChunk
		var page sql.NullInt64
		if err := rows.Scan(&chunk.ChunkID, &chunk.DocumentID, &chunk.DocName, &chunk.Index, &page, &chunk.Text); err != nil {
			return nil, fmt.Errorf("scan chunk row: %w", err)
		}
		if page.Valid {
			p := int(page.Int64)
			chunk.Page = &p
		}
		out = append(out, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunk rows: %w", err)
	}
	return out, nil
}
