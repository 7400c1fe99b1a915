package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/docuchat/docuchat/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, tenant_id, filename, mime_type, storage_path, text, size, status, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`,
		doc.ID, doc.TenantID, doc.Filename, doc.MimeType, doc.StoragePath, doc.Text, doc.Size,
		string(doc.Status), doc.Error, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, tenant_id, filename, mime_type, storage_path, text, size, status, error_message, created_at, updated_at
FROM documents
WHERE id = $1
`, id)

	var doc domain.Document
	var status string
	var errMessage sql.NullString

	err := row.Scan(
		&doc.ID, &doc.TenantID, &doc.Filename, &doc.MimeType, &doc.StoragePath, &doc.Text,
		&doc.Size, &status, &errMessage, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	doc.Status = domain.DocumentStatus(status)
	doc.Error = errMessage.String
	return &doc, nil
}

func (r *DocumentRepository) List(ctx context.Context, tenantID string, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT id, tenant_id, filename, mime_type, storage_path, size, status, error_message, created_at, updated_at
FROM documents
WHERE tenant_id = $1
ORDER BY created_at DESC
LIMIT $2
`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Document, 0, limit)
	for rows.Next() {
		var doc domain.Document
		var status string
		var errMessage sql.NullString
		if err := rows.Scan(
			&doc.ID, &doc.TenantID, &doc.Filename, &doc.MimeType, &doc.StoragePath,
			&doc.Size, &status, &errMessage, &doc.CreatedAt, &doc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		doc.Status = domain.DocumentStatus(status)
		doc.Error = errMessage.String
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document rows: %w", err)
	}
	return out, nil
}

// Delete removes a document within its tenant; chunk rows go with it via
// the FK cascade.
func (r *DocumentRepository) Delete(ctx context.Context, tenantID, id string) error {
	res, err := r.db.ExecContext(ctx, `
DELETE FROM documents
WHERE tenant_id = $1 AND id = $2
`, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "delete document", fmt.Errorf("id=%s", id))
	}
	return nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update status rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "update document status", fmt.Errorf("id=%s", id))
	}
	return nil
}

func (r *DocumentRepository) SaveExtractedText(ctx context.Context, id, text string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET text = $2, updated_at = $3
WHERE id = $1
`, id, text, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save extracted text: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save text rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "save extracted text", fmt.Errorf("id=%s", id))
	}
	return nil
}
