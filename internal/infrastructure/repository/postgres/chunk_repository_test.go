package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/docuchat/docuchat/internal/core/domain"
)

func sampleTime(t *testing.T) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, "2026-08-28T10:00:00Z")
	if err != nil {
		t.Fatalf("parse sample time: %v", err)
	}
	return ts
}

func newChunkRepoWithMock(t *testing.T) (*ChunkRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &ChunkRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestReplaceForDocumentDeletesThenInsertsInOneTx(t *testing.T) {
	repo, mock, done := newChunkRepoWithMock(t)
	defer done()

	doc := &domain.Document{ID: "doc-1", TenantID: "tenant-a"}
	page := 2
	chunks := []domain.Chunk{
		{ID: "ch-0", TenantID: "tenant-a", DocumentID: "doc-1", Index: 0, Text: "first"},
		{ID: "ch-1", TenantID: "tenant-a", DocumentID: "doc-1", Index: 1, Page: &page, Text: "second"},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM chunks").
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO chunks").
		WithArgs("ch-0", "tenant-a", "doc-1", 0, sqlmock.AnyArg(), "first").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO chunks").
		WithArgs("ch-1", "tenant-a", "doc-1", 1, sqlmock.AnyArg(), "second").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.ReplaceForDocument(context.Background(), doc, chunks); err != nil {
		t.Fatalf("ReplaceForDocument() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestReplaceForDocumentRollsBackOnInsertError(t *testing.T) {
	repo, mock, done := newChunkRepoWithMock(t)
	defer done()

	doc := &domain.Document{ID: "doc-1", TenantID: "tenant-a"}
	chunks := []domain.Chunk{
		{ID: "ch-0", TenantID: "tenant-a", DocumentID: "doc-1", Index: 0, Text: "first"},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM chunks").
		WithArgs("doc-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO chunks").
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	if err := repo.ReplaceForDocument(context.Background(), doc, chunks); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListByTenantJoinsDocumentNamesAndPages(t *testing.T) {
	repo, mock, done := newChunkRepoWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{"id", "document_id", "filename", "chunk_index", "page", "text"}).
		AddRow("ch-0", "doc-1", "plan.pdf", 0, int64(1), "page one text").
		AddRow("ch-1", "doc-1", "plan.pdf", 1, nil, "no page text")

	mock.ExpectQuery("SELECT c.id, c.document_id, d.filename").
		WithArgs("tenant-a").
		WillReturnRows(rows)

	corpus, err := repo.ListByTenant(context.Background(), "tenant-a")
	if err != nil {
		t.Fatalf("ListByTenant() error = %v", err)
	}
	if len(corpus) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(corpus))
	}
	if corpus[0].DocName != "plan.pdf" {
		t.Fatalf("expected joined filename, got %q", corpus[0].DocName)
	}
	if corpus[0].Page == nil || *corpus[0].Page != 1 {
		t.Fatalf("expected page 1, got %v", corpus[0].Page)
	}
	if corpus[1].Page != nil {
		t.Fatalf("expected nil page, got %v", *corpus[1].Page)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
