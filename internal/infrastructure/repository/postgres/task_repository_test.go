package postgres

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/docuchat/docuchat/internal/core/domain"
)

func newTaskRepoWithMock(t *testing.T) (*TaskRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &TaskRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestGetTaskByIDScopesByTenant(t *testing.T) {
	repo, mock, done := newTaskRepoWithMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{
		"id", "tenant_id", "topic", "status", "subject", "steps", "report_id", "created_at", "updated_at",
	}).AddRow(
		"task-1", "tenant-a", "deadlines", string(domain.TaskStatusDone),
		"docuchat.tasks.tenant-a.task-1",
		[]byte(`[{"type":"plan","msg":"Step 1/3: Searching tenant documents"}]`),
		"report-1", sampleTime(t), sampleTime(t),
	)

	mock.ExpectQuery("SELECT id, tenant_id, topic, status").
		WithArgs("tenant-a", "task-1").
		WillReturnRows(rows)

	task, err := repo.GetTaskByID(context.Background(), "tenant-a", "task-1")
	if err != nil {
		t.Fatalf("GetTaskByID() error = %v", err)
	}
	if task.Status != domain.TaskStatusDone {
		t.Fatalf("expected status done, got %s", task.Status)
	}
	if task.ReportID != "report-1" {
		t.Fatalf("expected report id, got %q", task.ReportID)
	}
	if len(task.Steps) != 1 || task.Steps[0].Type != "plan" {
		t.Fatalf("expected decoded steps, got %+v", task.Steps)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetTaskByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newTaskRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, tenant_id, topic, status").
		WithArgs("tenant-b", "task-1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetTaskByID(context.Background(), "tenant-b", "task-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateTaskReturnsDomainNotFoundWhenNoRowsAffected(t *testing.T) {
	repo, mock, done := newTaskRepoWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE tasks").
		WillReturnResult(sqlmock.NewResult(0, 0))

	task := &domain.Task{ID: "missing", Status: domain.TaskStatusFailed}
	err := repo.UpdateTask(context.Background(), task)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetReportByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newTaskRepoWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, tenant_id, title").
		WithArgs("tenant-a", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetReportByID(context.Background(), "tenant-a", "missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
