package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/docuchat/docuchat/internal/core/domain"
)

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) CreateTask(ctx context.Context, task *domain.Task) error {
	steps, err := json.Marshal(task.Steps)
	if err != nil {
		return fmt.Errorf("marshal task steps: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO tasks (id, tenant_id, topic, status, subject, steps, report_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`,
		task.ID, task.TenantID, task.Topic, string(task.Status), task.Subject, steps,
		nullString(task.ReportID), task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) UpdateTask(ctx context.Context, task *domain.Task) error {
	steps, err := json.Marshal(task.Steps)
	if err != nil {
		return fmt.Errorf("marshal task steps: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE tasks
SET status = $2, steps = $3, report_id = $4, updated_at = $5
WHERE id = $1
`, task.ID, string(task.Status), steps, nullString(task.ReportID), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrNotFound, "update task", fmt.Errorf("id=%s", task.ID))
	}
	return nil
}

func (r *TaskRepository) GetTaskByID(ctx context.Context, tenantID, id string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, tenant_id, topic, status, subject, steps, report_id, created_at, updated_at
FROM tasks
WHERE tenant_id = $1 AND id = $2
`, tenantID, id)

	var task domain.Task
	var status string
	var steps []byte
	var reportID sql.NullString

	err := row.Scan(
		&task.ID, &task.TenantID, &task.Topic, &status, &task.Subject, &steps,
		&reportID, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get task", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	task.Status = domain.TaskStatus(status)
	task.ReportID = reportID.String
	if len(steps) > 0 {
		if err := json.Unmarshal(steps, &task.Steps); err != nil {
			return nil, fmt.Errorf("unmarshal task steps: %w", err)
		}
	}
	return &task, nil
}

func (r *TaskRepository) CreateReport(ctx context.Context, report *domain.Report) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO reports (id, tenant_id, title, content_md, created_at)
VALUES ($1,$2,$3,$4,$5)
`, report.ID, report.TenantID, report.Title, report.ContentMD, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetReportByID(ctx context.Context, tenantID, id string) (*domain.Report, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, tenant_id, title, content_md, created_at
FROM reports
WHERE tenant_id = $1 AND id = $2
`, tenantID, id)

	var report domain.Report
	err := row.Scan(&report.ID, &report.TenantID, &report.Title, &report.ContentMD, &report.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get report", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan report: %w", err)
	}
	return &report, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
