package domain

import "time"

type TaskStatus string

const (
	TaskStatusQueued  TaskStatus = "queued"
	TaskStatusRunning TaskStatus = "running"
	TaskStatusDone    TaskStatus = "done"
	TaskStatusFailed  TaskStatus = "failed"
)

type TaskStep struct {
	Type string `json:"type"`
	Msg  string `json:"msg"`
}

// Task is one canned research run. It executes synchronously inside the
// request that created it; a process restart mid-run loses progress.
type Task struct {
	ID        string     `json:"id"`
	TenantID  string     `json:"tenant_id"`
	Topic     string     `json:"topic"`
	Status    TaskStatus `json:"status"`
	Subject   string     `json:"subject"`
	Steps     []TaskStep `json:"steps"`
	ReportID  string     `json:"report_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Report struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Title     string    `json:"title"`
	ContentMD string    `json:"content_md"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskEvent is one progress notice published to task subscribers.
type TaskEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}
