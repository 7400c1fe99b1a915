package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docuchat/docuchat/internal/core/domain"
	"github.com/docuchat/docuchat/internal/core/ports"
)

// AgentUseCase runs the canned three-step research task: search the tenant's
// documents, summarize the findings, write a Markdown report. Progress
// notices go out over the task's subject as side effects; publish failures
// are logged, never fatal.
type AgentUseCase struct {
	tasks     ports.TaskRepository
	retriever retriever
	progress  ports.ProgressPublisher
	hints     []*regexp.Regexp
	topK      int
}

func NewAgentUseCase(
	tasks ports.TaskRepository,
	r retriever,
	progress ports.ProgressPublisher,
	hints []*regexp.Regexp,
	topK int,
) *AgentUseCase {
	if topK <= 0 {
		topK = 4
	}
	return &AgentUseCase{
		tasks:     tasks,
		retriever: r,
		progress:  progress,
		hints:     hints,
		topK:      topK,
	}
}

func (uc *AgentUseCase) Run(ctx context.Context, tenant *domain.Tenant, topic string) (*domain.Task, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "run research task", errors.New("topic is required"))
	}

	now := time.Now().UTC()
	task := &domain.Task{
		ID:        uuid.NewString(),
		TenantID:  tenant.ID,
		Topic:     topic,
		Status:    domain.TaskStatusQueued,
		Steps:     []domain.TaskStep{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	task.Subject = TaskSubject(tenant.Name, task.ID)
	if err := uc.tasks.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	task.Status = domain.TaskStatusRunning
	uc.publish(ctx, task, "status", map[string]any{"status": string(task.Status)})

	uc.publish(ctx, task, "plan", map[string]any{"msg": "Step 1/3: Searching documents…"})
	chunks, err := uc.retriever.Retrieve(ctx, tenant.ID, topic, uc.topK)
	if err != nil {
		return uc.fail(ctx, task, fmt.Errorf("search documents: %w", err))
	}
	uc.appendStep(ctx, task, "plan", fmt.Sprintf("retrieved chunks: %d", len(chunks)))

	uc.publish(ctx, task, "plan", map[string]any{"msg": "Step 2/3: Summarizing chunks…"})
	summary := uc.summarize(chunks, topic)
	uc.appendStep(ctx, task, "plan", "summarized")

	uc.publish(ctx, task, "plan", map[string]any{"msg": "Step 3/3: Writing Markdown report…"})
	reportMD := fmt.Sprintf("# Research Report\n\n**Topic:** %s\n\n## Findings\n%s\n", topic, summary)
	report := &domain.Report{
		ID:        uuid.NewString(),
		TenantID:  tenant.ID,
		Title:     "Report: " + topic,
		ContentMD: reportMD,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.tasks.CreateReport(ctx, report); err != nil {
		return uc.fail(ctx, task, fmt.Errorf("create report: %w", err))
	}

	task.ReportID = report.ID
	task.Status = domain.TaskStatusDone
	task.UpdatedAt = time.Now().UTC()
	if err := uc.tasks.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("finish task: %w", err)
	}

	uc.publish(ctx, task, "done", map[string]any{
		"status":     string(task.Status),
		"report_md":  reportMD,
		"report_url": ReportURL(tenant.Name, task.ID),
	})
	return task, nil
}

// summarize turns ranked chunks into a findings bullet list, one best
// sentence per chunk.
func (uc *AgentUseCase) summarize(chunks []domain.RetrievedChunk, topic string) string {
	lines := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		quote := bestSentence(topic, chunk.Text, uc.hints)
		if quote == "" {
			quote = chunk.Snippet
		}
		if quote != "" {
			lines = append(lines, "- "+quote)
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "- No relevant chunks found in your tenant documents.")
	}
	return strings.Join(lines, "\n")
}

func (uc *AgentUseCase) appendStep(ctx context.Context, task *domain.Task, stepType, msg string) {
	task.Steps = append(task.Steps, domain.TaskStep{Type: stepType, Msg: msg})
	task.UpdatedAt = time.Now().UTC()
	if err := uc.tasks.UpdateTask(ctx, task); err != nil {
		slog.Warn("task_step_persist_failed", "task_id", task.ID, "error", err)
	}
}

func (uc *AgentUseCase) publish(ctx context.Context, task *domain.Task, eventType string, data map[string]any) {
	if uc.progress == nil {
		return
	}
	event := domain.TaskEvent{Type: eventType, Data: data}
	if err := uc.progress.PublishTaskEvent(ctx, task.Subject, event); err != nil {
		slog.Warn("task_event_publish_failed", "task_id", task.ID, "type", eventType, "error", err)
	}
}

func (uc *AgentUseCase) fail(ctx context.Context, task *domain.Task, cause error) (*domain.Task, error) {
	task.Status = domain.TaskStatusFailed
	task.UpdatedAt = time.Now().UTC()
	if err := uc.tasks.UpdateTask(ctx, task); err != nil {
		slog.Warn("task_fail_persist_failed", "task_id", task.ID, "error", err)
	}
	uc.publish(ctx, task, "status", map[string]any{"status": string(task.Status), "error": cause.Error()})
	return nil, cause
}

// TaskSubject is the per-tenant, per-task progress subject. Tenant names are
// sanitized so they cannot smuggle subject wildcards.
func TaskSubject(tenantName, taskID string) string {
	return fmt.Sprintf("docuchat.tasks.%s.%s", sanitizeSubjectToken(tenantName), taskID)
}

func ReportURL(tenantName, taskID string) string {
	return fmt.Sprintf("/v1/agent/tasks/%s/report?tenant=%s", taskID, url.QueryEscape(tenantName))
}

func sanitizeSubjectToken(s string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
	if mapped == "" {
		return "default"
	}
	return mapped
}
