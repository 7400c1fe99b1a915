package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/docuchat/docuchat/internal/core/domain"
)

func (rt *Router) createAgentTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		Topic string `json:"topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "parse task request",
			errors.New("invalid json")))
		return
	}

	tenant := tenantFromContext(r.Context())
	start := time.Now()

	task, err := rt.agent.Run(r.Context(), tenant, req.Topic)
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordAgentRun(serviceName, string(domain.TaskStatusFailed), time.Since(start))
		}
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordAgentRun(serviceName, string(task.Status), time.Since(start))
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"task":       task,
		"subject":    task.Subject,
		"report_url": reportURLFor(tenant.Name, task),
	})
}

func reportURLFor(tenantName string, task *domain.Task) string {
	if task.ReportID == "" {
		return ""
	}
	return "/v1/agent/tasks/" + task.ID + "/report?tenant=" + url.QueryEscape(tenantName)
}

func (rt *Router) agentTaskByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/agent/tasks/")
	if id, ok := strings.CutSuffix(rest, "/report"); ok {
		rt.taskReport(w, r, id)
		return
	}
	if rest == "" || strings.Contains(rest, "/") {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "parse path",
			errors.New("task id is required")))
		return
	}

	tenant := tenantFromContext(r.Context())
	task, err := rt.tasks.GetTaskByID(r.Context(), tenant.ID, rest)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (rt *Router) taskReport(w http.ResponseWriter, r *http.Request, taskID string) {
	if taskID == "" || strings.Contains(taskID, "/") {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "parse path",
			errors.New("task id is required")))
		return
	}

	tenant := tenantFromContext(r.Context())
	task, err := rt.tasks.GetTaskByID(r.Context(), tenant.ID, taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	if task.ReportID == "" {
		writeError(w, domain.WrapError(domain.ErrNotFound, "get report",
			errors.New("task has no report yet")))
		return
	}

	report, err := rt.tasks.GetReportByID(r.Context(), tenant.ID, task.ReportID)
	if err != nil {
		writeError(w, err)
		return
	}

	html, err := renderReportHTML(report)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(html)
}
