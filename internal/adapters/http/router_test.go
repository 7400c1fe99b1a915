package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/docuchat/docuchat/internal/core/domain"
)

type fakeTenants struct {
	created []string
}

func (f *fakeTenants) GetOrCreate(_ context.Context, name string) (*domain.Tenant, error) {
	f.created = append(f.created, name)
	return &domain.Tenant{ID: "tenant-" + name, Name: name}, nil
}

type fakeIngestor struct {
	uploads []string
}

func (f *fakeIngestor) Upload(_ context.Context, tenant *domain.Tenant, filename, mimeType string, size int64, body io.Reader) (*domain.Document, error) {
	_, _ = io.Copy(io.Discard, body)
	f.uploads = append(f.uploads, filename)
	return &domain.Document{
		ID:       "doc-" + filename,
		TenantID: tenant.ID,
		Filename: filename,
		MimeType: mimeType,
		Size:     size,
		Status:   domain.StatusUploaded,
	}, nil
}

type fakeAnswerer struct {
	lastTenant   string
	lastQuestion string
}

func (f *fakeAnswerer) Ask(_ context.Context, tenant *domain.Tenant, question string) (*domain.Answer, error) {
	f.lastTenant = tenant.Name
	f.lastQuestion = question
	return &domain.Answer{
		Answer:    "According to a.md: fact.",
		Citations: []domain.Citation{{Doc: "a.md", ChunkID: "ch-1", Quote: "fact"}},
	}, nil
}

type fakeAgent struct{}

func (f *fakeAgent) Run(_ context.Context, tenant *domain.Tenant, topic string) (*domain.Task, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "run research task", errors.New("topic is required"))
	}
	return &domain.Task{
		ID:       "task-1",
		TenantID: tenant.ID,
		Topic:    topic,
		Status:   domain.TaskStatusDone,
		Subject:  "docuchat.tasks." + tenant.Name + ".task-1",
		ReportID: "report-1",
	}, nil
}

type fakeDocs struct {
	docs    map[string]*domain.Document
	deleted []string
}

func (f *fakeDocs) Create(context.Context, *domain.Document) error { return nil }

func (f *fakeDocs) GetByID(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get document", errors.New("id="+id))
	}
	return doc, nil
}

func (f *fakeDocs) List(_ context.Context, tenantID string, _ int) ([]domain.Document, error) {
	out := []domain.Document{}
	for _, doc := range f.docs {
		if doc.TenantID == tenantID {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (f *fakeDocs) Delete(_ context.Context, tenantID, id string) error {
	doc, ok := f.docs[id]
	if !ok || doc.TenantID != tenantID {
		return domain.WrapError(domain.ErrNotFound, "delete document", errors.New("id="+id))
	}
	delete(f.docs, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeDocs) UpdateStatus(context.Context, string, domain.DocumentStatus, string) error {
	return nil
}
func (f *fakeDocs) SaveExtractedText(context.Context, string, string) error { return nil }

type fakeTasks struct {
	tasks   map[string]*domain.Task
	reports map[string]*domain.Report
}

func (f *fakeTasks) CreateTask(context.Context, *domain.Task) error { return nil }
func (f *fakeTasks) UpdateTask(context.Context, *domain.Task) error { return nil }

func (f *fakeTasks) GetTaskByID(_ context.Context, tenantID, id string) (*domain.Task, error) {
	task, ok := f.tasks[id]
	if !ok || task.TenantID != tenantID {
		return nil, domain.WrapError(domain.ErrNotFound, "get task", errors.New("id="+id))
	}
	return task, nil
}

func (f *fakeTasks) CreateReport(context.Context, *domain.Report) error { return nil }

func (f *fakeTasks) GetReportByID(_ context.Context, tenantID, id string) (*domain.Report, error) {
	report, ok := f.reports[id]
	if !ok || report.TenantID != tenantID {
		return nil, domain.WrapError(domain.ErrNotFound, "get report", errors.New("id="+id))
	}
	return report, nil
}

type fakeGenerator struct{}

func (f *fakeGenerator) Generate(context.Context, string) (string, error) { return "", nil }

func (f *fakeGenerator) Health(context.Context) domain.LLMHealth {
	return domain.LLMHealth{Provider: "gemini", Model: "gemini-2.5-flash", APIKeySet: false}
}

type testEnv struct {
	handler  http.Handler
	tenants  *fakeTenants
	ingestor *fakeIngestor
	answerer *fakeAnswerer
	docs     *fakeDocs
	tasks    *fakeTasks
}

func newTestEnv(cfg RouterConfig) *testEnv {
	env := &testEnv{
		tenants:  &fakeTenants{},
		ingestor: &fakeIngestor{},
		answerer: &fakeAnswerer{},
		docs:     &fakeDocs{docs: map[string]*domain.Document{}},
		tasks: &fakeTasks{
			tasks:   map[string]*domain.Task{},
			reports: map[string]*domain.Report{},
		},
	}
	router := NewRouter(
		env.ingestor,
		env.answerer,
		&fakeAgent{},
		env.docs,
		env.tasks,
		env.tenants,
		&fakeGenerator{},
		nil,
		cfg,
	)
	env.handler = router.Handler()
	return env
}

func TestAskResolvesTenantFromHeader(t *testing.T) {
	env := newTestEnv(RouterConfig{DefaultTenant: "public"})

	body := bytes.NewBufferString(`{"question":"when does the semester start?"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/ask", body)
	req.Header.Set(tenantHeader, "acme")
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if env.answerer.lastTenant != "acme" {
		t.Fatalf("expected tenant acme, got %q", env.answerer.lastTenant)
	}

	var answer domain.Answer
	if err := json.Unmarshal(res.Body.Bytes(), &answer); err != nil {
		t.Fatalf("decode answer: %v", err)
	}
	if len(answer.Citations) != 1 || answer.Citations[0].Doc != "a.md" {
		t.Fatalf("unexpected citations %+v", answer.Citations)
	}
}

func TestAskFallsBackToQueryParamThenDefaultTenant(t *testing.T) {
	env := newTestEnv(RouterConfig{DefaultTenant: "public"})

	req := httptest.NewRequest(http.MethodPost, "/v1/ask?tenant=beta", strings.NewReader(`{"question":"q"}`))
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)
	if env.answerer.lastTenant != "beta" {
		t.Fatalf("expected tenant from query, got %q", env.answerer.lastTenant)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(`{"question":"q"}`))
	res = httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)
	if env.answerer.lastTenant != "public" {
		t.Fatalf("expected default tenant, got %q", env.answerer.lastTenant)
	}
}

func TestUploadAcceptsMultipleFiles(t *testing.T) {
	env := newTestEnv(RouterConfig{DefaultTenant: "public"})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range []string{"syllabus.pdf", "notes.md"} {
		part, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		_, _ = part.Write([]byte("content of " + name))
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
	if len(env.ingestor.uploads) != 2 {
		t.Fatalf("expected 2 uploads, got %v", env.ingestor.uploads)
	}
}

func TestUploadWithoutFilesFieldReturns400(t *testing.T) {
	env := newTestEnv(RouterConfig{DefaultTenant: "public"})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("note", "no file here")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestDeleteDocumentIsTenantScoped(t *testing.T) {
	env := newTestEnv(RouterConfig{DefaultTenant: "public"})
	env.docs.docs["doc-1"] = &domain.Document{ID: "doc-1", TenantID: "tenant-acme"}

	req := httptest.NewRequest(http.MethodDelete, "/v1/documents/doc-1", nil)
	req.Header.Set(tenantHeader, "other")
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign tenant, got %d", res.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/documents/doc-1", nil)
	req.Header.Set(tenantHeader, "acme")
	res = httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner, got %d: %s", res.Code, res.Body.String())
	}
}

func TestCreateAgentTaskReturnsSubjectAndReportURL(t *testing.T) {
	env := newTestEnv(RouterConfig{DefaultTenant: "public"})

	req := httptest.NewRequest(http.MethodPost, "/v1/agent/tasks", strings.NewReader(`{"topic":"deadlines"}`))
	req.Header.Set(tenantHeader, "acme")
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}

	var resp struct {
		Subject   string `json:"subject"`
		ReportURL string `json:"report_url"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(resp.Subject, "acme") {
		t.Fatalf("expected tenant in subject, got %q", resp.Subject)
	}
	if !strings.HasPrefix(resp.ReportURL, "/v1/agent/tasks/task-1/report") {
		t.Fatalf("unexpected report url %q", resp.ReportURL)
	}
}

func TestCreateAgentTaskWithEmptyTopicReturns400(t *testing.T) {
	env := newTestEnv(RouterConfig{DefaultTenant: "public"})

	req := httptest.NewRequest(http.MethodPost, "/v1/agent/tasks", strings.NewReader(`{"topic":"  "}`))
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestTaskReportRendersHTML(t *testing.T) {
	env := newTestEnv(RouterConfig{DefaultTenant: "public"})
	env.tasks.tasks["task-1"] = &domain.Task{
		ID:       "task-1",
		TenantID: "tenant-acme",
		Status:   domain.TaskStatusDone,
		ReportID: "report-1",
	}
	env.tasks.reports["report-1"] = &domain.Report{
		ID:        "report-1",
		TenantID:  "tenant-acme",
		Title:     "Report: deadlines",
		ContentMD: "# Research Report\n\n## Findings\n- The deadline is 01.10.2025.\n",
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/agent/tasks/task-1/report?tenant=acme", nil)
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if ct := res.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html content type, got %q", ct)
	}
	body := res.Body.String()
	if !strings.Contains(body, "<h1>") || !strings.Contains(body, "01.10.2025") {
		t.Fatalf("expected rendered markdown, got %s", body)
	}
}

func TestLLMHealthReportsProviderState(t *testing.T) {
	env := newTestEnv(RouterConfig{DefaultTenant: "public"})

	req := httptest.NewRequest(http.MethodGet, "/v1/llm/health", nil)
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var health domain.LLMHealth
	if err := json.Unmarshal(res.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Provider != "gemini" || health.APIKeySet {
		t.Fatalf("unexpected health %+v", health)
	}
}

func TestRequestIDHeaderIsEchoed(t *testing.T) {
	env := newTestEnv(RouterConfig{DefaultTenant: "public"})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-123")
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)

	if res.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("expected request id echoed, got %q", res.Header().Get(requestIDHeader))
	}
}
