package httpadapter

import (
	"net/http"
	"time"

	"github.com/docuchat/docuchat/internal/core/ports"
	"github.com/docuchat/docuchat/internal/observability/metrics"
)

const serviceName = "api"

type RouterConfig struct {
	DefaultTenant    string
	RateLimitRPS     float64
	RateLimitBurst   int
	MaxInFlight      int
	BackpressureWait time.Duration
	ListLimit        int
}

func (c RouterConfig) normalize() RouterConfig {
	if c.DefaultTenant == "" {
		c.DefaultTenant = "public"
	}
	if c.MaxInFlight <= 0 {
		c.MaxInFlight = 64
	}
	if c.BackpressureWait <= 0 {
		c.BackpressureWait = 100 * time.Millisecond
	}
	if c.ListLimit <= 0 {
		c.ListLimit = 200
	}
	return c
}

type Router struct {
	ingest    ports.DocumentIngestor
	answerer  ports.QuestionAnswerer
	agent     ports.ResearchAgent
	docs      ports.DocumentRepository
	tasks     ports.TaskRepository
	tenants   ports.TenantRepository
	generator ports.AnswerGenerator
	metrics   *metrics.HTTPServerMetrics
	cfg       RouterConfig
}

func NewRouter(
	ingest ports.DocumentIngestor,
	answerer ports.QuestionAnswerer,
	agent ports.ResearchAgent,
	docs ports.DocumentRepository,
	tasks ports.TaskRepository,
	tenants ports.TenantRepository,
	generator ports.AnswerGenerator,
	m *metrics.HTTPServerMetrics,
	cfg RouterConfig,
) *Router {
	return &Router{
		ingest:    ingest,
		answerer:  answerer,
		agent:     agent,
		docs:      docs,
		tasks:     tasks,
		tenants:   tenants,
		generator: generator,
		metrics:   m,
		cfg:       cfg.normalize(),
	}
}

func (rt *Router) Handler() http.Handler {
	tenantMux := http.NewServeMux()
	tenantMux.HandleFunc("/v1/documents", rt.documents)
	tenantMux.HandleFunc("/v1/documents/", rt.documentByID)
	tenantMux.HandleFunc("/v1/ask", rt.ask)
	tenantMux.HandleFunc("/v1/agent/tasks", rt.createAgentTask)
	tenantMux.HandleFunc("/v1/agent/tasks/", rt.agentTaskByID)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/llm/health", rt.llmHealth)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}
	mux.Handle("/v1/", tenantMiddleware(tenantMux, rt.tenants, rt.cfg.DefaultTenant))

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.cfg.MaxInFlight, rt.cfg.BackpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) llmHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, rt.generator.Health(r.Context()))
}
