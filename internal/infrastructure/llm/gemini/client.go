// Package gemini calls the Gemini generateContent REST API. One prompt in,
// one completion out; streaming and multi-turn state stay out of scope.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/docuchat/docuchat/internal/core/domain"
	"github.com/docuchat/docuchat/internal/infrastructure/resilience"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

type Config struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	BaseURL     string
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(cfg Config, executor *resilience.Executor) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1536
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		executor:   executor,
	}
}

type generateRequest struct {
	Contents         []content       `json:"contents"`
	GenerationConfig *generateConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("gemini api key is not configured")
	}

	request := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: &generateConfig{
			Temperature:     c.cfg.Temperature,
			MaxOutputTokens: c.cfg.MaxTokens,
		},
	}

	var response generateResponse
	call := func(ctx context.Context) error {
		path := fmt.Sprintf("/v1beta/models/%s:generateContent", c.cfg.Model)
		return c.postJSON(ctx, path, request, &response, "generate")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "gemini.generate", call, classifyGeminiError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("gemini generate", err)
	}

	return firstCandidateText(response), nil
}

func firstCandidateText(response generateResponse) string {
	var b strings.Builder
	for _, candidate := range response.Candidates {
		for _, p := range candidate.Content.Parts {
			b.WriteString(p.Text)
		}
		break
	}
	return strings.TrimSpace(b.String())
}

// Health probes model metadata without spending generation tokens.
func (c *Client) Health(ctx context.Context) domain.LLMHealth {
	health := domain.LLMHealth{
		Provider:  "gemini",
		Model:     c.cfg.Model,
		APIKeySet: c.cfg.APIKey != "",
	}
	if !health.APIKeySet {
		health.Error = "api key is not configured"
		return health
	}

	path := fmt.Sprintf("/v1beta/models/%s", c.cfg.Model)
	var response struct {
		Name string `json:"name"`
	}
	if err := c.getJSON(ctx, path, &response, "health"); err != nil {
		health.Error = err.Error()
		return health
	}
	health.OK = true
	return health
}
