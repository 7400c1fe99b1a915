package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/docuchat/docuchat/internal/core/domain"
	"github.com/docuchat/docuchat/internal/core/ports"
)

const (
	promptForQuestion = "Please provide a question."
	noAnswerReply     = "I don't know."

	defaultContextChars = 4000
)

const answerSystemPrompt = `You are a strict document Q&A assistant.
Only answer using the provided Context. If the answer is not in the Context, reply exactly: I don't know.
Prefer verbatim facts (versions, dates, numbers). Be concise. Do not invent anything.`

// retriever is what the orchestrator needs from the ranking layer.
type retriever interface {
	Retrieve(ctx context.Context, tenantID, question string, topK int) ([]domain.RetrievedChunk, error)
}

type AskConfig struct {
	TopK             int
	ContextCharLimit int
}

// AskUseCase orchestrates one question: retrieve, cite, generate. Every
// failure on the way degrades to a usable textual answer; the HTTP caller
// never sees an error from this path.
type AskUseCase struct {
	retriever retriever
	generator ports.AnswerGenerator
	hints     []*regexp.Regexp
	cfg       AskConfig
}

func NewAskUseCase(r retriever, generator ports.AnswerGenerator, hints []*regexp.Regexp, cfg AskConfig) *AskUseCase {
	if cfg.ContextCharLimit <= 0 {
		cfg.ContextCharLimit = defaultContextChars
	}
	return &AskUseCase{
		retriever: r,
		generator: generator,
		hints:     hints,
		cfg:       cfg,
	}
}

func (uc *AskUseCase) Ask(ctx context.Context, tenant *domain.Tenant, question string) (*domain.Answer, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return &domain.Answer{Answer: promptForQuestion, Citations: []domain.Citation{}}, nil
	}

	ranked, err := uc.retriever.Retrieve(ctx, tenant.ID, q, uc.cfg.TopK)
	if err != nil {
		slog.Warn("retrieval_failed", "tenant", tenant.Name, "error", err)
		ranked = nil
	}
	citations := buildCitations(q, ranked, uc.hints)

	out := &domain.Answer{Answer: uc.generate(ctx, q, citations), Citations: citations}
	if out.Answer == "" {
		out.Answer = fallbackAnswer(citations)
		out.Fallback = true
		out.FallbackReason = uc.fallbackReason(citations)
	}
	return out, nil
}

func (uc *AskUseCase) fallbackReason(citations []domain.Citation) string {
	switch {
	case len(citations) == 0:
		return "no_citations"
	case uc.generator == nil:
		return "no_generator"
	default:
		return "generator_unavailable"
	}
}

func (uc *AskUseCase) generate(ctx context.Context, question string, citations []domain.Citation) string {
	if uc.generator == nil || len(citations) == 0 {
		return ""
	}
	text, err := uc.generator.Generate(ctx, buildAskPrompt(question, citations, uc.cfg.ContextCharLimit))
	if err != nil {
		slog.Warn("llm_generate_failed", "error", err)
		return ""
	}
	return strings.TrimSpace(text)
}

// fallbackAnswer is the deterministic answer used when no model is
// configured, the call failed, or the model returned nothing.
func fallbackAnswer(citations []domain.Citation) string {
	if len(citations) == 0 {
		return noAnswerReply
	}
	lead := citations[0]
	page := ""
	if lead.Page != nil {
		page = fmt.Sprintf(" (p.%d)", *lead.Page)
	}
	quote := lead.Quote
	if quote == "" {
		quote = lead.Snippet
	}
	return fmt.Sprintf("According to %s%s: %s", lead.Doc, page, quote)
}

func buildAskPrompt(question string, citations []domain.Citation, charLimit int) string {
	return fmt.Sprintf(`%s

Context:
%s

Question:
%s

Return format:
1) One short final answer.
2) Then the exact supporting sentence from Context in quotes (if any).
If no support exists in Context, respond exactly: I don't know.`,
		answerSystemPrompt, buildContextBlock(citations, charLimit), question)
}

// buildContextBlock assembles the bounded context the model sees. Entries
// keep ranked order and carry doc/page/chunk labels for attribution. The
// entry that crosses the cap is truncated mid-text rather than dropped.
func buildContextBlock(citations []domain.Citation, charLimit int) string {
	if charLimit <= 0 {
		charLimit = defaultContextChars
	}

	parts := make([]string, 0, len(citations))
	used := 0
	for _, c := range citations {
		page := "-"
		if c.Page != nil {
			page = strconv.Itoa(*c.Page)
		}

		body := make([]string, 0, 2)
		quote := strings.TrimSpace(c.Quote)
		snippet := strings.TrimSpace(c.Snippet)
		if quote != "" {
			body = append(body, fmt.Sprintf("QUOTE: %q", quote))
		}
		if snippet != "" && snippet != quote {
			body = append(body, "SNIPPET: "+snippet)
		}
		if len(body) == 0 {
			continue
		}

		seg := fmt.Sprintf("[DOC:%s | PAGE:%s | CHUNK:%s]\n%s\n", c.Doc, page, c.ChunkID, strings.Join(body, "\n"))
		segRunes := []rune(seg)
		if used+len(segRunes) > charLimit {
			segRunes = segRunes[:charLimit-used]
			seg = string(segRunes)
		}
		if seg == "" {
			break
		}
		parts = append(parts, seg)
		used += len(segRunes)
		if used >= charLimit {
			break
		}
	}

	if len(parts) == 0 {
		return "(no context)"
	}
	return strings.Join(parts, "\n---\n")
}
