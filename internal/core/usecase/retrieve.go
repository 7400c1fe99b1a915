package usecase

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/docuchat/docuchat/internal/core/domain"
	"github.com/docuchat/docuchat/internal/core/ports"
)

// RankerConfig carries the retrieval knobs. Blend weights and the candidate
// widening factor default to the historical constants but are deliberately
// configurable.
type RankerConfig struct {
	TopK            int
	CandidateFactor int
	TFIDFWeight     float64
	BM25Weight      float64
}

func (c RankerConfig) normalize() RankerConfig {
	out := c
	if out.TopK <= 0 {
		out.TopK = 4
	}
	if out.CandidateFactor <= 0 {
		out.CandidateFactor = 3
	}
	if out.TFIDFWeight <= 0 && out.BM25Weight <= 0 {
		out.TFIDFWeight = DefaultTFIDFWeight
		out.BM25Weight = DefaultBM25Weight
	}
	return out
}

// RetrieveUseCase ranks a tenant's chunk corpus against a question. A full
// scan per query is fine at the corpus sizes this serves; the TTL cache in
// front absorbs repeat questions.
type RetrieveUseCase struct {
	chunks ports.ChunkRepository
	cache  ports.RetrievalCache
	cfg    RankerConfig
}

func NewRetrieveUseCase(chunks ports.ChunkRepository, cache ports.RetrievalCache, cfg RankerConfig) *RetrieveUseCase {
	return &RetrieveUseCase{
		chunks: chunks,
		cache:  cache,
		cfg:    cfg.normalize(),
	}
}

// Retrieve returns up to topK chunks for the tenant ordered by descending
// hybrid score. An empty corpus yields an empty result, not an error. The
// cache stores the widened candidate list so nearby topK requests reuse one
// ranking computation; its key carries the tenant id, which is the isolation
// invariant.
func (uc *RetrieveUseCase) Retrieve(ctx context.Context, tenantID, question string, topK int) ([]domain.RetrievedChunk, error) {
	if topK <= 0 {
		topK = uc.cfg.TopK
	}
	width := topK * uc.cfg.CandidateFactor
	if width < topK {
		width = topK
	}

	key := retrievalCacheKey(tenantID, question, width)
	if uc.cache != nil {
		if cached, ok := uc.cache.Get(key); ok {
			return trimCandidates(cached, topK), nil
		}
	}

	corpus, err := uc.chunks.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load tenant corpus: %w", err)
	}
	if len(corpus) == 0 {
		return nil, nil
	}

	candidates := rankCorpus(corpus, question, width, uc.cfg.TFIDFWeight, uc.cfg.BM25Weight)
	if uc.cache != nil {
		uc.cache.Set(key, candidates)
	}
	return trimCandidates(candidates, topK), nil
}

func trimCandidates(chunks []domain.RetrievedChunk, limit int) []domain.RetrievedChunk {
	if limit <= 0 || len(chunks) <= limit {
		return chunks
	}
	return chunks[:limit]
}

func retrievalCacheKey(tenantID, question string, width int) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(question))
	return fmt.Sprintf("retrv:%s:%x:%d", tenantID, h.Sum64(), width)
}
