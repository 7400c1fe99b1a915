package config

import "testing"

func TestLoadRetrievalDefaults(t *testing.T) {
	t.Setenv("RAG_TOP_K", "")
	t.Setenv("RAG_CANDIDATE_FACTOR", "")
	t.Setenv("RAG_TFIDF_WEIGHT", "")
	t.Setenv("RAG_BM25_WEIGHT", "")
	t.Setenv("RAG_CACHE_TTL_SECONDS", "")

	cfg := Load()
	if cfg.RAGTopK != 4 {
		t.Fatalf("expected default top_k 4, got %d", cfg.RAGTopK)
	}
	if cfg.RAGCandidateFactor != 3 {
		t.Fatalf("expected default candidate factor 3, got %d", cfg.RAGCandidateFactor)
	}
	if cfg.RAGTFIDFWeight != 0.40 || cfg.RAGBM25Weight != 0.60 {
		t.Fatalf("expected default blend 0.40/0.60, got %v/%v", cfg.RAGTFIDFWeight, cfg.RAGBM25Weight)
	}
	if cfg.RAGCacheTTLSeconds != 60 {
		t.Fatalf("expected default cache ttl 60s, got %d", cfg.RAGCacheTTLSeconds)
	}
}

func TestLoadParsesRetrievalOverrides(t *testing.T) {
	t.Setenv("RAG_TOP_K", "7")
	t.Setenv("RAG_TFIDF_WEIGHT", "0.5")
	t.Setenv("RAG_BM25_WEIGHT", "0.5")
	t.Setenv("RAG_CONTEXT_CHAR_LIMIT", "2000")

	cfg := Load()
	if cfg.RAGTopK != 7 {
		t.Fatalf("expected top_k override 7, got %d", cfg.RAGTopK)
	}
	if cfg.RAGTFIDFWeight != 0.5 || cfg.RAGBM25Weight != 0.5 {
		t.Fatalf("expected blend override 0.5/0.5, got %v/%v", cfg.RAGTFIDFWeight, cfg.RAGBM25Weight)
	}
	if cfg.RAGContextCharLimit != 2000 {
		t.Fatalf("expected context char limit 2000, got %d", cfg.RAGContextCharLimit)
	}
}

func TestLoadFallsBackOnUnparsableNumbers(t *testing.T) {
	t.Setenv("RAG_TOP_K", "lots")
	t.Setenv("API_RATE_LIMIT_RPS", "fast")

	cfg := Load()
	if cfg.RAGTopK != 4 {
		t.Fatalf("expected fallback top_k 4, got %d", cfg.RAGTopK)
	}
	if cfg.APIRateLimitRPS != 20 {
		t.Fatalf("expected fallback rate limit 20, got %v", cfg.APIRateLimitRPS)
	}
}
