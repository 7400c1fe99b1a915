package domain

// CorpusChunk is a chunk row joined with its document's metadata, as the
// ranker consumes it. The storage layer guarantees every row belongs to the
// requesting tenant.
type CorpusChunk struct {
	ChunkID    string
	DocumentID string
	DocName    string
	Index      int
	Page       *int
	Text       string
}

// RetrievedChunk is one ranked corpus chunk with its blended score.
type RetrievedChunk struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"doc_id"`
	DocName    string  `json:"doc"`
	Index      int     `json:"index"`
	Page       *int    `json:"page"`
	Text       string  `json:"text"`
	Snippet    string  `json:"snippet"`
	Score      float64 `json:"score"`
}

// Citation is a ranked chunk enriched with a single best supporting
// sentence. Built fresh per query, never persisted.
type Citation struct {
	Doc     string `json:"doc"`
	DocID   string `json:"doc_id"`
	Page    *int   `json:"page"`
	ChunkID string `json:"chunk_id"`
	Snippet string `json:"snippet"`
	Quote   string `json:"quote"`
}

type Answer struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`

	// Fallback marks answers produced without the model. Not part of the
	// response body; the HTTP layer reads it for metrics.
	Fallback       bool   `json:"-"`
	FallbackReason string `json:"-"`
}

// LLMHealth is the result of probing the configured generative model.
type LLMHealth struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	APIKeySet bool   `json:"api_key_set"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}
