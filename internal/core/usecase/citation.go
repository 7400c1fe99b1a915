package usecase

import (
	"regexp"

	"github.com/docuchat/docuchat/internal/core/domain"
)

// buildCitations enriches ranked chunks with a supporting quote each. The
// quote falls back to the snippet, so it is only empty when the chunk text
// itself is.
func buildCitations(question string, ranked []domain.RetrievedChunk, hints []*regexp.Regexp) []domain.Citation {
	out := make([]domain.Citation, 0, len(ranked))
	for _, chunk := range ranked {
		quote := bestSentence(question, chunk.Text, hints)
		if quote == "" {
			quote = chunk.Snippet
		}
		out = append(out, domain.Citation{
			Doc:     chunk.DocName,
			DocID:   chunk.DocumentID,
			Page:    chunk.Page,
			ChunkID: chunk.ChunkID,
			Snippet: chunk.Snippet,
			Quote:   quote,
		})
	}
	return out
}
