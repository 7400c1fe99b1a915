package usecase

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/docuchat/docuchat/internal/core/domain"
)

// Default blend weights. Untuned constants inherited from early evaluation
// runs; overridable through config.
const (
	DefaultTFIDFWeight = 0.40
	DefaultBM25Weight  = 0.60
)

const (
	bm25K1      = 1.5
	bm25B       = 0.75
	bm25Epsilon = 0.25

	snippetRunes = 280

	// Guards the max-normalisation of all-zero BM25 scores.
	normEpsilon = 1e-9
)

// rankCorpus scores every corpus chunk against the question with a blend of
// TF-IDF cosine similarity and max-normalised Okapi BM25, then returns up to
// limit results in descending hybrid order. Ties break on document id and
// chunk index so ordering is stable across runs.
func rankCorpus(corpus []domain.CorpusChunk, question string, limit int, tfidfWeight, bm25Weight float64) []domain.RetrievedChunk {
	if len(corpus) == 0 {
		return nil
	}

	corpusTokens := make([][]string, len(corpus))
	for i, chunk := range corpus {
		corpusTokens[i] = splitWordsLower(chunk.Text)
	}
	questionTokens := splitWordsLower(question)

	tfidfSims := tfidfCosineSims(corpusTokens, questionTokens)
	bm25 := bm25Scores(corpusTokens, questionTokens)

	maxBM25 := 0.0
	for _, v := range bm25 {
		if v > maxBM25 {
			maxBM25 = v
		}
	}

	out := make([]domain.RetrievedChunk, len(corpus))
	for i, chunk := range corpus {
		text := strings.TrimSpace(chunk.Text)
		name := chunk.DocName
		if name == "" {
			name = "doc-" + chunk.DocumentID
		}
		out[i] = domain.RetrievedChunk{
			ChunkID:    chunk.ChunkID,
			DocumentID: chunk.DocumentID,
			DocName:    name,
			Index:      chunk.Index,
			Page:       chunk.Page,
			Text:       text,
			Snippet:    snippetOf(text),
			Score:      tfidfWeight*tfidfSims[i] + bm25Weight*(bm25[i]/(maxBM25+normEpsilon)),
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].DocumentID != out[j].DocumentID {
			return out[i].DocumentID < out[j].DocumentID
		}
		return out[i].Index < out[j].Index
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// tfidfCosineSims fits a TF-IDF model over corpus + question and returns the
// cosine similarity of the question vector against every corpus vector.
// No stop-word removal: corpora are multilingual and language-specific
// stop-lists cut real signal. Terms shorter than two runes are ignored,
// smoothed idf = ln((1+N)/(1+df)) + 1, vectors L2-normalised.
func tfidfCosineSims(corpusTokens [][]string, questionTokens []string) []float64 {
	docs := make([][]string, 0, len(corpusTokens)+1)
	docs = append(docs, corpusTokens...)
	docs = append(docs, questionTokens)

	termCounts := make([]map[string]float64, len(docs))
	docFreq := make(map[string]int)
	for i, tokens := range docs {
		tf := make(map[string]float64, len(tokens))
		for _, t := range tokens {
			if utf8.RuneCountInString(t) < 2 {
				continue
			}
			tf[t]++
		}
		for t := range tf {
			docFreq[t]++
		}
		termCounts[i] = tf
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(docFreq))
	for t, df := range docFreq {
		idf[t] = math.Log((1+n)/(1+float64(df))) + 1
	}

	vectors := make([]map[string]float64, len(docs))
	for i, tf := range termCounts {
		vec := make(map[string]float64, len(tf))
		var sumSquares float64
		for t, count := range tf {
			w := count * idf[t]
			vec[t] = w
			sumSquares += w * w
		}
		if sumSquares > 0 {
			norm := math.Sqrt(sumSquares)
			for t := range vec {
				vec[t] /= norm
			}
		}
		vectors[i] = vec
	}

	query := vectors[len(vectors)-1]
	sims := make([]float64, len(corpusTokens))
	for i := range corpusTokens {
		sims[i] = dotSparse(query, vectors[i])
	}
	return sims
}

func dotSparse(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for t, v := range a {
		dot += v * b[t]
	}
	return dot
}

// bm25Scores computes Okapi BM25 scores of the question against every corpus
// document. Negative idf values (terms present in more than half the corpus)
// are floored at epsilon times the mean idf, which keeps very common terms
// from flipping the score sign on tiny corpora.
func bm25Scores(corpusTokens [][]string, questionTokens []string) []float64 {
	n := len(corpusTokens)
	scores := make([]float64, n)
	if n == 0 {
		return scores
	}

	termFreqs := make([]map[string]float64, n)
	docLens := make([]float64, n)
	docFreq := make(map[string]int)
	var totalLen float64
	for i, tokens := range corpusTokens {
		tf := make(map[string]float64, len(tokens))
		for _, t := range tokens {
			tf[t]++
		}
		for t := range tf {
			docFreq[t]++
		}
		termFreqs[i] = tf
		docLens[i] = float64(len(tokens))
		totalLen += docLens[i]
	}
	if len(docFreq) == 0 {
		return scores
	}
	avgLen := totalLen / float64(n)

	idf := make(map[string]float64, len(docFreq))
	var idfSum float64
	var negative []string
	for t, df := range docFreq {
		v := math.Log(float64(n)-float64(df)+0.5) - math.Log(float64(df)+0.5)
		idf[t] = v
		idfSum += v
		if v < 0 {
			negative = append(negative, t)
		}
	}
	floor := bm25Epsilon * (idfSum / float64(len(idf)))
	for _, t := range negative {
		idf[t] = floor
	}

	for i := range corpusTokens {
		tf := termFreqs[i]
		lengthNorm := bm25K1 * (1 - bm25B + bm25B*docLens[i]/avgLen)
		var score float64
		for _, t := range questionTokens {
			f := tf[t]
			if f == 0 {
				continue
			}
			score += idf[t] * (f * (bm25K1 + 1)) / (f + lengthNorm)
		}
		scores[i] = score
	}
	return scores
}

func snippetOf(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetRunes {
		return text
	}
	return string(runes[:snippetRunes]) + "…"
}

// splitWordsLower is the `\w+` word tokenizer shared by the ranking and
// scoring paths: unicode letters, digits and underscore, lower-cased.
func splitWordsLower(s string) []string {
	if s == "" {
		return nil
	}
	tokens := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}
