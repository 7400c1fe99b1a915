package usecase

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	dottedDateRe = regexp.MustCompile(`\b\d{1,2}\.\d{1,2}\.\d{4}\b`)
	bareYearRe   = regexp.MustCompile(`\b20\d{2}\b`)
)

// splitSentences splits chunk text on sentence-final punctuation followed by
// whitespace, or on newlines. Non-empty input always yields at least one
// sentence: a chunk that resists splitting comes back whole.
func splitSentences(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	runes := []rune(text)
	parts := make([]string, 0, 8)
	var b strings.Builder
	flush := func() {
		if s := strings.TrimSpace(b.String()); s != "" {
			parts = append(parts, s)
		}
		b.Reset()
	}

	for i, r := range runes {
		if r == '\n' {
			flush()
			continue
		}
		b.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			flush()
		}
	}
	flush()

	if len(parts) == 0 {
		return []string{trimmed}
	}
	return parts
}

// scoreSentence is the heuristic quote scorer. Scores only order sentences
// within one chunk for one question; they are not comparable across
// questions.
func scoreSentence(question, sentence string) float64 {
	lower := strings.ToLower(sentence)
	var score float64

	seen := make(map[string]struct{})
	for _, token := range splitWordsLower(question) {
		if utf8.RuneCountInString(token) < 4 {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		if strings.Contains(lower, token) {
			score += 1.0
		}
	}

	if dottedDateRe.MatchString(sentence) {
		score += 2.0
	}
	if bareYearRe.MatchString(sentence) {
		score += 0.5
	}

	// Length penalty is capped so long sentences still beat empty ones when
	// they carry the only keyword hits.
	score -= math.Min(float64(utf8.RuneCountInString(sentence))/500.0, 0.5)
	return score
}

// bestSentence picks the supporting quote for a chunk. Domain hints run
// first and short-circuit the generic scorer; otherwise the first sentence
// with the maximum score wins.
func bestSentence(question, chunkText string, hints []*regexp.Regexp) string {
	sentences := splitSentences(chunkText)
	if len(sentences) == 0 {
		return ""
	}

	for _, sentence := range sentences {
		for _, hint := range hints {
			if hint.MatchString(sentence) {
				return sentence
			}
		}
	}

	best := ""
	bestScore := math.Inf(-1)
	for _, sentence := range sentences {
		if score := scoreSentence(question, sentence); score > bestScore {
			best, bestScore = sentence, score
		}
	}
	return best
}
