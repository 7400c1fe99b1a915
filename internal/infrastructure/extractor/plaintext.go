package extractor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/docuchat/docuchat/internal/core/domain"
)

// extractPlaintext covers .txt, .md and anything else that is valid UTF-8.
// Markdown keeps its markup; the splitter and ranker work fine on it.
func extractPlaintext(raw []byte, filename string) ([]domain.Section, error) {
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("unsupported binary format: %s", filename)
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil, nil
	}
	return []domain.Section{{Text: text}}, nil
}
