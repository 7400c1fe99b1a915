package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/docuchat/docuchat/internal/core/domain"
)

// extractPDF keeps page boundaries so answers can cite page numbers.
// Pages whose text layer is empty (scans, pure images) are skipped.
func extractPDF(raw []byte) ([]domain.Section, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf: %w", err)
	}

	sections := make([]domain.Section, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract pdf page %d: %w", i, err)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pageNum := i
		sections = append(sections, domain.Section{Page: &pageNum, Text: text})
	}
	return sections, nil
}
