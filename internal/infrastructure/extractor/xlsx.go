package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/docuchat/docuchat/internal/core/domain"
)

// extractXLSX flattens every sheet into tab-separated rows. Sheet names are
// kept as headings so retrieval can still match on them.
func extractXLSX(raw []byte) ([]domain.Section, error) {
	file, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse xlsx: %w", err)
	}
	defer file.Close()

	var b strings.Builder
	for _, sheet := range file.GetSheetList() {
		rows, err := file.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		b.WriteString(sheet)
		b.WriteString("\n")
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line == "" {
				continue
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return nil, nil
	}
	return []domain.Section{{Text: text}}, nil
}
