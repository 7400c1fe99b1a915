// Package extractor turns stored source files into plain text sections.
// The format is chosen by filename extension; PDF yields one section per
// page, everything else a single section without a page number.
package extractor

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/docuchat/docuchat/internal/core/domain"
	"github.com/docuchat/docuchat/internal/core/ports"
)

type Extractor struct {
	storage ports.ObjectStorage
}

func New(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) ([]domain.Section, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}

	switch strings.ToLower(filepath.Ext(doc.Filename)) {
	case ".pdf":
		return extractPDF(raw)
	case ".xlsx", ".xlsm":
		return extractXLSX(raw)
	default:
		return extractPlaintext(raw, doc.Filename)
	}
}
