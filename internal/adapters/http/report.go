package httpadapter

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/docuchat/docuchat/internal/core/domain"
)

var reportMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// renderReportHTML converts the stored Markdown report into a minimal
// standalone HTML page.
func renderReportHTML(report *domain.Report) ([]byte, error) {
	var body bytes.Buffer
	if err := reportMarkdown.Convert([]byte(report.ContentMD), &body); err != nil {
		return nil, fmt.Errorf("render report markdown: %w", err)
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s</body>
</html>
`, html.EscapeString(report.Title), body.String())
	return page.Bytes(), nil
}
