package report

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/wonny/fundlens/internal/contracts"
)

var md = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough),
	// <details> 블록 유지
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: -apple-system, "Noto Sans TC", sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; color: #1f2937; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #d1d5db; padding: 4px 8px; text-align: left; }
th { background: #f3f4f6; }
blockquote { border-left: 4px solid #f59e0b; margin: 0; padding-left: 1rem; color: #92400e; }
</style>
</head>
<body>
%s</body>
</html>
`

// HTML renders the document's markdown as a standalone page
func HTML(doc *Document) ([]byte, error) {
	return renderPage(doc.Title, Markdown(doc))
}

// StockHTML renders one stock as a standalone page
func StockHTML(doc *Document, code string) ([]byte, error) {
	r := doc.Report(code)
	if r == nil {
		return nil, fmt.Errorf("no report for %s", code)
	}
	return StockPage(r)
}

// StockPage renders a single report without a surrounding document
func StockPage(r *contracts.Report) ([]byte, error) {
	return renderPage(fmt.Sprintf("%s (%s)", r.Name, r.Code), StockMarkdown(r))
}

func renderPage(title, source string) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(source), &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return []byte(fmt.Sprintf(pageTemplate, html.EscapeString(title), body.String())), nil
}
