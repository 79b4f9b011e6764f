package finmind

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanTitle strips markup and collapses whitespace in a headline.
// FinMind passes through publisher titles that sometimes carry <b>/<em> tags or entities.
func CleanTitle(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	text := raw
	if strings.ContainsAny(raw, "<&") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
		if err == nil {
			text = doc.Text()
		}
	}
	return strings.Join(strings.Fields(text), " ")
}
