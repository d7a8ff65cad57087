package ai

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLToText strips tags from a sanitized description so prompts carry plain
// text instead of markup.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html // Fallback to original if parsing fails
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
