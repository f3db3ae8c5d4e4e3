// Body text extraction. The API delivers both the raw Markdown source and
// a rendered body_html; the HTML is the more faithful of the two (resolved
// entities, normalized reddit-flavored quirks), so it is converted back to
// Markdown and the raw source kept as fallback.
package normalize

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

// markdownBody converts bodyHTML to Markdown, falling back to the raw
// Markdown source when the HTML is absent or unconvertible. Reddit wraps
// rendered bodies in a <div class="md"> container; only that fragment is
// converted so wrapper markup never leaks into the output.
func markdownBody(bodyHTML, fallback string) string {
	fallback = strings.TrimSpace(fallback)

	html := strings.TrimSpace(bodyHTML)
	if html == "" {
		return fallback
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fallback
	}

	fragment := html
	if sel := doc.Find("div.md"); sel.Length() > 0 {
		inner, err := sel.First().Html()
		if err != nil {
			return fallback
		}
		fragment = inner
	}

	md, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		return fallback
	}

	md = strings.TrimSpace(md)
	if md == "" {
		return fallback
	}
	return md
}
