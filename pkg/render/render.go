// Package render turns stored note markup into safe read-only output.
package render

import (
	"html"
	"html/template"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
	strict     = bluemonday.StrictPolicy()
)

// Policy returns the policy for the markup the editing surface produces:
// paragraphs, line breaks and the bold, italic and underline tags.
func Policy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements("p", "div", "br", "strong", "b", "em", "i", "u", "span")
		policy = p
	})
	return policy
}

// HTML sanitizes markup for embedding in a page.
func HTML(markup string) template.HTML {
	return template.HTML(Policy().Sanitize(markup))
}

// Text strips all markup. Block boundaries become spaces.
func Text(markup string) string {
	r := strings.NewReplacer("<br>", " ", "<br/>", " ", "<br />", " ", "</p>", " ", "</div>", " ")
	plain := html.UnescapeString(strict.Sanitize(r.Replace(markup)))
	return strings.Join(strings.Fields(plain), " ")
}

// Excerpt returns at most n runes of the plain text, with an ellipsis when cut.
func Excerpt(markup string, n int) string {
	text := Text(markup)
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:n])) + "…"
}
