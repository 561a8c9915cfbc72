package util

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var markupRe = regexp.MustCompile(`<\s*/?\s*[a-zA-Z][a-zA-Z0-9]*[^<>]*>`)

// CleanText collapses runs of whitespace (including nbsp) to single spaces.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// LooksLikeMarkup reports whether s contains something shaped like an HTML tag.
func LooksLikeMarkup(s string) bool {
	return markupRe.MatchString(s)
}

// PlainText reduces listing text that contains HTML tags to its text
// content, keeping line structure from <br> and block elements. The result
// is always entity-escaped text: input without markup is returned unchanged,
// and extracted text (which goquery has already decoded) is re-escaped, so
// the analyzer decodes entities exactly once either way.
func PlainText(s string) string {
	if !LooksLikeMarkup(s) {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})
	doc.Find("script, style").Remove()

	lines := strings.Split(doc.Text(), "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = CleanText(l); l != "" {
			out = append(out, l)
		}
	}
	return html.EscapeString(strings.Join(out, "\n"))
}
