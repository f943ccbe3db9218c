package search

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Default selectors used by the theme's search page.
const (
	DefaultInputSelector  = "form.search-form input[name=q]"
	DefaultResultSelector = "#search-results"
)

//go:embed default_page.html
var defaultPage string

// DefaultPage parses the built-in search page.
func DefaultPage() (*goquery.Document, error) {
	return LoadPage(strings.NewReader(defaultPage))
}

// LoadPage parses an HTML search page.
func LoadPage(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return doc, nil
}

// ExtractQuery reads the trimmed value of the first field matching selector.
// A missing field yields an empty query.
func ExtractQuery(doc *goquery.Document, selector string) string {
	if doc == nil {
		return ""
	}
	if selector == "" {
		selector = DefaultInputSelector
	}
	value, _ := doc.Find(selector).First().Attr("value")
	return strings.TrimSpace(value)
}

// SetQuery fills the search field the way a visitor typing into it would.
func SetQuery(doc *goquery.Document, selector, query string) bool {
	if selector == "" {
		selector = DefaultInputSelector
	}
	field := doc.Find(selector).First()
	if field.Length() == 0 {
		return false
	}
	field.SetAttr("value", query)
	return true
}

// Render serialises the whole page back to HTML.
func Render(doc *goquery.Document) (string, error) {
	out, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return out, nil
}
