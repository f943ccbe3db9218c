package search

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/PuerkitoBio/goquery"

	"github.com/rocksoup/mbtheme/internal/domain"
)

// Messages shown inside the results container.
const (
	NoMatchesMessage   = "No posts match your search."
	UnavailableMessage = "Search is unavailable right now. Please try again later."
)

var resultsTemplate = template.Must(template.New("results").Parse(
	`{{if .Message}}<p class="search-message">{{.Message}}</p>` +
		`{{else}}<ul class="search-results-list">{{range .Results}}` +
		`<li class="search-result"><a href="{{.URL}}">{{if .Title}}{{.Title}}{{else}}{{.URL}}{{end}}</a>` +
		`{{if .Summary}}<p class="search-result-summary">{{.Summary}}</p>{{end}}` +
		`{{if .Date}}<time class="search-result-date">{{.Date}}</time>{{end}}` +
		`</li>{{end}}</ul>{{end}}`,
))

type view struct {
	Message string
	Results []domain.SearchResult
}

// Renderer replaces the children of the results container.
type Renderer struct {
	selector string
}

// NewRenderer targets the container matched by selector.
func NewRenderer(selector string) *Renderer {
	if selector == "" {
		selector = DefaultResultSelector
	}
	return &Renderer{selector: selector}
}

// Render clears the container, then shows the unavailable message when
// searchErr is set, the no-matches message for zero results, or one list
// entry per result in the given order.
func (r *Renderer) Render(doc *goquery.Document, results []domain.SearchResult, searchErr error) error {
	container := doc.Find(r.selector).First()
	if container.Length() == 0 {
		return fmt.Errorf("results container %q not found", r.selector)
	}
	container.Empty()

	v := view{Results: results}
	switch {
	case searchErr != nil:
		v = view{Message: UnavailableMessage}
	case len(results) == 0:
		v = view{Message: NoMatchesMessage}
	}

	var buf bytes.Buffer
	if err := resultsTemplate.Execute(&buf, v); err != nil {
		container.SetHtml("<p class=\"search-message\">" + template.HTMLEscapeString(UnavailableMessage) + "</p>")
		return fmt.Errorf("render results: %w", err)
	}
	container.SetHtml(buf.String())
	return nil
}
