package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/rocksoup/mbtheme/internal/domain"
	"github.com/rocksoup/mbtheme/internal/ports"
)

// FetchError reports a feed request answered with a non-2xx status.
type FetchError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch feed %s: %s", e.URL, e.Status)
}

// Fetcher reads JSON Feed documents and maps their items to posts.
type Fetcher struct {
	client    *http.Client
	userAgent string
	converter *md.Converter
}

var _ ports.PostSource = (*Fetcher)(nil)

// NewFetcher wires an HTTP client; a nil client gets a 20 second timeout.
func NewFetcher(client *http.Client, userAgent string) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Fetcher{
		client:    client,
		userAgent: userAgent,
		converter: md.NewConverter("", true, nil),
	}
}

type document struct {
	Items []item `json:"items"`
}

type item struct {
	ID            string       `json:"id"`
	URL           string       `json:"url"`
	Title         string       `json:"title"`
	ContentHTML   string       `json:"content_html"`
	ContentText   string       `json:"content_text"`
	DatePublished string       `json:"date_published"`
	Tags          []string     `json:"tags"`
	Image         string       `json:"image"`
	Attachments   []attachment `json:"attachments"`
}

type attachment struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

// Fetch performs one GET and returns at most limit posts in feed order.
// A limit of zero or less returns every item.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string, limit int) ([]domain.Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/feed+json, application/json")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{StatusCode: resp.StatusCode, Status: resp.Status, URL: feedURL}
	}

	var doc document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	items := doc.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	posts := make([]domain.Post, 0, len(items))
	for _, it := range items {
		posts = append(posts, f.toPost(it))
	}
	return posts, nil
}

func (f *Fetcher) toPost(it item) domain.Post {
	url := it.ID
	if url == "" {
		url = it.URL
	}

	content := it.ContentHTML
	if content == "" {
		content = it.ContentText
	}

	categories := it.Tags
	if categories == nil {
		categories = []string{}
	}

	return domain.Post{
		URL:             url,
		Title:           it.Title,
		Content:         content,
		ContentText:     plainText(it),
		ContentMarkdown: f.markdown(it),
		Date:            parseDate(it.DatePublished),
		Categories:      categories,
		Images:          images(it),
	}
}

// plainText prefers content_text; feeds that only publish HTML get the
// document's text with one line per block element.
func plainText(it item) string {
	if it.ContentText != "" || it.ContentHTML == "" {
		return it.ContentText
	}
	return htmlText(it.ContentHTML)
}

func htmlText(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return ""
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

const blockElements = "p, div, li, blockquote, h1, h2, h3, h4, h5, h6, pre, tr"

// markdown converts content_html for data files; text-only items pass through.
func (f *Fetcher) markdown(it item) string {
	if it.ContentHTML == "" {
		return it.ContentText
	}
	text, err := f.converter.ConvertString(it.ContentHTML)
	if err != nil {
		return it.ContentText
	}
	return strings.TrimSpace(text)
}

func images(it item) []string {
	if it.Image != "" {
		return []string{it.Image}
	}
	out := []string{}
	for _, a := range it.Attachments {
		if strings.HasPrefix(a.MimeType, "image/") {
			out = append(out, a.URL)
		}
	}
	return out
}

func parseDate(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
