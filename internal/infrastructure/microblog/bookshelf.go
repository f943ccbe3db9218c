package microblog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rocksoup/mbtheme/internal/domain"
	"github.com/rocksoup/mbtheme/internal/ports"
)

const defaultBooksEndpoint = "https://micro.blog/books"

// ShelfError reports a bookshelf feed that answered outside 2xx.
type ShelfError struct {
	Shelf      string
	StatusCode int
	Status     string
}

func (e *ShelfError) Error() string {
	return fmt.Sprintf("fetch shelf %s: %s", e.Shelf, e.Status)
}

// BookshelfClient reads public bookshelf feeds at <endpoint>/<user>/<shelf>.json.
type BookshelfClient struct {
	endpoint  string
	client    *http.Client
	userAgent string
}

var _ ports.ShelfSource = (*BookshelfClient)(nil)

// NewBookshelfClient defaults to the public micro.blog books endpoint.
func NewBookshelfClient(endpoint string, client *http.Client, userAgent string) *BookshelfClient {
	endpoint = strings.TrimSuffix(endpoint, "/")
	if endpoint == "" {
		endpoint = defaultBooksEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &BookshelfClient{endpoint: endpoint, client: client, userAgent: userAgent}
}

type shelfFeed struct {
	Items []shelfItem `json:"items"`
}

type shelfItem struct {
	ID      json.RawMessage `json:"id"`
	Title   string          `json:"title"`
	URL     string          `json:"url"`
	Image   string          `json:"image"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
}

// FetchShelf returns the shelf's books in feed order.
func (c *BookshelfClient) FetchShelf(ctx context.Context, username, shelf string) ([]domain.Book, error) {
	feedURL := fmt.Sprintf("%s/%s/%s.json", c.endpoint, url.PathEscape(username), url.PathEscape(shelf))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request shelf %s: %w", shelf, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ShelfError{Shelf: shelf, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var feed shelfFeed
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode shelf %s: %w", shelf, err)
	}

	books := make([]domain.Book, 0, len(feed.Items))
	for _, item := range feed.Items {
		books = append(books, item.book())
	}
	return books, nil
}

func (it shelfItem) book() domain.Book {
	names := make([]string, 0, len(it.Authors))
	for _, a := range it.Authors {
		names = append(names, a.Name)
	}
	return domain.Book{
		Title:    it.Title,
		Author:   strings.Join(names, ", "),
		CoverURL: it.Image,
		ISBN:     rawID(it.ID),
		URL:      it.URL,
	}
}

// rawID accepts the id as either a JSON string or a number.
func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
