package sitesearch

import (
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

// HTTPError is returned when the search endpoint answers outside 2xx.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("search endpoint %s returned HTTP %d", e.URL, e.StatusCode)
}

// Client queries <site>/search.json.
type Client struct {
	site      string
	client    *http.Client
	userAgent string
}

var _ ports.SearchClient = (*Client)(nil)

// NewClient binds the client to a site root such as https://example.micro.blog.
func NewClient(site string, client *http.Client, userAgent string) *Client {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{
		site:      strings.TrimSuffix(site, "/"),
		client:    client,
		userAgent: userAgent,
	}
}

// Search issues one GET with the query URL-encoded as q. Results keep response order.
func (c *Client) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	endpoint := c.site + "/search.json?" + url.Values{"q": {query}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: endpoint}
	}

	var results []domain.SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	return results, nil
}
