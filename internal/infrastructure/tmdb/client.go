package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rocksoup/mbtheme/internal/logging"
	"github.com/rocksoup/mbtheme/internal/ports"
)

const (
	defaultEndpoint  = "https://api.themoviedb.org/3"
	defaultImageBase = "https://image.tmdb.org/t/p/w500"
)

// Client resolves movie posters through the TMDB search API.
type Client struct {
	endpoint  string
	imageBase string
	apiKey    string
	http      *http.Client
	logger    *slog.Logger
}

var _ ports.PosterResolver = (*Client)(nil)

// Options configure a Client. Empty fields fall back to TMDB defaults.
type Options struct {
	Endpoint  string
	ImageBase string
	APIKey    string
	HTTP      *http.Client
	Logger    *slog.Logger
}

// NewClient creates a reusable HTTP client.
func NewClient(opts Options) *Client {
	c := &Client{
		endpoint:  strings.TrimSuffix(opts.Endpoint, "/"),
		imageBase: strings.TrimSuffix(opts.ImageBase, "/"),
		apiKey:    opts.APIKey,
		http:      opts.HTTP,
		logger:    logging.OrDiscard(opts.Logger),
	}
	if c.endpoint == "" {
		c.endpoint = defaultEndpoint
	}
	if c.imageBase == "" {
		c.imageBase = defaultImageBase
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 15 * time.Second}
	}
	return c
}

type searchResponse struct {
	Results []struct {
		ID         int    `json:"id"`
		Title      string `json:"title"`
		PosterPath string `json:"poster_path"`
	} `json:"results"`
}

// FindPoster returns the poster of the first search hit. Every failure is
// logged and reported as "no poster" so the caller can keep going.
func (c *Client) FindPoster(ctx context.Context, title, year string) (string, bool) {
	path, err := c.searchPoster(ctx, title, year)
	if err != nil {
		c.logger.Warn("tmdb lookup failed", "title", title, "year", year, "error", err)
		return "", false
	}
	if path == "" {
		c.logger.Info("no tmdb poster", "title", title, "year", year)
		return "", false
	}
	return c.imageBase + path, true
}

func (c *Client) searchPoster(ctx context.Context, title, year string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("tmdb api key not set")
	}

	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("query", title)
	if year != "" {
		q.Set("year", year)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/search/movie?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("tmdb api error: %s", resp.Status)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(body.Results) == 0 {
		return "", nil
	}
	return body.Results[0].PosterPath, nil
}
