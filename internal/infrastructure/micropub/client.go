package micropub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rocksoup/mbtheme/internal/domain"
	"github.com/rocksoup/mbtheme/internal/logging"
	"github.com/rocksoup/mbtheme/internal/ports"
)

const defaultEndpoint = "https://micro.blog/micropub"

// ErrMissingToken is returned before any request when no token is configured.
var ErrMissingToken = errors.New("micropub token is required (set MICROBLOG_TOKEN)")

// UpdateError carries the server's answer to a rejected update.
type UpdateError struct {
	StatusCode int
	Body       string
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("micropub update failed (%d): %s", e.StatusCode, e.Body)
}

// Client sends Micropub update requests with replace semantics.
type Client struct {
	endpoint string
	token    string
	dryRun   bool
	http     *http.Client
	logger   *slog.Logger
}

var _ ports.PostUpdater = (*Client)(nil)

// Options configure a Client.
type Options struct {
	Endpoint string
	Token    string
	DryRun   bool
	HTTP     *http.Client
	Logger   *slog.Logger
}

// NewClient builds a client; an empty endpoint targets Micro.blog.
func NewClient(opts Options) *Client {
	c := &Client{
		endpoint: opts.Endpoint,
		token:    opts.Token,
		dryRun:   opts.DryRun,
		http:     opts.HTTP,
		logger:   logging.OrDiscard(opts.Logger),
	}
	if c.endpoint == "" {
		c.endpoint = defaultEndpoint
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 20 * time.Second}
	}
	return c
}

type updateRequest struct {
	Action  string              `json:"action"`
	URL     string              `json:"url"`
	Replace map[string][]string `json:"replace"`
}

// Update replaces the given fields on postURL. In dry-run mode it returns a
// receipt of the same shape without touching the network.
func (c *Client) Update(ctx context.Context, postURL string, update domain.PostUpdate) (domain.UpdateReceipt, error) {
	if c.token == "" {
		return domain.UpdateReceipt{}, ErrMissingToken
	}

	if c.dryRun {
		c.logger.Info("dry run: would update post", "url", postURL, "photo", update.Photo, "category", update.Category)
		return domain.UpdateReceipt{URL: postURL, DryRun: true, Update: update}, nil
	}

	body, err := json.Marshal(buildRequest(postURL, update))
	if err != nil {
		return domain.UpdateReceipt{}, fmt.Errorf("marshal micropub payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.UpdateReceipt{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.UpdateReceipt{}, fmt.Errorf("send update: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.UpdateReceipt{}, &UpdateError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}

	receipt := domain.UpdateReceipt{URL: postURL, StatusCode: resp.StatusCode, Update: update}
	if location := resp.Header.Get("Location"); location != "" {
		receipt.URL = location
	}
	return receipt, nil
}

func buildRequest(postURL string, update domain.PostUpdate) updateRequest {
	req := updateRequest{
		Action:  "update",
		URL:     postURL,
		Replace: map[string][]string{},
	}
	if update.Photo != "" {
		req.Replace["photo"] = []string{update.Photo}
	}
	if update.Category != nil {
		req.Replace["category"] = update.Category
	}
	return req
}
