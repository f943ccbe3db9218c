package covers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rocksoup/mbtheme/internal/ports"
)

// DownloadError reports a cover that answered with anything but 200.
type DownloadError struct {
	URL        string
	StatusCode int
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: HTTP %d", e.URL, e.StatusCode)
}

// HTTPDownloader saves remote images to disk.
type HTTPDownloader struct {
	client    *http.Client
	userAgent string
}

var _ ports.Downloader = (*HTTPDownloader)(nil)

// NewHTTPDownloader uses client, or a 20s-timeout default.
func NewHTTPDownloader(client *http.Client, userAgent string) *HTTPDownloader {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTTPDownloader{client: client, userAgent: userAgent}
}

// Download writes the body to path. The file only appears once fully written.
func (d *HTTPDownloader) Download(ctx context.Context, src, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("request cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &DownloadError{URL: src, StatusCode: resp.StatusCode}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".cover-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write cover: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cover: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move cover into place: %w", err)
	}
	return nil
}
