package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/rocksoup/mbtheme/internal/domain"
	"github.com/rocksoup/mbtheme/internal/logging"
	"github.com/rocksoup/mbtheme/internal/ports"
)

// CoverReport counts what a cover run did.
type CoverReport struct {
	Downloaded int
	Existing   int
	NoISBN     int
	Failed     int
}

// CoverSync mirrors book covers into a static directory as <isbn>.jpg.
type CoverSync struct {
	downloader ports.Downloader
	gate       ports.Gate
	logger     *slog.Logger
}

// NewCoverSync wires the downloader; gate spaces out downloads.
func NewCoverSync(downloader ports.Downloader, gate ports.Gate, logger *slog.Logger) *CoverSync {
	return &CoverSync{downloader: downloader, gate: gate, logger: logging.OrDiscard(logger)}
}

type coverJob struct {
	book domain.Book
	url  string
	path string
}

// Run downloads missing covers. Per-book failures are logged and counted;
// only an unusable output directory or cancellation returns an error.
func (c *CoverSync) Run(ctx context.Context, shelves domain.Bookshelves, outDir string) (CoverReport, error) {
	var report CoverReport

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return report, fmt.Errorf("create %s: %w", outDir, err)
	}

	keys := make([]string, 0, len(shelves))
	for k := range shelves {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	seen := map[string]struct{}{}
	var jobs []coverJob
	for _, key := range keys {
		for _, book := range shelves[key] {
			isbn := book.CoverID()
			if isbn == "" {
				c.logger.Warn("skipping book without isbn", "title", book.Title)
				report.NoISBN++
				continue
			}
			if _, dup := seen[isbn]; dup {
				continue
			}
			seen[isbn] = struct{}{}

			path := filepath.Join(outDir, isbn+".jpg")
			if _, err := os.Stat(path); err == nil {
				c.logger.Debug("cover exists", "title", book.Title, "path", path)
				report.Existing++
				continue
			}
			jobs = append(jobs, coverJob{book: book, url: book.HighQualityCoverURL(), path: path})
		}
	}

	err := NewSequencer[coverJob](c.gate).Each(ctx, jobs, func(ctx context.Context, _ int, job coverJob) {
		log := c.logger.With("title", job.book.Title, "url", job.url)
		if job.url == "" {
			log.Warn("no cover url")
			report.Failed++
			return
		}
		if err := c.downloader.Download(ctx, job.url, job.path); err != nil {
			log.Error("cover download failed", "error", err)
			report.Failed++
			return
		}
		log.Info("cover saved", "path", job.path)
		report.Downloaded++
	})
	if err != nil {
		return report, fmt.Errorf("cover download interrupted: %w", err)
	}
	return report, nil
}
