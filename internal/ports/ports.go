package ports

import (
	"context"

	"github.com/rocksoup/mbtheme/internal/domain"
)

// PostSource pulls posts from a JSON feed.
type PostSource interface {
	Fetch(ctx context.Context, feedURL string, limit int) ([]domain.Post, error)
}

// PosterResolver looks up cover art for a movie. A false result means no poster was found.
type PosterResolver interface {
	FindPoster(ctx context.Context, title, year string) (string, bool)
}

// PostUpdater replaces fields on a remote post.
type PostUpdater interface {
	Update(ctx context.Context, postURL string, update domain.PostUpdate) (domain.UpdateReceipt, error)
}

// ResultLedger persists enrichment results for audit/history.
type ResultLedger interface {
	Record(ctx context.Context, runID string, result domain.EnrichmentResult) error
	Recent(ctx context.Context, limit int) ([]domain.LedgerEntry, error)
	Close() error
}

// Reporter renders the end-of-run summary.
type Reporter interface {
	Report(summary domain.Summary) error
}

// SearchClient queries the site search endpoint.
type SearchClient interface {
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
}

// ShelfSource reads a single public bookshelf.
type ShelfSource interface {
	FetchShelf(ctx context.Context, username, shelf string) ([]domain.Book, error)
}

// Downloader stores a remote file at a local path.
type Downloader interface {
	Download(ctx context.Context, url, path string) error
}

// Gate spaces iterations: Wait blocks until the next one may start, Done
// marks the end of the current one.
type Gate interface {
	Wait(ctx context.Context) error
	Done()
}
