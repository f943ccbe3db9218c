package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rocksoup/mbtheme/internal/domain"
	"github.com/rocksoup/mbtheme/internal/logging"
	"github.com/rocksoup/mbtheme/internal/ports"
	"github.com/rocksoup/mbtheme/internal/watched"
)

// WatchedFile is the data file the theme's watching page reads.
const WatchedFile = "watched.enriched.json"

// ArchiveFeedURL is the public archive feed of a Micro.blog site.
func ArchiveFeedURL(site string) string {
	return strings.TrimSuffix(site, "/") + "/archive/index.json"
}

// WatchedLog lists watched posts from a site archive and optionally resolves posters.
type WatchedLog struct {
	source   ports.PostSource
	resolver ports.PosterResolver
	gate     ports.Gate
	logger   *slog.Logger
}

// NewWatchedLog wires the archive source; resolver and gate are only used by Enrich.
func NewWatchedLog(source ports.PostSource, resolver ports.PosterResolver, gate ports.Gate, logger *slog.Logger) *WatchedLog {
	return &WatchedLog{source: source, resolver: resolver, gate: gate, logger: logging.OrDiscard(logger)}
}

// List returns up to limit watched entries in archive order; limit <= 0 means all.
func (w *WatchedLog) List(ctx context.Context, site string, limit int) ([]domain.WatchedEntry, error) {
	posts, err := w.source.Fetch(ctx, ArchiveFeedURL(site), 0)
	if err != nil {
		return nil, fmt.Errorf("fetch archive: %w", err)
	}

	candidates := watched.Filter(posts)
	w.logger.Info("archive loaded", "posts", len(posts), "watched", len(candidates))
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	entries := make([]domain.WatchedEntry, 0, len(candidates))
	for _, p := range candidates {
		entries = append(entries, toWatchedEntry(p))
	}
	return entries, nil
}

// Enrich fills PosterURL for entries missing one, one lookup at a time.
func (w *WatchedLog) Enrich(ctx context.Context, entries []domain.WatchedEntry) error {
	if w.resolver == nil {
		return fmt.Errorf("watched log has no poster resolver")
	}
	return NewSequencer[domain.WatchedEntry](w.gate).Each(ctx, entries, func(ctx context.Context, i int, e domain.WatchedEntry) {
		if e.PosterURL != "" {
			return
		}
		if poster, ok := w.resolver.FindPoster(ctx, e.Title, e.Year); ok {
			entries[i].PosterURL = poster
		}
	})
}

// WriteWatched stores entries as {"movies": [...]} in dir and returns the path.
func WriteWatched(dir string, entries []domain.WatchedEntry) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	if entries == nil {
		entries = []domain.WatchedEntry{}
	}
	raw, err := json.MarshalIndent(struct {
		Movies []domain.WatchedEntry `json:"movies"`
	}{entries}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode watched: %w", err)
	}
	path := filepath.Join(dir, WatchedFile)
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func toWatchedEntry(p domain.Post) domain.WatchedEntry {
	movie := watched.ExtractMovie(p)
	entry := domain.WatchedEntry{
		Title: movie.Title,
		Year:  movie.Year,
		Notes: notes(p),
		URL:   p.URL,
	}
	if !p.Date.IsZero() {
		entry.WatchedDate = p.Date.UTC().Format(time.RFC3339)
	}
	if len(p.Images) > 0 {
		entry.PosterURL = p.Images[0]
	}
	return entry
}

// notes is everything after the first line of the post body, as markdown
// when the feed published HTML.
func notes(p domain.Post) string {
	text := strings.TrimSpace(p.ContentMarkdown)
	if text == "" {
		text = strings.TrimSpace(p.ContentText)
	}
	if p.Title != "" {
		return text
	}
	if _, rest, ok := strings.Cut(text, "\n"); ok {
		return strings.TrimSpace(rest)
	}
	return ""
}
