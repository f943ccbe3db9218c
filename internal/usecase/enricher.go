package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rocksoup/mbtheme/internal/domain"
	"github.com/rocksoup/mbtheme/internal/logging"
	"github.com/rocksoup/mbtheme/internal/ports"
	"github.com/rocksoup/mbtheme/internal/watched"
)

// WatchingCategory is added to every enriched post.
const WatchingCategory = "watching"

// ErrRunHadErrors signals that at least one post failed to update.
var ErrRunHadErrors = errors.New("enrichment finished with errors")

// EnricherDeps wires all driven adapters into the enrichment workflow.
type EnricherDeps struct {
	Source   ports.PostSource
	Resolver ports.PosterResolver
	Updater  ports.PostUpdater
	Ledger   ports.ResultLedger
	Gate     ports.Gate
	Logger   *slog.Logger
	NewRunID func() string
}

// Enricher adds movie posters to watched posts that have no image yet.
type Enricher struct {
	source   ports.PostSource
	resolver ports.PosterResolver
	updater  ports.PostUpdater
	ledger   ports.ResultLedger
	gate     ports.Gate
	logger   *slog.Logger
	newRunID func() string
}

// RunOptions scope a single run.
type RunOptions struct {
	FeedURL string
	Limit   int
}

// NewEnricher constructs the orchestration component.
func NewEnricher(deps EnricherDeps) *Enricher {
	e := &Enricher{
		source:   deps.Source,
		resolver: deps.Resolver,
		updater:  deps.Updater,
		ledger:   deps.Ledger,
		gate:     deps.Gate,
		logger:   logging.OrDiscard(deps.Logger),
		newRunID: deps.NewRunID,
	}
	if e.newRunID == nil {
		e.newRunID = uuid.NewString
	}
	return e
}

// Run fetches the feed, then walks watched posts one at a time. A feed
// failure aborts the run; per-post failures land in the summary.
func (e *Enricher) Run(ctx context.Context, opts RunOptions) (domain.Summary, error) {
	var summary domain.Summary

	if e.source == nil || e.resolver == nil || e.updater == nil {
		return summary, fmt.Errorf("enricher is not fully configured")
	}

	e.logger.Info("fetching posts", "feed", opts.FeedURL, "limit", opts.Limit)
	posts, err := e.source.Fetch(ctx, opts.FeedURL, opts.Limit)
	if err != nil {
		return summary, fmt.Errorf("fetch feed: %w", err)
	}

	candidates := watched.Filter(posts)
	e.logger.Info("feed loaded", "posts", len(posts), "watched", len(candidates))
	if len(candidates) == 0 {
		e.logger.Info("no watched posts found")
		return summary, nil
	}

	runID := e.newRunID()
	seq := NewSequencer[domain.Post](e.gate)
	err = seq.Each(ctx, candidates, func(ctx context.Context, _ int, post domain.Post) {
		result := e.enrich(ctx, post)
		summary.Add(result)
		e.record(ctx, runID, result)
	})
	if err != nil {
		return summary, fmt.Errorf("enrichment interrupted: %w", err)
	}

	return summary, nil
}

func (e *Enricher) enrich(ctx context.Context, post domain.Post) domain.EnrichmentResult {
	movie := watched.ExtractMovie(post)
	log := e.logger.With("movie", movie.Label(), "post", post.URL)

	if post.HasImage() {
		log.Info("already has image, skipping")
		return domain.Skipped(movie, post.URL, domain.SkipHasImage)
	}

	log.Debug("searching poster")
	poster, ok := e.resolver.FindPoster(ctx, movie.Title, movie.Year)
	if !ok {
		log.Info("no poster found")
		return domain.Skipped(movie, post.URL, domain.SkipNoPoster)
	}

	log.Info("updating post", "poster", poster)
	receipt, err := e.updater.Update(ctx, post.URL, domain.PostUpdate{
		Photo:    poster,
		Category: withCategory(post, WatchingCategory),
	})
	if err != nil {
		log.Error("update failed", "error", err)
		return domain.Failed(movie, post.URL, err)
	}

	if receipt.DryRun {
		log.Info("dry run: post not changed")
	} else {
		log.Info("post updated", "location", receipt.URL, "status", receipt.StatusCode)
	}
	return domain.Updated(movie, poster, post.URL, receipt.DryRun)
}

func (e *Enricher) record(ctx context.Context, runID string, result domain.EnrichmentResult) {
	if e.ledger == nil {
		return
	}
	if err := e.ledger.Record(ctx, runID, result); err != nil {
		e.logger.Warn("ledger write failed", "post", result.PostURL, "error", err)
	}
}

// withCategory returns the full replacement list: existing categories plus name if absent.
func withCategory(post domain.Post, name string) []string {
	out := append(make([]string, 0, len(post.Categories)+1), post.Categories...)
	if !post.HasCategory(name) {
		out = append(out, name)
	}
	return out
}
