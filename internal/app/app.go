package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/PuerkitoBio/goquery"

	"github.com/rocksoup/mbtheme/internal/config"
	"github.com/rocksoup/mbtheme/internal/infrastructure/covers"
	"github.com/rocksoup/mbtheme/internal/infrastructure/feed"
	"github.com/rocksoup/mbtheme/internal/infrastructure/microblog"
	"github.com/rocksoup/mbtheme/internal/infrastructure/micropub"
	"github.com/rocksoup/mbtheme/internal/infrastructure/scheduler"
	"github.com/rocksoup/mbtheme/internal/infrastructure/sitesearch"
	"github.com/rocksoup/mbtheme/internal/infrastructure/storage"
	"github.com/rocksoup/mbtheme/internal/infrastructure/tmdb"
	"github.com/rocksoup/mbtheme/internal/logging"
	"github.com/rocksoup/mbtheme/internal/ports"
	"github.com/rocksoup/mbtheme/internal/report"
	"github.com/rocksoup/mbtheme/internal/search"
	"github.com/rocksoup/mbtheme/internal/usecase"
)

// Application wires configs to use cases, one method per command.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	http   *http.Client
	out    io.Writer
}

// New builds an application writing command output to out (stdout when nil).
func New(cfg config.Config, baseLogger *slog.Logger, out io.Writer) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	if out == nil {
		out = os.Stdout
	}
	return &Application{
		cfg:    cfg,
		logger: baseLogger,
		http:   &http.Client{Timeout: cfg.HTTP.Timeout},
		out:    out,
	}
}

// Close releases idle HTTP connections.
func (a *Application) Close() {
	a.http.CloseIdleConnections()
}

// Config exposes the effective configuration.
func (a *Application) Config() config.Config {
	return a.cfg
}

func (a *Application) component(name string) *slog.Logger {
	return a.logger.With("component", name)
}

func (a *Application) posterResolver() ports.PosterResolver {
	return tmdb.NewClient(tmdb.Options{
		Endpoint:  a.cfg.TMDB.Endpoint,
		ImageBase: a.cfg.TMDB.ImageBase,
		APIKey:    a.cfg.TMDB.APIKey,
		HTTP:      a.http,
		Logger:    a.component("tmdb"),
	})
}

// openLedger returns nil when the ledger is disabled or cannot be opened.
func (a *Application) openLedger(ctx context.Context) ports.ResultLedger {
	ledger, err := storage.Open(ctx, a.cfg.Ledger)
	if err != nil {
		if !errors.Is(err, storage.ErrLedgerDisabled) {
			a.logger.Warn("result ledger unavailable, continuing without it", "driver", a.cfg.Ledger.Driver, "error", err)
		}
		return nil
	}
	return ledger
}

// Enrich adds TMDB posters to watched posts and prints the summary.
// It returns usecase.ErrRunHadErrors when any post failed to update.
func (a *Application) Enrich(ctx context.Context) error {
	if err := a.cfg.ValidateEnrichment(); err != nil {
		return err
	}

	if a.cfg.Enrich.DryRun {
		a.logger.Info("dry run: no posts will be changed")
	}

	ledger := a.openLedger(ctx)
	if ledger != nil {
		defer ledger.Close()
	}

	enricher := usecase.NewEnricher(usecase.EnricherDeps{
		Source:   feed.NewFetcher(a.http, a.cfg.HTTP.UserAgent),
		Resolver: a.posterResolver(),
		Updater: micropub.NewClient(micropub.Options{
			Endpoint: a.cfg.Microblog.MicropubEndpoint,
			Token:    a.cfg.Microblog.Token,
			DryRun:   a.cfg.Enrich.DryRun,
			HTTP:     a.http,
			Logger:   a.component("micropub"),
		}),
		Ledger: ledger,
		Gate:   scheduler.NewIntervalGate(a.cfg.Enrich.Interval),
		Logger: a.component("enricher"),
	})

	summary, err := enricher.Run(ctx, usecase.RunOptions{
		FeedURL: a.cfg.Microblog.FeedURL,
		Limit:   a.cfg.Enrich.Limit,
	})
	if err != nil {
		return err
	}

	if err := report.New(a.out).Report(summary); err != nil {
		return err
	}
	if summary.HasErrors() {
		return usecase.ErrRunHadErrors
	}
	return nil
}

// SearchOptions select the page, query, and destination for one search render.
type SearchOptions struct {
	PagePath string
	Query    string
	OutPath  string
}

// Search renders site search results into an HTML page.
func (a *Application) Search(ctx context.Context, opts SearchOptions) (search.Outcome, error) {
	if a.cfg.Search.Site == "" {
		return "", &config.MissingCredentialError{Name: "SEARCH_SITE", Hint: "the site root serving /search.json"}
	}

	doc, err := a.loadPage(opts.PagePath)
	if err != nil {
		return "", err
	}
	if opts.Query != "" && !search.SetQuery(doc, a.cfg.Search.InputSelector, opts.Query) {
		return "", fmt.Errorf("search field %q not found in page", a.cfg.Search.InputSelector)
	}

	pipeline := search.NewPipeline(
		sitesearch.NewClient(a.cfg.Search.Site, a.http, a.cfg.HTTP.UserAgent),
		search.PipelineOptions{
			InputSelector:  a.cfg.Search.InputSelector,
			ResultSelector: a.cfg.Search.ResultSelector,
			Logger:         a.component("search"),
		},
	)
	outcome := pipeline.Run(ctx, doc)

	html, err := search.Render(doc)
	if err != nil {
		return outcome, err
	}
	if opts.OutPath == "" {
		_, err = io.WriteString(a.out, html+"\n")
		return outcome, err
	}
	if err := os.WriteFile(opts.OutPath, []byte(html+"\n"), 0o644); err != nil {
		return outcome, fmt.Errorf("write %s: %w", opts.OutPath, err)
	}
	a.logger.Info("search page written", "path", opts.OutPath, "outcome", outcome)
	return outcome, nil
}

func (a *Application) loadPage(path string) (*goquery.Document, error) {
	if path == "" {
		return search.DefaultPage()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer f.Close()
	return search.LoadPage(f)
}

// Bookshelves syncs every configured shelf into the data directory. The file
// is written even when some shelves failed; their errors are returned after.
func (a *Application) Bookshelves(ctx context.Context) error {
	if a.cfg.Microblog.Username == "" {
		return &config.MissingCredentialError{Name: "MICROBLOG_USERNAME"}
	}

	sync := usecase.NewBookshelfSync(
		microblog.NewBookshelfClient(a.cfg.Microblog.BooksEndpoint, a.http, a.cfg.HTTP.UserAgent),
		a.component("bookshelves"),
	)
	shelves, syncErr := sync.Sync(ctx, a.cfg.Microblog.Username, a.cfg.Bookshelves.Shelves)

	path, err := usecase.WriteBookshelves(a.cfg.Bookshelves.OutputDir, shelves)
	if err != nil {
		return errors.Join(syncErr, err)
	}
	a.logger.Info("bookshelves saved", "path", path, "shelves", len(shelves))
	return syncErr
}

// Covers downloads missing book covers listed in the bookshelves file.
func (a *Application) Covers(ctx context.Context) error {
	shelves, err := usecase.LoadBookshelves(a.cfg.Covers.DataFile)
	if err != nil {
		return err
	}

	sync := usecase.NewCoverSync(
		covers.NewHTTPDownloader(a.http, a.cfg.HTTP.UserAgent),
		scheduler.NewIntervalGate(a.cfg.Covers.Interval),
		a.component("covers"),
	)
	res, err := sync.Run(ctx, shelves, a.cfg.Covers.OutputDir)
	a.logger.Info("covers done",
		"downloaded", res.Downloaded,
		"existing", res.Existing,
		"no_isbn", res.NoISBN,
		"failed", res.Failed,
		"dir", a.cfg.Covers.OutputDir,
	)
	return err
}

// WatchedOptions scope the watched listing.
type WatchedOptions struct {
	Site   string
	Limit  int
	OutDir string
}

// Watched prints watched posts from the site archive and, with OutDir set,
// writes them with resolved posters to watched.enriched.json.
func (a *Application) Watched(ctx context.Context, opts WatchedOptions) error {
	site := opts.Site
	if site == "" {
		site = a.cfg.Microblog.Site
	}
	if site == "" {
		return &config.MissingCredentialError{Name: "site", Hint: "pass --site or set microblog.site"}
	}

	var resolver ports.PosterResolver
	if a.cfg.TMDB.APIKey != "" {
		resolver = a.posterResolver()
	}
	log := usecase.NewWatchedLog(
		feed.NewFetcher(a.http, a.cfg.HTTP.UserAgent),
		resolver,
		scheduler.NewIntervalGate(a.cfg.Enrich.Interval),
		a.component("watched"),
	)

	entries, err := log.List(ctx, site, opts.Limit)
	if err != nil {
		return err
	}

	for i, e := range entries {
		if _, err := fmt.Fprintf(a.out, "#%d %s | %s | %s\n", i+1, e.Title, e.WatchedDate, e.URL); err != nil {
			return fmt.Errorf("write listing: %w", err)
		}
	}

	if opts.OutDir == "" {
		return nil
	}
	if resolver == nil {
		a.logger.Warn("TMDB_API_KEY not set, exporting without poster lookup")
	} else if err := log.Enrich(ctx, entries); err != nil {
		return err
	}

	path, err := usecase.WriteWatched(opts.OutDir, entries)
	if err != nil {
		return err
	}
	a.logger.Info("watched data saved", "path", path, "movies", len(entries))
	return nil
}

// History prints the most recent ledger entries.
func (a *Application) History(ctx context.Context, limit int) error {
	ledger, err := storage.Open(ctx, a.cfg.Ledger)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer ledger.Close()

	entries, err := ledger.Recent(ctx, limit)
	if err != nil {
		return err
	}
	return report.New(a.out).History(entries)
}
