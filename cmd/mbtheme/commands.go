package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rocksoup/mbtheme/internal/app"
	"github.com/rocksoup/mbtheme/internal/config"
	"github.com/rocksoup/mbtheme/internal/logging"
)

type rootFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "mbtheme",
		Short:         "Data tooling for the Micro.blog theme",
		Long:          `Enriches watched-movie posts with posters, renders site search, and syncs bookshelf and watched data for the theme.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML config file (overrides MBTHEME_CONFIG)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "error|warn|info|debug")

	root.AddCommand(
		newEnrichCmd(flags),
		newSearchCmd(flags),
		newBookshelvesCmd(flags),
		newCoversCmd(flags),
		newWatchedCmd(flags),
		newHistoryCmd(flags),
	)
	return root
}

// load resolves configuration, lets the command apply its flags, and builds the application.
func (f *rootFlags) load(cmd *cobra.Command, override func(*config.Config)) (*app.Application, error) {
	var cfg config.Config
	if f.configPath != "" {
		if _, err := os.Stat(f.configPath); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		cfg = config.LoadFrom(f.configPath)
	} else {
		cfg = config.Load()
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if override != nil {
		override(&cfg)
	}
	logger := logging.New(cfg.Logging.Level)
	return app.New(cfg, logger, cmd.OutOrStdout()), nil
}

func newEnrichCmd(flags *rootFlags) *cobra.Command {
	var (
		dryRun bool
		limit  int
		feed   string
	)

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Add TMDB posters and the watching category to Watched: posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := flags.load(cmd, func(cfg *config.Config) {
				if cmd.Flags().Changed("dry-run") {
					cfg.Enrich.DryRun = dryRun
				}
				if cmd.Flags().Changed("limit") {
					cfg.Enrich.Limit = limit
				}
				if feed != "" {
					cfg.Microblog.FeedURL = feed
				}
			})
			if err != nil {
				return err
			}
			defer application.Close()
			return application.Enrich(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log the updates without sending them")
	cmd.Flags().IntVar(&limit, "limit", 0, "number of feed items to inspect")
	cmd.Flags().StringVar(&feed, "feed", "", "JSON feed URL")
	return cmd
}

func newSearchCmd(flags *rootFlags) *cobra.Command {
	var (
		site string
		opts app.SearchOptions
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Render /search.json results into a search page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := flags.load(cmd, func(cfg *config.Config) {
				if site != "" {
					cfg.Search.Site = site
				}
			})
			if err != nil {
				return err
			}
			defer application.Close()
			_, err = application.Search(cmd.Context(), opts)
			return err
		},
	}
	cmd.Flags().StringVar(&site, "site", "", "site root serving /search.json")
	cmd.Flags().StringVar(&opts.PagePath, "page", "", "HTML page to render into (default: built-in page)")
	cmd.Flags().StringVar(&opts.Query, "query", "", "query to type into the search field")
	cmd.Flags().StringVar(&opts.OutPath, "out", "", "write the rendered page here instead of stdout")
	return cmd
}

func newBookshelvesCmd(flags *rootFlags) *cobra.Command {
	var (
		username string
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "bookshelves [username]",
		Short: "Download Micro.blog bookshelves into bookshelves.json",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				username = args[0]
			}
			application, err := flags.load(cmd, func(cfg *config.Config) {
				if username != "" {
					cfg.Microblog.Username = username
				}
				if outDir != "" {
					cfg.Bookshelves.OutputDir = outDir
				}
			})
			if err != nil {
				return err
			}
			defer application.Close()
			return application.Bookshelves(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "data directory for bookshelves.json")
	return cmd
}

func newCoversCmd(flags *rootFlags) *cobra.Command {
	var dataFile, outDir string

	cmd := &cobra.Command{
		Use:   "covers",
		Short: "Download missing book covers as <isbn>.jpg",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := flags.load(cmd, func(cfg *config.Config) {
				if dataFile != "" {
					cfg.Covers.DataFile = dataFile
				}
				if outDir != "" {
					cfg.Covers.OutputDir = outDir
				}
			})
			if err != nil {
				return err
			}
			defer application.Close()
			return application.Covers(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&dataFile, "data", "", "bookshelves.json to read")
	cmd.Flags().StringVar(&outDir, "out", "", "directory for cover images")
	return cmd
}

func newWatchedCmd(flags *rootFlags) *cobra.Command {
	var opts app.WatchedOptions

	cmd := &cobra.Command{
		Use:   "watched [site]",
		Short: "List Watched: posts from a site archive, optionally exporting them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Site = args[0]
			}
			application, err := flags.load(cmd, nil)
			if err != nil {
				return err
			}
			defer application.Close()
			return application.Watched(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.Site, "site", "", "site root, e.g. https://example.micro.blog")
	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "number of entries to list (0 = all)")
	cmd.Flags().StringVar(&opts.OutDir, "out", "", "write watched.enriched.json into this directory")
	return cmd
}

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded enrichment results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := flags.load(cmd, nil)
			if err != nil {
				return err
			}
			defer application.Close()
			return application.History(cmd.Context(), limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries to show")
	return cmd
}
