package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "MBTHEME_CONFIG"
	logLevelEnv     = "MBTHEME_LOG_LEVEL"
	tokenEnv        = "MICROBLOG_TOKEN"
	feedURLEnv      = "MICROBLOG_FEED_URL"
	usernameEnv     = "MICROBLOG_USERNAME"
	tmdbAPIKeyEnv   = "TMDB_API_KEY"
	dryRunEnv       = "DRY_RUN"
	watchLimitEnv   = "WATCH_LIMIT"
	searchSiteEnv   = "SEARCH_SITE"
	ledgerDriverEnv = "LEDGER_DRIVER"
	ledgerDSNEnv    = "LEDGER_DSN"
)

// Ledger drivers.
const (
	LedgerNone   = "none"
	LedgerSQLite = "sqlite"
	LedgerMongo  = "mongo"
)

// Config holds every setting the commands need for one run.
type Config struct {
	Logging     LoggingConfig     `yaml:"logging"`
	HTTP        HTTPConfig        `yaml:"http"`
	Microblog   MicroblogConfig   `yaml:"microblog"`
	TMDB        TMDBConfig        `yaml:"tmdb"`
	Enrich      EnrichConfig      `yaml:"enrich"`
	Search      SearchConfig      `yaml:"search"`
	Ledger      LedgerConfig      `yaml:"ledger"`
	Bookshelves BookshelvesConfig `yaml:"bookshelves"`
	Covers      CoversConfig      `yaml:"covers"`
}

// LoggingConfig sets the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// HTTPConfig applies to every outbound client.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"userAgent"`
}

// MicroblogConfig describes the blog host: its feed and its Micropub endpoint.
type MicroblogConfig struct {
	FeedURL          string `yaml:"feedUrl"`
	Token            string `yaml:"token"`
	MicropubEndpoint string `yaml:"micropubEndpoint"`
	Username         string `yaml:"username"`
	BooksEndpoint    string `yaml:"booksEndpoint"`
	Site             string `yaml:"site"`
}

// TMDBConfig defines how to contact the movie metadata API.
type TMDBConfig struct {
	APIKey    string `yaml:"apiKey"`
	Endpoint  string `yaml:"endpoint"`
	ImageBase string `yaml:"imageBase"`
}

// EnrichConfig controls the watched-post enrichment run.
type EnrichConfig struct {
	DryRun   bool          `yaml:"dryRun"`
	Limit    int           `yaml:"limit"`
	Interval time.Duration `yaml:"interval"`
}

// SearchConfig locates the search endpoint and the page elements it drives.
type SearchConfig struct {
	Site           string `yaml:"site"`
	InputSelector  string `yaml:"inputSelector"`
	ResultSelector string `yaml:"resultSelector"`
}

// LedgerConfig selects where enrichment results are recorded.
type LedgerConfig struct {
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// BookshelvesConfig lists the shelves to sync and where to write them.
type BookshelvesConfig struct {
	Shelves   []string `yaml:"shelves"`
	OutputDir string   `yaml:"outputDir"`
}

// CoversConfig controls cover art downloads.
type CoversConfig struct {
	DataFile  string        `yaml:"dataFile"`
	OutputDir string        `yaml:"outputDir"`
	Interval  time.Duration `yaml:"interval"`
}

// MissingCredentialError aborts a run before any work starts.
type MissingCredentialError struct {
	Name string
	Hint string
}

func (e *MissingCredentialError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("%s not set", e.Name)
	}
	return fmt.Sprintf("%s not set (%s)", e.Name, e.Hint)
}

// Load reads the YAML file named by MBTHEME_CONFIG (if set) and applies
// environment overrides.
func Load() Config {
	return LoadFrom(os.Getenv(configPathEnv))
}

// LoadFrom is Load with an explicit file path; an empty path means defaults.
func LoadFrom(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// ValidateEnrichment checks the credentials an enrichment run cannot start without.
func (c Config) ValidateEnrichment() error {
	if c.Microblog.Token == "" {
		return &MissingCredentialError{Name: tokenEnv, Hint: "get a token from https://micro.blog/account/apps"}
	}
	if c.Microblog.FeedURL == "" {
		return &MissingCredentialError{Name: feedURLEnv, Hint: "e.g. https://yourblog.micro.blog/feed.json"}
	}
	if c.TMDB.APIKey == "" {
		return &MissingCredentialError{Name: tmdbAPIKeyEnv, Hint: "get an API key from https://www.themoviedb.org/settings/api"}
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(tokenEnv); v != "" {
		c.Microblog.Token = v
	}

	if v := os.Getenv(feedURLEnv); v != "" {
		c.Microblog.FeedURL = v
	}

	if v := os.Getenv(usernameEnv); v != "" {
		c.Microblog.Username = v
	}

	if v := os.Getenv(tmdbAPIKeyEnv); v != "" {
		c.TMDB.APIKey = v
	}

	if v := os.Getenv(dryRunEnv); v != "" {
		c.Enrich.DryRun = strings.EqualFold(v, "true")
	}

	if v := os.Getenv(watchLimitEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Enrich.Limit = n
		} else {
			log.Printf("config: ignoring %s=%q: %v", watchLimitEnv, v, err)
		}
	}

	if v := os.Getenv(searchSiteEnv); v != "" {
		c.Search.Site = v
	}

	if v := os.Getenv(ledgerDriverEnv); v != "" {
		c.Ledger.Driver = v
	}

	if v := os.Getenv(ledgerDSNEnv); v != "" {
		c.Ledger.DSN = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.HTTP.Timeout > 0 {
		base.HTTP.Timeout = override.HTTP.Timeout
	}
	if override.HTTP.UserAgent != "" {
		base.HTTP.UserAgent = override.HTTP.UserAgent
	}

	if override.Microblog.FeedURL != "" {
		base.Microblog.FeedURL = override.Microblog.FeedURL
	}
	if override.Microblog.Token != "" {
		base.Microblog.Token = override.Microblog.Token
	}
	if override.Microblog.MicropubEndpoint != "" {
		base.Microblog.MicropubEndpoint = override.Microblog.MicropubEndpoint
	}
	if override.Microblog.Username != "" {
		base.Microblog.Username = override.Microblog.Username
	}
	if override.Microblog.BooksEndpoint != "" {
		base.Microblog.BooksEndpoint = override.Microblog.BooksEndpoint
	}
	if override.Microblog.Site != "" {
		base.Microblog.Site = override.Microblog.Site
	}

	if override.TMDB.APIKey != "" {
		base.TMDB.APIKey = override.TMDB.APIKey
	}
	if override.TMDB.Endpoint != "" {
		base.TMDB.Endpoint = override.TMDB.Endpoint
	}
	if override.TMDB.ImageBase != "" {
		base.TMDB.ImageBase = override.TMDB.ImageBase
	}

	if override.Enrich.DryRun {
		base.Enrich.DryRun = true
	}
	if override.Enrich.Limit > 0 {
		base.Enrich.Limit = override.Enrich.Limit
	}
	if override.Enrich.Interval > 0 {
		base.Enrich.Interval = override.Enrich.Interval
	}

	if override.Search.Site != "" {
		base.Search.Site = override.Search.Site
	}
	if override.Search.InputSelector != "" {
		base.Search.InputSelector = override.Search.InputSelector
	}
	if override.Search.ResultSelector != "" {
		base.Search.ResultSelector = override.Search.ResultSelector
	}

	if override.Ledger.Driver != "" {
		base.Ledger.Driver = override.Ledger.Driver
	}
	if override.Ledger.DSN != "" {
		base.Ledger.DSN = override.Ledger.DSN
	}
	if override.Ledger.Database != "" {
		base.Ledger.Database = override.Ledger.Database
	}
	if override.Ledger.Collection != "" {
		base.Ledger.Collection = override.Ledger.Collection
	}

	if len(override.Bookshelves.Shelves) > 0 {
		base.Bookshelves.Shelves = override.Bookshelves.Shelves
	}
	if override.Bookshelves.OutputDir != "" {
		base.Bookshelves.OutputDir = override.Bookshelves.OutputDir
	}

	if override.Covers.DataFile != "" {
		base.Covers.DataFile = override.Covers.DataFile
	}
	if override.Covers.OutputDir != "" {
		base.Covers.OutputDir = override.Covers.OutputDir
	}
	if override.Covers.Interval > 0 {
		base.Covers.Interval = override.Covers.Interval
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		HTTP:    HTTPConfig{Timeout: 20 * time.Second, UserAgent: "mbtheme/1.0"},
		Microblog: MicroblogConfig{
			MicropubEndpoint: "https://micro.blog/micropub",
			BooksEndpoint:    "https://micro.blog/books",
		},
		TMDB: TMDBConfig{
			Endpoint:  "https://api.themoviedb.org/3",
			ImageBase: "https://image.tmdb.org/t/p/w500",
		},
		Enrich: EnrichConfig{Limit: 50, Interval: 500 * time.Millisecond},
		Search: SearchConfig{
			InputSelector:  "form.search-form input[name=q]",
			ResultSelector: "#search-results",
		},
		Ledger: LedgerConfig{
			Driver:     LedgerNone,
			DSN:        "mbtheme.db",
			Database:   "mbtheme",
			Collection: "enrichment_results",
		},
		Bookshelves: BookshelvesConfig{
			Shelves:   []string{"currently-reading", "want-to-read", "finished-reading"},
			OutputDir: "data",
		},
		Covers: CoversConfig{
			DataFile:  "data/bookshelves.json",
			OutputDir: "static/images/books",
			Interval:  500 * time.Millisecond,
		},
	}
}
