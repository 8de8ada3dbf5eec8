package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jonathan/license-checker/internal/config"
	"github.com/jonathan/license-checker/internal/fetch"
	"github.com/jonathan/license-checker/internal/github"
	"github.com/jonathan/license-checker/internal/metadata"
	"github.com/jonathan/license-checker/internal/observability"
	"github.com/jonathan/license-checker/internal/packages"
	"github.com/jonathan/license-checker/internal/report"
	"github.com/jonathan/license-checker/internal/resolve"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Flags shared by every command.
var (
	configPath     string
	doSoup         bool
	useBrowser     bool
	strictProbe    bool
	apiURL         string
	webURL         string
	githubToken    string
	timeoutSeconds int
	verbose        bool
)

func init() {
	pf := rootCmd.PersistentFlags()

	// Config file flag (processed first)
	pf.StringVar(&configPath, "config", "", "Path to a JSON or YAML config file (values can be overridden by other flags)")

	pf.BoolVar(&doSoup, "do-soup", false, "Parse homepages to try to find a GitHub link")
	pf.BoolVar(&useBrowser, "use-browser", false, "Render homepages in a headless browser when scraping (requires Chrome)")
	pf.BoolVar(&strictProbe, "strict-probe", false, "Only accept 2xx responses when probing for license files")
	pf.StringVar(&apiURL, "api-url", "", "GitHub API root (default "+github.DefaultAPIURL+")")
	pf.StringVar(&webURL, "web-url", "", "GitHub web root used for license file probes (default "+github.DefaultWebURL+")")
	pf.StringVar(&githubToken, "github-token", "", "GitHub API token (optional, defaults to GITHUB_TOKEN env var)")
	pf.IntVar(&timeoutSeconds, "timeout", 0, "HTTP timeout in seconds (default 30)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information to stderr")
}

// defaults are applied after the config file and flags.
var defaults = config.Config{
	Python:         packages.DefaultPython,
	APIURL:         github.DefaultAPIURL,
	WebURL:         github.DefaultWebURL,
	TimeoutSeconds: int(fetch.DefaultTimeout / time.Second),
	Workers:        1,
	Format:         report.FormatTSV,
}

// loadConfig merges the config file, explicitly set flags, environment and defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	// Step 1: Load config file if provided
	var cfg config.Config
	if configPath != "" {
		loadedCfg, err := config.LoadConfig(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	flags := cmd.Flags()
	if flags.Changed("do-soup") {
		cfg.DoSoup = doSoup
	}
	if flags.Changed("use-browser") {
		cfg.UseBrowser = useBrowser
	}
	if flags.Changed("strict-probe") {
		cfg.StrictProbe = strictProbe
	}
	if flags.Changed("api-url") {
		cfg.APIURL = apiURL
	}
	if flags.Changed("web-url") {
		cfg.WebURL = webURL
	}
	if flags.Changed("github-token") {
		cfg.GitHubToken = githubToken
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds = timeoutSeconds
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	applyCheckFlags(cmd, &cfg)

	// Step 3: Environment fallbacks
	if cfg.GitHubToken == "" {
		cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	}
	if cfg.Python == "" {
		cfg.Python = os.Getenv("LICENSE_CHECKER_PYTHON")
	}

	// Step 4: Apply defaults for unset values
	cfg = cfg.MergeWithDefaults(defaults)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// pipeline holds the wired components for one run.
type pipeline struct {
	logger    *zap.Logger
	cache     *fetch.CachedFetcher
	resolver  *resolve.Resolver
	locator   *github.Client
	assembler *report.Assembler
}

func newPipeline(cfg config.Config, logOut io.Writer) *pipeline {
	logger := observability.NewLogger(logOut, cfg.Verbose)

	client := fetch.NewClient(&fetch.Options{Timeout: cfg.Timeout()})
	cached := fetch.NewCachedFetcher(client)

	pages := []resolve.PageSource{fetch.HTTPPages{Getter: cached}}
	if cfg.UseBrowser {
		pages = append(pages, &fetch.Browser{Timeout: cfg.Timeout(), Logger: logger})
	}
	resolver := resolve.New(logger, pages...)

	locator := github.NewClient(github.Config{
		APIURL:      cfg.APIURL,
		WebURL:      cfg.WebURL,
		Token:       cfg.GitHubToken,
		StrictProbe: cfg.StrictProbe,
	}, cached, client, logger)

	return &pipeline{
		logger:    logger,
		cache:     cached,
		resolver:  resolver,
		locator:   locator,
		assembler: report.NewAssembler(metadata.NewReader(logger), resolver, locator, logger),
	}
}
