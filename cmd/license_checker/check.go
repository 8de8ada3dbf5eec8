package main

import (
	"context"
	"fmt"

	"github.com/jonathan/license-checker/internal/config"
	"github.com/jonathan/license-checker/internal/metadata"
	"github.com/jonathan/license-checker/internal/packages"
	"github.com/jonathan/license-checker/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	checkPackages     []string
	checkSitePackages []string
	checkPython       string
	checkWorkers      int
	checkFormat       string
)

func init() {
	rootCmd.Flags().StringSliceVar(&checkPackages, "pkg", nil, "Get license info only for the packages listed (further names may follow as arguments)")
	rootCmd.Flags().StringArrayVar(&checkSitePackages, "site-packages", nil, "Site directory to scan (repeatable; default: ask python)")
	rootCmd.Flags().StringVar(&checkPython, "python", "", "Python interpreter used to find site directories (default python3, or LICENSE_CHECKER_PYTHON)")
	rootCmd.Flags().IntVar(&checkWorkers, "workers", 0, "Packages processed concurrently; output order is unchanged (default 1)")
	rootCmd.Flags().StringVar(&checkFormat, "format", "", "Output format: tsv or json (default tsv)")
}

// applyCheckFlags copies the root-only flags that were explicitly set onto cfg.
func applyCheckFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("pkg") {
		cfg.Packages = checkPackages
	}
	if flags.Changed("site-packages") {
		cfg.SitePackages = checkSitePackages
	}
	if flags.Changed("python") {
		cfg.Python = checkPython
	}
	if flags.Changed("workers") {
		cfg.Workers = checkWorkers
	}
	if flags.Changed("format") {
		cfg.Format = checkFormat
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// Positional arguments extend --pkg, mirroring "--pkg NAME [NAME...]".
	if len(args) > 0 {
		cfg.Packages = append(append([]string{}, cfg.Packages...), args...)
	}

	p := newPipeline(cfg, cmd.ErrOrStderr())
	defer func() { _ = p.logger.Sync() }()

	dirs := cfg.SitePackages
	if len(dirs) == 0 {
		dirs, err = packages.SitePackages(ctx, cfg.Python)
		if err != nil {
			return err
		}
	}
	p.logger.Debug("scanning site directories", zap.Strings("dirs", dirs))

	found, err := packages.NewScanner(p.logger).Enumerate(ctx, dirs)
	if err != nil {
		return fmt.Errorf("failed to enumerate packages: %w", err)
	}
	dists := make([]metadata.Distribution, len(found))
	for i, d := range found {
		dists[i] = d
	}

	w, err := report.NewWriter(cmd.OutOrStdout(), cfg.Format)
	if err != nil {
		return err
	}

	opts := report.Options{
		PackageFilter:       report.NewFilter(cfg.Packages),
		AllowScrapeFallback: cfg.DoSoup,
		Workers:             cfg.Workers,
	}
	if err := p.assembler.Run(ctx, dists, opts, w.Write); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	p.logger.Debug("report complete",
		zap.Int("packages", len(dists)),
		zap.Int("cached_responses", p.cache.Len()))
	return w.Close()
}
