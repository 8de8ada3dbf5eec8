// Package report drives the per-package license pipeline and renders the
// resulting records.
package report

import (
	"context"

	"github.com/jonathan/license-checker/internal/metadata"
	"github.com/jonathan/license-checker/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options is the immutable run configuration handed to the assembler.
type Options struct {
	// PackageFilter restricts processing to these exact names. Nil means all packages.
	PackageFilter map[string]bool
	// AllowScrapeFallback lets the resolver fetch homepages that are not
	// recognisable project URLs.
	AllowScrapeFallback bool
	// Workers bounds concurrent package processing. Values below 2 process
	// packages strictly one at a time.
	Workers int
}

// NewFilter builds a PackageFilter from names. No names means no filter.
func NewFilter(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	filter := make(map[string]bool, len(names))
	for _, n := range names {
		filter[n] = true
	}
	return filter
}

// Resolver maps a homepage URL to a project identity.
type Resolver interface {
	Resolve(ctx context.Context, urlStr string, allowScrape bool) (types.ProjectIdentity, bool)
}

// Locator finds the license URL for a project identity.
type Locator interface {
	LicenseURL(ctx context.Context, id types.ProjectIdentity) (string, error)
}

// Assembler combines metadata reading, project resolution and license location.
type Assembler struct {
	reader   *metadata.Reader
	resolver Resolver
	locator  Locator
	logger   *zap.Logger
}

// NewAssembler creates an Assembler.
func NewAssembler(reader *metadata.Reader, resolver Resolver, locator Locator, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reader == nil {
		reader = metadata.NewReader(logger)
	}
	return &Assembler{reader: reader, resolver: resolver, locator: locator, logger: logger}
}

// Select returns the distributions admitted by the filter, in input order.
func Select[D metadata.Distribution](dists []D, filter map[string]bool) []D {
	if filter == nil {
		return dists
	}
	out := make([]D, 0, len(filter))
	for _, d := range dists {
		if filter[d.Name()] {
			out = append(out, d)
		}
	}
	return out
}

// Record runs the pipeline for a single distribution.
func (a *Assembler) Record(ctx context.Context, dist metadata.Distribution, opts Options) *types.PackageRecord {
	res := a.reader.Read(dist)
	rec := res.Record
	if res.HomepageSeen {
		rec.LicenseURL = a.licenseURL(ctx, rec, opts.AllowScrapeFallback)
	}
	return rec
}

func (a *Assembler) licenseURL(ctx context.Context, rec *types.PackageRecord, allowScrape bool) string {
	id, ok := a.resolver.Resolve(ctx, rec.HomepageURL, allowScrape)
	if !ok {
		return types.UnparsableHomepage
	}
	licenseURL, err := a.locator.LicenseURL(ctx, id)
	if err != nil {
		a.logger.Warn("license lookup failed",
			zap.String("package", rec.Name),
			zap.Stringer("project", id),
			zap.Error(err))
	}
	return licenseURL
}

// Run processes the selected distributions and passes each record to emit in
// enumeration order. Processing stops at the first emit error.
func (a *Assembler) Run(ctx context.Context, dists []metadata.Distribution, opts Options, emit func(*types.PackageRecord) error) error {
	selected := Select(dists, opts.PackageFilter)
	a.logger.Debug("processing packages",
		zap.Int("enumerated", len(dists)),
		zap.Int("selected", len(selected)),
		zap.Int("workers", opts.Workers))

	if opts.Workers < 2 {
		for _, d := range selected {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := emit(a.Record(ctx, d, opts)); err != nil {
				return err
			}
		}
		return nil
	}
	return a.runPool(ctx, selected, opts, emit)
}

// runPool processes packages concurrently while emitting strictly in order:
// each slot's channel is read by the emitter in index order.
func (a *Assembler) runPool(ctx context.Context, dists []metadata.Distribution, opts Options, emit func(*types.PackageRecord) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers + 1)

	slots := make([]chan *types.PackageRecord, len(dists))
	for i := range slots {
		slots[i] = make(chan *types.PackageRecord, 1)
	}

	g.Go(func() error {
		for _, slot := range slots {
			select {
			case rec := <-slot:
				if err := emit(rec); err != nil {
					return err
				}
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for i, d := range dists {
		if gctx.Err() != nil {
			break
		}
		i, d := i, d
		g.Go(func() error {
			slots[i] <- a.Record(gctx, d, opts)
			return nil
		})
	}

	return g.Wait()
}
