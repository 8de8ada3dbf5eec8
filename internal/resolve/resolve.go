// Package resolve maps an arbitrary homepage URL to a project identity on the
// code hosting platform.
//
// Resolution is an ordered list of strategies. The first strategy to succeed
// wins; a URL no strategy recognises does not resolve.
package resolve

import (
	"context"
	"strings"

	"github.com/jonathan/license-checker/internal/types"
	"go.uber.org/zap"
)

// HostMarker is the literal substring identifying a hosting platform URL.
const HostMarker = "github.com/"

// Strategy attempts to resolve a URL to a project identity.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, urlStr string) (types.ProjectIdentity, bool)
}

// PageSource returns the HTML of a page.
type PageSource interface {
	Page(ctx context.Context, urlStr string) (string, error)
}

// Resolver runs the direct shape strategy and, when allowed, the scrape strategy.
type Resolver struct {
	direct Strategy
	scrape Strategy
	logger *zap.Logger
}

// New creates a Resolver. Pages are tried in order by the scrape strategy;
// with no pages scraping never succeeds.
func New(logger *zap.Logger, pages ...PageSource) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	direct := Direct{}
	return &Resolver{
		direct: direct,
		scrape: &Scrape{Pages: pages, Follow: direct, Logger: logger},
		logger: logger,
	}
}

// Strategies returns the strategies tried for a call with the given scrape setting.
func (r *Resolver) Strategies(allowScrape bool) []Strategy {
	if allowScrape {
		return []Strategy{r.direct, r.scrape}
	}
	return []Strategy{r.direct}
}

// Resolve returns the project identity for urlStr. The identity returned by the
// direct strategy is not checked for validity; callers needing a usable
// identity should check Valid.
func (r *Resolver) Resolve(ctx context.Context, urlStr string, allowScrape bool) (types.ProjectIdentity, bool) {
	for _, s := range r.Strategies(allowScrape) {
		if id, ok := s.Resolve(ctx, urlStr); ok {
			r.logger.Debug("resolved project",
				zap.String("url", urlStr),
				zap.String("strategy", s.Name()),
				zap.Stringer("project", id))
			return id, true
		}
	}
	return types.ProjectIdentity{}, false
}

// Direct recognises URLs shaped scheme://host/owner/project[/...] that contain HostMarker.
type Direct struct{}

// Name implements Strategy.
func (Direct) Name() string { return "direct" }

// Resolve splits urlStr on "/" and takes the fourth and fifth segments as
// owner and project. Missing segments are returned as empty strings.
func (Direct) Resolve(_ context.Context, urlStr string) (types.ProjectIdentity, bool) {
	if !strings.Contains(urlStr, HostMarker) {
		return types.ProjectIdentity{}, false
	}
	parts := strings.Split(urlStr, "/")
	return types.ProjectIdentity{
		Owner:   segment(parts, 3),
		Project: segment(parts, 4),
	}, true
}

func segment(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}
