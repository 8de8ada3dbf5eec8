package resolve

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/license-checker/internal/types"
	"go.uber.org/zap"
)

// Scrape fetches a homepage and looks for a link to the hosted project.
//
// Anchors with class "github" are tried first, then every anchor whose href
// contains HostMarker, in document order. Each href is resolved with Follow,
// which must not scrape again, and the first valid identity wins.
type Scrape struct {
	Pages  []PageSource
	Follow Strategy
	Logger *zap.Logger
}

// Name implements Strategy.
func (*Scrape) Name() string { return "scrape" }

// Resolve implements Strategy. Fetch and parse failures are logged and
// treated as "not found".
func (s *Scrape) Resolve(ctx context.Context, urlStr string) (types.ProjectIdentity, bool) {
	for _, pages := range s.Pages {
		html, err := pages.Page(ctx, urlStr)
		if err != nil {
			s.logger().Debug("page fetch failed", zap.String("url", urlStr), zap.Error(err))
			continue
		}
		id, ok, err := s.scan(ctx, html)
		if err != nil {
			s.logger().Debug("page parse failed", zap.String("url", urlStr), zap.Error(err))
			continue
		}
		if ok {
			return id, true
		}
	}
	return types.ProjectIdentity{}, false
}

func (s *Scrape) scan(ctx context.Context, html string) (types.ProjectIdentity, bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return types.ProjectIdentity{}, false, err
	}

	if id, ok := s.first(ctx, doc.Find("a.github")); ok {
		return id, true, nil
	}

	hosted := doc.Find("a[href]").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		return strings.Contains(href, HostMarker)
	})
	id, ok := s.first(ctx, hosted)
	return id, ok, nil
}

// first returns the first anchor in sel whose href resolves to a valid identity.
func (s *Scrape) first(ctx context.Context, sel *goquery.Selection) (types.ProjectIdentity, bool) {
	var found types.ProjectIdentity
	sel.EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, exists := a.Attr("href")
		if !exists {
			return true
		}
		id, ok := s.Follow.Resolve(ctx, strings.TrimSpace(href))
		if ok && id.Valid() {
			found = id
			return false
		}
		return true
	})
	return found, found.Valid()
}

func (s *Scrape) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
