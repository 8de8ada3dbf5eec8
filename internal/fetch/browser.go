package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// DefaultBrowserTimeout bounds a single headless page render.
const DefaultBrowserTimeout = 30 * time.Second

// Browser renders pages in headless Chrome. Homepages built as single-page
// apps often only expose their repository link after JavaScript runs.
// Requires Chrome/Chromium to be installed on the system.
type Browser struct {
	Timeout time.Duration
	Logger  *zap.Logger
}

// Page renders urlStr and returns the resulting document HTML.
func (b *Browser) Page(ctx context.Context, urlStr string) (string, error) {
	timeout := b.Timeout
	if timeout == 0 {
		timeout = DefaultBrowserTimeout
	}
	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("starting headless browser", zap.String("url", urlStr))

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(urlStr),
		chromedp.WaitReady("body"),
		// Give client-side rendering a moment to insert nav and footer links.
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &Error{
			URL:     urlStr,
			Message: "browser rendering failed",
			Cause:   err,
		}
	}

	logger.Debug("rendered page", zap.String("url", urlStr), zap.Int("bytes", len(html)))
	return html, nil
}

// HTTPPages adapts a Getter into a page source returning the body as HTML.
type HTTPPages struct {
	Getter Getter
}

// Page fetches urlStr with a plain GET. The body is returned for any HTTP
// status; only a transport failure is an error.
func (p HTTPPages) Page(ctx context.Context, urlStr string) (string, error) {
	result, err := p.Getter.Get(ctx, urlStr, nil)
	if result != nil {
		return string(result.Body), nil
	}
	if err != nil {
		return "", err
	}
	return "", fmt.Errorf("empty response for %s", urlStr)
}
