// Package github locates the license text of a hosted project, first through
// the repository license API and then by probing conventional file names.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonathan/license-checker/internal/fetch"
	"github.com/jonathan/license-checker/internal/types"
	"go.uber.org/zap"
)

const (
	// DefaultAPIURL is the public REST API root.
	DefaultAPIURL = "https://api.github.com"
	// DefaultWebURL is the public web root used for probe URLs.
	DefaultWebURL = "https://github.com"
	// LicenseAccept selects the license preview media type of the repository license endpoint.
	LicenseAccept = "application/vnd.github.drax-preview+json"
)

// Conventional license file names and extensions, probed base-name-major.
var (
	LicenseNames      = []string{"LICENSE", "LICENCE", "COPYING"}
	LicenseExtensions = []string{"", ".txt", ".md", ".rst"}
)

// ErrLookupFailed is returned when the license API could not be reached.
var ErrLookupFailed = errors.New("license lookup failed")

// Getter performs GET requests.
type Getter interface {
	Get(ctx context.Context, urlStr string, headers map[string]string) (*fetch.Result, error)
}

// Header performs HEAD requests, returning a result for any HTTP response.
type Header interface {
	Head(ctx context.Context, urlStr string) (*fetch.Result, error)
}

// Config configures a Client.
type Config struct {
	APIURL string
	WebURL string
	Token  string
	// StrictProbe requires a 2xx probe response. Otherwise any status below
	// 400 counts, which also accepts redirects such as master -> main.
	StrictProbe bool
}

// Client looks up license URLs for hosted projects.
type Client struct {
	cfg    Config
	getter Getter
	header Header
	logger *zap.Logger
}

// NewClient creates a Client. Empty URLs in cfg fall back to the public defaults.
func NewClient(cfg Config, getter Getter, header Header, logger *zap.Logger) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.WebURL == "" {
		cfg.WebURL = DefaultWebURL
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	cfg.WebURL = strings.TrimRight(cfg.WebURL, "/")
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, getter: getter, header: header, logger: logger}
}

type licenseResponse struct {
	HTMLURL string `json:"html_url"`
}

// LicenseURL returns the URL of the project's license text.
//
// The API's html_url is returned verbatim when present. Otherwise the
// conventional file names are probed and the first hit is returned, or
// types.NoLicenseFileFound when none exists. If the API cannot be reached
// the result is types.LicenseLookupFailed together with an error wrapping
// ErrLookupFailed.
func (c *Client) LicenseURL(ctx context.Context, id types.ProjectIdentity) (string, error) {
	htmlURL, err := c.apiLicense(ctx, id)
	if err != nil {
		return types.LicenseLookupFailed, err
	}
	if htmlURL != "" {
		return htmlURL, nil
	}

	for _, candidate := range Candidates(c.cfg.WebURL, id) {
		if c.probe(ctx, candidate) {
			return candidate, nil
		}
	}
	return types.NoLicenseFileFound, nil
}

// apiLicense queries the license endpoint. HTTP error statuses and
// undecodable bodies yield an empty URL; only transport failures are errors.
func (c *Client) apiLicense(ctx context.Context, id types.ProjectIdentity) (string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/license", c.cfg.APIURL, id.Owner, id.Project)
	headers := map[string]string{"Accept": LicenseAccept}
	if c.cfg.Token != "" {
		headers["Authorization"] = "Bearer " + c.cfg.Token
	}

	result, err := c.getter.Get(ctx, endpoint, headers)
	if result == nil {
		if err == nil {
			err = errors.New("empty response")
		}
		return "", &APIError{Project: id, Message: ErrLookupFailed.Error(), Cause: err}
	}
	if err != nil {
		c.logger.Debug("license API returned an error status",
			zap.Stringer("project", id),
			zap.Int("status", result.StatusCode))
	}

	var body licenseResponse
	if jsonErr := json.Unmarshal(result.Body, &body); jsonErr != nil {
		c.logger.Debug("license API body is not JSON",
			zap.Stringer("project", id),
			zap.Error(jsonErr))
		return "", nil
	}
	return body.HTMLURL, nil
}

func (c *Client) probe(ctx context.Context, candidate string) bool {
	result, err := c.header.Head(ctx, candidate)
	if err != nil || result == nil {
		c.logger.Debug("probe failed", zap.String("url", candidate), zap.Error(err))
		return false
	}
	if c.cfg.StrictProbe {
		return result.StatusCode >= http.StatusOK && result.StatusCode < http.StatusMultipleChoices
	}
	return result.StatusCode < http.StatusBadRequest
}

// Candidates returns the probe URLs for id in probe order.
func Candidates(webURL string, id types.ProjectIdentity) []string {
	webURL = strings.TrimRight(webURL, "/")
	out := make([]string, 0, len(LicenseNames)*len(LicenseExtensions))
	for _, name := range LicenseNames {
		for _, ext := range LicenseExtensions {
			out = append(out, fmt.Sprintf("%s/%s/%s/blob/master/%s%s", webURL, id.Owner, id.Project, name, ext))
		}
	}
	return out
}
