// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/license-checker/internal/schemas"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Selection
	Packages     []string `json:"packages,omitempty" yaml:"packages,omitempty" validate:"dive,required"`           // Exact package names to report on
	SitePackages []string `json:"site_packages,omitempty" yaml:"site_packages,omitempty" validate:"dive,required"` // Site directories to scan instead of asking python
	Python       string   `json:"python,omitempty" yaml:"python,omitempty"`                                        // Interpreter queried for site directories

	// Resolution
	DoSoup      bool   `json:"do_soup,omitempty" yaml:"do_soup,omitempty"`                          // Scrape homepages for a repository link
	UseBrowser  bool   `json:"use_browser,omitempty" yaml:"use_browser,omitempty"`                  // Render homepages in headless Chrome when scraping
	StrictProbe bool   `json:"strict_probe,omitempty" yaml:"strict_probe,omitempty"`                // Require 2xx for license file probes
	APIURL      string `json:"api_url,omitempty" yaml:"api_url,omitempty" validate:"omitempty,url"` // License API root
	WebURL      string `json:"web_url,omitempty" yaml:"web_url,omitempty" validate:"omitempty,url"` // Web root used for probe URLs
	GitHubToken string `json:"github_token,omitempty" yaml:"github_token,omitempty"`                // API token

	// Runtime
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty" validate:"gte=0"`  // HTTP timeout
	Workers        int    `json:"workers,omitempty" yaml:"workers,omitempty" validate:"gte=0,lte=32"`           // Concurrent packages
	Format         string `json:"format,omitempty" yaml:"format,omitempty" validate:"omitempty,oneof=tsv json"` // Output format
	Verbose        bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`                                   // Print debug logs to stderr
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
// The document is checked against the config schema before decoding.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
		if err := schemas.ValidateValue(schemas.Config, doc); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
		if err := schemas.Validate(schemas.Config, data); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	for _, dir := range c.SitePackages {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("config error: site directory not found: %s", dir)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if len(result.Packages) == 0 {
		result.Packages = defaults.Packages
	}
	if len(result.SitePackages) == 0 {
		result.SitePackages = defaults.SitePackages
	}
	if result.Python == "" {
		result.Python = defaults.Python
	}
	if result.APIURL == "" {
		result.APIURL = defaults.APIURL
	}
	if result.WebURL == "" {
		result.WebURL = defaults.WebURL
	}
	if result.GitHubToken == "" {
		result.GitHubToken = defaults.GitHubToken
	}
	if result.Format == "" {
		result.Format = defaults.Format
	}

	if result.TimeoutSeconds == 0 {
		result.TimeoutSeconds = defaults.TimeoutSeconds
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Timeout returns the HTTP timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
