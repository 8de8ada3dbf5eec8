// Package metadata reads license and homepage declarations from the metadata
// files bundled with an installed Python distribution.
package metadata

import (
	"strings"

	"github.com/jonathan/license-checker/internal/types"
	"go.uber.org/zap"
)

// Metadata file names, legacy (egg) first and modern (wheel) second.
// Later files override fields found in earlier ones.
const (
	PkgInfoFile  = "PKG-INFO"
	MetadataFile = "METADATA"
)

// Files is the scan order for metadata files.
var Files = []string{PkgInfoFile, MetadataFile}

const (
	licensePrefix           = "License: "
	licenseExpressionPrefix = "License-Expression: "
	homepagePrefix          = "Home-page: "
	projectURLPrefix        = "Project-URL: "
)

// homepageLabels are Project-URL labels accepted as a homepage when no
// Home-page header is present. Compared lowercased.
var homepageLabels = map[string]bool{
	"homepage":    true,
	"home":        true,
	"source":      true,
	"source code": true,
	"repository":  true,
}

// Distribution is an installed package as exposed by the host environment.
type Distribution interface {
	Name() string
	Version() string
	HasMetadata(file string) bool
	MetadataLines(file string) ([]string, error)
}

// Result is what the metadata files declared.
type Result struct {
	Record *types.PackageRecord
	// HomepageSeen is true when a homepage line was present, even with an empty value.
	HomepageSeen bool
}

// Reader extracts declarations from distribution metadata.
type Reader struct {
	Logger *zap.Logger
}

// NewReader creates a Reader. A nil logger discards output.
func NewReader(logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{Logger: logger}
}

// Read builds the PackageRecord for dist from its metadata files.
// A missing license declaration is recorded as types.NoMetafileLicense.
func (r *Reader) Read(dist Distribution) *Result {
	fields := project(dist)
	res := &Result{
		Record: &types.PackageRecord{
			Name:    fields["name"],
			Version: fields["version"],
		},
	}

	var projectHomepage string
	for _, file := range Files {
		if !dist.HasMetadata(file) {
			continue
		}
		lines, err := dist.MetadataLines(file)
		if err != nil {
			r.Logger.Warn("unable to read metadata, skipping",
				zap.String("package", dist.Name()),
				zap.String("file", file),
				zap.Error(err))
			continue
		}
		if hp := r.scan(res, lines); hp != "" {
			projectHomepage = hp
		}
	}

	if !res.HomepageSeen && projectHomepage != "" {
		res.Record.HomepageURL = projectHomepage
		res.HomepageSeen = true
	}
	if !res.Record.LicenseFound {
		res.Record.DeclaredLicense = types.NoMetafileLicense
	}
	return res
}

// scan applies the header lines of one metadata file to res and returns the
// first Project-URL homepage candidate found in it.
func (r *Reader) scan(res *Result, lines []string) string {
	var projectHomepage string
	for _, line := range lines {
		// Headers end at the first empty line; the long description follows.
		// Whitespace-only lines are continuations of a multi-line value.
		if strings.TrimRight(line, "\r") == "" {
			break
		}
		switch {
		case strings.HasPrefix(line, licensePrefix):
			res.Record.DeclaredLicense = value(line, licensePrefix)
			res.Record.LicenseFound = true
		case strings.HasPrefix(line, licenseExpressionPrefix):
			res.Record.DeclaredLicense = value(line, licenseExpressionPrefix)
			res.Record.LicenseFound = true
		case strings.HasPrefix(line, homepagePrefix):
			res.Record.HomepageURL = value(line, homepagePrefix)
			res.HomepageSeen = true
		case strings.HasPrefix(line, projectURLPrefix) && projectHomepage == "":
			label, u, ok := strings.Cut(value(line, projectURLPrefix), ",")
			if ok && homepageLabels[strings.ToLower(strings.TrimSpace(label))] {
				projectHomepage = strings.TrimSpace(u)
			}
		}
	}
	return projectHomepage
}

func value(line, prefix string) string {
	return strings.TrimRight(strings.TrimPrefix(line, prefix), "\r")
}

// project copies the distribution's identifying fields, defaulting each to
// its entry in fieldDefaults when the distribution reports nothing.
func project(dist Distribution) map[string]string {
	out := make(map[string]string, len(fieldDefaults))
	for field, def := range fieldDefaults {
		out[field] = def
	}
	if v := dist.Name(); v != "" {
		out["name"] = v
	}
	if v := dist.Version(); v != "" {
		out["version"] = v
	}
	return out
}

var fieldDefaults = map[string]string{
	"name":    "",
	"version": "",
}
