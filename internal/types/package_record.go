// Package types provides the records shared by the license_checker pipeline.
package types

import "fmt"

// Sentinel values recorded in place of a resolved result.
const (
	// NoMetafileLicense is the declared license when no metadata file declares one.
	NoMetafileLicense = "unknown - no metafile found"
	// UnparsableHomepage is the license URL when the homepage does not name a hosted project.
	UnparsableHomepage = "unknown - couldn't parse github url"
	// NoLicenseFileFound is the license URL when neither the API nor any probe found a license.
	NoLicenseFileFound = "unknown - likely license names weren't found"
	// LicenseLookupFailed is the license URL when the license API could not be reached.
	LicenseLookupFailed = "unknown - license lookup failed"
)

// PackageRecord describes one installed package and what is known about its license.
type PackageRecord struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	DeclaredLicense string `json:"declared_license"`
	HomepageURL     string `json:"homepage_url"`
	LicenseURL      string `json:"license_url"`
	LicenseFound    bool   `json:"license_found"`
}

// TSV renders the record as a single tab-separated report line without a trailing newline.
// Field order: name, homepage, license URL, version, declared license.
func (r *PackageRecord) TSV() string {
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%s",
		r.Name, r.HomepageURL, r.LicenseURL, r.Version, r.DeclaredLicense)
}
