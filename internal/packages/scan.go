// Package packages enumerates Python distributions installed in site-packages
// directories.
//
// A distribution is a top-level "*.dist-info" directory (wheel metadata in
// METADATA), a "*.egg-info" directory (PKG-INFO), or a "*.egg-info" file that
// is itself the PKG-INFO document.
package packages

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/textproto"
	"os"
	"path"
	"strings"

	"github.com/jonathan/license-checker/internal/metadata"
	"go.uber.org/zap"
)

const (
	distInfoSuffix = ".dist-info"
	eggInfoSuffix  = ".egg-info"
)

// Distribution is an installed distribution backed by a filesystem.
type Distribution struct {
	name    string
	version string
	sys     fs.FS
	// files maps a metadata file name to its path within sys.
	files map[string]string
	// Location is the metadata path relative to the site directory.
	Location string
}

var _ metadata.Distribution = (*Distribution)(nil)

// Name returns the project name.
func (d *Distribution) Name() string { return d.name }

// Version returns the installed version.
func (d *Distribution) Version() string { return d.version }

// HasMetadata reports whether the distribution carries the named metadata file.
func (d *Distribution) HasMetadata(file string) bool {
	_, ok := d.files[file]
	return ok
}

// MetadataLines returns the lines of the named metadata file.
func (d *Distribution) MetadataLines(file string) ([]string, error) {
	p, ok := d.files[file]
	if !ok {
		return nil, fmt.Errorf("%s: %w", file, fs.ErrNotExist)
	}
	b, err := fs.ReadFile(d.sys, p)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(b), "\r\n", "\n")
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n"), nil
}

// ScanError represents a failure to read a site-packages directory.
type ScanError struct {
	Dir   string
	Cause error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan error for %s: %v", e.Dir, e.Cause)
}

func (e *ScanError) Unwrap() error {
	return e.Cause
}

// Scanner finds distributions in site directories.
type Scanner struct {
	Logger *zap.Logger
}

// NewScanner creates a Scanner. A nil logger discards output.
func NewScanner(logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{Logger: logger}
}

// Enumerate scans each directory in order and returns the distributions found.
// A name found in an earlier directory shadows later ones. Missing directories
// are skipped.
func (s *Scanner) Enumerate(ctx context.Context, dirs []string) ([]*Distribution, error) {
	seen := make(map[string]bool)
	var out []*Distribution
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dists, err := s.Scan(ctx, os.DirFS(dir))
		if errors.Is(err, fs.ErrNotExist) {
			s.Logger.Debug("site directory missing, skipping", zap.String("dir", dir))
			continue
		}
		if err != nil {
			return nil, &ScanError{Dir: dir, Cause: err}
		}
		for _, d := range dists {
			key := normalize(d.name)
			if seen[key] {
				s.Logger.Debug("shadowed distribution",
					zap.String("package", d.name),
					zap.String("dir", dir))
				continue
			}
			seen[key] = true
			out = append(out, d)
		}
	}
	return out, nil
}

// Scan returns the distributions at the top level of sys in directory order.
func (s *Scanner) Scan(ctx context.Context, sys fs.FS) ([]*Distribution, error) {
	entries, err := fs.ReadDir(sys, ".")
	if err != nil {
		return nil, err
	}

	var out []*Distribution
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := e.Name()
		var d *Distribution
		switch {
		case strings.HasSuffix(n, distInfoSuffix) && e.IsDir():
			d = s.fromDir(sys, n, distInfoSuffix)
		case strings.HasSuffix(n, eggInfoSuffix) && e.IsDir():
			d = s.fromDir(sys, n, eggInfoSuffix)
		case strings.HasSuffix(n, eggInfoSuffix) && e.Type().IsRegular():
			d = &Distribution{
				sys:      sys,
				files:    map[string]string{metadata.PkgInfoFile: n},
				Location: n,
			}
			s.identify(d, n, eggInfoSuffix)
		default:
			continue
		}
		if d == nil {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *Scanner) fromDir(sys fs.FS, dir, suffix string) *Distribution {
	d := &Distribution{sys: sys, files: make(map[string]string), Location: dir}
	for _, file := range metadata.Files {
		p := path.Join(dir, file)
		if fi, err := fs.Stat(sys, p); err == nil && fi.Mode().IsRegular() {
			d.files[file] = p
		}
	}
	s.identify(d, dir, suffix)
	if d.name == "" {
		s.Logger.Debug("unable to identify distribution, skipping", zap.String("path", dir))
		return nil
	}
	return d
}

// identify fills name and version from the metadata headers, falling back to
// the "name-version" form of the directory name.
func (s *Scanner) identify(d *Distribution, entry, suffix string) {
	for _, file := range metadata.Files {
		p, ok := d.files[file]
		if !ok {
			continue
		}
		b, err := fs.ReadFile(d.sys, p)
		if err != nil {
			s.Logger.Warn("unable to read metadata", zap.String("path", p), zap.Error(err))
			continue
		}
		// Metadata files are RFC 822 style headers followed by a body.
		rd := textproto.NewReader(bufio.NewReader(bytes.NewReader(b)))
		hdr, err := rd.ReadMIMEHeader()
		if err != nil && hdr == nil {
			continue
		}
		if v := hdr.Get("Name"); v != "" {
			d.name = v
		}
		if v := hdr.Get("Version"); v != "" {
			d.version = v
		}
	}
	if d.name != "" {
		return
	}

	base := strings.TrimSuffix(entry, suffix)
	name, rest, _ := strings.Cut(base, "-")
	d.name = name
	if d.version == "" {
		// Egg names may carry a python tag: name-1.0-py3.11.egg-info
		version, _, _ := strings.Cut(rest, "-")
		d.version = version
	}
}

// normalize applies PEP 503 name normalisation for duplicate detection.
func normalize(name string) string {
	name = strings.ToLower(name)
	return strings.NewReplacer("_", "-", ".", "-").Replace(name)
}
