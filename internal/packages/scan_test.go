package packages

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/jonathan/license-checker/internal/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const requestsMetadata = `Metadata-Version: 2.1
Name: requests
Version: 2.31.0
Summary: Python HTTP for Humans.
Home-page: https://requests.readthedocs.io
License: Apache 2.0

Requests is an elegant and simple HTTP library.
License: not a header
`

func TestScan_FindsWheelsAndEggs(t *testing.T) {
	sys := fstest.MapFS{
		"requests-2.31.0.dist-info/METADATA":  {Data: []byte(requestsMetadata)},
		"requests-2.31.0.dist-info/RECORD":    {Data: []byte("")},
		"six-1.16.0-py3.11.egg-info/PKG-INFO": {Data: []byte("Name: six\nVersion: 1.16.0\nLicense: MIT\n")},
		"legacy.egg-info":                     {Data: []byte("Metadata-Version: 1.0\nName: legacy\nVersion: 0.9\n")},
		"requests/__init__.py":                {Data: []byte("")},
		"not_a_dist.txt":                      {Data: []byte("")},
		"Bare_Pkg-3.0.dist-info/INSTALLER":    {Data: []byte("pip\n")},
	}

	dists, err := NewScanner(nil).Scan(context.Background(), sys)
	require.NoError(t, err)
	require.Len(t, dists, 4)

	names := make([]string, 0, len(dists))
	for _, d := range dists {
		names = append(names, d.Name())
	}
	assert.Equal(t, []string{"Bare_Pkg", "legacy", "requests", "six"}, names)

	bare := dists[0]
	assert.Equal(t, "3.0", bare.Version())
	assert.False(t, bare.HasMetadata(metadata.MetadataFile))

	legacy := dists[1]
	assert.Equal(t, "0.9", legacy.Version())
	assert.True(t, legacy.HasMetadata(metadata.PkgInfoFile))
	assert.False(t, legacy.HasMetadata(metadata.MetadataFile))

	req := dists[2]
	assert.Equal(t, "2.31.0", req.Version())
	assert.True(t, req.HasMetadata(metadata.MetadataFile))
	assert.Equal(t, "requests-2.31.0.dist-info", req.Location)

	six := dists[3]
	assert.Equal(t, "1.16.0", six.Version())
	assert.True(t, six.HasMetadata(metadata.PkgInfoFile))
}

func TestDistribution_MetadataLines(t *testing.T) {
	sys := fstest.MapFS{
		"six-1.16.0.dist-info/METADATA": {Data: []byte("Name: six\r\nLicense: MIT\r\n")},
	}

	dists, err := NewScanner(nil).Scan(context.Background(), sys)
	require.NoError(t, err)
	require.Len(t, dists, 1)

	lines, err := dists[0].MetadataLines(metadata.MetadataFile)
	require.NoError(t, err)
	assert.Equal(t, []string{"Name: six", "License: MIT"}, lines)

	_, err = dists[0].MetadataLines(metadata.PkgInfoFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestScan_FeedsMetadataReader(t *testing.T) {
	sys := fstest.MapFS{
		"requests-2.31.0.dist-info/METADATA": {Data: []byte(requestsMetadata)},
	}

	dists, err := NewScanner(nil).Scan(context.Background(), sys)
	require.NoError(t, err)
	require.Len(t, dists, 1)

	res := metadata.NewReader(nil).Read(dists[0])
	assert.Equal(t, "Apache 2.0", res.Record.DeclaredLicense)
	assert.Equal(t, "https://requests.readthedocs.io", res.Record.HomepageURL)
}

func TestEnumerate_FirstDirectoryWins(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, filepath.Join(first, "Foo_Bar-1.0.dist-info", "METADATA"), "Name: Foo_Bar\nVersion: 1.0\n")
	writeFile(t, filepath.Join(second, "foo-bar-2.0.dist-info", "METADATA"), "Name: foo-bar\nVersion: 2.0\n")
	writeFile(t, filepath.Join(second, "zed-0.1.dist-info", "METADATA"), "Name: zed\nVersion: 0.1\n")

	dists, err := NewScanner(nil).Enumerate(context.Background(),
		[]string{first, filepath.Join(first, "missing"), second})
	require.NoError(t, err)
	require.Len(t, dists, 2)
	assert.Equal(t, "Foo_Bar", dists[0].Name())
	assert.Equal(t, "1.0", dists[0].Version())
	assert.Equal(t, "zed", dists[1].Name())
}

func TestEnumerate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScanner(nil).Enumerate(ctx, []string{t.TempDir()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseSiteDirs(t *testing.T) {
	out := "/usr/lib/python3/dist-packages\n\n/home/u/.local/lib/python3.11/site-packages\n/usr/lib/python3/dist-packages\n"
	assert.Equal(t, []string{
		"/usr/lib/python3/dist-packages",
		"/home/u/.local/lib/python3.11/site-packages",
	}, parseSiteDirs(out))
}

func TestSitePackages_MissingInterpreter(t *testing.T) {
	_, err := SitePackages(context.Background(), filepath.Join(t.TempDir(), "no-python"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query site directories")
}

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}
