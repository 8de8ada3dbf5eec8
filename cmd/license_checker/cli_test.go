package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonathan/license-checker/internal/report"
	"github.com/jonathan/license-checker/internal/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default so each test parses from scratch.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		switch f.Value.Type() {
		case "stringSlice", "stringArray":
			// Cleared through their backing variables below.
		default:
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
	checkPackages = nil
	checkSitePackages = nil
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Setenv("GITHUB_TOKEN", "")

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func newFakeGitHub(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/repos/acme/widget/license":
			_, _ = w.Write([]byte(`{"html_url":"https://github.com/acme/widget/blob/main/LICENSE"}`))
		case "/api/repos/acme/gadget/license":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		case "/web/acme/gadget/blob/master/COPYING":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newSiteDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	write := func(rel, content string) {
		p := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	write("widget-1.0.dist-info/METADATA", "Name: widget\nVersion: 1.0\nHome-page: https://github.com/acme/widget\nLicense: MIT\n")
	write("gadget-2.0.dist-info/METADATA", "Name: gadget\nVersion: 2.0\nHome-page: https://github.com/acme/gadget\n")
	write("bare-0.1.egg-info/PKG-INFO", "Name: bare\nVersion: 0.1\n")
	return dir
}

func TestCheck_TSV(t *testing.T) {
	server := newFakeGitHub(t)
	site := newSiteDir(t)

	stdout, _, err := execute(t,
		"--site-packages", site,
		"--api-url", server.URL+"/api",
		"--web-url", server.URL+"/web",
	)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "bare\t\t\t0.1\t"+types.NoMetafileLicense, lines[0])
	assert.Equal(t, "gadget\thttps://github.com/acme/gadget\t"+server.URL+"/web/acme/gadget/blob/master/COPYING\t2.0\t"+types.NoMetafileLicense, lines[1])
	assert.Equal(t, "widget\thttps://github.com/acme/widget\thttps://github.com/acme/widget/blob/main/LICENSE\t1.0\tMIT", lines[2])
}

func TestCheck_VerboseLogsRunSummary(t *testing.T) {
	server := newFakeGitHub(t)
	site := newSiteDir(t)

	_, stderr, err := execute(t,
		"--site-packages", site,
		"--api-url", server.URL+"/api",
		"--web-url", server.URL+"/web",
		"--verbose",
	)
	require.NoError(t, err)
	assert.Contains(t, stderr, "report complete")
	assert.Contains(t, stderr, "cached_responses")
}

func TestCheck_PackageFilter(t *testing.T) {
	server := newFakeGitHub(t)
	site := newSiteDir(t)

	stdout, _, err := execute(t,
		"--site-packages", site,
		"--api-url", server.URL+"/api",
		"--web-url", server.URL+"/web",
		"--pkg", "widget", "bare",
	)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "bare\t"))
	assert.True(t, strings.HasPrefix(lines[1], "widget\t"))
}

func TestCheck_JSONFromConfigFile(t *testing.T) {
	server := newFakeGitHub(t)
	site := newSiteDir(t)

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := "site_packages:\n  - " + site + "\napi_url: " + server.URL + "/api\nweb_url: " + server.URL + "/web\nformat: json\nworkers: 3\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	stdout, _, err := execute(t, "--config", cfgPath)
	require.NoError(t, err)

	var doc report.Document
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	require.Len(t, doc.Packages, 3)
	assert.Equal(t, []string{"bare", "gadget", "widget"},
		[]string{doc.Packages[0].Name, doc.Packages[1].Name, doc.Packages[2].Name})
	assert.True(t, doc.Packages[2].LicenseFound)
}

func TestCheck_InvalidFormat(t *testing.T) {
	_, _, err := execute(t, "--site-packages", t.TempDir(), "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Format")
}

func TestResolveCommand(t *testing.T) {
	stdout, _, err := execute(t, "resolve", "https://github.com/acme/widget/issues")
	require.NoError(t, err)
	assert.Equal(t, "acme/widget\n", stdout)
}

func TestResolveCommand_Scrape(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<a class="github" href="https://github.com/acme/widget">gh</a>`))
	}))
	defer page.Close()

	_, _, err := execute(t, "resolve", page.URL)
	require.Error(t, err)

	stdout, _, err := execute(t, "resolve", "--do-soup", page.URL)
	require.NoError(t, err)
	assert.Equal(t, "acme/widget\n", stdout)
}

func TestLocateCommand(t *testing.T) {
	server := newFakeGitHub(t)

	stdout, _, err := execute(t, "locate", "acme/gadget",
		"--api-url", server.URL+"/api",
		"--web-url", server.URL+"/web",
	)
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/web/acme/gadget/blob/master/COPYING\n", stdout)
}

func TestParseIdentity(t *testing.T) {
	tests := []struct {
		in      string
		want    types.ProjectIdentity
		wantErr bool
	}{
		{in: "acme/widget", want: types.ProjectIdentity{Owner: "acme", Project: "widget"}},
		{in: "/acme/widget/", want: types.ProjectIdentity{Owner: "acme", Project: "widget"}},
		{in: "acme", wantErr: true},
		{in: "acme/widget/extra", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseIdentity(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
