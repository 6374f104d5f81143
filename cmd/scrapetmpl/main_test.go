package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	main "github.com/fwojciec/scrapetmpl/cmd/scrapetmpl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSite serves articleHTML under /news/ and 404 elsewhere.
func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/news/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestMain(t *testing.T, dbPath string) *main.Main {
	t.Helper()
	m := main.NewMain()
	m.DBPath = dbPath
	m.APIKey = ""
	m.NoBrowser = true
	m.RenderDomains = nil
	return m
}

func run(t *testing.T, dbPath string, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := newTestMain(t, dbPath).Run(context.Background(), args, stdout, stderr)
	return stdout.String(), stderr.String(), err
}

func TestMain_Run_Lifecycle(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	dbPath := filepath.Join(t.TempDir(), "templates.db")

	out, _, err := run(t, dbPath, "train", srv.URL+"/news/1")
	require.NoError(t, err)
	assert.Contains(t, out, "Created template")

	out, _, err = run(t, dbPath, "scrape", srv.URL+"/news/2", "--json")
	require.NoError(t, err)
	var scraped struct {
		Data       map[string]string `json:"data"`
		RunSuccess bool              `json:"run_success"`
		UsageCount int               `json:"usage_count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &scraped))
	assert.Equal(t, "Central bank holds rates", scraped.Data["title"])
	assert.True(t, scraped.RunSuccess)
	assert.Equal(t, 1, scraped.UsageCount)

	out, _, err = run(t, dbPath, "scrape", srv.URL+"/news/3", "--format", "commonmark")
	require.NoError(t, err)
	assert.Contains(t, out, "Stocks rose on Monday.")

	out, stderr, err := run(t, dbPath, "batch", srv.URL+"/news/4", srv.URL+"/gone", "--rps", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "1 scraped, 1 failed, 2 total")
	assert.Contains(t, stderr, "404")

	out, _, err = run(t, dbPath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "127.0.0.1")
	assert.Contains(t, out, "used 3")
}

func TestMain_Run_ScrapeWithoutTemplate(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	dbPath := filepath.Join(t.TempDir(), "templates.db")

	_, stderr, err := run(t, dbPath, "scrape", srv.URL+"/news/1")
	require.Error(t, err)
	assert.Contains(t, stderr, "no template")
}

func TestMain_Run_InvalidDatabasePath(t *testing.T) {
	t.Parallel()

	_, stderr, err := run(t, "/nonexistent/dir/templates.db", "list")
	require.Error(t, err)
	assert.Contains(t, stderr, "SCRAPETMPL_DB")
}
