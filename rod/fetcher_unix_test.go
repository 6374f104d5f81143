//go:build integration && !windows

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"syscall"
	"testing"
	"time"

	"github.com/fwojciec/scrapetmpl/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Close_KillsLauncherProcess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	fetcher := rod.NewFetcher(rod.WithSettle(0))
	_, err := fetcher.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	pid := fetcher.LauncherPID()
	require.NotZero(t, pid, "launcher PID should be set")

	// Signal 0 checks that the process exists without affecting it.
	err = syscall.Kill(pid, syscall.Signal(0))
	require.NoError(t, err, "launcher process should be running before Close()")

	require.NoError(t, fetcher.Close())

	time.Sleep(100 * time.Millisecond)

	err = syscall.Kill(pid, syscall.Signal(0))
	assert.Error(t, err, "launcher process should be terminated after Close()")
}
