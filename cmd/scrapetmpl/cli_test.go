package main_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	main "github.com/fwojciec/scrapetmpl/cmd/scrapetmpl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allCommands = []string{"train", "scrape", "extract", "test", "improve", "batch", "preview", "show", "list", "delete"}

func TestCLI_HelpShowsAllCommands(t *testing.T) {
	t.Parallel()

	cli := &main.CLI{}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	parser, err := kong.New(cli,
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	require.NoError(t, err)

	_, _ = parser.Parse([]string{"--help"})

	helpOutput := stdout.String()
	for _, cmd := range allCommands {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}
}

func TestCLI_ParsesFlags(t *testing.T) {
	t.Parallel()

	t.Run("scrape defaults to html", func(t *testing.T) {
		t.Parallel()

		cli := &main.CLI{}
		parser, err := kong.New(cli, kong.Exit(func(int) {}))
		require.NoError(t, err)

		_, err = parser.Parse([]string{"scrape", "https://news.example/a"})
		require.NoError(t, err)
		assert.Equal(t, "html", cli.Scrape.Format)
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		t.Parallel()

		cli := &main.CLI{}
		parser, err := kong.New(cli, kong.Exit(func(int) {}), kong.Writers(&bytes.Buffer{}, &bytes.Buffer{}))
		require.NoError(t, err)

		_, err = parser.Parse([]string{"scrape", "https://news.example/a", "--format", "pdf"})
		assert.Error(t, err)
	})

	t.Run("batch defaults", func(t *testing.T) {
		t.Parallel()

		cli := &main.CLI{}
		parser, err := kong.New(cli, kong.Exit(func(int) {}))
		require.NoError(t, err)

		_, err = parser.Parse([]string{"batch", "https://news.example/a", "https://news.example/b"})
		require.NoError(t, err)
		assert.Equal(t, 3, cli.Batch.Concurrency)
		assert.InDelta(t, 1.0, cli.Batch.RPS, 1e-9)
		assert.Len(t, cli.Batch.URLs, 2)
	})

	t.Run("improve accepts optional urls", func(t *testing.T) {
		t.Parallel()

		cli := &main.CLI{}
		parser, err := kong.New(cli, kong.Exit(func(int) {}))
		require.NoError(t, err)

		_, err = parser.Parse([]string{"improve", "news.example", "--apply", "-n", "3"})
		require.NoError(t, err)
		assert.Empty(t, cli.Improve.URLs)
		assert.True(t, cli.Improve.Apply)
		assert.Equal(t, 3, cli.Improve.Sample)
	})
}

func TestMain_Run_HelpShowsKongOutput(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "test.db")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"--help"}, stdout, stderr)
	require.NoError(t, err)

	helpOutput := stdout.String()
	for _, cmd := range allCommands {
		assert.Contains(t, helpOutput, cmd)
	}
	assert.Contains(t, helpOutput, "Usage:")
	assert.Contains(t, helpOutput, "Flags:")
}

func TestMain_Run_NoArgs(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "test.db")

	err := m.Run(context.Background(), nil, &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no command specified")
}
