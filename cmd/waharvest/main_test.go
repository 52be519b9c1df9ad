package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body><div id="pane-side">
<div role="row"><span title="Alice">Alice</span>
<div aria-label="chat"><span dir="ltr">love it</span><span dir="auto">today</span></div></div>
</div>
<div data-chat="Alice"><div id="main">
<div class="message-in"><span class="selectable-text">love this song</span></div>
</div></div></body></html>`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func setup(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("WAHARVEST_HOME", home)
	t.Setenv("WAHARVEST_SESSION", "")
	path := filepath.Join(home, "page.html")
	require.NoError(t, os.WriteFile(path, []byte(page), 0600))
	return path
}

func TestHelp(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"summary", "threads", "runs", "show", "search", "delete", "config"} {
		assert.Contains(t, out, sub)
	}
}

func TestArgs(t *testing.T) {
	setup(t)
	tests := []struct {
		name string
		args []string
	}{
		{"show needs id", []string{"show"}},
		{"search needs query", []string{"search"}},
		{"delete needs id", []string{"delete"}},
		{"delete unknown run", []string{"delete", "no-such-run"}},
		{"summary takes none", []string{"summary", "extra"}},
		{"bad session", []string{"--session", "Bad Name", "runs"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestSummarySnapshotThenRuns(t *testing.T) {
	path := setup(t)
	media := filepath.Join(t.TempDir(), "dl")

	out, stderr, err := execute(t, "summary", "--snapshot", path, "--media-dir", media)
	require.NoError(t, err, stderr)
	assert.Contains(t, out, "Your 1 Most Recent WhatsApp Chats")
	assert.Contains(t, out, "positive")
	assert.NotContains(t, stderr, "Closing browser...")

	out, _, err = execute(t, "--json", "runs")
	require.NoError(t, err)
	assert.Contains(t, out, `"mode": "summary"`)

	out, _, err = execute(t, "search", "love")
	require.NoError(t, err)
	assert.NotContains(t, out, "love this song", "summary runs archive no messages")
}

func TestThreadsSnapshotThenSearch(t *testing.T) {
	path := setup(t)
	media := filepath.Join(t.TempDir(), "dl")

	_, stderr, err := execute(t, "threads", "--snapshot", path, "--media-dir", media, "--scroll-pages", "0")
	require.NoError(t, err, stderr)

	out, _, err := execute(t, "search", "SONG")
	require.NoError(t, err)
	assert.Contains(t, out, "love this song")
	assert.Contains(t, out, "Alice")
	assert.Regexp(t, `Total\s*\|\s*1\s*\|`, out)
}

func TestConfigInitAndShow(t *testing.T) {
	setup(t)

	_, stderr, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stderr, "config.toml")

	_, _, err = execute(t, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, _, err = execute(t, "config", "init", "--force")
	require.NoError(t, err)

	t.Setenv("WAHARVEST_DOWNLOADS", "/tmp/elsewhere")
	out, _, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `default_session = "main"`)
	assert.Contains(t, out, `dir = "/tmp/elsewhere"`)
}
