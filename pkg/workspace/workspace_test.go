package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDir(t *testing.T) *Dir {
	t.Helper()
	d, err := NewDir(filepath.Join(t.TempDir(), "project"))
	require.NoError(t, err)
	require.NoError(t, d.Init())
	return d
}

func TestNewDirRejectsEmptyRoot(t *testing.T) {
	_, err := NewDir("")
	assert.Error(t, err)
}

func TestInitIsIdempotent(t *testing.T) {
	d := newTestDir(t)
	require.NoError(t, d.Init())
	require.NoError(t, d.Init())

	info, err := os.Stat(d.Root())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestWriteReadRoundTrip(t *testing.T) {
	d := newTestDir(t)

	require.NoError(t, d.WriteFile("index.html", "<html></html>"))
	content, err := d.ReadFile("index.html")
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", content)
}

func TestWriteOverwritesPriorContent(t *testing.T) {
	d := newTestDir(t)

	require.NoError(t, d.WriteFile("style.css", "body { color: red; }"))
	require.NoError(t, d.WriteFile("style.css", "body { color: blue; }"))

	content, err := d.ReadFile("style.css")
	require.NoError(t, err)
	assert.Equal(t, "body { color: blue; }", content)
}

func TestWriteCreatesParentDirectories(t *testing.T) {
	d := newTestDir(t)

	require.NoError(t, d.WriteFile("src/js/app.js", "console.log('hi');"))
	content, err := d.ReadFile("src/js/app.js")
	require.NoError(t, err)
	assert.Equal(t, "console.log('hi');", content)
}

func TestReadMissingFileReturnsNotFound(t *testing.T) {
	d := newTestDir(t)

	_, err := d.ReadFile("nope.txt")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListFilesSortedRelativePaths(t *testing.T) {
	d := newTestDir(t)

	require.NoError(t, d.WriteFile("script.js", "x"))
	require.NoError(t, d.WriteFile("index.html", "x"))
	require.NoError(t, d.WriteFile("css/style.css", "x"))

	files, err := d.ListFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"css/style.css", "index.html", "script.js"}, files)
}

func TestListFilesEmptyWorkspace(t *testing.T) {
	d := newTestDir(t)

	files, err := d.ListFiles()
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)
}

func TestSandboxViolations(t *testing.T) {
	d := newTestDir(t)

	cases := []string{
		"../escape.txt",
		"a/../../escape.txt",
		"/etc/passwd",
		"..",
		"  ",
		"a/./b.txt",
		"a//b.txt",
	}
	for _, path := range cases {
		err := d.WriteFile(path, "owned")
		assert.True(t, IsSandboxViolation(err), "expected sandbox violation for %q, got %v", path, err)
	}

	// Nothing may exist outside or inside the root after the attempts.
	files, err := d.ListFiles()
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = os.Stat(filepath.Join(filepath.Dir(d.Root()), "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestReadRejectsTraversal(t *testing.T) {
	d := newTestDir(t)
	_, err := d.ReadFile("../secret")
	assert.True(t, IsSandboxViolation(err))
}
