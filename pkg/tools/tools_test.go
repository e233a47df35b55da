package tools

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codebuilder/pkg/workspace"
)

func newTestRegistry(t *testing.T) (*Registry, workspace.Workspace) {
	t.Helper()
	ws, err := workspace.NewDir(filepath.Join(t.TempDir(), "project"))
	require.NoError(t, err)
	require.NoError(t, ws.Init())

	registry := NewRegistry()
	require.NoError(t, RegisterWorkspaceTools(registry, ws))
	return registry, ws
}

func exec(t *testing.T, registry *Registry, name string, args map[string]any) map[string]any {
	t.Helper()
	tool, err := registry.Get(name)
	require.NoError(t, err)
	result, err := tool.Exec(context.Background(), args)
	require.NoError(t, err)
	return result
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry, _ := newTestRegistry(t)

	ws, err := workspace.NewDir(t.TempDir())
	require.NoError(t, err)
	err = registry.Register(NewListFilesTool(ws))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistryGetUnknownTool(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Get("no_such_tool")
	assert.Error(t, err)
}

func TestRegistryNames(t *testing.T) {
	registry, _ := newTestRegistry(t)
	assert.ElementsMatch(t, []string{
		ToolInitProjectRoot,
		ToolListFiles,
		ToolReadFile,
		ToolWriteFile,
	}, registry.Names())
}

func TestInitProjectRoot(t *testing.T) {
	registry, ws := newTestRegistry(t)

	result := exec(t, registry, ToolInitProjectRoot, nil)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, ws.Root(), result["root"])
}

func TestWriteThenReadFile(t *testing.T) {
	registry, _ := newTestRegistry(t)

	result := exec(t, registry, ToolWriteFile, map[string]any{
		"path":    "index.html",
		"content": "<html></html>",
	})
	assert.Equal(t, true, result["success"])
	assert.Equal(t, len("<html></html>"), result["bytes"])

	read := exec(t, registry, ToolReadFile, map[string]any{"path": "index.html"})
	assert.Equal(t, "<html></html>", read["content"])
}

func TestWriteFileAllowsEmptyContent(t *testing.T) {
	registry, _ := newTestRegistry(t)

	exec(t, registry, ToolWriteFile, map[string]any{"path": "empty.txt", "content": ""})
	read := exec(t, registry, ToolReadFile, map[string]any{"path": "empty.txt"})
	assert.Equal(t, "", read["content"])
}

func TestWriteFileRequiresArgs(t *testing.T) {
	registry, _ := newTestRegistry(t)
	tool, err := registry.Get(ToolWriteFile)
	require.NoError(t, err)

	_, err = tool.Exec(context.Background(), map[string]any{"content": "x"})
	assert.Error(t, err)

	_, err = tool.Exec(context.Background(), map[string]any{"path": "a.txt"})
	assert.Error(t, err)
}

func TestWriteFileRejectsEscape(t *testing.T) {
	registry, _ := newTestRegistry(t)
	tool, err := registry.Get(ToolWriteFile)
	require.NoError(t, err)

	_, err = tool.Exec(context.Background(), map[string]any{
		"path":    "../escape.txt",
		"content": "x",
	})
	assert.True(t, workspace.IsSandboxViolation(err))
}

func TestListFilesEmptySentinel(t *testing.T) {
	registry, _ := newTestRegistry(t)

	result := exec(t, registry, ToolListFiles, nil)
	assert.Equal(t, NoFilesSentinel, result["content"])
	assert.Empty(t, result["files"])
}

func TestListFilesNewlineJoined(t *testing.T) {
	registry, _ := newTestRegistry(t)

	exec(t, registry, ToolWriteFile, map[string]any{"path": "b.txt", "content": "x"})
	exec(t, registry, ToolWriteFile, map[string]any{"path": "a.txt", "content": "x"})

	result := exec(t, registry, ToolListFiles, nil)
	assert.Equal(t, "a.txt\nb.txt", result["content"])
	assert.Equal(t, []string{"a.txt", "b.txt"}, result["files"])
}

func TestReadFileMissing(t *testing.T) {
	registry, _ := newTestRegistry(t)
	tool, err := registry.Get(ToolReadFile)
	require.NoError(t, err)

	_, err = tool.Exec(context.Background(), map[string]any{"path": "ghost.txt"})
	assert.ErrorIs(t, err, workspace.ErrNotFound)
}
