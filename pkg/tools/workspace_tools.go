package tools

import (
	"context"
	"strings"

	"codebuilder/pkg/workspace"
)

// InitProjectRootTool creates the project root directory.
type InitProjectRootTool struct {
	ws workspace.Workspace
}

// NewInitProjectRootTool creates a new init_project_root tool.
func NewInitProjectRootTool(ws workspace.Workspace) *InitProjectRootTool {
	return &InitProjectRootTool{ws: ws}
}

// Name implements ToolChannel.
func (t *InitProjectRootTool) Name() string { return ToolInitProjectRoot }

// Exec implements ToolChannel.
func (t *InitProjectRootTool) Exec(_ context.Context, _ map[string]any) (map[string]any, error) {
	if err := t.ws.Init(); err != nil {
		return nil, err
	}
	return map[string]any{
		"success": true,
		"root":    t.ws.Root(),
	}, nil
}

// ListFilesTool lists every file in the workspace.
type ListFilesTool struct {
	ws workspace.Workspace
}

// NewListFilesTool creates a new list_files tool.
func NewListFilesTool(ws workspace.Workspace) *ListFilesTool {
	return &ListFilesTool{ws: ws}
}

// Name implements ToolChannel.
func (t *ListFilesTool) Name() string { return ToolListFiles }

// Exec implements ToolChannel. The listing is returned newline-joined under
// "content"; an empty workspace yields NoFilesSentinel instead of an empty
// string.
func (t *ListFilesTool) Exec(_ context.Context, _ map[string]any) (map[string]any, error) {
	files, err := t.ws.ListFiles()
	if err != nil {
		return nil, err
	}
	content := NoFilesSentinel
	if len(files) > 0 {
		content = strings.Join(files, "\n")
	}
	return map[string]any{
		"content": content,
		"files":   files,
	}, nil
}

// ReadFileTool reads a single workspace file.
type ReadFileTool struct {
	ws workspace.Workspace
}

// NewReadFileTool creates a new read_file tool.
func NewReadFileTool(ws workspace.Workspace) *ReadFileTool {
	return &ReadFileTool{ws: ws}
}

// Name implements ToolChannel.
func (t *ReadFileTool) Name() string { return ToolReadFile }

// Exec implements ToolChannel. Requires a "path" argument.
func (t *ReadFileTool) Exec(_ context.Context, args map[string]any) (map[string]any, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}
	content, err := t.ws.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"path":    path,
		"content": content,
	}, nil
}

// WriteFileTool writes a single workspace file.
type WriteFileTool struct {
	ws workspace.Workspace
}

// NewWriteFileTool creates a new write_file tool.
func NewWriteFileTool(ws workspace.Workspace) *WriteFileTool {
	return &WriteFileTool{ws: ws}
}

// Name implements ToolChannel.
func (t *WriteFileTool) Name() string { return ToolWriteFile }

// Exec implements ToolChannel. Requires "path" and "content" arguments;
// content may be empty.
func (t *WriteFileTool) Exec(_ context.Context, args map[string]any) (map[string]any, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}
	content, ok := args["content"].(string)
	if !ok {
		return nil, &missingArgError{key: "content"}
	}
	if err := t.ws.WriteFile(path, content); err != nil {
		return nil, err
	}
	return map[string]any{
		"success": true,
		"path":    path,
		"bytes":   len(content),
	}, nil
}

type missingArgError struct {
	key string
}

func (e *missingArgError) Error() string {
	return e.key + " is required and must be a string"
}

// RegisterWorkspaceTools registers the full workspace tool set on a registry.
func RegisterWorkspaceTools(registry *Registry, ws workspace.Workspace) error {
	for _, tool := range []ToolChannel{
		NewInitProjectRootTool(ws),
		NewListFilesTool(ws),
		NewReadFileTool(ws),
		NewWriteFileTool(ws),
	} {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}
	return nil
}
