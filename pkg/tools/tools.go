// Package tools exposes workspace capabilities as named, callable tools.
// The coder/orchestrator side and the (external) front end both consume the
// workspace through this surface.
package tools

import (
	"context"
	"fmt"
	"sync"
)

// Tool name constants.
const (
	ToolInitProjectRoot = "init_project_root"
	ToolListFiles       = "list_files"
	ToolReadFile        = "read_file"
	ToolWriteFile       = "write_file"
)

// NoFilesSentinel is returned by list_files when the workspace is empty, so
// callers can distinguish "no files" from a failed or ambiguous listing.
const NoFilesSentinel = "No files found."

// ToolChannel defines the interface for tool implementations.
type ToolChannel interface {
	// Name returns the tool's identifier.
	Name() string
	// Exec executes the tool with the given arguments.
	Exec(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Registry manages registered tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]ToolChannel
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]ToolChannel)}
}

// Register adds a tool to this registry.
func (r *Registry) Register(tool ToolChannel) error {
	if tool == nil {
		return fmt.Errorf("tool cannot be nil")
	}
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	r.tools[name] = tool
	return nil
}

// Get retrieves a tool from this registry.
func (r *Registry) Get(name string) (ToolChannel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("tool %s not found", name)
	}
	return tool, nil
}

// Names returns the names of all registered tools.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// stringArg extracts a required string argument.
func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%s is required and must be a non-empty string", key)
	}
	return v, nil
}
