// Package workspace provides the sandboxed project directory the pipeline
// reads and writes. All paths are relative to a fixed root; nothing outside
// the root is ever touched.
package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound indicates a read of a path that does not exist under the root.
var ErrNotFound = errors.New("file not found in workspace")

// SandboxViolationError indicates a path that would resolve outside the
// workspace root. It is never silently corrected: a violating path aborts
// the operation with no filesystem effect.
type SandboxViolationError struct {
	Path   string
	Reason string
}

func (e *SandboxViolationError) Error() string {
	return fmt.Sprintf("sandbox violation: path %q %s", e.Path, e.Reason)
}

// IsSandboxViolation reports whether err is a sandbox violation.
func IsSandboxViolation(err error) bool {
	var sv *SandboxViolationError
	return errors.As(err, &sv)
}

// Workspace is the capability interface the orchestrator and the tool layer
// operate through. Injecting it keeps the sandbox boundary testable in
// isolation.
type Workspace interface {
	// Init creates the project root if absent. Idempotent.
	Init() error
	// Root returns the absolute root directory path.
	Root() string
	// ListFiles returns all regular files under the root as sorted,
	// slash-separated relative paths. An empty tree yields an empty slice.
	ListFiles() ([]string, error)
	// ReadFile returns the full content of a file under the root.
	ReadFile(path string) (string, error)
	// WriteFile writes content to a path under the root, creating parent
	// directories as needed and overwriting existing content.
	WriteFile(path, content string) error
}

// Dir is the filesystem-backed Workspace implementation.
type Dir struct {
	root string
}

// NewDir creates a workspace rooted at the given directory.
// The directory is not created until Init is called.
func NewDir(root string) (*Dir, error) {
	if root == "" {
		return nil, fmt.Errorf("workspace root cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root %s: %w", root, err)
	}
	return &Dir{root: abs}, nil
}

// Init implements Workspace.
func (d *Dir) Init() error {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return fmt.Errorf("failed to create workspace root %s: %w", d.root, err)
	}
	return nil
}

// Root implements Workspace.
func (d *Dir) Root() string {
	return d.root
}

// resolve validates a relative path and returns its absolute location under
// the root. Violations are rejected, never corrected.
func (d *Dir) resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", &SandboxViolationError{Path: path, Reason: "is empty"}
	}

	slashed := filepath.ToSlash(path)
	if strings.HasPrefix(slashed, "/") || filepath.IsAbs(path) {
		return "", &SandboxViolationError{Path: path, Reason: "is absolute"}
	}
	for _, segment := range strings.Split(slashed, "/") {
		switch segment {
		case "..":
			return "", &SandboxViolationError{Path: path, Reason: "contains a parent-directory segment"}
		case ".", "":
			// Join would clean these silently, leaving the caller's path out
			// of sync with what the workspace stores and lists.
			return "", &SandboxViolationError{Path: path, Reason: "is not in normalized form"}
		}
	}

	full := filepath.Join(d.root, filepath.FromSlash(slashed))
	// Join cleans the path; re-check containment in case cleaning changed it.
	if full != d.root && !strings.HasPrefix(full, d.root+string(os.PathSeparator)) {
		return "", &SandboxViolationError{Path: path, Reason: "resolves outside the workspace root"}
	}
	return full, nil
}

// ListFiles implements Workspace.
func (d *Dir) ListFiles() ([]string, error) {
	files := []string{}
	err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list workspace files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// ReadFile implements Workspace.
func (d *Dir) ReadFile(path string) (string, error) {
	full, err := d.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// WriteFile implements Workspace.
func (d *Dir) WriteFile(path, content string) error {
	full, err := d.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directories for %s: %w", path, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
