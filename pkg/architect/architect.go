// Package architect maps a task list onto an ordered project file layout.
package architect

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"codebuilder/pkg/agent/llm"
	"codebuilder/pkg/logx"
	"codebuilder/pkg/templates"
)

// ArchitectureError indicates the model produced no usable file layout, or a
// layout containing paths that would escape the project root.
type ArchitectureError struct {
	Message string
	Err     error
}

func (e *ArchitectureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("architecture failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("architecture failed: %s", e.Message)
}

func (e *ArchitectureError) Unwrap() error { return e.Err }

// FileSpec is one planned file: where it goes and what it must contain.
// Specs are ordered; the coder generates files in this order.
type FileSpec struct {
	Path        string
	Description string
}

// Architect drives the architecture stage against an LLM client.
type Architect struct {
	client   llm.LLMClient
	renderer *templates.Renderer
	logger   *logx.Logger
}

// New creates an architect.
func New(client llm.LLMClient, renderer *templates.Renderer) *Architect {
	return &Architect{
		client:   client,
		renderer: renderer,
		logger:   logx.NewLogger("architect"),
	}
}

// Design maps the given tasks onto an ordered list of file specs.
func (a *Architect) Design(ctx context.Context, tasks []string) ([]FileSpec, error) {
	prompt, err := a.renderer.Render(templates.ArchitectureTemplate, &templates.TemplateData{
		Tasks: tasks,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render architecture prompt: %w", err)
	}
	meta, err := a.renderer.Meta(templates.ArchitectureTemplate)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Complete(ctx, llm.CompletionRequest{
		Messages:    []llm.CompletionMessage{llm.NewUserMessage(prompt)},
		MaxTokens:   meta.MaxTokens,
		Temperature: meta.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("architecture completion failed: %w", err)
	}

	specs, err := ParseArchitecture(resp.Content)
	if err != nil {
		return nil, err
	}

	a.logger.Info("designed %d files", len(specs))
	for _, spec := range specs {
		a.logger.Debug("file: %s (%s)", spec.Path, spec.Description)
	}
	return specs, nil
}

// ParseArchitecture extracts the path-to-description object from a model
// response, preserving the order in which keys appear. A later duplicate key
// replaces the earlier description but keeps the original position. Paths are
// normalized; a path that cannot be made safe fails the whole layout.
func ParseArchitecture(content string) ([]FileSpec, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return nil, &ArchitectureError{Message: "response contains no JSON object"}
	}

	// encoding/json maps lose key order, so walk the tokens instead.
	dec := json.NewDecoder(strings.NewReader(content[start : end+1]))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, &ArchitectureError{Message: "response is not a JSON object", Err: err}
	}

	specs := []FileSpec{}
	index := map[string]int{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, &ArchitectureError{Message: "malformed JSON object", Err: err}
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, &ArchitectureError{Message: "malformed JSON object key"}
		}

		var description string
		if err := dec.Decode(&description); err != nil {
			return nil, &ArchitectureError{Message: fmt.Sprintf("description for %q is not a string", key), Err: err}
		}

		path, err := NormalizePath(key)
		if err != nil {
			return nil, err
		}

		if i, seen := index[path]; seen {
			specs[i].Description = strings.TrimSpace(description)
			continue
		}
		index[path] = len(specs)
		specs = append(specs, FileSpec{Path: path, Description: strings.TrimSpace(description)})
	}

	if len(specs) == 0 {
		return nil, &ArchitectureError{Message: "file layout is empty"}
	}
	return specs, nil
}

// NormalizePath cleans up harmless decoration on a model-produced path
// (surrounding whitespace, backslashes, "." segments such as a leading "./")
// and rejects anything that could reach outside the project root. Rejection
// is deliberate: a traversal path signals a bad layout, not something to
// silently repair. The returned path is fully normalized, so the path
// recorded for a written file is byte-identical to the path the workspace
// lists.
func NormalizePath(raw string) (string, error) {
	path := strings.TrimSpace(raw)
	path = strings.ReplaceAll(path, "\\", "/")

	if path == "" {
		return "", &ArchitectureError{Message: "layout contains an empty file path"}
	}
	if strings.HasPrefix(path, "/") {
		return "", &ArchitectureError{Message: fmt.Sprintf("path %q is absolute", raw)}
	}

	segments := strings.Split(path, "/")
	kept := make([]string, 0, len(segments))
	for _, segment := range segments {
		switch segment {
		case "..":
			return "", &ArchitectureError{Message: fmt.Sprintf("path %q contains a parent-directory segment", raw)}
		case "":
			return "", &ArchitectureError{Message: fmt.Sprintf("path %q contains an empty segment", raw)}
		case ".":
			// Decoration, not structure.
		default:
			kept = append(kept, segment)
		}
	}
	if len(kept) == 0 {
		return "", &ArchitectureError{Message: "layout contains an empty file path"}
	}
	return strings.Join(kept, "/"), nil
}

// Summary renders the layout as "path: description" lines for inclusion in
// downstream prompts.
func Summary(specs []FileSpec) string {
	lines := make([]string, len(specs))
	for i, spec := range specs {
		lines[i] = spec.Path + ": " + spec.Description
	}
	return strings.Join(lines, "\n")
}
