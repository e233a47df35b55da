// Package templates provides prompt template rendering for the pipeline stages.
// Each template is a markdown file with a YAML frontmatter block carrying the
// stage's sampling parameters, so prompt wording and tuning live together.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed *.tpl.md
var templateFS embed.FS

// StageTemplate identifies a pipeline stage prompt template.
type StageTemplate string

const (
	// PlanningTemplate is the prompt for decomposing a user request into tasks.
	PlanningTemplate StageTemplate = "planning.tpl.md"
	// ArchitectureTemplate is the prompt for mapping tasks to a file layout.
	ArchitectureTemplate StageTemplate = "architecture.tpl.md"
	// CodingTemplate is the prompt for generating a single file's content.
	CodingTemplate StageTemplate = "coding.tpl.md"
)

// Meta holds the sampling parameters declared in a template's frontmatter.
type Meta struct {
	Description string  `yaml:"description"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// TemplateData holds the data available to stage templates.
type TemplateData struct {
	UserPrompt   string
	Tasks        []string
	Path         string
	Description  string
	Architecture string
}

const frontmatterDelimiter = "---"

// splitFrontmatter separates the YAML frontmatter block from the template
// body. A template without frontmatter is an authoring error.
func splitFrontmatter(raw string) (string, string, error) {
	trimmed := strings.TrimLeft(raw, "\n")
	if !strings.HasPrefix(trimmed, frontmatterDelimiter+"\n") {
		return "", "", fmt.Errorf("missing frontmatter block")
	}
	rest := trimmed[len(frontmatterDelimiter)+1:]
	idx := strings.Index(rest, "\n"+frontmatterDelimiter+"\n")
	if idx < 0 {
		return "", "", fmt.Errorf("unterminated frontmatter block")
	}
	front := rest[:idx]
	body := rest[idx+len(frontmatterDelimiter)+2:]
	return front, strings.TrimLeft(body, "\n"), nil
}

type loadedTemplate struct {
	meta Meta
	tmpl *template.Template
}

// Renderer loads and renders the embedded stage templates.
type Renderer struct {
	templates map[StageTemplate]loadedTemplate
}

// NewRenderer parses all embedded stage templates.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[StageTemplate]loadedTemplate)}

	for _, name := range []StageTemplate{PlanningTemplate, ArchitectureTemplate, CodingTemplate} {
		raw, err := templateFS.ReadFile(string(name))
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", name, err)
		}

		front, body, err := splitFrontmatter(string(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}

		var meta Meta
		if err := yaml.Unmarshal([]byte(front), &meta); err != nil {
			return nil, fmt.Errorf("failed to parse frontmatter of %s: %w", name, err)
		}
		if meta.Temperature <= 0 || meta.MaxTokens <= 0 {
			return nil, fmt.Errorf("template %s must declare positive temperature and max_tokens", name)
		}

		tmpl, err := template.New(string(name)).Parse(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}

		r.templates[name] = loadedTemplate{meta: meta, tmpl: tmpl}
	}

	return r, nil
}

// Meta returns the sampling parameters for the named template.
func (r *Renderer) Meta(name StageTemplate) (Meta, error) {
	lt, exists := r.templates[name]
	if !exists {
		return Meta{}, fmt.Errorf("template %s not found", name)
	}
	return lt.meta, nil
}

// Render renders the named template with the given data.
func (r *Renderer) Render(name StageTemplate, data *TemplateData) (string, error) {
	lt, exists := r.templates[name]
	if !exists {
		return "", fmt.Errorf("template %s not found", name)
	}

	var buf bytes.Buffer
	if err := lt.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}
