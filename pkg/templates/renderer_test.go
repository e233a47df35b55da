package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRendererLoadsAllTemplates(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	for _, name := range []StageTemplate{PlanningTemplate, ArchitectureTemplate, CodingTemplate} {
		meta, err := r.Meta(name)
		require.NoError(t, err, "template %s", name)
		assert.NotEmpty(t, meta.Description)
		assert.Greater(t, meta.Temperature, float32(0))
		assert.Greater(t, meta.MaxTokens, 0)
	}
}

func TestFrontmatterValues(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	planning, err := r.Meta(PlanningTemplate)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, planning.Temperature, 0.001)

	coding, err := r.Meta(CodingTemplate)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, coding.Temperature, 0.001)
	assert.Equal(t, 4096, coding.MaxTokens)
}

func TestRenderPlanningTemplate(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render(PlanningTemplate, &TemplateData{UserPrompt: "build a page with a button"})
	require.NoError(t, err)
	assert.Contains(t, out, "build a page with a button")
	assert.Contains(t, out, "JSON array")
	assert.NotContains(t, out, "---", "frontmatter must be stripped from the rendered prompt")
}

func TestRenderArchitectureTemplate(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render(ArchitectureTemplate, &TemplateData{
		Tasks: []string{"Create the HTML page", "Style the button"},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "- Create the HTML page")
	assert.Contains(t, out, "- Style the button")
	assert.Contains(t, out, "JSON object")
}

func TestRenderCodingTemplate(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	out, err := r.Render(CodingTemplate, &TemplateData{
		Path:         "index.html",
		Description:  "Landing page with a button",
		Architecture: "index.html: Landing page with a button\nstyle.css: Button styling",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "File to write: index.html")
	assert.Contains(t, out, "Landing page with a button")
	assert.Contains(t, out, "style.css")
}

func TestRenderUnknownTemplate(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	_, err = r.Render(StageTemplate("nope.tpl.md"), &TemplateData{})
	assert.Error(t, err)
}

func TestSplitFrontmatter(t *testing.T) {
	front, body, err := splitFrontmatter("---\ndescription: x\ntemperature: 0.5\nmax_tokens: 10\n---\n\nBody text\n")
	require.NoError(t, err)
	assert.Contains(t, front, "temperature: 0.5")
	assert.Equal(t, "Body text\n", body)

	_, _, err = splitFrontmatter("no frontmatter here")
	assert.Error(t, err)

	_, _, err = splitFrontmatter("---\nunterminated: true\n")
	assert.Error(t, err)
}
