package architect

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codebuilder/pkg/agent"
	"codebuilder/pkg/agent/llm"
	"codebuilder/pkg/templates"
)

func newTestArchitect(t *testing.T, mock *agent.MockLLMClient) *Architect {
	t.Helper()
	renderer, err := templates.NewRenderer()
	require.NoError(t, err)
	return New(mock, renderer)
}

func TestDesignHappyPath(t *testing.T) {
	mock := agent.NewMockLLMClient([]llm.CompletionResponse{
		{Content: `{"index.html": "Landing page", "css/style.css": "Button styling", "script.js": "Click handler"}`},
	}, nil)
	a := newTestArchitect(t, mock)

	specs, err := a.Design(context.Background(), []string{"Create page", "Style it", "Add behavior"})
	require.NoError(t, err)
	assert.Equal(t, []FileSpec{
		{Path: "index.html", Description: "Landing page"},
		{Path: "css/style.css", Description: "Button styling"},
		{Path: "script.js", Description: "Click handler"},
	}, specs)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Messages[0].Content, "- Create page")
}

func TestParseArchitecturePreservesOrder(t *testing.T) {
	specs, err := ParseArchitecture(`{"z.js": "last name, first position", "a.js": "first name, second position"}`)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, "z.js", specs[0].Path)
	assert.Equal(t, "a.js", specs[1].Path)
}

func TestParseArchitectureDuplicateKeepsPositionUpdatesDescription(t *testing.T) {
	specs, err := ParseArchitecture(`{"app.js": "old", "style.css": "styles", "app.js": "new"}`)
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, FileSpec{Path: "app.js", Description: "new"}, specs[0])
	assert.Equal(t, FileSpec{Path: "style.css", Description: "styles"}, specs[1])
}

func TestParseArchitectureToleratesSurroundingProse(t *testing.T) {
	specs, err := ParseArchitecture("Sure, here is the layout:\n{\"main.py\": \"entry point\"}\nDone.")
	require.NoError(t, err)
	assert.Equal(t, []FileSpec{{Path: "main.py", Description: "entry point"}}, specs)
}

func TestParseArchitectureRejectsTraversal(t *testing.T) {
	for _, content := range []string{
		`{"../escape.txt": "nope"}`,
		`{"/etc/passwd": "nope"}`,
		`{"a/../../b.txt": "nope"}`,
	} {
		_, err := ParseArchitecture(content)
		var aerr *ArchitectureError
		assert.True(t, errors.As(err, &aerr), "content %s", content)
	}
}

func TestParseArchitectureEmptyObject(t *testing.T) {
	_, err := ParseArchitecture(`{}`)
	var aerr *ArchitectureError
	assert.True(t, errors.As(err, &aerr))
}

func TestParseArchitectureNoObject(t *testing.T) {
	_, err := ParseArchitecture("no json here")
	var aerr *ArchitectureError
	assert.True(t, errors.As(err, &aerr))
}

func TestParseArchitectureNonStringValue(t *testing.T) {
	_, err := ParseArchitecture(`{"a.txt": 42}`)
	var aerr *ArchitectureError
	assert.True(t, errors.As(err, &aerr))
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"./index.html":   "index.html",
		"  src/app.js  ": "src/app.js",
		`css\style.css`:  "css/style.css",
		"a/./b.txt":      "a/b.txt",
		"./a/./b/c.txt":  "a/b/c.txt",
	}
	for in, want := range cases {
		got, err := NormalizePath(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got)
	}
}

func TestNormalizePathRejections(t *testing.T) {
	for _, in := range []string{"", ".", "./", "a//b.txt", "a/../b.txt", "/abs.txt"} {
		_, err := NormalizePath(in)
		var aerr *ArchitectureError
		assert.True(t, errors.As(err, &aerr), "input %q, got %v", in, err)
	}
}

func TestSummary(t *testing.T) {
	out := Summary([]FileSpec{
		{Path: "index.html", Description: "Landing page"},
		{Path: "style.css", Description: "Styling"},
	})
	assert.Equal(t, "index.html: Landing page\nstyle.css: Styling", out)
}

func TestDesignPropagatesClientError(t *testing.T) {
	boom := errors.New("timeout")
	mock := agent.NewMockLLMClient(nil, []error{boom})
	a := newTestArchitect(t, mock)

	_, err := a.Design(context.Background(), []string{"task"})
	assert.ErrorIs(t, err, boom)
}
