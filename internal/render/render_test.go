package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLRejectsEmptyFragment(t *testing.T) {
	_, err := HTML("   ")
	assert.Error(t, err)
}

func TestHTMLConvertsBasicMarkup(t *testing.T) {
	md, err := HTML("<h1>Title</h1><p>Hello <strong>world</strong>.</p>")
	require.NoError(t, err)
	assert.Contains(t, md, "# Title")
	assert.Contains(t, md, "**world**")
}

func TestHTMLStripsCommentsAndCollapsesBlankRuns(t *testing.T) {
	md, err := HTML("<p>one</p><!-- drop me --><p>two</p><p>three</p>")
	require.NoError(t, err)
	assert.NotContains(t, md, "drop me")
	assert.NotContains(t, md, "\n\n\n")
}

func TestHTMLRendersTables(t *testing.T) {
	md, err := HTML(`<table><tr><th>A</th><th>B</th></tr><tr><td>1</td><td>2</td></tr></table>`)
	require.NoError(t, err)
	assert.Contains(t, md, "A")
	assert.Contains(t, md, "---")
}

func TestExtractMainPrefersFirstMatchingSelector(t *testing.T) {
	html := `<html><body><nav>skip</nav><main><h1>Kept</h1></main></body></html>`
	out, err := ExtractMain(html, []string{"main", "article"})
	require.NoError(t, err)
	assert.Contains(t, out, "Kept")
	assert.NotContains(t, out, "skip")
}

func TestExtractMainFallsBackToBodyMinusBoilerplate(t *testing.T) {
	html := `<html><body><header>banner</header><p>Content</p><footer>bye</footer></body></html>`
	out, err := ExtractMain(html, []string{".missing"})
	require.NoError(t, err)
	assert.Contains(t, out, "Content")
	assert.NotContains(t, out, "banner")
	assert.NotContains(t, out, "bye")
}

func TestExtractMainEmptyDocumentYieldsEmptyContent(t *testing.T) {
	out, err := ExtractMain("", []string{"main"})
	require.NoError(t, err)
	assert.Empty(t, out)
}
