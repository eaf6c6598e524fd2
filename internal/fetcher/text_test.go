package fetcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	t.Parallel()

	html := `<html><head>
		<script>var tracking = "beacon";</script>
		<style>.hero { color: red; }</style>
	</head><body>
		<nav><a href="/">Home</a></nav>
		<h1>Acme &amp; Sons</h1>
		<p>Widgets &lt;since 1999&gt;&nbsp;&#39;guaranteed&#39;</p>
		<footer>Copyright</footer>
	</body></html>`

	text := StripHTML(html)
	assert.Contains(t, text, "Acme & Sons")
	assert.Contains(t, text, "Widgets <since 1999> 'guaranteed'")
	assert.NotContains(t, text, "tracking")
	assert.NotContains(t, text, "color: red")
	assert.NotContains(t, text, "Home")
	assert.NotContains(t, text, "Copyright")
}

func TestExtractTextFallsBackOnThinPages(t *testing.T) {
	t.Parallel()

	// Too little content for readability; the raw strip still works.
	text := ExtractText("<html><body><p>Just a line.</p></body></html>", "https://acme.com")
	assert.Equal(t, "Just a line.", text)
}

func TestCollapseWhitespace(t *testing.T) {
	t.Parallel()

	in := "a    b\t\tc\n\n\n\n\nd"
	assert.Equal(t, "a b c\n\nd", collapseWhitespace(in))
}

func TestExtractTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Acme Widgets", ExtractTitle(`<html><head><title> Acme Widgets </title></head></html>`))
	assert.Equal(t, "Acme", ExtractTitle(`<TITLE>Acme</TITLE>`))
	assert.Empty(t, ExtractTitle(`<html><head></head></html>`))
	long := strings.Repeat("x", 100)
	assert.Equal(t, long, ExtractTitle("<title>"+long+"</title>"))
}
