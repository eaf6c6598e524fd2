package fetcher

import (
	"net/url"
	"regexp"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// ExtractText converts page HTML into plaintext suitable for prompts.
// Readability extracts the main content; when it finds nothing useful the
// whole document is stripped instead.
func ExtractText(htmlStr, pageURL string) string {
	if parsed, err := url.Parse(pageURL); err == nil {
		article, err := readability.FromReader(strings.NewReader(htmlStr), parsed)
		if err == nil && len(strings.TrimSpace(article.TextContent)) > 200 {
			return collapseWhitespace(article.TextContent)
		}
	}
	return StripHTML(htmlStr)
}

// StripHTML removes scripts/styles/nav/footer, strips tags, decodes
// entities, and collapses whitespace.
func StripHTML(html string) string {
	for _, tag := range []string{"script", "style", "nav", "footer"} {
		re := regexp.MustCompile(`(?is)<` + tag + `[^>]*>.*?</` + tag + `>`)
		html = re.ReplaceAllString(html, "")
	}

	tagRe := regexp.MustCompile(`<[^>]+>`)
	html = tagRe.ReplaceAllString(html, " ")

	r := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	html = r.Replace(html)

	return collapseWhitespace(html)
}

var spaceRe = regexp.MustCompile(`[ \t]+`)
var nlRe = regexp.MustCompile(`\n{3,}`)

func collapseWhitespace(s string) string {
	s = spaceRe.ReplaceAllString(s, " ")
	s = nlRe.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

var titleRe = regexp.MustCompile(`(?i)<title[^>]*>(.*?)</title>`)

// ExtractTitle pulls the <title> from HTML.
func ExtractTitle(html string) string {
	m := titleRe.FindStringSubmatch(html)
	if len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}
