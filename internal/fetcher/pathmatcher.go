package fetcher

import (
	"net/url"
	"path"
	"strings"
)

// defaultExcludePatterns are used when no custom patterns are provided.
var defaultExcludePatterns = []string{
	"/careers/*",
	"/privacy*",
	"/terms*",
	"/cart/*",
	"/login*",
}

// PathMatcher filters URLs based on glob-style path patterns, with a
// segmented match so "/blog/*" also matches "/blog/deep/path".
type PathMatcher struct {
	patterns []string
}

// NewPathMatcher creates a PathMatcher from glob patterns. Falls back to
// default patterns if none are provided.
func NewPathMatcher(patterns []string) *PathMatcher {
	if len(patterns) == 0 {
		patterns = defaultExcludePatterns
	}
	return &PathMatcher{patterns: patterns}
}

// IsExcluded checks whether a URL matches any exclude pattern.
func (m *PathMatcher) IsExcluded(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	urlPath := strings.ToLower(u.Path)
	for _, pattern := range m.patterns {
		if matchSegmented(strings.ToLower(pattern), urlPath) {
			return true
		}
	}
	return false
}

func matchSegmented(pattern, urlPath string) bool {
	if ok, _ := path.Match(pattern, urlPath); ok {
		return true
	}
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if urlPath == prefix || strings.HasPrefix(urlPath, prefix+"/") {
			return true
		}
	}
	return false
}
