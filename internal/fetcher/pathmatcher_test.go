package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathMatcherDefaults(t *testing.T) {
	t.Parallel()

	m := NewPathMatcher(nil)
	tests := []struct {
		url  string
		want bool
	}{
		{"https://acme.com/careers/openings", true},
		{"https://acme.com/careers/eng/senior", true},
		{"https://acme.com/privacy", true},
		{"https://acme.com/privacy-policy", true},
		{"https://acme.com/terms", true},
		{"https://acme.com/cart/checkout", true},
		{"https://acme.com/login", true},
		{"https://acme.com/about", false},
		{"https://acme.com/", false},
		{"https://acme.com/services/plumbing", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.IsExcluded(tt.url), tt.url)
	}
}

func TestPathMatcherCustomPatterns(t *testing.T) {
	t.Parallel()

	m := NewPathMatcher([]string{"/blog/*", "/de/*"})
	assert.True(t, m.IsExcluded("https://acme.com/blog/2024/post"))
	assert.True(t, m.IsExcluded("https://acme.com/de/kontakt"))
	assert.False(t, m.IsExcluded("https://acme.com/privacy"))
	assert.False(t, m.IsExcluded("https://acme.com/bloggers"))
}

func TestPathMatcherCaseInsensitive(t *testing.T) {
	t.Parallel()

	m := NewPathMatcher(nil)
	assert.True(t, m.IsExcluded("https://acme.com/Careers/Jobs"))
	assert.True(t, m.IsExcluded("https://acme.com/LOGIN"))
}
