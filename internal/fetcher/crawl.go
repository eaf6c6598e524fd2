package fetcher

import (
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/audit-cli/internal/model"
)

// ClassifyPage labels a page by its URL path and title patterns.
func ClassifyPage(pageURL, title string) model.PageKind {
	lower := strings.ToLower(pageURL + " " + title)

	switch {
	case containsAny(lower, "contact", "get-in-touch", "reach-us"):
		return model.PageContact
	case containsAny(lower, "about", "our-story", "who-we-are", "team", "people"):
		return model.PageAbout
	case containsAny(lower, "services", "solutions", "products", "what-we-do", "pricing"):
		return model.PageServices
	case containsAny(lower, "blog", "insights", "articles", "news", "resources"):
		return model.PageBlog
	}
	return model.PageOther
}

// ExtractLinks parses same-host links out of page HTML.
func ExtractLinks(htmlStr, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil
	}

	seen := map[string]bool{}
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") ||
			strings.HasPrefix(href, "javascript:") {
			return
		}
		abs, err := base.Parse(href)
		if err != nil || abs.Host != base.Host {
			return
		}
		abs.Fragment = ""
		abs.RawQuery = ""
		link := abs.String()
		if !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
	})
	return links
}

// kindPriority orders page kinds by extraction value. Contact and about
// pages carry the facts the profile needs most.
var kindPriority = map[model.PageKind]int{
	model.PageContact:  0,
	model.PageAbout:    1,
	model.PageServices: 2,
	model.PageBlog:     3,
	model.PageOther:    4,
}

// SelectPages picks which discovered URLs to crawl beyond the homepage,
// bounded by the depth tier. Candidates come from homepage links plus
// sitemap URLs; higher-value page kinds win, ties break on URL order for
// determinism.
func SelectPages(homeURL string, links, sitemapURLs []string, tier model.DepthTier, matcher *PathMatcher) []string {
	budget := tier.MaxPages() - 1 // homepage is already fetched
	if budget <= 0 {
		return nil
	}

	seen := map[string]bool{homeURL: true}
	normalizedHome := strings.TrimSuffix(homeURL, "/")
	seen[normalizedHome] = true
	seen[normalizedHome+"/"] = true

	type candidate struct {
		url  string
		kind model.PageKind
	}
	var candidates []candidate
	for _, u := range append(append([]string{}, links...), sitemapURLs...) {
		if seen[u] {
			continue
		}
		seen[u] = true
		if matcher != nil && matcher.IsExcluded(u) {
			continue
		}
		candidates = append(candidates, candidate{url: u, kind: ClassifyPage(u, "")})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		pi, pj := kindPriority[candidates[i].kind], kindPriority[candidates[j].kind]
		if pi != pj {
			return pi < pj
		}
		return candidates[i].url < candidates[j].url
	})

	if len(candidates) > budget {
		candidates = candidates[:budget]
	}
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.url
	}
	return out
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
