package critique

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/audit-cli/internal/model"
)

// SEO runs the fixed technical-SEO check battery over the probe result
// and the rendered homepage. No AI calls; each check is isolated so one
// check's failure cannot blank the others.
func SEO(probe *model.ProbeResult, home *model.PageSnapshot) []string {
	var out []string

	checks := []func() string{
		func() string { return checkSitemap(probe) },
		func() string { return checkRobots(probe) },
		func() string { return checkStructuredData(home) },
		func() string { return checkImageAlts(home) },
		func() string { return checkCanonical(home) },
		func() string { return checkHeadings(home) },
	}

	for _, check := range checks {
		if c := runCheck(check); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func runCheck(check func() string) (critique string) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("critique: seo check panicked", zap.Any("panic", r))
			critique = ""
		}
	}()
	return check()
}

func checkSitemap(probe *model.ProbeResult) string {
	if probe == nil {
		return ""
	}
	if !probe.HasSitemap {
		return "No sitemap.xml was found, which makes it harder for search engines to index the site."
	}
	return ""
}

func checkRobots(probe *model.ProbeResult) string {
	if probe == nil {
		return ""
	}
	if !probe.HasRobots {
		return "No robots.txt file is present."
	}
	for _, line := range strings.Split(probe.RobotsTxt, "\n") {
		trimmed := strings.TrimSpace(strings.ToLower(line))
		if trimmed == "disallow: /" {
			return "robots.txt disallows all crawling, blocking search engines from the entire site."
		}
	}
	return ""
}

func checkStructuredData(home *model.PageSnapshot) string {
	doc := homeDoc(home)
	if doc == nil {
		return ""
	}
	if doc.Find(`script[type="application/ld+json"]`).Length() == 0 {
		return "The homepage carries no structured data (JSON-LD), missing rich-result eligibility."
	}
	return ""
}

func checkImageAlts(home *model.PageSnapshot) string {
	doc := homeDoc(home)
	if doc == nil {
		return ""
	}
	imgs := doc.Find("img")
	total := imgs.Length()
	if total == 0 {
		return ""
	}

	withAlt := 0
	imgs.Each(func(_ int, sel *goquery.Selection) {
		if alt, ok := sel.Attr("alt"); ok && strings.TrimSpace(alt) != "" {
			withAlt++
		}
	})

	ratio := float64(withAlt) / float64(total)
	if ratio < 0.5 {
		return fmt.Sprintf("Only %d of %d homepage images have alt text, hurting image SEO and accessibility.", withAlt, total)
	}
	return ""
}

func checkCanonical(home *model.PageSnapshot) string {
	doc := homeDoc(home)
	if doc == nil {
		return ""
	}
	if doc.Find(`link[rel="canonical"]`).Length() == 0 {
		return "The homepage has no canonical link tag, risking duplicate-content dilution."
	}
	return ""
}

func checkHeadings(home *model.PageSnapshot) string {
	doc := homeDoc(home)
	if doc == nil {
		return ""
	}
	h1s := doc.Find("h1").Length()
	switch {
	case h1s == 0:
		return "The homepage has no H1 heading."
	case h1s > 1:
		return fmt.Sprintf("The homepage has %d H1 headings; search engines expect exactly one.", h1s)
	}
	return ""
}

func homeDoc(home *model.PageSnapshot) *goquery.Document {
	if home == nil || home.HTML == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(home.HTML))
	if err != nil {
		return nil
	}
	return doc
}
