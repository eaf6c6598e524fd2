package critique

import (
	"context"
	"sync"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/audit-cli/internal/ai"
	"github.com/sells-group/audit-cli/internal/model"
)

type fakeCaller struct {
	responses map[string]string // stage -> response text
	err       error

	mu    sync.Mutex // visual calls run concurrently
	calls []ai.CallRequest
}

func (f *fakeCaller) Call(_ context.Context, req ai.CallRequest) (*ai.CallResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &ai.CallResult{Text: f.responses[req.Stage]}, nil
}

func TestBasicFlagsMissingFields(t *testing.T) {
	t.Parallel()

	critiques := Basic(&model.ExtractionProfile{
		CompanyInfo: &model.CompanyInfo{Description: "We do things"},
		ContactInfo: &model.ContactInfo{Email: "a@b.com", Phone: "555"},
		ContentInfo: &model.ContentInfo{HasBlog: true},
	})

	joined := ""
	for _, c := range critiques {
		joined += c + "\n"
	}
	assert.NotContains(t, joined, "contact email")
	assert.NotContains(t, joined, "phone number")
	assert.Contains(t, joined, "social media")
	assert.Contains(t, joined, "testimonials")
}

func TestBasicNilProfile(t *testing.T) {
	t.Parallel()
	assert.NotEmpty(t, Basic(nil))
}

func TestClassifyUsesAIResult(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{responses: map[string]string{
		"industry_classify": `{"category": "Legal", "niche": "Law Firm", "confidence": "high"}`,
	}}
	class := Classify(context.Background(), caller, "claude-haiku-4-5-20251001", "some corpus")
	require.NotNil(t, class)
	assert.Equal(t, "Legal", class.Category)
	assert.Equal(t, "ai", class.Source)
	assert.Equal(t, "high", class.Confidence)
}

func TestClassifyFallsBackToKeywords(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{err: eris.New("provider down")}
	class := Classify(context.Background(), caller, "claude-haiku-4-5-20251001",
		"We repair HVAC systems and air conditioning units across the metro.")
	require.NotNil(t, class)
	assert.Equal(t, "Home Services", class.Category)
	assert.Equal(t, "HVAC", class.Niche)
	assert.Equal(t, "keyword", class.Source)
}

func TestClassifyUnmatchedCorpus(t *testing.T) {
	t.Parallel()

	class := keywordClassify("completely unrelated prose with no keywords at all")
	require.NotNil(t, class)
	assert.Equal(t, "General Business", class.Category)
}

func TestKeywordClassifyNeverNil(t *testing.T) {
	t.Parallel()
	assert.NotNil(t, keywordClassify(""))
}

func TestIndustryCritiquesParsesArray(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{responses: map[string]string{
		"critique_industry": `{"critiques": ["No emergency line listed", "No service area map"]}`,
	}}
	class := &model.IndustryClassification{Category: "Home Services", Niche: "HVAC"}
	out := IndustryCritiques(context.Background(), caller, nil, "claude-sonnet-4-5-20250929", class, "corpus")
	assert.Equal(t, []string{"No emergency line listed", "No service area map"}, out)
}

func TestIndustryCritiquesFailureDegrades(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{err: eris.New("timeout")}
	class := &model.IndustryClassification{Category: "Legal"}
	assert.Nil(t, IndustryCritiques(context.Background(), caller, nil, "m", class, "corpus"))
}

func TestParseCritiqueListPartialFallback(t *testing.T) {
	t.Parallel()

	out := parseCritiqueList("Here are the issues I found:\n1. The menu is broken\n2. No pricing shown")
	assert.Equal(t, []string{"The menu is broken", "No pricing shown"}, out)
}

func TestSEOChecks(t *testing.T) {
	t.Parallel()

	probe := &model.ProbeResult{Reachable: true, HasRobots: true, RobotsTxt: "User-agent: *\nDisallow: /admin"}
	home := &model.PageSnapshot{
		URL: "https://acme.com",
		HTML: `<html><head><title>Acme</title></head><body>
			<h1>One</h1><h1>Two</h1>
			<img src="a.png"><img src="b.png" alt="widget">
		</body></html>`,
	}

	critiques := SEO(probe, home)
	joined := ""
	for _, c := range critiques {
		joined += c + "\n"
	}
	assert.Contains(t, joined, "sitemap.xml")
	assert.Contains(t, joined, "structured data")
	assert.Contains(t, joined, "canonical")
	assert.Contains(t, joined, "2 H1 headings")
	assert.NotContains(t, joined, "robots.txt")
}

func TestSEOCleanSite(t *testing.T) {
	t.Parallel()

	probe := &model.ProbeResult{Reachable: true, HasRobots: true, HasSitemap: true, RobotsTxt: "User-agent: *"}
	home := &model.PageSnapshot{
		URL: "https://acme.com",
		HTML: `<html><head>
			<link rel="canonical" href="https://acme.com/">
			<script type="application/ld+json">{"@type":"Organization"}</script>
		</head><body><h1>Acme</h1><img src="a.png" alt="widget"></body></html>`,
	}
	assert.Empty(t, SEO(probe, home))
}

func TestSEORobotsFullBlock(t *testing.T) {
	t.Parallel()

	probe := &model.ProbeResult{HasRobots: true, HasSitemap: true, RobotsTxt: "User-agent: *\nDisallow: /"}
	critiques := SEO(probe, nil)
	require.Len(t, critiques, 1)
	assert.Contains(t, critiques[0], "disallows all crawling")
}

func TestVisualPoolsAndDedupes(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{responses: map[string]string{
		"critique_visual": `{"critiques": ["Hero text is unreadable.", "hero text is unreadable", "No call to action"]}`,
	}}
	pages := []*model.PageSnapshot{
		{URL: "https://acme.com", Screenshot: []byte{1, 2, 3}},
		{URL: "https://acme.com/about", Screenshot: []byte{4, 5, 6}},
		{URL: "https://acme.com/no-shot"},
	}

	out := Visual(context.Background(), caller, "gpt-4o", pages, 3, 8)
	assert.Equal(t, []string{"Hero text is unreadable.", "No call to action"}, out)
	assert.Len(t, caller.calls, 2)
}

func TestVisualCapsIssues(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{responses: map[string]string{
		"critique_visual": `{"critiques": ["a1", "b2", "c3", "d4", "e5"]}`,
	}}
	pages := []*model.PageSnapshot{{URL: "u", Screenshot: []byte{1}}}

	out := Visual(context.Background(), caller, "gpt-4o", pages, 3, 3)
	assert.Len(t, out, 3)
}

func TestVisualPageFailureSkipped(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{err: eris.New("vision api down")}
	pages := []*model.PageSnapshot{{URL: "u", Screenshot: []byte{1}}}
	assert.Empty(t, Visual(context.Background(), caller, "gpt-4o", pages, 3, 8))
}

func TestChecklistFromPages(t *testing.T) {
	t.Parallel()

	pages := []*model.PageSnapshot{{
		URL:  "https://rival.com",
		Text: "Pricing starts at $49 per month. Read our customer testimonials and case studies.",
		HTML: `<a href="mailto:hi@rival.com">hi</a><a href="tel:+15550102000">call</a><script src="https://widget.intercom.io/x.js"></script>`,
	}}

	checklist := checklistFromPages(pages)
	assert.True(t, checklist.PricingVisible)
	assert.True(t, checklist.Testimonials)
	assert.True(t, checklist.LiveChat)
	assert.True(t, checklist.CaseStudies)
	assert.True(t, checklist.ContactComplete)
}
