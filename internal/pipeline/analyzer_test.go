package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/audit-cli/internal/ai"
	"github.com/sells-group/audit-cli/internal/config"
	"github.com/sells-group/audit-cli/internal/cost"
	"github.com/sells-group/audit-cli/internal/model"
)

type fakeProber struct {
	probe *model.ProbeResult
	err   error
}

func (f *fakeProber) Probe(context.Context, string) (*model.ProbeResult, error) {
	return f.probe, f.err
}

type fakeBrowser struct {
	pages  map[string]*model.PageSnapshot
	closed bool
}

func (f *fakeBrowser) Name() string { return "browser" }

func (f *fakeBrowser) Fetch(_ context.Context, targetURL string) (*model.PageSnapshot, error) {
	if page, ok := f.pages[targetURL]; ok {
		copied := *page
		return &copied, nil
	}
	return nil, eris.Errorf("no page for %s", targetURL)
}

func (f *fakeBrowser) Close() { f.closed = true }

type fakeGateway struct {
	responses map[string]string
	errors    map[string]error
	stages    []string
}

func (f *fakeGateway) Call(_ context.Context, req ai.CallRequest) (*ai.CallResult, error) {
	f.stages = append(f.stages, req.Stage)
	if err, ok := f.errors[req.Stage]; ok {
		return nil, err
	}
	if text, ok := f.responses[req.Stage]; ok {
		return &ai.CallResult{Text: text, InputTokens: 100, OutputTokens: 50}, nil
	}
	return nil, eris.Errorf("no canned response for stage %s", req.Stage)
}

func testConfig() *config.Config {
	return &config.Config{
		Analyze: config.AnalyzeConfig{
			TextModel:       "claude-sonnet-4-5-20250929",
			VisionModel:     "claude-sonnet-4-5-20250929",
			CheapModel:      "claude-haiku-4-5-20251001",
			MaxPromptBytes:  48 * 1024,
			CallTimeoutSecs: 120,
			MaxVisualPages:  3,
			MaxVisualIssues: 8,
		},
		Perplexity: config.PerplexityConfig{Model: "sonar-pro"},
	}
}

const homeHTML = `<html><head><title>Acme Widgets</title>
<script type="application/ld+json">{"@type": "Organization", "name": "Acme Widgets", "foundingDate": "2015-03-01", "address": {"addressLocality": "Denver"}}</script>
</head><body><h1>Acme</h1>
<a href="mailto:sales@acme.com">Email</a>
<a href="/contact">Contact</a>
</body></html>`

func testAnalyzer(gw *fakeGateway, browser *fakeBrowser) *Analyzer {
	a := &Analyzer{cfg: testConfig(), rates: cost.DefaultRates()}
	a.prober = &fakeProber{probe: &model.ProbeResult{Reachable: true, StatusCode: 200}}
	a.newBrowser = func(context.Context) (browserHandle, error) { return browser, nil }
	a.newGateway = func(*cost.Calculator, *cost.Ledger) Caller { return gw }
	return a
}

func defaultRequest(modules model.ModuleFlags) model.AnalysisRequest {
	return model.AnalysisRequest{
		URL:     "https://acme.com",
		Modules: modules,
		Depth:   model.DepthQuick,
		Models: model.ModelSelection{
			TextModel:   "claude-sonnet-4-5-20250929",
			VisionModel: "claude-sonnet-4-5-20250929",
			CheapModel:  "claude-haiku-4-5-20251001",
		},
	}
}

func TestAnalyzeFullRun(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{responses: map[string]string{
		"extraction":        `{"company_info": {"name": "Acme Widgets", "description": "Widget maker"}, "contact_info": {"email": "sales@acme.com"}}`,
		"industry_classify": `{"category": "Manufacturing", "niche": "Industrial", "confidence": "high"}`,
		"critique_industry": `{"critiques": ["No product catalog for an industrial manufacturer"]}`,
	}}
	browser := &fakeBrowser{pages: map[string]*model.PageSnapshot{
		"https://acme.com": {
			URL: "https://acme.com", Title: "Acme Widgets", HTML: homeHTML,
			Text: "Acme makes widgets in Denver.", StatusCode: 200, FetchedVia: "browser",
		},
	}}

	a := testAnalyzer(gw, browser)
	result, err := a.Analyze(context.Background(),
		defaultRequest(model.ModuleFlags{Industry: true, SEO: true}))
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 1, result.PagesCrawled)
	assert.True(t, browser.closed)

	// Structured data overrides the model for identity facts.
	assert.Equal(t, "Acme Widgets", result.Profile.CompanyInfo.Name)
	assert.Equal(t, "2015", result.Profile.CompanyInfo.FoundingYear)
	assert.Equal(t, "Denver", result.Profile.CompanyInfo.Location)

	require.NotNil(t, result.Contact)
	assert.Equal(t, "sales@acme.com", result.Contact.Email)

	require.NotNil(t, result.Industry)
	assert.Equal(t, "Manufacturing", result.Industry.Category)
	assert.Len(t, result.Critiques.Industry, 1)
	assert.NotEmpty(t, result.Critiques.SEO)
	assert.Empty(t, result.Critiques.Visual)

	assert.Greater(t, result.Score.Score, 0.0)
	assert.NotEmpty(t, result.Score.Grade)
	assert.GreaterOrEqual(t, result.Duration.Nanoseconds(), int64(0))
}

func TestAnalyzeUnreachableTarget(t *testing.T) {
	t.Parallel()

	a := testAnalyzer(&fakeGateway{}, &fakeBrowser{})
	a.prober = &fakeProber{err: eris.New("probe: fetch https://down.example: connection refused")}

	_, err := a.Analyze(context.Background(), defaultRequest(model.ModuleFlags{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestAnalyzeMalformedURL(t *testing.T) {
	t.Parallel()

	a := testAnalyzer(&fakeGateway{}, &fakeBrowser{})
	req := defaultRequest(model.ModuleFlags{})
	req.URL = ""
	_, err := a.Analyze(context.Background(), req)
	require.Error(t, err)
}

// A reachable site degrades, never throws: every AI stage failing still
// yields a result with warnings and empty critique categories.
func TestAnalyzeMaximalDegradation(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{errors: map[string]error{
		"extraction":          eris.New("provider down"),
		"industry_classify":   eris.New("provider down"),
		"critique_industry":   eris.New("provider down"),
		"critique_visual":     eris.New("provider down"),
		"competitor_discover": eris.New("provider down"),
	}}
	browser := &fakeBrowser{pages: map[string]*model.PageSnapshot{
		"https://acme.com": {
			URL: "https://acme.com", HTML: "<html><body>plain</body></html>",
			Text: "plain", StatusCode: 200, Screenshot: []byte{1},
		},
	}}

	a := testAnalyzer(gw, browser)
	result, err := a.Analyze(context.Background(), defaultRequest(model.AllModules()))
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.Warnings)
	assert.Empty(t, result.Critiques.Visual)
	assert.Empty(t, result.Critiques.Competitor)
	assert.Nil(t, result.Competitors)
	assert.NotEmpty(t, result.Critiques.Basic)
	// Keyword fallback still classifies.
	require.NotNil(t, result.Industry)
	assert.Equal(t, "keyword", result.Industry.Source)
	assert.Equal(t, "F", result.Score.Grade)
	assert.True(t, browser.closed)
}

// With the visual module disabled no critique may reference visual-only
// attributes.
func TestAnalyzeVisualDisabled(t *testing.T) {
	t.Parallel()

	gw := &fakeGateway{responses: map[string]string{
		"extraction": `{"company_info": {"name": "Acme"}}`,
	}}
	browser := &fakeBrowser{pages: map[string]*model.PageSnapshot{
		"https://acme.com": {
			URL: "https://acme.com", HTML: homeHTML, Text: "widgets",
			StatusCode: 200, Screenshot: []byte{1, 2},
		},
	}}

	a := testAnalyzer(gw, browser)
	result, err := a.Analyze(context.Background(), defaultRequest(model.ModuleFlags{SEO: true}))
	require.NoError(t, err)

	assert.Empty(t, result.Critiques.Visual)
	for _, stage := range gw.stages {
		assert.NotEqual(t, "critique_visual", stage)
	}
	all := append(append([]string{}, result.Critiques.Basic...), result.Critiques.SEO...)
	for _, c := range all {
		lower := strings.ToLower(c)
		assert.NotContains(t, lower, "button")
		assert.NotContains(t, lower, "color")
		assert.NotContains(t, lower, "above the fold")
	}
}

// When the browser cannot start, the run continues on the plain HTTP
// fetcher and records a crawl warning.
func TestAnalyzeBrowserFailureFallsBack(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(homeHTML))
	}))
	defer server.Close()

	gw := &fakeGateway{responses: map[string]string{
		"extraction": `{"company_info": {"name": "Acme"}}`,
	}}
	a := testAnalyzer(gw, nil)
	a.newBrowser = func(context.Context) (browserHandle, error) {
		return nil, eris.New("chrome not found")
	}

	req := defaultRequest(model.ModuleFlags{})
	req.URL = server.URL
	result, err := a.Analyze(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "crawl")
	assert.Equal(t, 1, result.PagesCrawled)
}
