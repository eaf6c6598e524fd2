// Package pipeline assembles the full per-URL analysis: probe, crawl,
// contact resolution, extraction, critiques, grading, and cost totals.
// One logical worker processes one URL at a time; critique stages are
// isolated so a stage failure degrades its category instead of aborting
// the run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/audit-cli/internal/ai"
	"github.com/sells-group/audit-cli/internal/config"
	"github.com/sells-group/audit-cli/internal/contact"
	"github.com/sells-group/audit-cli/internal/cost"
	"github.com/sells-group/audit-cli/internal/critique"
	"github.com/sells-group/audit-cli/internal/extract"
	"github.com/sells-group/audit-cli/internal/fetcher"
	"github.com/sells-group/audit-cli/internal/grade"
	"github.com/sells-group/audit-cli/internal/jsonx"
	"github.com/sells-group/audit-cli/internal/model"
	"github.com/sells-group/audit-cli/pkg/anthropic"
	"github.com/sells-group/audit-cli/pkg/jina"
	"github.com/sells-group/audit-cli/pkg/openai"
	"github.com/sells-group/audit-cli/pkg/perplexity"
)

// Caller is the gateway surface the pipeline dispatches AI calls through.
type Caller interface {
	Call(ctx context.Context, req ai.CallRequest) (*ai.CallResult, error)
}

// Prober checks target reachability.
type Prober interface {
	Probe(ctx context.Context, rawURL string) (*model.ProbeResult, error)
}

// PageFetcher fetches one page.
type PageFetcher interface {
	Fetch(ctx context.Context, targetURL string) (*model.PageSnapshot, error)
}

// browserHandle is a closeable page fetcher.
type browserHandle interface {
	fetcher.PageFetcher
	Close()
}

// Analyzer runs the full pipeline for single URLs. Construct once per
// process; each Analyze call builds its own ledger and gateway so runs
// never share mutable state.
type Analyzer struct {
	cfg        *config.Config
	rates      cost.Rates
	anthropic  anthropic.Client
	openai     openai.Client
	perplexity perplexity.Client
	jina       jina.Client

	prober     Prober
	newBrowser func(ctx context.Context) (browserHandle, error)
	newGateway func(calc *cost.Calculator, ledger *cost.Ledger) Caller
}

// New wires an Analyzer from configuration. Provider clients are only
// constructed when a key is configured.
func New(cfg *config.Config) *Analyzer {
	a := &Analyzer{cfg: cfg, rates: ratesFromConfig(cfg.Pricing)}

	if cfg.Anthropic.Key != "" {
		a.anthropic = anthropic.NewClient(cfg.Anthropic.Key)
	}
	if cfg.OpenAI.Key != "" {
		a.openai = openai.NewClient(cfg.OpenAI.Key, openai.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	if cfg.Perplexity.Key != "" {
		a.perplexity = perplexity.NewClient(cfg.Perplexity.Key, perplexity.WithBaseURL(cfg.Perplexity.BaseURL))
	}
	if cfg.Jina.Key != "" {
		a.jina = jina.NewClient(cfg.Jina.Key, jina.WithBaseURL(cfg.Jina.BaseURL))
	}

	a.prober = fetcher.NewProber(
		time.Duration(cfg.Crawl.ProbeTimeoutSecs)*time.Second,
		cfg.Browser.UserAgent,
	)
	a.newBrowser = func(ctx context.Context) (browserHandle, error) {
		return fetcher.NewBrowser(ctx, cfg.Browser)
	}
	a.newGateway = func(calc *cost.Calculator, ledger *cost.Ledger) Caller {
		return ai.New(a.anthropic, a.openai, a.perplexity, nil, calc, ledger)
	}
	return a
}

// ratesFromConfig overlays configured pricing on the defaults.
func ratesFromConfig(pricing config.PricingConfig) cost.Rates {
	rates := cost.DefaultRates()
	for id, p := range pricing.Models {
		rates.Models[id] = cost.ModelRate{Input: p.Input, Output: p.Output}
	}
	if pricing.JinaPerMTok > 0 {
		rates.Jina.PerMTok = pricing.JinaPerMTok
	}
	if pricing.PerplexityPerQuery > 0 {
		rates.Perplexity.PerQuery = pricing.PerplexityPerQuery
	}
	return rates
}

// Analyze runs the full pipeline for one URL. It always returns a result
// for a reachable target, however degraded; it errors only when the
// target is unreachable or the gateway is misconfigured.
func (a *Analyzer) Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisResult, error) {
	startedAt := time.Now()
	ledger := cost.NewLedger()
	calc := cost.NewCalculator(a.rates)
	gateway := a.newGateway(calc, ledger)
	callTimeout := time.Duration(a.cfg.Analyze.CallTimeoutSecs) * time.Second
	if callTimeout <= 0 {
		callTimeout = 120 * time.Second
	}
	caller := &timeoutCaller{inner: gateway, timeout: callTimeout}

	normalized, err := fetcher.NormalizeURL(req.URL)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: malformed url")
	}
	req.URL = normalized

	result := &model.AnalysisResult{
		RunID:     uuid.NewString(),
		URL:       normalized,
		Request:   req,
		StartedAt: startedAt,
	}
	warn := func(stage string, err error) {
		msg := fmt.Sprintf("%s: %v", stage, err)
		result.Warnings = append(result.Warnings, msg)
		zap.L().Warn("pipeline: stage degraded", zap.String("stage", stage),
			zap.String("url", normalized), zap.Error(err))
	}

	// Probe first: an unreachable target is the one fetch error that
	// aborts the run.
	probe, err := a.prober.Probe(ctx, normalized)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: target unreachable")
	}

	pages, browserErr := a.crawl(ctx, req, probe, calc, ledger)
	if browserErr != nil {
		warn("crawl", browserErr)
	}
	if len(pages) == 0 {
		return nil, eris.Errorf("pipeline: no page of %s could be fetched", normalized)
	}
	result.PagesCrawled = len(pages)

	// Contact resolution never fails; no candidates is a valid outcome.
	var candidates []model.ContactCandidate
	for _, page := range pages {
		candidates = append(candidates, contact.ExtractCandidates(page)...)
	}
	result.Contact = contact.Resolve(normalized, candidates)

	var quality *jsonx.QualityChecker
	if a.cfg.Analyze.QualityCheck {
		quality = jsonx.NewQualityChecker(caller, a.cfg.Analyze.CheapModel)
	}

	extractor := extract.NewExtractor(caller, quality, a.cfg.Analyze.MaxPromptBytes)
	profile, meta, err := extractor.Extract(ctx, req.Models.TextModel, normalized, pages, result.Contact)
	if err != nil {
		warn("extraction", err)
		profile = &model.ExtractionProfile{}
	}
	result.Profile = *profile
	if meta != nil {
		result.Meta = *meta
	}

	corpus := extract.BuildCorpus(pages, a.cfg.Analyze.MaxPromptBytes)
	result.Critiques.Basic = critique.Basic(profile)

	// Competitor discovery depends on the classification, so it also runs
	// when only the competitor module is enabled.
	if req.Modules.Industry || req.Modules.Competitor {
		result.Industry = critique.Classify(ctx, caller, req.Models.CheapModel, corpus)
	}
	if req.Modules.Industry {
		result.Critiques.Industry = critique.IndustryCritiques(
			ctx, caller, quality, req.Models.TextModel, result.Industry, corpus)
	}
	if req.Modules.SEO {
		result.Critiques.SEO = critique.SEO(probe, pages[0])
	}
	if req.Modules.Visual {
		result.Critiques.Visual = critique.Visual(ctx, caller, req.Models.VisionModel,
			pages, a.cfg.Analyze.MaxVisualPages, a.cfg.Analyze.MaxVisualIssues)
	}
	if req.Modules.Competitor {
		compFetcher := fetcher.NewChain(fetcher.NewLocalFetcher(a.cfg.Browser.UserAgent), a.jinaFetcher(calc, ledger))
		stage := critique.NewCompetitorStage(caller, compFetcher, a.cfg.Perplexity.Model, req.Models.TextModel)
		result.Competitors = stage.Run(ctx, normalized, profile, result.Industry, pages, req.Depth)
		if result.Competitors != nil {
			result.Critiques.Competitor = result.Competitors.Critiques
		}
	}

	result.Score = grade.Score(profile)
	result.Cost = ledger.Summarize()
	result.Duration = time.Since(startedAt)
	return result, nil
}

// crawl fetches the homepage and tier-bounded key pages. The browser is
// started lazily and always closed, on success and failure paths alike.
func (a *Analyzer) crawl(ctx context.Context, req model.AnalysisRequest, probe *model.ProbeResult, calc *cost.Calculator, ledger *cost.Ledger) ([]*model.PageSnapshot, error) {
	var fetchers []fetcher.PageFetcher
	var browserErr error

	if a.newBrowser != nil {
		browser, err := a.newBrowser(ctx)
		if err != nil {
			browserErr = eris.Wrap(err, "browser start failed, using fallback fetchers")
		} else {
			defer browser.Close()
			fetchers = append(fetchers, browser)
		}
	}
	fetchers = append(fetchers, fetcher.NewLocalFetcher(a.cfg.Browser.UserAgent))
	if jf := a.jinaFetcher(calc, ledger); jf != nil {
		fetchers = append(fetchers, jf)
	}
	chain := fetcher.NewChain(fetchers...)

	home, err := chain.Fetch(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	home.Kind = model.PageHome
	pages := []*model.PageSnapshot{home}

	links := fetcher.ExtractLinks(home.HTML, req.URL)
	matcher := fetcher.NewPathMatcher(a.cfg.Crawl.ExcludePaths)
	for _, pageURL := range fetcher.SelectPages(req.URL, links, probe.SitemapURLs, req.Depth, matcher) {
		snap, err := chain.Fetch(ctx, pageURL)
		if err != nil {
			zap.L().Warn("pipeline: page fetch failed, skipping",
				zap.String("url", pageURL), zap.Error(err))
			continue
		}
		snap.Kind = fetcher.ClassifyPage(pageURL, snap.Title)
		pages = append(pages, snap)
	}

	return pages, browserErr
}

func (a *Analyzer) jinaFetcher(calc *cost.Calculator, ledger *cost.Ledger) fetcher.PageFetcher {
	if a.jina == nil {
		return nil
	}
	return fetcher.NewJinaFetcher(a.jina, calc, ledger)
}

// timeoutCaller bounds every AI call so a hung provider fails the stage,
// not the run.
type timeoutCaller struct {
	inner   Caller
	timeout time.Duration
}

func (t *timeoutCaller) Call(ctx context.Context, req ai.CallRequest) (*ai.CallResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Call(callCtx, req)
}
