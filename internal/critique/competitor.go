package critique

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/audit-cli/internal/ai"
	"github.com/sells-group/audit-cli/internal/contact"
	"github.com/sells-group/audit-cli/internal/fetcher"
	"github.com/sells-group/audit-cli/internal/jsonx"
	"github.com/sells-group/audit-cli/internal/model"
)

const maxCompetitorsAnalyzed = 3

// Fetcher is the page-fetch surface the competitor stage needs.
type Fetcher interface {
	Fetch(ctx context.Context, targetURL string) (*model.PageSnapshot, error)
}

// CompetitorStage discovers named competitors via a search-augmented
// call, crawls a bounded sample of them, and produces named comparison
// critiques.
type CompetitorStage struct {
	caller      Caller
	fetch       Fetcher
	searchModel string
	textModel   string
}

// NewCompetitorStage creates a CompetitorStage.
func NewCompetitorStage(caller Caller, fetch Fetcher, searchModel, textModel string) *CompetitorStage {
	return &CompetitorStage{caller: caller, fetch: fetch, searchModel: searchModel, textModel: textModel}
}

const discoverPrompt = `Find 3-5 direct competitors of this business:

Company: %s
Industry: %s (%s)
Location: %s
Website: %s

Only include real companies with working websites. Exclude the company itself and generic directories.

Return a JSON object only: {"competitors": [{"name": "<company name>", "url": "<https website url>"}]}`

var discoverSchema = jsonx.Schema{Fields: map[string]jsonx.FieldSpec{
	"competitors": {Type: jsonx.TypeArray, Required: true, MinItems: 1},
}}

// Run executes the two-phase competitor stage. It returns nil when zero
// competitors could be discovered or zero analyzed.
func (s *CompetitorStage) Run(ctx context.Context, siteURL string, profile *model.ExtractionProfile, class *model.IndustryClassification, pages []*model.PageSnapshot, tier model.DepthTier) *model.CompetitorReport {
	if s == nil || s.caller == nil {
		return nil
	}

	discovered, sources := s.discover(ctx, siteURL, profile, class)
	if len(discovered) == 0 {
		zap.L().Warn("critique: no competitors discovered", zap.String("url", siteURL))
		return nil
	}

	var analyzed []model.Competitor
	for _, comp := range discovered {
		if len(analyzed) >= maxCompetitorsAnalyzed {
			break
		}
		checklist, ok := s.analyzeCompetitor(ctx, comp.URL, tier)
		if !ok {
			zap.L().Warn("critique: competitor crawl failed, skipping",
				zap.String("competitor", comp.Name), zap.String("url", comp.URL))
			continue
		}
		comp.Checklist = checklist
		comp.Analyzed = true
		analyzed = append(analyzed, comp)
	}
	if len(analyzed) == 0 {
		zap.L().Warn("critique: no competitors could be analyzed", zap.String("url", siteURL))
		return nil
	}

	target := TargetChecklist(profile, pages)
	report := &model.CompetitorReport{
		Competitors: analyzed,
		Target:      target,
		Critiques:   s.compare(ctx, target, analyzed),
		Sources:     sources,
	}
	return report
}

func (s *CompetitorStage) discover(ctx context.Context, siteURL string, profile *model.ExtractionProfile, class *model.IndustryClassification) ([]model.Competitor, []string) {
	name, location := "unknown", "unknown"
	if profile != nil && profile.CompanyInfo != nil {
		if profile.CompanyInfo.Name != "" {
			name = profile.CompanyInfo.Name
		}
		if profile.CompanyInfo.Location != "" {
			location = profile.CompanyInfo.Location
		}
	}
	category, niche := "unknown", ""
	if class != nil {
		category, niche = class.Category, class.Niche
	}

	ownDomain := fetcher.RegistrableDomain(siteURL)
	result, err := s.caller.Call(ctx, ai.CallRequest{
		Stage:                "competitor_discover",
		Model:                s.searchModel,
		Prompt:               fmt.Sprintf(discoverPrompt, name, category, niche, location, siteURL),
		EnableSearch:         true,
		SearchExcludeDomains: []string{ownDomain},
		MaxTokens:            1024,
	})
	if err != nil {
		zap.L().Warn("critique: competitor discovery failed", zap.Error(err))
		return nil, nil
	}

	obj, err := jsonx.ExtractObject(result.Text)
	if err != nil {
		return nil, nil
	}
	res := discoverSchema.Validate(obj)
	arr, _ := res.Data["competitors"].([]any)

	var out []model.Competitor
	for _, item := range arr {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		compName, _ := m["name"].(string)
		compURL, _ := m["url"].(string)
		normalized, err := fetcher.NormalizeURL(compURL)
		if err != nil || compName == "" {
			continue
		}
		if fetcher.RegistrableDomain(normalized) == ownDomain {
			continue
		}
		out = append(out, model.Competitor{Name: strings.TrimSpace(compName), URL: normalized})
		if len(out) == 5 {
			break
		}
	}
	return out, result.Citations
}

// analyzeCompetitor crawls a competitor at a bounded depth: home page
// only for the shallowest tier, home plus services and contact pages for
// deeper tiers.
func (s *CompetitorStage) analyzeCompetitor(ctx context.Context, compURL string, tier model.DepthTier) (model.FeatureChecklist, bool) {
	if s.fetch == nil {
		return model.FeatureChecklist{}, false
	}

	home, err := s.fetch.Fetch(ctx, compURL)
	if err != nil || home == nil {
		return model.FeatureChecklist{}, false
	}
	pages := []*model.PageSnapshot{home}

	if tier > model.DepthQuick {
		links := fetcher.ExtractLinks(home.HTML, compURL)
		for _, link := range links {
			kind := fetcher.ClassifyPage(link, "")
			if kind != model.PageServices && kind != model.PageContact {
				continue
			}
			sub, err := s.fetch.Fetch(ctx, link)
			if err == nil && sub != nil {
				sub.Kind = kind
				pages = append(pages, sub)
			}
			if len(pages) >= 3 {
				break
			}
		}
	}

	return checklistFromPages(pages), true
}

var pricingRe = regexp.MustCompile(`(?i)\b(pricing|price list|plans)\b|\$\d|per month|/mo\b`)
var testimonialRe = regexp.MustCompile(`(?i)\b(testimonial|what our (clients|customers) say|5-star|reviews?)\b`)
var liveChatRe = regexp.MustCompile(`(?i)intercom|drift\.com|tawk\.to|livechat|zendesk|crisp\.chat|live chat`)
var caseStudyRe = regexp.MustCompile(`(?i)\b(case stud|success stor|our work|portfolio)`)

// checklistFromPages derives the feature checklist from crawled pages.
func checklistFromPages(pages []*model.PageSnapshot) model.FeatureChecklist {
	var text, html strings.Builder
	var candidates []model.ContactCandidate
	for _, page := range pages {
		if page == nil {
			continue
		}
		text.WriteString(page.Text)
		text.WriteString("\n")
		html.WriteString(page.HTML)
		candidates = append(candidates, contact.ExtractCandidates(page)...)
	}
	corpus := text.String()
	rawHTML := html.String()

	hasEmail, hasPhone := false, false
	for _, c := range candidates {
		switch c.Kind {
		case model.ContactEmail:
			hasEmail = true
		case model.ContactPhone:
			hasPhone = true
		}
	}

	return model.FeatureChecklist{
		PricingVisible:  pricingRe.MatchString(corpus),
		Testimonials:    testimonialRe.MatchString(corpus),
		LiveChat:        liveChatRe.MatchString(rawHTML) || liveChatRe.MatchString(corpus),
		CaseStudies:     caseStudyRe.MatchString(corpus),
		ContactComplete: hasEmail && hasPhone,
	}
}

// TargetChecklist derives the target site's own checklist from its
// profile and crawled pages.
func TargetChecklist(profile *model.ExtractionProfile, pages []*model.PageSnapshot) model.FeatureChecklist {
	checklist := checklistFromPages(pages)

	if profile != nil {
		if profile.BusinessIntel != nil && profile.BusinessIntel.PricingVisible {
			checklist.PricingVisible = true
		}
		if len(profile.Testimonials) > 0 {
			checklist.Testimonials = true
		}
		if profile.ContactInfo != nil && profile.ContactInfo.Email != "" && profile.ContactInfo.Phone != "" {
			checklist.ContactComplete = true
		}
	}
	return checklist
}

const comparePrompt = `Compare this business's website features against its competitors.

Target site features: %s

Competitors:
%s

List 2-3 specific critiques of the target site, each naming at least one competitor and the feature gap (for example: "Unlike <competitor>, the site shows no pricing").

Return a JSON object only: {"critiques": ["<critique>", ...]}`

func (s *CompetitorStage) compare(ctx context.Context, target model.FeatureChecklist, competitors []model.Competitor) []string {
	var lines []string
	for _, comp := range competitors {
		lines = append(lines, fmt.Sprintf("- %s (%s): %s", comp.Name, comp.URL, describeChecklist(comp.Checklist)))
	}

	result, err := s.caller.Call(ctx, ai.CallRequest{
		Stage:     "critique_competitor",
		Model:     s.textModel,
		Prompt:    fmt.Sprintf(comparePrompt, describeChecklist(target), strings.Join(lines, "\n")),
		MaxTokens: 1024,
	})
	if err != nil {
		zap.L().Warn("critique: competitor comparison failed", zap.Error(err))
		return nil
	}

	critiques := parseCritiqueList(result.Text)
	if len(critiques) > 3 {
		critiques = critiques[:3]
	}
	return critiques
}

func describeChecklist(c model.FeatureChecklist) string {
	item := func(label string, has bool) string {
		if has {
			return label + ": yes"
		}
		return label + ": no"
	}
	return strings.Join([]string{
		item("pricing visible", c.PricingVisible),
		item("testimonials", c.Testimonials),
		item("live chat", c.LiveChat),
		item("case studies", c.CaseStudies),
		item("contact complete", c.ContactComplete),
	}, ", ")
}
