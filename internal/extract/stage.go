package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/audit-cli/internal/ai"
	"github.com/sells-group/audit-cli/internal/contact"
	"github.com/sells-group/audit-cli/internal/jsonx"
	"github.com/sells-group/audit-cli/internal/model"
)

// Caller is the gateway surface the extraction stage needs.
type Caller interface {
	Call(ctx context.Context, req ai.CallRequest) (*ai.CallResult, error)
}

// Extractor produces one profile per run.
type Extractor struct {
	caller         Caller
	quality        *jsonx.QualityChecker
	maxPromptBytes int
}

// NewExtractor creates an Extractor. quality may be nil to skip the
// secondary quality pass.
func NewExtractor(caller Caller, quality *jsonx.QualityChecker, maxPromptBytes int) *Extractor {
	if maxPromptBytes <= 0 {
		maxPromptBytes = 48 * 1024
	}
	return &Extractor{caller: caller, quality: quality, maxPromptBytes: maxPromptBytes}
}

// Extract runs one model call over all crawled pages, validates the
// response tolerantly, and merges in structured-data and resolved-contact
// facts. It only errors when the model call itself fails and no structured
// data exists to fall back on.
func (e *Extractor) Extract(ctx context.Context, textModel, siteURL string, pages []*model.PageSnapshot, resolved *model.ResolvedContact) (*model.ExtractionProfile, *model.ExtractionMeta, error) {
	corpus := BuildCorpus(pages, e.maxPromptBytes)
	orgs := collectOrgs(pages)
	meta := &model.ExtractionMeta{Model: textModel, StructuredDataUsed: len(orgs) > 0}

	var profile *model.ExtractionProfile

	result, err := e.caller.Call(ctx, ai.CallRequest{
		Stage:  "extraction",
		Model:  textModel,
		System: systemPrompt,
		Prompt: corpus,
	})
	if err == nil {
		meta.InputTokens = result.InputTokens
		meta.OutputTokens = result.OutputTokens
		profile = parseProfile(result.Text)
		if profile == nil {
			meta.FallbackUsed = true
			zap.L().Warn("extract: no parseable profile in model output",
				zap.String("url", siteURL))
		}
	} else {
		meta.FallbackUsed = true
		zap.L().Warn("extract: model call failed", zap.String("url", siteURL), zap.Error(err))
	}

	if profile == nil {
		if len(orgs) == 0 && resolved == nil {
			if err != nil {
				return nil, meta, eris.Wrap(err, "extract: call failed")
			}
			return nil, meta, eris.New("extract: no profile recovered")
		}
		profile = &model.ExtractionProfile{}
	}

	MergeStructured(profile, orgs)
	MergeContact(profile, resolved)
	DetectLanguage(profile, corpus)
	NormalizeContent(profile)

	if e.quality != nil && profile.CompanyInfo != nil {
		profile.CompanyInfo.Name = e.quality.Check(ctx, "extraction", "company_name", profile.CompanyInfo.Name)
		profile.CompanyInfo.Description = e.quality.Check(ctx, "extraction", "description", profile.CompanyInfo.Description)
	}

	return profile, meta, nil
}

// parseProfile recovers and validates a profile object from model text.
// Returns nil when nothing usable was recovered.
func parseProfile(text string) *model.ExtractionProfile {
	obj, err := jsonx.ExtractObject(text)
	if err != nil {
		return nil
	}

	res := profileSchema.Validate(obj)
	if len(res.Errors) > 0 {
		zap.L().Debug("extract: schema pruned fields", zap.Strings("errors", res.Errors))
	}
	if len(res.Data) == 0 {
		return nil
	}

	var profile model.ExtractionProfile
	if err := remarshal(res.Data, &profile); err != nil {
		return nil
	}
	if profileEmpty(&profile) {
		return nil
	}
	return &profile
}

func profileEmpty(p *model.ExtractionProfile) bool {
	return p.CompanyInfo == nil && p.ContactInfo == nil && p.SocialProfiles == nil &&
		p.TeamInfo == nil && p.ContentInfo == nil && p.BusinessIntel == nil &&
		len(p.TechStack) == 0 && len(p.Achievements) == 0 && len(p.Testimonials) == 0
}

// BuildCorpus concatenates page text into one prompt body, most valuable
// pages first, truncated to maxBytes on a rune boundary.
func BuildCorpus(pages []*model.PageSnapshot, maxBytes int) string {
	var b strings.Builder
	for _, page := range pages {
		if page == nil || strings.TrimSpace(page.Text) == "" {
			continue
		}
		fmt.Fprintf(&b, "=== PAGE: %s (%s)\n", page.URL, page.Kind)
		if page.Title != "" {
			fmt.Fprintf(&b, "Title: %s\n", page.Title)
		}
		b.WriteString(strings.TrimSpace(page.Text))
		b.WriteString("\n\n")
	}

	corpus := b.String()
	if len(corpus) <= maxBytes {
		return corpus
	}
	cut := maxBytes
	for cut > 0 && corpus[cut]&0xC0 == 0x80 {
		cut--
	}
	return corpus[:cut]
}

func collectOrgs(pages []*model.PageSnapshot) []contact.OrgData {
	var orgs []contact.OrgData
	for _, page := range pages {
		if page == nil || page.HTML == "" {
			continue
		}
		orgs = append(orgs, contact.ParseJSONLD(page.HTML)...)
	}
	return orgs
}
