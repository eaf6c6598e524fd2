package critique

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/audit-cli/internal/ai"
	"github.com/sells-group/audit-cli/internal/jsonx"
	"github.com/sells-group/audit-cli/internal/model"
)

// categoryPattern is one row of the deterministic fallback table. The
// table runs synchronously with no network when the AI call fails.
type categoryPattern struct {
	category string
	niche    string
	re       *regexp.Regexp
}

var categoryTable = []categoryPattern{
	{"Home Services", "HVAC", regexp.MustCompile(`(?i)\b(hvac|heating|cooling|air condition)`)},
	{"Home Services", "Plumbing", regexp.MustCompile(`(?i)\b(plumb|drain|water heater)`)},
	{"Home Services", "Roofing", regexp.MustCompile(`(?i)\b(roof|shingle|gutter)`)},
	{"Home Services", "Electrical", regexp.MustCompile(`(?i)\b(electrician|electrical contractor|wiring)`)},
	{"Construction", "General Contracting", regexp.MustCompile(`(?i)\b(construction|general contractor|remodel|renovation)`)},
	{"Legal", "Law Firm", regexp.MustCompile(`(?i)\b(attorney|law firm|legal services|lawyer)`)},
	{"Healthcare", "Medical Practice", regexp.MustCompile(`(?i)\b(clinic|medical|dental|dentist|physician|therapy)`)},
	{"Professional Services", "Accounting", regexp.MustCompile(`(?i)\b(accounting|bookkeep|tax prep|cpa)\b`)},
	{"Professional Services", "Marketing Agency", regexp.MustCompile(`(?i)\b(marketing agency|seo services|digital marketing|advertising agency)`)},
	{"Technology", "Software", regexp.MustCompile(`(?i)\b(software|saas|app development|platform)`)},
	{"Technology", "IT Services", regexp.MustCompile(`(?i)\b(managed it|it support|network support|cybersecurity)`)},
	{"Retail", "E-commerce", regexp.MustCompile(`(?i)\b(shop|store|cart|e-?commerce)\b`)},
	{"Hospitality", "Restaurant", regexp.MustCompile(`(?i)\b(restaurant|menu|catering|dining)\b`)},
	{"Real Estate", "Brokerage", regexp.MustCompile(`(?i)\b(real estate|realtor|property management|listings)`)},
	{"Manufacturing", "Industrial", regexp.MustCompile(`(?i)\b(manufactur|industrial|fabricat|machining)`)},
	{"Automotive", "Auto Services", regexp.MustCompile(`(?i)\b(auto repair|car dealer|automotive|tire)`)},
	{"Finance", "Financial Services", regexp.MustCompile(`(?i)\b(insurance|mortgage|lending|financial advis|wealth)`)},
	{"Education", "Training", regexp.MustCompile(`(?i)\b(school|academy|training|course|tutoring)`)},
	{"Fitness", "Gym/Studio", regexp.MustCompile(`(?i)\b(gym|fitness|yoga|crossfit|personal train)`)},
	{"Nonprofit", "Charity", regexp.MustCompile(`(?i)\b(nonprofit|non-profit|donat|charity|foundation)`)},
}

var classifySchema = jsonx.Schema{Fields: map[string]jsonx.FieldSpec{
	"category":   {Type: jsonx.TypeString, Required: true},
	"niche":      {Type: jsonx.TypeString},
	"confidence": {Type: jsonx.TypeString},
}}

const classifyPrompt = `Classify the business described by this website text into a broad industry category and a specific niche.

%s

Return a JSON object only: {"category": "<broad category>", "niche": "<specific niche>", "confidence": "high"|"medium"|"low"}`

// Classify ranks the site's industry with one AI call, falling back to
// the keyword table when the call or its output fails. Never errors.
func Classify(ctx context.Context, caller Caller, cheapModel, corpus string) *model.IndustryClassification {
	sample := corpus
	if len(sample) > 8192 {
		sample = sample[:8192]
	}

	if caller != nil {
		result, err := caller.Call(ctx, ai.CallRequest{
			Stage:     "industry_classify",
			Model:     cheapModel,
			Prompt:    fmt.Sprintf(classifyPrompt, sample),
			MaxTokens: 256,
		})
		if err == nil {
			if c := parseClassification(result.Text); c != nil {
				return c
			}
		} else {
			zap.L().Warn("critique: industry classification call failed, using keyword fallback", zap.Error(err))
		}
	}

	return keywordClassify(corpus)
}

func parseClassification(text string) *model.IndustryClassification {
	obj, err := jsonx.ExtractObject(text)
	if err != nil {
		return nil
	}
	res := classifySchema.Validate(obj)
	if !res.IsValid {
		return nil
	}

	c := &model.IndustryClassification{Source: "ai"}
	c.Category, _ = res.Data["category"].(string)
	c.Niche, _ = res.Data["niche"].(string)
	c.Confidence, _ = res.Data["confidence"].(string)
	if c.Category == "" {
		return nil
	}
	switch c.Confidence {
	case "high", "medium", "low":
	default:
		c.Confidence = "medium"
	}
	return c
}

// keywordClassify matches the corpus against the fixed category table.
// First match wins; an unmatched corpus classifies as General Business.
func keywordClassify(corpus string) *model.IndustryClassification {
	for _, row := range categoryTable {
		if row.re.MatchString(corpus) {
			return &model.IndustryClassification{
				Category:   row.category,
				Niche:      row.niche,
				Confidence: "low",
				Source:     "keyword",
			}
		}
	}
	return &model.IndustryClassification{
		Category:   "General Business",
		Confidence: "low",
		Source:     "keyword",
	}
}

const industryCritiquePrompt = `This website belongs to a business classified as: %s (%s).

Website text:
%s

List 2-4 specific ways this site falls short of what customers in this industry expect from a website. Be concrete and reference the industry.

Return a JSON object only: {"critiques": ["<critique>", ...]}`

var critiqueListSchema = jsonx.Schema{Fields: map[string]jsonx.FieldSpec{
	"critiques": {Type: jsonx.TypeArray, Required: true, MinItems: 1},
}}

// IndustryCritiques produces industry-fit critiques for an already
// classified site. Failures degrade to nil. The optional quality checker
// screens each critique for filler.
func IndustryCritiques(ctx context.Context, caller Caller, quality *jsonx.QualityChecker, textModel string, class *model.IndustryClassification, corpus string) []string {
	if caller == nil || class == nil {
		return nil
	}
	sample := corpus
	if len(sample) > 16384 {
		sample = sample[:16384]
	}

	result, err := caller.Call(ctx, ai.CallRequest{
		Stage:  "critique_industry",
		Model:  textModel,
		Prompt: fmt.Sprintf(industryCritiquePrompt, class.Category, class.Niche, sample),
	})
	if err != nil {
		zap.L().Warn("critique: industry stage failed", zap.Error(err))
		return nil
	}

	critiques := parseCritiqueList(result.Text)
	for i, c := range critiques {
		critiques[i] = quality.Check(ctx, "critique_industry", "critique", c)
	}
	return critiques
}

// parseCritiqueList recovers a critique array from model output, falling
// back to the heuristic partial reader when the JSON never parses.
func parseCritiqueList(text string) []string {
	if obj, err := jsonx.ExtractObject(text); err == nil {
		res := critiqueListSchema.Validate(obj)
		if arr, ok := res.Data["critiques"].([]any); ok {
			var out []string
			for _, item := range arr {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					out = append(out, strings.TrimSpace(s))
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}

	if partial := jsonx.ExtractPartial(text); partial != nil && len(partial.Critiques) > 0 {
		return partial.Critiques
	}
	return nil
}
