package jsonx

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/audit-cli/internal/ai"
)

// Caller is the gateway surface the quality pass needs.
type Caller interface {
	Call(ctx context.Context, req ai.CallRequest) (*ai.CallResult, error)
}

// bannedJargon are filler terms that usually mean the model padded an
// answer instead of extracting one.
var bannedJargon = []string{
	"synergy", "cutting-edge", "best-in-class", "revolutionary",
	"game-changing", "world-class", "industry-leading", "next-generation",
}

// seoSpamRe matches names that read like keyword-stuffed SEO titles
// rather than extracted facts.
var seoSpamRe = regexp.MustCompile(`(?i)\b(best|top|#1|number one|leading)\b.*\b(services?|solutions?|company|provider|agency)\b`)

// Suspicious reports whether a model-produced text shows the heuristic
// signals that justify spending a cheap-model quality check.
func Suspicious(text string) (bool, []string) {
	var reasons []string
	trimmed := strings.TrimSpace(text)

	if len(trimmed) > 0 && len(trimmed) < 12 {
		reasons = append(reasons, "too short")
	}
	lower := strings.ToLower(trimmed)
	for _, term := range bannedJargon {
		if strings.Contains(lower, term) {
			reasons = append(reasons, "jargon: "+term)
		}
	}
	if seoSpamRe.MatchString(trimmed) {
		reasons = append(reasons, "seo-spam phrasing")
	}

	return len(reasons) > 0, reasons
}

// QualityChecker runs the optional, cost-gated secondary quality pass.
type QualityChecker struct {
	caller Caller
	model  string
}

// NewQualityChecker creates a QualityChecker using the given cheap model.
func NewQualityChecker(caller Caller, model string) *QualityChecker {
	return &QualityChecker{caller: caller, model: model}
}

var qualitySchema = Schema{Fields: map[string]FieldSpec{
	"is_quality_good": {Type: TypeBool, Required: true},
	"issues":          {Type: TypeArray},
	"fixed_version":   {Type: TypeString},
}}

const qualityPrompt = `Review this extracted value for quality problems (generic filler, SEO-spam phrasing, placeholder text, wrong language).

Field: %s
Value: %s

Return a JSON object: {"is_quality_good": <bool>, "issues": ["<issue>", ...], "fixed_version": "<corrected value, only if a confident fix exists>"}`

// Check inspects a single field value and returns a possibly corrected
// version. It only calls the model when Suspicious fires. The pass fails
// open: any checker failure keeps the original value unmodified.
func (q *QualityChecker) Check(ctx context.Context, stage, field, value string) string {
	if q == nil || q.caller == nil || value == "" {
		return value
	}
	suspicious, reasons := Suspicious(value)
	if !suspicious {
		return value
	}

	zap.L().Debug("jsonx: quality check triggered",
		zap.String("stage", stage),
		zap.String("field", field),
		zap.Strings("reasons", reasons),
	)

	resp, err := q.caller.Call(ctx, ai.CallRequest{
		Stage:     stage + "_quality",
		Model:     q.model,
		Prompt:    fmt.Sprintf(qualityPrompt, field, value),
		MaxTokens: 512,
	})
	if err != nil {
		zap.L().Warn("jsonx: quality check call failed, keeping original",
			zap.String("field", field), zap.Error(err))
		return value
	}

	obj, err := ExtractObject(resp.Text)
	if err != nil {
		return value
	}
	res := qualitySchema.Validate(obj)
	if !res.IsValid {
		return value
	}

	if good, _ := res.Data["is_quality_good"].(bool); good {
		return value
	}
	if fixed, _ := res.Data["fixed_version"].(string); strings.TrimSpace(fixed) != "" {
		zap.L().Info("jsonx: quality check replaced value",
			zap.String("stage", stage),
			zap.String("field", field),
		)
		return strings.TrimSpace(fixed)
	}
	return value
}
