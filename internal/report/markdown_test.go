package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/audit-cli/internal/model"
)

func fullResult() *model.AnalysisResult {
	result := &model.AnalysisResult{
		RunID: "run-1",
		URL:   "https://acme.com",
		Profile: model.ExtractionProfile{
			CompanyInfo: &model.CompanyInfo{
				Name:        "Acme Widgets",
				Description: "Industrial widget manufacturer",
				Location:    "Denver, CO",
			},
			SocialProfiles: &model.SocialProfiles{
				LinkedIn: "https://linkedin.com/company/acme",
			},
			BusinessIntel: &model.BusinessIntel{
				Services:  []string{"Widgets", "Gadgets"},
				ValueProp: "Widgets that last",
			},
			TechStack: []string{"WordPress"},
		},
		Contact: &model.ResolvedContact{
			Email: "sales@acme.com", EmailSource: model.SourceMailto, EmailConfidence: 0.75,
		},
		Industry: &model.IndustryClassification{Category: "Manufacturing", Niche: "Industrial"},
		Competitors: &model.CompetitorReport{
			Competitors: []model.Competitor{
				{Name: "Widget Co", URL: "https://widgetco.com",
					Checklist: model.FeatureChecklist{PricingVisible: true}, Analyzed: true},
			},
			Target:    model.FeatureChecklist{Testimonials: true},
			Critiques: []string{"Widget Co shows pricing; this site does not"},
		},
		Critiques: model.CritiqueSet{
			Basic:      []string{"No phone number anywhere on the site"},
			SEO:        []string{"No sitemap.xml found"},
			Competitor: []string{"Widget Co shows pricing; this site does not"},
		},
		Score:        model.ScoreBreakdown{Contact: 15, Identity: 15, Score: 62, Grade: "C"},
		PagesCrawled: 4,
		StartedAt:    time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		Duration:     42 * time.Second,
	}
	result.Cost.TotalCost = 0.1234
	return result
}

func TestWriteMarkdownFullResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, fullResult()))
	out := buf.String()

	assert.Contains(t, out, "# Website Audit: Acme Widgets")
	assert.Contains(t, out, "https://acme.com")
	assert.Contains(t, out, "**C** (62/100)")
	assert.Contains(t, out, "Manufacturing / Industrial")
	assert.Contains(t, out, "sales@acme.com")
	assert.Contains(t, out, "## Findings (3)")
	assert.Contains(t, out, "No sitemap.xml found")
	assert.Contains(t, out, "## Competitor Comparison")
	assert.Contains(t, out, "Widget Co")
	assert.Contains(t, out, "## Score Breakdown")
	assert.Contains(t, out, "$0.1234")
	assert.Contains(t, out, "https://linkedin.com/company/acme")
}

// A maximally degraded result still renders without panicking on nil
// sections.
func TestWriteMarkdownDegradedResult(t *testing.T) {
	t.Parallel()

	result := &model.AnalysisResult{
		URL:       "https://bare.com",
		Score:     model.ScoreBreakdown{Grade: "F"},
		Warnings:  []string{"extraction: provider down"},
		StartedAt: time.Now(),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, result))
	out := buf.String()

	assert.Contains(t, out, "# Website Audit: https://bare.com")
	assert.Contains(t, out, "No contact information could be found")
	assert.Contains(t, out, "No profile data could be extracted")
	assert.Contains(t, out, "No issues found")
	assert.Contains(t, out, "## Warnings")
	assert.Contains(t, out, "extraction: provider down")
	assert.NotContains(t, out, "Competitor Comparison")
}
