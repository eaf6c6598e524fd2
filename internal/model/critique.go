package model

// CritiqueSet holds the short issue statements per category. Each category
// is independently producible and failable; a failed category is an empty
// list, never an error.
type CritiqueSet struct {
	Basic      []string `json:"basic,omitempty"`
	Industry   []string `json:"industry,omitempty"`
	SEO        []string `json:"seo,omitempty"`
	Visual     []string `json:"visual,omitempty"`
	Competitor []string `json:"competitor,omitempty"`
}

// Total returns the number of critiques across all categories.
func (c CritiqueSet) Total() int {
	return len(c.Basic) + len(c.Industry) + len(c.SEO) + len(c.Visual) + len(c.Competitor)
}

// IndustryClassification is the industry stage output.
type IndustryClassification struct {
	Category   string `json:"category"`
	Niche      string `json:"niche,omitempty"`
	Confidence string `json:"confidence"` // high, medium, low
	Source     string `json:"source"`     // ai or keyword
}

// FeatureChecklist is the small per-site feature comparison used by the
// competitor stage.
type FeatureChecklist struct {
	PricingVisible  bool `json:"pricing_visible"`
	Testimonials    bool `json:"testimonials"`
	LiveChat        bool `json:"live_chat"`
	CaseStudies     bool `json:"case_studies"`
	ContactComplete bool `json:"contact_complete"`
}

// Competitor is one discovered and analyzed competitor.
type Competitor struct {
	Name      string           `json:"name"`
	URL       string           `json:"url"`
	Checklist FeatureChecklist `json:"checklist"`
	Analyzed  bool             `json:"analyzed"`
}

// CompetitorReport is the competitor stage output. Nil when zero
// competitors could be discovered or analyzed. Sources lists the search
// citations behind the discovery call, kept for auditability.
type CompetitorReport struct {
	Competitors []Competitor     `json:"competitors"`
	Target      FeatureChecklist `json:"target"`
	Critiques   []string         `json:"critiques"`
	Sources     []string         `json:"sources,omitempty"`
}
