package model

// DepthTier controls how many pages of a site are crawled.
type DepthTier int

const (
	DepthQuick    DepthTier = 1  // homepage only
	DepthStandard DepthTier = 3  // homepage + 2 key pages
	DepthDeep     DepthTier = 10 // full shallow crawl
)

// MaxPages returns the page cap for the tier. Unknown tiers are clamped
// to the nearest defined tier.
func (d DepthTier) MaxPages() int {
	switch {
	case d <= DepthQuick:
		return 1
	case d <= DepthStandard:
		return 3
	default:
		return 10
	}
}

// ModuleFlags toggles the optional critique modules. The basic critique
// and extraction always run.
type ModuleFlags struct {
	Industry   bool `json:"industry"`
	SEO        bool `json:"seo"`
	Visual     bool `json:"visual"`
	Competitor bool `json:"competitor"`
}

// AllModules returns flags with every critique module enabled.
func AllModules() ModuleFlags {
	return ModuleFlags{Industry: true, SEO: true, Visual: true, Competitor: true}
}

// ModelSelection names the AI models used by a run.
type ModelSelection struct {
	TextModel   string `json:"text_model"`
	VisionModel string `json:"vision_model"`
	CheapModel  string `json:"cheap_model"`
}

// AnalysisRequest describes one analysis run. Immutable once the run starts.
type AnalysisRequest struct {
	URL     string         `json:"url"`
	Modules ModuleFlags    `json:"modules"`
	Depth   DepthTier      `json:"depth"`
	Models  ModelSelection `json:"models"`
}
