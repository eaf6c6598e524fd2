package model

import (
	"time"

	"github.com/sells-group/audit-cli/internal/cost"
)

// AnalysisResult is the full per-URL outcome: profile + critiques + score
// + cost + timing. A run always produces one, even under maximal
// degradation (empty critiques, nil contact, minimum grade).
type AnalysisResult struct {
	RunID        string                  `json:"run_id"`
	URL          string                  `json:"url"`
	Request      AnalysisRequest         `json:"request"`
	Profile      ExtractionProfile       `json:"profile"`
	Meta         ExtractionMeta          `json:"_meta"`
	Contact      *ResolvedContact        `json:"contact,omitempty"`
	Industry     *IndustryClassification `json:"industry,omitempty"`
	Competitors  *CompetitorReport       `json:"competitors,omitempty"`
	Critiques    CritiqueSet             `json:"critiques"`
	Score        ScoreBreakdown          `json:"score"`
	Cost         cost.Summary            `json:"cost"`
	PagesCrawled int                     `json:"pages_crawled"`
	Warnings     []string                `json:"warnings,omitempty"`
	StartedAt    time.Time               `json:"started_at"`
	Duration     time.Duration           `json:"duration"`
}
