package critique

import (
	"context"
	"encoding/base64"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/audit-cli/internal/ai"
	"github.com/sells-group/audit-cli/internal/model"
)

const visualPrompt = `You are reviewing a screenshot of a business website page. List 1-4 specific visual design problems (layout, readability, hierarchy, imagery, calls to action). Only report problems actually visible in the screenshot.

Return a JSON object only: {"critiques": ["<critique>", ...]}`

// Visual runs one vision call per screenshotted page, pools the
// critiques, de-duplicates, and caps the list. A page-level failure is
// skipped, not fatal. Calls run concurrently; pooling stays in page
// order so the output is deterministic.
func Visual(ctx context.Context, caller Caller, visionModel string, pages []*model.PageSnapshot, maxPages, maxIssues int) []string {
	if caller == nil {
		return nil
	}
	if maxPages <= 0 {
		maxPages = 3
	}
	if maxIssues <= 0 {
		maxIssues = 8
	}

	var shots []*model.PageSnapshot
	for _, page := range pages {
		if len(shots) >= maxPages {
			break
		}
		if page == nil || len(page.Screenshot) == 0 {
			continue
		}
		shots = append(shots, page)
	}

	perPage := make([][]string, len(shots))
	var g errgroup.Group
	for i, page := range shots {
		g.Go(func() error {
			result, err := caller.Call(ctx, ai.CallRequest{
				Stage:          "critique_visual",
				Model:          visionModel,
				Prompt:         visualPrompt,
				ImageB64:       base64.StdEncoding.EncodeToString(page.Screenshot),
				ImageMediaType: "image/png",
				MaxTokens:      1024,
			})
			if err != nil {
				zap.L().Warn("critique: visual call failed for page, skipping",
					zap.String("url", page.URL), zap.Error(err))
				return nil
			}
			perPage[i] = parseCritiqueList(result.Text)
			return nil
		})
	}
	_ = g.Wait()

	var pooled []string
	seen := map[string]bool{}
	for _, critiques := range perPage {
		for _, c := range critiques {
			key := dedupeKey(c)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			pooled = append(pooled, c)
		}
	}

	if len(pooled) > maxIssues {
		pooled = pooled[:maxIssues]
	}
	return pooled
}

// dedupeKey normalizes a critique so near-identical statements from
// different pages collapse to one.
func dedupeKey(critique string) string {
	lower := strings.ToLower(strings.TrimSpace(critique))
	lower = strings.TrimRight(lower, ".!")
	return strings.Join(strings.Fields(lower), " ")
}
