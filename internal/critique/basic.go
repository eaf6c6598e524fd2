// Package critique implements the per-category critique stages. Every
// stage is independently optional and independently failable; a failed
// stage degrades to an empty list with a logged warning, never an error.
package critique

import (
	"context"

	"github.com/sells-group/audit-cli/internal/ai"
	"github.com/sells-group/audit-cli/internal/model"
)

// Caller is the gateway surface the AI-backed stages need.
type Caller interface {
	Call(ctx context.Context, req ai.CallRequest) (*ai.CallResult, error)
}

// Basic derives always-on critiques from gaps in the extracted profile.
// Deterministic; no network.
func Basic(profile *model.ExtractionProfile) []string {
	if profile == nil {
		return []string{"No structured profile could be extracted from the site."}
	}

	var out []string

	if profile.ContactInfo == nil || profile.ContactInfo.Email == "" {
		out = append(out, "No contact email could be found anywhere on the site.")
	}
	if profile.ContactInfo == nil || profile.ContactInfo.Phone == "" {
		out = append(out, "No phone number is published on the site.")
	}
	if profile.CompanyInfo == nil || profile.CompanyInfo.Description == "" {
		out = append(out, "The site lacks a clear description of what the company does.")
	}
	if !hasSocialPresence(profile.SocialProfiles) {
		out = append(out, "No social media profiles are linked from the site.")
	}
	if profile.ContentInfo == nil || !profile.ContentInfo.HasBlog {
		out = append(out, "The site has no blog or news section.")
	}
	if len(profile.Testimonials) == 0 {
		out = append(out, "No customer testimonials are displayed.")
	}
	if profile.BusinessIntel == nil || !profile.BusinessIntel.PricingVisible {
		out = append(out, "No pricing information is visible to prospects.")
	}

	return out
}

func hasSocialPresence(sp *model.SocialProfiles) bool {
	if sp == nil {
		return false
	}
	return sp.LinkedIn != "" || sp.Twitter != "" || sp.Facebook != "" ||
		sp.Instagram != "" || sp.YouTube != "" || len(sp.Other) > 0
}
