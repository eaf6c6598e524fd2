// Package grade turns an extracted profile into a 0-100 completeness
// score and a letter grade. The score measures how much the pipeline
// learned about the lead; critiques are informational and contribute
// nothing. Pure and deterministic: the same profile always grades the
// same.
package grade

import "github.com/sells-group/audit-cli/internal/model"

// Category weights. They sum to 100.
const (
	weightEmail       = 15
	weightPhone       = 10
	weightName        = 10
	weightDescription = 5
	weightLocation    = 5
	weightSocialEach  = 5
	weightSocialMax   = 15
	weightBlog        = 7
	weightPosts       = 4
	weightFreshness   = 4
	weightTeamSize    = 4
	weightTeamMembers = 6
	weightServices    = 4
	weightValueProp   = 4
	weightMarkets     = 2
	weightTech        = 5
)

// Grade bands are fixed cut points over the score.
const (
	bandA = 85
	bandB = 70
	bandC = 55
	bandD = 40
)

// Score computes the breakdown for a profile. A nil profile scores zero.
// Every field only ever adds points, so filling a previously-missing
// field can never lower the score.
func Score(profile *model.ExtractionProfile) model.ScoreBreakdown {
	var b model.ScoreBreakdown
	if profile == nil {
		b.Grade = Letter(0)
		return b
	}

	if profile.ContactInfo != nil {
		if profile.ContactInfo.Email != "" {
			b.Contact += weightEmail
		}
		if profile.ContactInfo.Phone != "" {
			b.Contact += weightPhone
		}
	}

	if profile.CompanyInfo != nil {
		info := profile.CompanyInfo
		if info.Name != "" {
			b.Identity += weightName
		}
		if info.Description != "" {
			b.Identity += weightDescription
		}
		if info.Location != "" || info.FoundingYear != "" {
			b.Identity += weightLocation
		}
	}

	b.Social = socialScore(profile.SocialProfiles)

	if profile.ContentInfo != nil {
		info := profile.ContentInfo
		if info.HasBlog {
			b.Content += weightBlog
		}
		if len(info.RecentPosts) > 0 {
			b.Content += weightPosts
		}
		if info.LastUpdated != "" {
			b.Content += weightFreshness
		}
	}

	if profile.TeamInfo != nil {
		if profile.TeamInfo.Size != "" {
			b.Team += weightTeamSize
		}
		if len(profile.TeamInfo.Members) > 0 {
			b.Team += weightTeamMembers
		}
	}

	if profile.BusinessIntel != nil {
		intel := profile.BusinessIntel
		if len(intel.Services) > 0 {
			b.Intel += weightServices
		}
		if intel.ValueProp != "" {
			b.Intel += weightValueProp
		}
		if len(intel.Markets) > 0 {
			b.Intel += weightMarkets
		}
	}

	if len(profile.TechStack) > 0 {
		b.Tech = weightTech
	}

	b.Score = b.Contact + b.Identity + b.Social + b.Content + b.Team + b.Intel + b.Tech
	b.Grade = Letter(b.Score)
	return b
}

func socialScore(sp *model.SocialProfiles) float64 {
	if sp == nil {
		return 0
	}
	count := 0
	for _, link := range []string{sp.LinkedIn, sp.Twitter, sp.Facebook, sp.Instagram, sp.YouTube} {
		if link != "" {
			count++
		}
	}
	count += len(sp.Other)

	score := float64(count * weightSocialEach)
	if score > weightSocialMax {
		score = weightSocialMax
	}
	return score
}

// Letter maps a score to its grade band.
func Letter(score float64) string {
	switch {
	case score >= bandA:
		return "A"
	case score >= bandB:
		return "B"
	case score >= bandC:
		return "C"
	case score >= bandD:
		return "D"
	default:
		return "F"
	}
}
