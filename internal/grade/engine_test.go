package grade

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/audit-cli/internal/model"
)

func fullProfile() *model.ExtractionProfile {
	return &model.ExtractionProfile{
		CompanyInfo: &model.CompanyInfo{
			Name: "Acme", Description: "Widgets", Location: "Denver, CO", FoundingYear: "2015",
		},
		ContactInfo: &model.ContactInfo{Email: "a@acme.com", Phone: "555-0100"},
		SocialProfiles: &model.SocialProfiles{
			LinkedIn: "l", Twitter: "t", Facebook: "f",
		},
		TeamInfo: &model.TeamInfo{Size: "10", Members: []model.TeamMember{{Name: "Jane"}}},
		ContentInfo: &model.ContentInfo{
			HasBlog:     true,
			RecentPosts: []model.ContentPost{{Title: "Post"}},
			LastUpdated: "2024-06-10",
		},
		BusinessIntel: &model.BusinessIntel{
			Services: []string{"widgets"}, Markets: []string{"US"}, ValueProp: "fast",
		},
		TechStack: []string{"react"},
	}
}

func TestScoreFullProfile(t *testing.T) {
	t.Parallel()

	b := Score(fullProfile())
	assert.InDelta(t, 100, b.Score, 1e-9)
	assert.Equal(t, "A", b.Grade)
	assert.InDelta(t, 25, b.Contact, 1e-9)
	assert.InDelta(t, 20, b.Identity, 1e-9)
	assert.InDelta(t, 15, b.Social, 1e-9)
	assert.InDelta(t, 15, b.Content, 1e-9)
	assert.InDelta(t, 10, b.Team, 1e-9)
	assert.InDelta(t, 10, b.Intel, 1e-9)
	assert.InDelta(t, 5, b.Tech, 1e-9)
}

func TestScoreNilProfile(t *testing.T) {
	t.Parallel()

	b := Score(nil)
	assert.Zero(t, b.Score)
	assert.Equal(t, "F", b.Grade)
}

// Adding fields one at a time must never lower the score.
func TestScoreMonotonic(t *testing.T) {
	t.Parallel()

	steps := []func(*model.ExtractionProfile){
		func(p *model.ExtractionProfile) { p.ContactInfo = &model.ContactInfo{Email: "a@acme.com"} },
		func(p *model.ExtractionProfile) { p.ContactInfo.Phone = "555-0100" },
		func(p *model.ExtractionProfile) { p.CompanyInfo = &model.CompanyInfo{Name: "Acme"} },
		func(p *model.ExtractionProfile) { p.CompanyInfo.Description = "Widgets" },
		func(p *model.ExtractionProfile) { p.CompanyInfo.Location = "Denver" },
		func(p *model.ExtractionProfile) { p.SocialProfiles = &model.SocialProfiles{LinkedIn: "l"} },
		func(p *model.ExtractionProfile) { p.SocialProfiles.Twitter = "t" },
		func(p *model.ExtractionProfile) { p.ContentInfo = &model.ContentInfo{HasBlog: true} },
		func(p *model.ExtractionProfile) { p.ContentInfo.LastUpdated = "2024-01-01" },
		func(p *model.ExtractionProfile) { p.TeamInfo = &model.TeamInfo{Members: []model.TeamMember{{Name: "J"}}} },
		func(p *model.ExtractionProfile) { p.BusinessIntel = &model.BusinessIntel{Services: []string{"s"}} },
		func(p *model.ExtractionProfile) { p.TechStack = []string{"go"} },
	}

	profile := &model.ExtractionProfile{}
	prev := Score(profile).Score
	for i, step := range steps {
		step(profile)
		next := Score(profile).Score
		assert.GreaterOrEqual(t, next, prev, "step %d lowered the score", i)
		prev = next
	}
}

func TestScoreDeterministic(t *testing.T) {
	t.Parallel()

	p := fullProfile()
	assert.Equal(t, Score(p), Score(p))
}

func TestLetterBands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score float64
		want  string
	}{
		{100, "A"}, {85, "A"}, {84, "B"}, {70, "B"}, {69, "C"},
		{55, "C"}, {54, "D"}, {40, "D"}, {39, "F"}, {0, "F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Letter(tt.score), "score %v", tt.score)
	}
}

func TestSocialScoreCapped(t *testing.T) {
	t.Parallel()

	sp := &model.SocialProfiles{
		LinkedIn: "l", Twitter: "t", Facebook: "f", Instagram: "i", YouTube: "y",
		Other: []string{"a", "b"},
	}
	assert.InDelta(t, 15, socialScore(sp), 1e-9)
}
