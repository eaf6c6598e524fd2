package extract

import (
	"encoding/json"
	"net/url"
	"sort"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/pemistahl/lingua-go"
	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/audit-cli/internal/contact"
	"github.com/sells-group/audit-cli/internal/model"
)

// MergeStructured overlays JSON-LD facts onto the profile. Structured data
// outranks model output for identity fields; it fills social links the
// model missed from sameAs.
func MergeStructured(profile *model.ExtractionProfile, orgs []contact.OrgData) {
	if profile == nil || len(orgs) == 0 {
		return
	}
	org := orgs[0]

	if profile.CompanyInfo == nil {
		profile.CompanyInfo = &model.CompanyInfo{}
	}
	info := profile.CompanyInfo

	if org.Name != "" {
		info.Name = normalizeName(org.Name)
	}
	if info.Description == "" && org.Description != "" {
		info.Description = org.Description
	}
	if year := foundingYear(org.FoundingDate); year != "" {
		info.FoundingYear = year
	}
	if loc := formatLocation(org); loc != "" {
		info.Location = loc
	}

	for _, link := range org.SameAs {
		addSocialLink(profile, link)
	}
}

// MergeContact fills contact gaps from the resolver. Values the model (or
// structured data) already produced are kept.
func MergeContact(profile *model.ExtractionProfile, resolved *model.ResolvedContact) {
	if profile == nil || resolved == nil {
		return
	}
	if profile.ContactInfo == nil {
		profile.ContactInfo = &model.ContactInfo{}
	}
	if profile.ContactInfo.Email == "" && resolved.Email != "" {
		profile.ContactInfo.Email = resolved.Email
	}
	if profile.ContactInfo.Phone == "" && resolved.Phone != "" {
		profile.ContactInfo.Phone = resolved.Phone
	}
}

var languageDetector = lingua.NewLanguageDetectorBuilder().
	FromLanguages(
		lingua.English, lingua.Spanish, lingua.French, lingua.German,
		lingua.Portuguese, lingua.Italian, lingua.Dutch,
	).
	Build()

// DetectLanguage fills ContentInfo.Language from the crawled text when the
// model didn't report one. Detection runs on a bounded sample.
func DetectLanguage(profile *model.ExtractionProfile, corpus string) {
	if profile == nil || corpus == "" {
		return
	}
	if profile.ContentInfo != nil && profile.ContentInfo.Language != "" {
		return
	}

	sample := corpus
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	detected, ok := languageDetector.DetectLanguageOf(sample)
	if !ok {
		return
	}
	if profile.ContentInfo == nil {
		profile.ContentInfo = &model.ContentInfo{}
	}
	profile.ContentInfo.Language = strings.ToLower(detected.IsoCode639_1().String())
}

// NormalizeContent parses post dates into ISO form and derives LastUpdated
// from the newest post when the model left it empty.
func NormalizeContent(profile *model.ExtractionProfile) {
	if profile == nil || profile.ContentInfo == nil {
		return
	}
	info := profile.ContentInfo

	var dates []string
	for i, post := range info.RecentPosts {
		if post.Date == "" {
			continue
		}
		parsed, err := dateparse.ParseAny(post.Date)
		if err != nil {
			continue
		}
		iso := parsed.Format("2006-01-02")
		info.RecentPosts[i].Date = iso
		dates = append(dates, iso)
	}

	if info.LastUpdated == "" && len(dates) > 0 {
		sort.Strings(dates)
		info.LastUpdated = dates[len(dates)-1]
	} else if info.LastUpdated != "" {
		if parsed, err := dateparse.ParseAny(info.LastUpdated); err == nil {
			info.LastUpdated = parsed.Format("2006-01-02")
		}
	}

	if len(info.RecentPosts) > 0 {
		info.HasBlog = true
	}
}

// normalizeName title-cases names that arrived all-lower or all-upper;
// mixed-case names pass through untouched.
func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	lower := strings.ToLower(name)
	upper := strings.ToUpper(name)
	if name == lower || (name == upper && len(name) > 4) {
		return cases.Title(language.English).String(lower)
	}
	return name
}

func foundingYear(foundingDate string) string {
	foundingDate = strings.TrimSpace(foundingDate)
	if len(foundingDate) >= 4 {
		year := foundingDate[:4]
		if isDigits(year) {
			return year
		}
	}
	if t, err := dateparse.ParseAny(foundingDate); err == nil {
		return t.Format("2006")
	}
	return ""
}

func formatLocation(org contact.OrgData) string {
	var parts []string
	for _, p := range []string{org.Locality, org.Region, org.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// addSocialLink routes a sameAs URL into the matching social slot without
// overwriting a value the model already found.
func addSocialLink(profile *model.ExtractionProfile, link string) {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")

	if profile.SocialProfiles == nil {
		profile.SocialProfiles = &model.SocialProfiles{}
	}
	sp := profile.SocialProfiles

	set := func(dst *string) {
		if *dst == "" {
			*dst = link
		}
	}
	switch {
	case strings.Contains(host, "linkedin.com"):
		set(&sp.LinkedIn)
	case strings.Contains(host, "twitter.com"), host == "x.com":
		set(&sp.Twitter)
	case strings.Contains(host, "facebook.com"):
		set(&sp.Facebook)
	case strings.Contains(host, "instagram.com"):
		set(&sp.Instagram)
	case strings.Contains(host, "youtube.com"):
		set(&sp.YouTube)
	default:
		for _, existing := range sp.Other {
			if existing == link {
				return
			}
		}
		sp.Other = append(sp.Other, link)
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func remarshal(data map[string]any, v any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return eris.Wrap(err, "extract: remarshal")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return eris.Wrap(err, "extract: unmarshal profile")
	}
	return nil
}
