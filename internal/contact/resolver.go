package contact

import (
	"sort"
	"strings"

	"github.com/sells-group/audit-cli/internal/fetcher"
	"github.com/sells-group/audit-cli/internal/model"
)

// genericLocalParts down-weight but never exclude; a generic inbox on the
// company's own domain still beats a random gmail address found in text.
var genericLocalParts = map[string]bool{
	"info":      true,
	"contact":   true,
	"hello":     true,
	"support":   true,
	"admin":     true,
	"sales":     true,
	"office":    true,
	"mail":      true,
	"team":      true,
	"help":      true,
	"enquiry":   true,
	"enquiries": true,
	"noreply":   true,
	"no-reply":  true,
}

const genericPenalty = 0.15

// Resolve reduces all candidates from a crawl to the single best email and
// phone. Scoring favors structured data, the site's own domain, and contact
// or about pages. The result is deterministic regardless of candidate order;
// nil when nothing was found.
func Resolve(siteURL string, candidates []model.ContactCandidate) *model.ResolvedContact {
	if len(candidates) == 0 {
		return nil
	}

	domain := fetcher.RegistrableDomain(siteURL)

	bestEmail := pick(candidates, model.ContactEmail, domain)
	bestPhone := pick(candidates, model.ContactPhone, domain)
	if bestEmail == nil && bestPhone == nil {
		return nil
	}

	resolved := &model.ResolvedContact{}
	if bestEmail != nil {
		resolved.Email = bestEmail.Value
		resolved.EmailSource = bestEmail.Source
		resolved.EmailConfidence = score(*bestEmail, domain)
	}
	if bestPhone != nil {
		resolved.Phone = bestPhone.Value
		resolved.PhoneSource = bestPhone.Source
		resolved.PhoneConfidence = score(*bestPhone, domain)
	}
	return resolved
}

// pick returns the highest-scoring candidate of a kind. Ties break toward
// non-generic addresses, then lexicographically, so resolution does not
// depend on crawl order.
func pick(candidates []model.ContactCandidate, kind model.ContactKind, domain string) *model.ContactCandidate {
	var filtered []model.ContactCandidate
	for _, c := range candidates {
		if c.Kind == kind {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		si, sj := score(filtered[i], domain), score(filtered[j], domain)
		if si != sj {
			return si > sj
		}
		gi, gj := isGeneric(filtered[i].Value), isGeneric(filtered[j].Value)
		if gi != gj {
			return !gi
		}
		return filtered[i].Value < filtered[j].Value
	})
	return &filtered[0]
}

func score(c model.ContactCandidate, domain string) float64 {
	s := c.Confidence
	if c.Kind == model.ContactEmail && domain != "" && emailDomain(c.Value) == domain {
		s += 0.1
	}
	if onContactPage(c.PageURL) {
		s += 0.05
	}
	if c.Kind == model.ContactEmail && isGeneric(c.Value) {
		s -= genericPenalty
	}
	if s > 1.0 {
		s = 1.0
	}
	if s < 0 {
		s = 0
	}
	return s
}

func emailDomain(email string) string {
	i := strings.LastIndexByte(email, '@')
	if i < 0 {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(email[i+1:]), "www.")
}

func isGeneric(email string) bool {
	i := strings.IndexByte(email, '@')
	if i < 0 {
		return false
	}
	return genericLocalParts[strings.ToLower(email[:i])]
}

func onContactPage(pageURL string) bool {
	lower := strings.ToLower(pageURL)
	return strings.Contains(lower, "contact") || strings.Contains(lower, "about")
}
