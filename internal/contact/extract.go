// Package contact aggregates candidate emails and phones across crawled
// pages and reduces them to one best contact with a confidence score.
package contact

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/audit-cli/internal/model"
)

// Base confidence by source. Structured data beats mailto beats free text.
const (
	confStructured = 0.9
	confMailto     = 0.7
	confText       = 0.4
)

var emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// phoneRe matches international-ish phone numbers in free text; at least
// 7 digits keeps order numbers and years out.
var phoneRe = regexp.MustCompile(`\+?[0-9][0-9 ().\-]{6,18}[0-9]`)

// ExtractCandidates pulls every candidate email and phone from one page:
// mailto anchors, JSON-LD contact points, and free-text matches.
func ExtractCandidates(page *model.PageSnapshot) []model.ContactCandidate {
	if page == nil {
		return nil
	}

	var out []model.ContactCandidate
	seen := map[string]bool{}

	add := func(value string, kind model.ContactKind, source model.ContactSource, conf float64) {
		value = strings.TrimSpace(value)
		if kind == model.ContactEmail {
			value = strings.ToLower(value)
		}
		if value == "" {
			return
		}
		key := string(kind) + "|" + string(source) + "|" + value
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, model.ContactCandidate{
			Value:      value,
			Kind:       kind,
			Source:     source,
			Confidence: conf,
			PageURL:    page.URL,
		})
	}

	// Structured data.
	for _, org := range ParseJSONLD(page.HTML) {
		for _, email := range org.Emails {
			if emailRe.MatchString(email) {
				add(email, model.ContactEmail, model.SourceStructured, confStructured)
			}
		}
		for _, phone := range org.Phones {
			if countDigits(phone) >= 7 {
				add(phone, model.ContactPhone, model.SourceStructured, confStructured)
			}
		}
	}

	// mailto: and tel: anchors.
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML)); err == nil {
		doc.Find(`a[href^="mailto:"]`).Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			addr := strings.TrimPrefix(href, "mailto:")
			if i := strings.IndexByte(addr, '?'); i >= 0 {
				addr = addr[:i]
			}
			if emailRe.MatchString(addr) {
				add(addr, model.ContactEmail, model.SourceMailto, confMailto)
			}
		})
		doc.Find(`a[href^="tel:"]`).Each(func(_ int, sel *goquery.Selection) {
			href, _ := sel.Attr("href")
			num := strings.TrimPrefix(href, "tel:")
			if countDigits(num) >= 7 {
				add(num, model.ContactPhone, model.SourceMailto, confMailto)
			}
		})
	}

	// Free-text matches over extracted plaintext.
	for _, email := range emailRe.FindAllString(page.Text, 20) {
		// Skip image filenames that look like emails (logo@2x.png).
		if strings.HasSuffix(strings.ToLower(email), ".png") || strings.HasSuffix(strings.ToLower(email), ".jpg") {
			continue
		}
		add(email, model.ContactEmail, model.SourceText, confText)
	}
	for _, phone := range phoneRe.FindAllString(page.Text, 20) {
		if countDigits(phone) >= 7 && countDigits(phone) <= 15 {
			add(phone, model.ContactPhone, model.SourceText, confText)
		}
	}

	return out
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
