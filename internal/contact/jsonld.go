package contact

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// OrgData is what we pull out of a JSON-LD Organization (or LocalBusiness)
// block. Structured data is the highest-confidence source for both contact
// candidates and company facts.
type OrgData struct {
	Name         string
	Description  string
	FoundingDate string
	Locality     string
	Region       string
	Country      string
	Emails       []string
	Phones       []string
	SameAs       []string
}

var orgTypes = map[string]bool{
	"Organization":        true,
	"LocalBusiness":       true,
	"Corporation":         true,
	"ProfessionalService": true,
	"Store":               true,
}

// ParseJSONLD extracts Organization-typed JSON-LD blocks from page HTML.
// Malformed blocks are skipped, never fatal.
func ParseJSONLD(htmlStr string) []OrgData {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil
	}

	var orgs []OrgData
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return
		}

		// A block may be a single object, an array, or an @graph.
		var single map[string]any
		if err := json.Unmarshal([]byte(raw), &single); err == nil {
			orgs = append(orgs, orgsFromNode(single)...)
			return
		}
		var list []map[string]any
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			for _, node := range list {
				orgs = append(orgs, orgsFromNode(node)...)
			}
		}
	})
	return orgs
}

func orgsFromNode(node map[string]any) []OrgData {
	if graph, ok := node["@graph"].([]any); ok {
		var orgs []OrgData
		for _, item := range graph {
			if m, ok := item.(map[string]any); ok {
				orgs = append(orgs, orgsFromNode(m)...)
			}
		}
		return orgs
	}

	if !isOrgType(node["@type"]) {
		return nil
	}

	org := OrgData{
		Name:         str(node["name"]),
		Description:  str(node["description"]),
		FoundingDate: str(node["foundingDate"]),
	}

	if addr, ok := node["address"].(map[string]any); ok {
		org.Locality = str(addr["addressLocality"])
		org.Region = str(addr["addressRegion"])
		org.Country = str(addr["addressCountry"])
	}

	if email := str(node["email"]); email != "" {
		org.Emails = append(org.Emails, cleanEmail(email))
	}
	if phone := str(node["telephone"]); phone != "" {
		org.Phones = append(org.Phones, phone)
	}

	switch cp := node["contactPoint"].(type) {
	case map[string]any:
		org.appendContactPoint(cp)
	case []any:
		for _, item := range cp {
			if m, ok := item.(map[string]any); ok {
				org.appendContactPoint(m)
			}
		}
	}

	if sameAs, ok := node["sameAs"].([]any); ok {
		for _, s := range sameAs {
			if u := str(s); u != "" {
				org.SameAs = append(org.SameAs, u)
			}
		}
	}

	return []OrgData{org}
}

func (o *OrgData) appendContactPoint(cp map[string]any) {
	if email := str(cp["email"]); email != "" {
		o.Emails = append(o.Emails, cleanEmail(email))
	}
	if phone := str(cp["telephone"]); phone != "" {
		o.Phones = append(o.Phones, phone)
	}
}

func isOrgType(v any) bool {
	switch t := v.(type) {
	case string:
		return orgTypes[t]
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && orgTypes[s] {
				return true
			}
		}
	}
	return false
}

func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func cleanEmail(s string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "mailto:"))
}
