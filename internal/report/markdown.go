// Package report renders analysis results as Markdown documents.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/sells-group/audit-cli/internal/model"
)

// WriteMarkdown renders the full audit report for one result.
func WriteMarkdown(w io.Writer, result *model.AnalysisResult) error {
	md := markdown.NewMarkdown(w)

	title := result.URL
	if name := companyName(result); name != "" {
		title = name
	}
	md.H1("Website Audit: " + title)
	md.PlainText("")

	writeOverview(md, result)
	writeContact(md, result)
	writeProfile(md, result)
	writeCritiques(md, result)
	writeCompetitors(md, result)
	writeScore(md, result)
	writeWarnings(md, result)

	return md.Build()
}

func companyName(result *model.AnalysisResult) string {
	if result.Profile.CompanyInfo == nil {
		return ""
	}
	return result.Profile.CompanyInfo.Name
}

func writeOverview(md *markdown.Markdown, result *model.AnalysisResult) {
	rows := [][]string{
		{"URL", result.URL},
		{"Grade", fmt.Sprintf("**%s** (%.0f/100)", result.Score.Grade, result.Score.Score)},
		{"Analyzed", result.StartedAt.Format("2006-01-02 15:04 MST")},
		{"Pages Crawled", strconv.Itoa(result.PagesCrawled)},
		{"Duration", result.Duration.Round(1e8).String()},
		{"AI Cost", fmt.Sprintf("$%.4f", result.Cost.TotalCost)},
	}
	if result.Industry != nil {
		industry := result.Industry.Category
		if result.Industry.Niche != "" {
			industry += " / " + result.Industry.Niche
		}
		rows = append(rows, []string{"Industry", industry})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func writeContact(md *markdown.Markdown, result *model.AnalysisResult) {
	md.H2("Contact")
	md.PlainText("")
	if result.Contact == nil {
		md.PlainText("No contact information could be found on the site.")
		md.PlainText("")
		return
	}

	var rows [][]string
	if result.Contact.Email != "" {
		rows = append(rows, []string{"Email", result.Contact.Email,
			string(result.Contact.EmailSource),
			fmt.Sprintf("%.2f", result.Contact.EmailConfidence)})
	}
	if result.Contact.Phone != "" {
		rows = append(rows, []string{"Phone", result.Contact.Phone,
			string(result.Contact.PhoneSource),
			fmt.Sprintf("%.2f", result.Contact.PhoneConfidence)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Value", "Source", "Confidence"},
		Rows:   rows,
	})
	md.PlainText("")
}

func writeProfile(md *markdown.Markdown, result *model.AnalysisResult) {
	md.H2("Company Profile")
	md.PlainText("")

	var rows [][]string
	if info := result.Profile.CompanyInfo; info != nil {
		rows = appendRow(rows, "Name", info.Name)
		rows = appendRow(rows, "Description", info.Description)
		rows = appendRow(rows, "Founded", info.FoundingYear)
		rows = appendRow(rows, "Location", info.Location)
		rows = appendRow(rows, "Size", info.Size)
	}
	if intel := result.Profile.BusinessIntel; intel != nil {
		rows = appendRow(rows, "Value Proposition", intel.ValueProp)
		if len(intel.Services) > 0 {
			rows = appendRow(rows, "Services", joinLimited(intel.Services, 8))
		}
		if len(intel.Markets) > 0 {
			rows = appendRow(rows, "Markets", joinLimited(intel.Markets, 8))
		}
	}
	if len(result.Profile.TechStack) > 0 {
		rows = appendRow(rows, "Tech Stack", joinLimited(result.Profile.TechStack, 10))
	}
	if len(rows) == 0 {
		md.PlainText("No profile data could be extracted.")
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if social := result.Profile.SocialProfiles; social != nil {
		var links []string
		for _, link := range []string{social.LinkedIn, social.Twitter,
			social.Facebook, social.Instagram, social.YouTube} {
			if link != "" {
				links = append(links, link)
			}
		}
		links = append(links, social.Other...)
		if len(links) > 0 {
			md.H3("Social Presence")
			md.BulletList(links...)
			md.PlainText("")
		}
	}
}

func writeCritiques(md *markdown.Markdown, result *model.AnalysisResult) {
	md.H2(fmt.Sprintf("Findings (%d)", result.Critiques.Total()))
	md.PlainText("")

	sections := []struct {
		title string
		items []string
	}{
		{"Basics", result.Critiques.Basic},
		{"Industry", result.Critiques.Industry},
		{"SEO", result.Critiques.SEO},
		{"Visual", result.Critiques.Visual},
		{"Competitive", result.Critiques.Competitor},
	}
	for _, section := range sections {
		if len(section.items) == 0 {
			continue
		}
		md.H3(section.title)
		md.BulletList(section.items...)
		md.PlainText("")
	}
	if result.Critiques.Total() == 0 {
		md.PlainText("No issues found.")
		md.PlainText("")
	}
}

func writeCompetitors(md *markdown.Markdown, result *model.AnalysisResult) {
	comp := result.Competitors
	if comp == nil || len(comp.Competitors) == 0 {
		return
	}

	md.H2("Competitor Comparison")
	md.PlainText("")

	header := []string{"Site", "Pricing", "Testimonials", "Live Chat", "Case Studies", "Contact"}
	rows := [][]string{checklistRow("**This site**", comp.Target)}
	for _, c := range comp.Competitors {
		label := c.Name
		if label == "" {
			label = c.URL
		}
		rows = append(rows, checklistRow(label, c.Checklist))
	}
	md.Table(markdown.TableSet{Header: header, Rows: rows})
	md.PlainText("")
}

func checklistRow(label string, checklist model.FeatureChecklist) []string {
	return []string{label,
		yesNo(checklist.PricingVisible),
		yesNo(checklist.Testimonials),
		yesNo(checklist.LiveChat),
		yesNo(checklist.CaseStudies),
		yesNo(checklist.ContactComplete),
	}
}

func writeScore(md *markdown.Markdown, result *model.AnalysisResult) {
	md.H2("Score Breakdown")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Category", "Points"},
		Rows: [][]string{
			{"Contact", fmt.Sprintf("%.0f / 25", result.Score.Contact)},
			{"Identity", fmt.Sprintf("%.0f / 20", result.Score.Identity)},
			{"Social", fmt.Sprintf("%.0f / 15", result.Score.Social)},
			{"Content", fmt.Sprintf("%.0f / 15", result.Score.Content)},
			{"Team", fmt.Sprintf("%.0f / 10", result.Score.Team)},
			{"Business Intel", fmt.Sprintf("%.0f / 10", result.Score.Intel)},
			{"Tech", fmt.Sprintf("%.0f / 5", result.Score.Tech)},
			{"**Total**", fmt.Sprintf("**%.0f / 100 (%s)**", result.Score.Score, result.Score.Grade)},
		},
	})
	md.PlainText("")
}

func writeWarnings(md *markdown.Markdown, result *model.AnalysisResult) {
	if len(result.Warnings) == 0 {
		return
	}
	md.H2("Warnings")
	md.BulletList(result.Warnings...)
	md.PlainText("")
}

func appendRow(rows [][]string, field, value string) [][]string {
	if value == "" {
		return rows
	}
	return append(rows, []string{field, value})
}

func joinLimited(items []string, limit int) string {
	if len(items) > limit {
		items = items[:limit]
	}
	out := ""
	for i, item := range items {
		if i > 0 {
			out += ", "
		}
		out += item
	}
	return out
}

func yesNo(value bool) string {
	if value {
		return "✅"
	}
	return "❌"
}
