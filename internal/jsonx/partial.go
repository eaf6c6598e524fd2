package jsonx

import (
	"regexp"
	"strings"
)

// Partial is the last-resort heuristic read of a model response that
// never produced parseable JSON.
type Partial struct {
	Critiques []string
	Summary   string
}

var numberedLineRe = regexp.MustCompile(`^\s*\d+[.)]\s+(.+)$`)
var bulletLineRe = regexp.MustCompile(`^\s*[-*]\s+(.+)$`)

// ExtractPartial pulls numbered-list (or bulleted) lines as critiques and
// the first prose paragraph as a summary. It never fails; it returns nil
// only when nothing plausible was found.
func ExtractPartial(text string) *Partial {
	p := &Partial{}

	var paragraph []string
	paragraphDone := false

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if m := numberedLineRe.FindStringSubmatch(line); m != nil {
			p.Critiques = append(p.Critiques, strings.TrimSpace(m[1]))
			paragraphDone = true
			continue
		}
		if m := bulletLineRe.FindStringSubmatch(line); m != nil {
			p.Critiques = append(p.Critiques, strings.TrimSpace(m[1]))
			paragraphDone = true
			continue
		}

		if paragraphDone {
			continue
		}
		if trimmed == "" {
			if len(paragraph) > 0 {
				paragraphDone = true
			}
			continue
		}
		// Skip code fences and JSON debris.
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "}") {
			continue
		}
		paragraph = append(paragraph, trimmed)
	}

	p.Summary = strings.Join(paragraph, " ")
	if len(p.Summary) < 20 {
		p.Summary = ""
	}

	if len(p.Critiques) == 0 && p.Summary == "" {
		return nil
	}
	return p
}
