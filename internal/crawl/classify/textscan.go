package classify

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"leadscout-engine/internal/crawl/util"
	"leadscout-engine/internal/domain"
)

// scanHeadingText pulls job titles out of plain-text listings that sit under
// an "open positions" style heading and link nowhere. Candidates point at
// the careers page itself.
func (c *Classifier) scanHeadingText(doc *goquery.Document, baseURL string) []domain.JobCandidate {
	lines := docLines(doc)

	start := -1
	for i, ln := range lines {
		if len(ln) <= 60 && containsAny(strings.ToLower(ln), headingPhrases) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil
	}

	var cands []domain.JobCandidate
	for _, ln := range lines[start:] {
		if !c.looksLikeJobTitle(ln) {
			continue
		}
		cands = append(cands, domain.JobCandidate{
			Title:         ln,
			URL:           baseURL,
			SourcePattern: domain.PatternSimpleText,
		})
	}
	return cands
}

// looksLikeJobTitle accepts short standalone lines that carry a role word
// and none of the navigation vocabulary.
func (c *Classifier) looksLikeJobTitle(line string) bool {
	if len(line) < 4 || len(line) > 80 {
		return false
	}
	if strings.HasSuffix(line, ".") {
		return false
	}
	if len(strings.Fields(line)) > 8 {
		return false
	}
	if !c.titleRe.MatchString(line) {
		return false
	}
	return !containsAny(strings.ToLower(line), c.lex.ExclusionPhrases)
}

// titleRegexp compiles the role keywords into one word-boundary pattern.
func titleRegexp(keywords []string) *regexp.Regexp {
	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(strings.ToLower(k))
		if k != "" {
			quoted = append(quoted, regexp.QuoteMeta(k))
		}
	}
	if len(quoted) == 0 {
		quoted = []string{"engineer"}
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// docLines flattens the document body into visible text lines, one per text
// node, skipping script and style bodies. Unlike the fetch-side extractor it
// leaves the document untouched so later strategies still see every anchor.
func docLines(doc *goquery.Document) []string {
	var lines []string
	doc.Find("body, body *").Contents().Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) != "#text" {
			return
		}
		switch goquery.NodeName(s.Parent()) {
		case "script", "style", "noscript":
			return
		}
		if t := util.CleanText(s.Text()); t != "" {
			lines = append(lines, t)
		}
	})
	return lines
}
