package classify

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"leadscout-engine/internal/crawl/util"
	"leadscout-engine/internal/domain"
)

// scanAnchors classifies every anchor on the page. Links into hosted ATS
// platforms are accepted regardless of their text, document links need a job
// keyword in their text, and everything else goes through the combined
// URL-pattern and keyword rule.
func (c *Classifier) scanAnchors(doc *goquery.Document, baseURL string) (cands []domain.JobCandidate, sawEmail bool) {
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		text := util.CleanText(a.Text())
		hrefLower := strings.ToLower(href)
		textLower := strings.ToLower(text)

		switch {
		case href == "", strings.HasPrefix(href, "#"):
			return
		case strings.HasPrefix(hrefLower, "javascript:"), strings.HasPrefix(hrefLower, "tel:"):
			return
		case strings.HasPrefix(hrefLower, "mailto:"):
			// Never a candidate. It still tells us the page hires over
			// email when the text reads like a posting.
			if containsAny(textLower, c.lex.JobKeywords) || strings.Contains(textLower, "resume") {
				sawEmail = true
			}
			return
		}

		abs := util.Absolutize(baseURL, href)
		if !strings.HasPrefix(strings.ToLower(abs), "http") {
			return
		}

		if HostMatches(abs, c.lex.ATSHosts) {
			cands = append(cands, domain.JobCandidate{
				Title:         text,
				URL:           abs,
				Description:   descriptionFrom(text),
				SourcePattern: domain.PatternExternalBoard,
			})
			return
		}

		if isDocumentURL(abs) {
			if containsAny(textLower, c.lex.JobKeywords) {
				cands = append(cands, domain.JobCandidate{
					Title:         text,
					URL:           abs,
					Description:   descriptionFrom(text),
					SourcePattern: domain.PatternDocumentListing,
				})
			}
			return
		}

		if c.acceptAnchor(href, text) {
			cands = append(cands, domain.JobCandidate{
				Title:         text,
				URL:           abs,
				Description:   descriptionFrom(text),
				SourcePattern: domain.PatternAnchor,
			})
		}
	})
	return cands, sawEmail
}

// acceptAnchor is the generic scoring rule: a job-path URL pointing at one
// specific posting, or link text that reads like a job title.
func (c *Classifier) acceptAnchor(href, text string) bool {
	hrefLower := strings.ToLower(href)
	textLower := strings.ToLower(text)

	if containsAny(hrefLower, c.lex.JobPathPatterns) && lastSegmentLooksUnique(href) {
		return true
	}

	if len(text) <= 10 {
		return false
	}
	if !containsAny(textLower, c.lex.JobKeywords) {
		return false
	}
	// Navigation words only disqualify short link text. A long line that
	// happens to contain "location" is usually a real posting.
	if len(text) < 50 && containsAny(textLower, c.lex.ExclusionPhrases) {
		return false
	}
	return true
}

// lastSegmentLooksUnique reports whether the final path segment carries a
// digit or is long enough to be a slug, which reads as a link to one
// specific posting rather than to a listing page.
func lastSegmentLooksUnique(href string) bool {
	seg := href
	if i := strings.LastIndex(seg, "/"); i >= 0 {
		seg = seg[i+1:]
	}
	if len(seg) > 10 {
		return true
	}
	return strings.ContainsAny(seg, "0123456789")
}

func isDocumentURL(u string) bool {
	lower := strings.ToLower(u)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	for _, suf := range documentSuffixes {
		if strings.HasSuffix(lower, suf) {
			return true
		}
	}
	return false
}
