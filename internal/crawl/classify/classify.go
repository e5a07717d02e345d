// Package classify turns interacted page documents into job candidates. It
// layers four strategies in priority order: plain-text title scans under an
// openings heading, aggregator card selectors, hosted-ATS and document link
// short-circuits, and a generic anchor scoring rule.
package classify

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"leadscout-engine/internal/crawl/util"
	"leadscout-engine/internal/domain"
)

// Page is one document to classify: rendered HTML plus the URL its relative
// links resolve against.
type Page struct {
	BaseURL string
	HTML    string
}

// Result is everything classification learned from the documents. EmailApply
// reports that a job-looking mailto anchor was seen; those are never emitted
// as candidates.
type Result struct {
	Candidates []domain.JobCandidate
	EmailApply bool
}

type Classifier struct {
	lex     Lexicon
	titleRe *regexp.Regexp
	log     *zap.SugaredLogger
}

func New(log *zap.SugaredLogger, lex Lexicon) *Classifier {
	lex = lex.withDefaults()
	return &Classifier{
		lex:     lex,
		titleRe: titleRegexp(lex.JobKeywords),
		log:     log,
	}
}

// Classify extracts candidates from the documents in order. Duplicate
// resolved URLs keep their first classification; zero candidates is an empty
// result, not an error.
func (c *Classifier) Classify(pages []Page) Result {
	var res Result
	seen := map[string]bool{}
	for _, pg := range pages {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(pg.HTML))
		if err != nil {
			c.log.Debugw("parse document", "url", pg.BaseURL, "err", err)
			continue
		}
		c.classifyDoc(doc, pg.BaseURL, seen, &res)
	}
	return res
}

func (c *Classifier) classifyDoc(doc *goquery.Document, baseURL string, seen map[string]bool, res *Result) {
	add := func(cands []domain.JobCandidate) {
		for _, cand := range cands {
			if cand.URL == "" {
				continue
			}
			key := util.CanonicalizeURL(cand.URL)
			if key == "" {
				key = cand.URL
			}
			// Link-less postings all carry the page URL; their titles
			// keep them apart.
			if cand.SourcePattern == domain.PatternSimpleText {
				key += "\x00" + strings.ToLower(cand.Title)
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			res.Candidates = append(res.Candidates, cand)
		}
	}

	add(c.scanHeadingText(doc, baseURL))
	add(c.scanAggregatorCards(doc, baseURL))

	anchors, sawEmail := c.scanAnchors(doc, baseURL)
	add(anchors)
	if sawEmail {
		res.EmailApply = true
	}
}

// HostMatches reports whether u's host is one of domains or a subdomain of
// one.
func HostMatches(u string, domains []string) bool {
	host := util.HostOf(u)
	if host == "" {
		return false
	}
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// descriptionFrom keeps the first 200 characters of link text when there is
// enough of it to carry detail beyond a bare title.
func descriptionFrom(text string) string {
	if len(text) > 50 {
		return util.TruncateRunes(text, 200)
	}
	return ""
}
