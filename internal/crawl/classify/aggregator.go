package classify

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"leadscout-engine/internal/crawl/util"
	"leadscout-engine/internal/domain"
)

// aggregatorRule describes how one job aggregator lays out its listing
// cards. Aggregators are far more regular than company sites, so direct
// selectors beat the generic anchor rule there.
type aggregatorRule struct {
	host     string
	pathHint string // required URL substring, e.g. linkedin only counts for /jobs
	card     string
	link     string
}

var aggregatorRules = []aggregatorRule{
	{
		host: "builtin.com",
		card: "[data-id='job-card'], .job-item",
		link: "a[href*='/job/'], h2 a",
	},
	{
		host: "indeed.com",
		card: ".job_seen_beacon, .jobsearch-SerpJobCard",
		link: "h2.jobTitle a, a.jcs-JobTitle",
	},
	{
		host:     "linkedin.com",
		pathHint: "/jobs",
		card:     ".jobs-search-results__list-item, .base-card",
		link:     "a.base-card__full-link, a.job-card-list__title",
	},
}

// scanAggregatorCards extracts title and link pairs with per-platform
// selectors when the page itself lives on a known aggregator.
func (c *Classifier) scanAggregatorCards(doc *goquery.Document, baseURL string) []domain.JobCandidate {
	if !HostMatches(baseURL, c.lex.AggregatorHosts) {
		return nil
	}
	rule, ok := aggregatorRuleFor(baseURL)
	if !ok {
		return nil
	}

	var out []domain.JobCandidate
	doc.Find(rule.card).Each(func(_ int, card *goquery.Selection) {
		a := card.Find(rule.link).First()
		if a.Length() == 0 {
			a = card.Find("a[href]").First()
		}
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		abs := util.Absolutize(baseURL, strings.TrimSpace(href))
		if abs == "" {
			return
		}

		title := util.CleanText(a.Text())
		if title == "" {
			title = util.CleanText(card.Find("h2, h3, .title").First().Text())
		}
		if title == "" {
			return
		}

		out = append(out, domain.JobCandidate{
			Title:         title,
			URL:           abs,
			Description:   descriptionFrom(util.CleanText(card.Text())),
			SourcePattern: domain.PatternAggregator,
		})
	})
	return out
}

func aggregatorRuleFor(baseURL string) (aggregatorRule, bool) {
	lower := strings.ToLower(baseURL)
	for _, rule := range aggregatorRules {
		if !HostMatches(baseURL, []string{rule.host}) {
			continue
		}
		if rule.pathHint != "" && !strings.Contains(lower, rule.pathHint) {
			continue
		}
		return rule, true
	}
	return aggregatorRule{}, false
}
