// Package discover locates a careers page for companies that arrive without
// one: find the company's own site first, then scan its homepage for
// career-ish links.
package discover

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"leadscout-engine/internal/crawl/util"
	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/telemetry"
)

// Aggregators, job boards and ATS hosts never count as a company's own site.
var domainBlocklist = []string{
	"linkedin.com",
	"indeed.com",
	"glassdoor.com",
	"ziprecruiter.com",
	"monster.com",
	"careerbuilder.com",
	"simplyhired.com",
	"builtin.com",
	"levels.fyi",
	"crunchbase.com",
	"wikipedia.org",

	"greenhouse.io",
	"boards.greenhouse.io",
	"lever.co",
	"myworkdayjobs.com",
	"workday.com",
	"smartrecruiters.com",
	"icims.com",
	"jobvite.com",
	"applytojob.com",
	"bamboohr.com",
	"ashbyhq.com",
}

var careerKeywords = []string{"career", "job", "hiring", "join", "work-with-us", "opportunities", "openings"}

var commonCareerPaths = []string{"/careers", "/jobs", "/join-us", "/opportunities"}

const maxCareerLinks = 5

type Finder struct {
	hc        *http.Client
	log       *zap.SugaredLogger
	searchURL string
}

func New(log *zap.SugaredLogger) *Finder {
	return &Finder{
		hc:        &http.Client{Timeout: 12 * time.Second},
		log:       log,
		searchURL: "https://duckduckgo.com/html/",
	}
}

// Discover returns the careers URL to crawl for a company. The company's own
// value wins when present; otherwise the site host is resolved (cache, then
// search) and its homepage scanned.
func (f *Finder) Discover(ctx context.Context, db *sql.DB, co domain.Company) (string, error) {
	if strings.TrimSpace(co.CareersURL) != "" {
		return co.CareersURL, nil
	}

	host := strings.TrimSpace(co.SiteDomain)
	if host == "" && db != nil {
		cached, err := telemetry.GetCompanyDomain(ctx, db, co.Name)
		if err != nil {
			f.log.Debugw("domain cache lookup failed", "company", co.Name, "err", err)
		}
		host = cached
	}
	if host == "" {
		found, err := f.CompanySite(ctx, co.Name)
		if err != nil {
			return "", fmt.Errorf("discover %s: %w", co.Name, err)
		}
		if found == "" {
			return "", fmt.Errorf("discover %s: no site found", co.Name)
		}
		host = found
		if db != nil {
			if err := telemetry.UpsertCompanyDomain(ctx, db, co.Name, host); err != nil {
				f.log.Debugw("domain cache write failed", "company", co.Name, "err", err)
			}
		}
	}

	links, err := f.CareerLinks(ctx, util.EnsureScheme(host))
	if err != nil {
		return "", fmt.Errorf("discover %s: %w", co.Name, err)
	}
	if len(links) == 0 {
		return "", fmt.Errorf("discover %s: homepage has no career links", co.Name)
	}
	return links[0], nil
}

// CompanySite finds the company's own site host via DuckDuckGo HTML results,
// skipping aggregator and ATS hosts. Search trouble is reported as an empty
// host, not an error: discovery is opportunistic.
func (f *Finder) CompanySite(ctx context.Context, company string) (string, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return "", nil
	}

	query := sanitizeCompanyForSearch(company) + " official website"
	u := f.searchURL + "?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.hc.Do(req)
	if err != nil {
		return "", nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", nil
	}

	var best string
	doc.Find("a.result__a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return true
		}

		host := util.HostOf(decodeDDGRedirect(href))
		if host == "" {
			return true
		}
		if isBlockedDomain(host) {
			return true
		}

		best = host
		return false // first good domain wins
	})

	return best, nil
}

// CareerLinks fetches the site's homepage and returns candidate careers
// URLs: anchors whose href or text carries a career keyword, in document
// order, then the well-known paths. At most maxCareerLinks come back.
func (f *Finder) CareerLinks(ctx context.Context, siteURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, siteURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("homepage fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("homepage status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("homepage parse: %w", err)
	}

	seen := map[string]bool{}
	var links []string
	add := func(u string) {
		if len(links) >= maxCareerLinks || seen[u] {
			return
		}
		seen[u] = true
		links = append(links, u)
	}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		text := strings.ToLower(util.CleanText(a.Text()))
		hrefLower := strings.ToLower(href)
		if !containsAny(hrefLower, careerKeywords) && !containsAny(text, careerKeywords) {
			return
		}

		abs := util.Absolutize(siteURL, href)
		if !strings.HasPrefix(abs, "http") {
			return
		}
		add(abs)
	})

	base := strings.TrimRight(siteURL, "/")
	for _, p := range commonCareerPaths {
		add(base + p)
	}

	return links, nil
}

// decodeDDGRedirect unwraps DDG's /l/?uddg=<urlencoded> result links.
func decodeDDGRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if uddg := u.Query().Get("uddg"); uddg != "" {
		if dec, err := url.QueryUnescape(uddg); err == nil && dec != "" {
			return dec
		}
	}
	return href
}

func isBlockedDomain(host string) bool {
	for _, b := range domainBlocklist {
		if host == b || strings.HasSuffix(host, "."+b) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// sanitizeCompanyForSearch strips legal suffixes that pollute search results.
func sanitizeCompanyForSearch(s string) string {
	s = strings.TrimSpace(s)
	repls := []string{
		", Inc.", "", " Inc.", "", " Inc", "",
		", LLC", "", " LLC", "",
		", Ltd.", "", " Ltd.", "", " Ltd", "",
	}
	s = strings.NewReplacer(repls...).Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
