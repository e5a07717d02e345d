// Package assemble normalizes classified candidates into the final ordered
// result: absolute URLs, cleaned titles, first-wins dedupe and the output
// cap.
package assemble

import (
	"strings"

	"leadscout-engine/internal/crawl/util"
	"leadscout-engine/internal/domain"
)

const (
	// DefaultMaxJobs applies when the caller passes no cap.
	DefaultMaxJobs = 100
	// HardMaxJobs is the ceiling no configuration can raise.
	HardMaxJobs = 400
)

var titlePrefixes = []string{
	"apply for", "apply to", "apply:", "view", "see", "learn more about",
	"read more:", "open position:", "job:", "role:", "position:",
}

var titleSuffixes = []string{" - apply", " - view", " - learn more", " - read more"}

// Assemble resolves every candidate URL against pageURL, cleans titles,
// drops anything that is not an http(s) link, dedupes on the canonical URL
// keeping the first classification, and caps the output. Candidates without
// a URL of their own inherit pageURL and stay apart by title.
func Assemble(pageURL string, cands []domain.JobCandidate, maxJobs int) []domain.JobCandidate {
	limit := maxJobs
	if limit <= 0 {
		limit = DefaultMaxJobs
	}
	if limit > HardMaxJobs {
		limit = HardMaxJobs
	}

	pageKey := util.CanonicalizeURL(pageURL)
	seen := map[string]bool{}
	out := make([]domain.JobCandidate, 0, len(cands))
	for _, cand := range cands {
		if len(out) >= limit {
			break
		}

		u := strings.TrimSpace(cand.URL)
		switch {
		case u == "":
			u = pageURL
		case !strings.Contains(u, "://"):
			u = util.Absolutize(pageURL, u)
		}
		if !isHTTPURL(u) {
			continue
		}

		title := CleanTitle(cand.Title)

		key := util.CanonicalizeURL(u)
		if key == "" {
			key = u
		}
		if key == pageKey {
			key += "\x00" + strings.ToLower(title)
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		out = append(out, domain.JobCandidate{
			Title:         title,
			URL:           u,
			Description:   util.TruncateRunes(util.CleanText(cand.Description), 200),
			SourcePattern: cand.SourcePattern,
		})
	}
	return out
}

// CleanTitle trims link-text decoration off a title: one leading "apply
// for"-style prefix, one trailing "- view"-style suffix, then title-casing
// when the remainder is uniformly upper or lower case.
func CleanTitle(raw string) string {
	title := util.CleanText(raw)

	lower := strings.ToLower(title)
	for _, p := range titlePrefixes {
		if strings.HasPrefix(lower, p) {
			title = strings.TrimSpace(title[len(p):])
			break
		}
	}

	lower = strings.ToLower(title)
	for _, s := range titleSuffixes {
		if strings.HasSuffix(lower, s) {
			title = strings.TrimSpace(title[:len(title)-len(s)])
			break
		}
	}

	return util.TitleCaseIfUniform(title)
}

func isHTTPURL(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
