package aiextract

import (
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"leadscout-engine/internal/domain"
)

// parseJobs turns the model's reply into candidates. Records with a title of
// three runes or fewer are dropped, as are records whose link is present but
// not an http(s) URL (models hand back mailto: and "N/A" for email-only
// pages). A record with no link at all inherits pageURL so the caller still
// gets somewhere to send a human.
func parseJobs(raw, pageURL string) []domain.JobCandidate {
	root := gjson.Parse(stripFences(raw))

	jobs := root.Get("jobs")
	if !jobs.Exists() && root.IsArray() {
		// Some replies skip the wrapper object despite the format example.
		jobs = root
	}
	if !jobs.IsArray() {
		return nil
	}

	var out []domain.JobCandidate
	jobs.ForEach(func(_, job gjson.Result) bool {
		title := strings.TrimSpace(job.Get("job_title").String())
		if title == "" {
			title = strings.TrimSpace(job.Get("title").String())
		}
		if utf8.RuneCountInString(title) <= 3 {
			return true
		}

		u := strings.TrimSpace(job.Get("job_url").String())
		switch {
		case u == "":
			u = pageURL
		case !strings.HasPrefix(strings.ToLower(u), "http"):
			return true
		}

		out = append(out, domain.JobCandidate{
			Title:         title,
			URL:           u,
			Description:   strings.TrimSpace(job.Get("description").String()),
			SourcePattern: domain.PatternAIFallback,
		})
		return true
	})
	return out
}

// stripFences removes the ```json wrapper models add despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSuffix(s, "```")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
