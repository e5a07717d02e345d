package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a cleaned copy of cfg plus everything wrong
// or suspicious about it. Lexicon lists are trimmed and deduped; out-of-range
// caps are clamped with a warning rather than rejected.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Classify.JobPathPatterns = trimList(out.Classify.JobPathPatterns)
	out.Classify.JobKeywords = trimList(out.Classify.JobKeywords)
	out.Classify.ExclusionPhrases = trimList(out.Classify.ExclusionPhrases)
	out.Classify.ATSHosts = trimList(out.Classify.ATSHosts)
	out.Classify.AggregatorHosts = trimList(out.Classify.AggregatorHosts)
	out.Interact.NoJobsPhrases = trimList(out.Interact.NoJobsPhrases)
	out.Interact.ExpandPhrases = trimList(out.Interact.ExpandPhrases)

	// ---- app ----

	if out.App.Workers <= 0 {
		res.addErr("app.workers must be > 0")
	} else if out.App.Workers > 16 {
		res.addWarn("app.workers is very high (%d); browser sessions are memory-hungry.", out.App.Workers)
	}

	if out.App.MaxJobs <= 0 {
		res.addErr("app.max_jobs must be > 0")
	} else if out.App.MaxJobs > MaxJobsLimit {
		res.addWarn("app.max_jobs %d exceeds the hard limit; clamping to %d.", out.App.MaxJobs, MaxJobsLimit)
		out.App.MaxJobs = MaxJobsLimit
	}

	// ---- fetch ----

	if out.Fetch.HTTPTimeoutSeconds <= 0 {
		res.addErr("fetch.http_timeout_seconds must be > 0")
	}
	if out.Fetch.BrowserTimeoutSeconds <= 0 {
		res.addErr("fetch.browser_timeout_seconds must be > 0")
	}
	if out.Fetch.MinContentBytes <= 0 {
		res.addErr("fetch.min_content_bytes must be > 0")
	} else if out.Fetch.MinContentBytes > 10000 {
		res.addWarn("fetch.min_content_bytes %d will reject most small careers pages.", out.Fetch.MinContentBytes)
	}
	if out.Fetch.HostReqPerSec <= 0 {
		res.addErr("fetch.host_req_per_sec must be > 0")
	}
	if out.Fetch.RenderAPI.Enabled {
		if strings.TrimSpace(out.Fetch.RenderAPI.Endpoint) == "" {
			res.addErr("fetch.render_api.endpoint is required when render_api.enabled=true")
		}
		if out.Fetch.RenderAPI.TimeoutSeconds <= 0 {
			res.addErr("fetch.render_api.timeout_seconds must be > 0")
		}
	}

	// ---- interact ----

	if out.Interact.MaxScrollRounds < 0 {
		res.addErr("interact.max_scroll_rounds must be >= 0")
	}
	if out.Interact.MaxTabs < 0 {
		res.addErr("interact.max_tabs must be >= 0")
	}
	if out.Interact.MaxIframes < 0 {
		res.addErr("interact.max_iframes must be >= 0")
	}
	if out.Interact.SelectorTimeoutMillis <= 0 {
		res.addErr("interact.selector_timeout_millis must be > 0")
	}
	if out.Interact.ClickTimeoutMillis <= 0 {
		res.addErr("interact.click_timeout_millis must be > 0")
	}

	// ---- ai ----

	if out.AI.Enabled {
		if strings.TrimSpace(out.AI.Model) == "" {
			res.addErr("ai.model is required when ai.enabled=true")
		}
		if out.AI.TimeoutSeconds <= 0 {
			res.addErr("ai.timeout_seconds must be > 0")
		}
		if out.AI.MaxTextChars < 1000 {
			res.addWarn("ai.max_text_chars %d is tiny; the fallback will see almost no page text.", out.AI.MaxTextChars)
		}
	}

	// ---- companies ----

	for i, c := range out.Companies {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			res.addErr("companies[%d].name is required", i)
		}
		if strings.TrimSpace(c.CareersURL) == "" && strings.TrimSpace(c.Domain) == "" {
			res.addWarn("company %q has neither careers_url nor domain; discovery will search the web for it.", name)
		}
		out.Companies[i].Name = name
		out.Companies[i].CareersURL = strings.TrimSpace(c.CareersURL)
		out.Companies[i].Domain = strings.TrimSpace(c.Domain)
	}

	return out, res
}
