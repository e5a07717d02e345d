package interact

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"leadscout-engine/internal/domain"
)

// DefaultNoJobsPhrases is the built-in no-hiring lexicon. A match anywhere in
// the page's visible text means the company is explicitly not hiring, which
// is a different outcome from a crawl that found nothing.
var DefaultNoJobsPhrases = []string{
	"no current openings",
	"no open positions",
	"not hiring",
	"check back later",
	"check back",
	"no vacancies",
	"no positions available",
}

// MatchNoJobs reports the first lexicon phrase contained in text,
// case-insensitively.
func MatchNoJobs(text string, phrases []string) (string, bool) {
	t := strings.ToLower(text)
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.Contains(t, strings.ToLower(p)) {
			return p, true
		}
	}
	return "", false
}

// noJobsHandler stops the pipeline on an explicit no-hiring signal, before
// any scroll or tab budget is spent on a page with nothing to reveal.
type noJobsHandler struct {
	phrases []string
	timeout time.Duration
}

func (h *noJobsHandler) Tag() domain.PatternTag { return domain.PatternNoJobs }

func (h *noJobsHandler) Apply(_ context.Context, sess *Session) (Effect, error) {
	text, err := sess.Page().Locator("body").InnerText(playwright.LocatorInnerTextOptions{
		Timeout: playwright.Float(ms(h.timeout)),
	})
	if err != nil {
		return Continue, fmt.Errorf("read body text: %w", err)
	}
	phrase, ok := MatchNoJobs(text, h.phrases)
	if !ok {
		return Continue, nil
	}
	sess.NoJobsDetected = true
	sess.NoJobsPhrase = phrase
	sess.MarkPattern(domain.PatternNoJobs)
	return Stop, nil
}
