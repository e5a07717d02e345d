package interact

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"leadscout-engine/internal/domain"
)

// DefaultExpandPhrases is the built-in expansion lexicon: visible text on
// controls that reveal collapsed or paginated listings.
var DefaultExpandPhrases = []string{
	"view all",
	"see all",
	"show all",
	"all openings",
	"all positions",
	"open positions",
	"open roles",
	"current openings",
	"view openings",
	"see openings",
	"load more",
	"show more",
}

// expandHandler clicks expansion controls once each. Some of these controls
// are links to a dedicated listing page, so the session URL is re-read after
// every click.
type expandHandler struct {
	phrases      []string
	settle       time.Duration
	clickTimeout time.Duration
}

func (h *expandHandler) Tag() domain.PatternTag { return domain.PatternAccordion }

func (h *expandHandler) Apply(ctx context.Context, sess *Session) (Effect, error) {
	page := sess.Page()
	clicked := 0
	for _, phrase := range h.phrases {
		if ctx.Err() != nil {
			break
		}
		sel := fmt.Sprintf(`button:has-text(%q), a:has-text(%q), [role="button"]:has-text(%q)`,
			phrase, phrase, phrase)
		loc := page.Locator(sel).First()
		if visible, err := loc.IsVisible(); err != nil || !visible {
			continue
		}
		if err := loc.Click(playwright.LocatorClickOptions{
			Timeout: playwright.Float(ms(h.clickTimeout)),
		}); err != nil {
			continue
		}
		clicked++
		pause(ctx, h.settle)
		if u := page.URL(); u != "" && u != sess.FinalURL {
			sess.FinalURL = u
		}
	}
	if clicked > 0 {
		sess.MarkPattern(domain.PatternAccordion)
	}
	return Continue, nil
}
