package interact

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"leadscout-engine/internal/domain"
)

var allOptionLabels = []string{"All", "All Departments", "All Locations", "All Teams", "Any"}

// filterHandler defaults any visible dropdown filter to its "All" option so
// a pre-filtered page does not read as empty.
type filterHandler struct {
	timeout time.Duration
}

func (h *filterHandler) Tag() domain.PatternTag { return domain.PatternSearchRequired }

func (h *filterHandler) Apply(ctx context.Context, sess *Session) (Effect, error) {
	selects, err := sess.Page().Locator("select").All()
	if err != nil {
		return Continue, fmt.Errorf("list dropdowns: %w", err)
	}
	picked := 0
	for _, sel := range selects {
		if ctx.Err() != nil {
			break
		}
		if visible, err := sel.IsVisible(); err != nil || !visible {
			continue
		}
		for _, label := range allOptionLabels {
			_, err := sel.SelectOption(playwright.SelectOptionValues{
				Labels: &[]string{label},
			}, playwright.LocatorSelectOptionOptions{
				Timeout: playwright.Float(ms(h.timeout)),
			})
			if err == nil {
				picked++
				break
			}
		}
	}
	if picked > 0 {
		sess.MarkPattern(domain.PatternSearchRequired)
	}
	return Continue, nil
}

const maxConsentBoxes = 5

var consentWords = []string{"agree", "accept", "consent", "cookie", "privacy", "terms"}

// consentHandler ticks labelled consent checkboxes that can gate listings.
// It never submits a form.
type consentHandler struct {
	timeout time.Duration
}

func (h *consentHandler) Tag() domain.PatternTag { return domain.PatternFormRequired }

func (h *consentHandler) Apply(ctx context.Context, sess *Session) (Effect, error) {
	labels, err := sess.Page().Locator(`label:has(input[type="checkbox"])`).All()
	if err != nil {
		return Continue, fmt.Errorf("list checkboxes: %w", err)
	}
	checked := 0
	for _, lab := range labels {
		if checked >= maxConsentBoxes || ctx.Err() != nil {
			break
		}
		txt, err := lab.TextContent(playwright.LocatorTextContentOptions{
			Timeout: playwright.Float(ms(h.timeout)),
		})
		if err != nil || !isConsentText(txt) {
			continue
		}
		box := lab.Locator(`input[type="checkbox"]`).First()
		if on, err := box.IsChecked(); err != nil || on {
			continue
		}
		if err := box.Check(playwright.LocatorCheckOptions{
			Timeout: playwright.Float(ms(h.timeout)),
		}); err != nil {
			continue
		}
		checked++
	}
	if checked > 0 {
		sess.MarkPattern(domain.PatternFormRequired)
	}
	return Continue, nil
}

func isConsentText(s string) bool {
	t := strings.ToLower(s)
	for _, w := range consentWords {
		if strings.Contains(t, w) {
			return true
		}
	}
	return false
}
