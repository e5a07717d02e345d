package interact

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"leadscout-engine/internal/domain"
)

const tabSelector = `[role="tab"], .tabs button, .tab-item, [data-tab], .nav-tabs a`

// tabHandler walks department and location tabs, snapshotting the DOM after
// each click because tabbed pages usually swap listings in place rather than
// accumulate them.
type tabHandler struct {
	max          int
	settle       time.Duration
	clickTimeout time.Duration
}

func (h *tabHandler) Tag() domain.PatternTag { return domain.PatternTabbed }

func (h *tabHandler) Apply(ctx context.Context, sess *Session) (Effect, error) {
	page := sess.Page()
	tabs, err := page.Locator(tabSelector).All()
	if err != nil {
		return Continue, fmt.Errorf("list tabs: %w", err)
	}
	if len(tabs) < 2 {
		return Continue, nil
	}
	sess.MarkPattern(domain.PatternTabbed)
	clicked := 0
	for _, tab := range tabs {
		if clicked >= h.max || ctx.Err() != nil {
			break
		}
		if visible, err := tab.IsVisible(); err != nil || !visible {
			continue
		}
		if err := tab.Click(playwright.LocatorClickOptions{
			Timeout: playwright.Float(ms(h.clickTimeout)),
		}); err != nil {
			continue
		}
		clicked++
		pause(ctx, h.settle)
		if html, err := page.Content(); err == nil {
			sess.AddDoc(page.URL(), html)
		}
	}
	return Continue, nil
}
