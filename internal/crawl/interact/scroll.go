package interact

import (
	"context"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"leadscout-engine/internal/domain"
)

const loadMoreSelector = `button:has-text("load more"), a:has-text("load more"), ` +
	`button:has-text("show more"), a:has-text("show more")`

// scrollHandler feeds infinite-scroll listings. It scrolls to the bottom and
// clicks visible load-more controls until the page stops growing or the
// round cap is hit.
type scrollHandler struct {
	rounds       int
	settle       time.Duration
	clickTimeout time.Duration
}

func (h *scrollHandler) Tag() domain.PatternTag { return domain.PatternInfiniteScroll }

func (h *scrollHandler) Apply(ctx context.Context, sess *Session) (Effect, error) {
	page := sess.Page()
	prev := -1.0
	grew := false
	for i := 0; i < h.rounds; i++ {
		if ctx.Err() != nil {
			break
		}
		raw, err := page.Evaluate("document.body.scrollHeight")
		if err != nil {
			return Continue, fmt.Errorf("read page height: %w", err)
		}
		height := asFloat(raw)
		if prev >= 0 && height <= prev {
			break
		}
		if prev >= 0 {
			grew = true
		}
		prev = height
		if _, err := page.Evaluate("window.scrollTo(0, document.body.scrollHeight)"); err != nil {
			return Continue, fmt.Errorf("scroll to bottom: %w", err)
		}
		h.clickLoadMore(page)
		pause(ctx, h.settle)
	}
	if grew {
		sess.MarkPattern(domain.PatternInfiniteScroll)
	}
	return Continue, nil
}

func (h *scrollHandler) clickLoadMore(page playwright.Page) {
	loc := page.Locator(loadMoreSelector).First()
	visible, err := loc.IsVisible()
	if err != nil || !visible {
		return
	}
	_ = loc.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(ms(h.clickTimeout)),
	})
}

// asFloat coerces Evaluate results, which arrive as int or float64 depending
// on the value.
func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}
