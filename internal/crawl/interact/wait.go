package interact

import (
	"context"
	"time"

	"github.com/playwright-community/playwright-go"

	"leadscout-engine/internal/domain"
)

// jobContainerSelectors are probed with short timeouts to give
// client-rendered pages a chance to mount their listings before anything
// reads the DOM.
var jobContainerSelectors = []string{
	".jobs-list",
	".job-listings",
	".careers-list",
	".positions-list",
	"[class*=job-list]",
	"[class*=opening]",
	"#jobs",
	".job-item",
	".position",
}

type waitHandler struct {
	settle  time.Duration
	timeout time.Duration
}

func (h *waitHandler) Tag() domain.PatternTag { return domain.PatternJSDynamic }

func (h *waitHandler) Apply(ctx context.Context, sess *Session) (Effect, error) {
	pause(ctx, h.settle)
	for _, sel := range jobContainerSelectors {
		if ctx.Err() != nil {
			return Continue, nil
		}
		start := time.Now()
		_, err := sess.Page().WaitForSelector(sel, playwright.PageWaitForSelectorOptions{
			State:   playwright.WaitForSelectorStateAttached,
			Timeout: playwright.Float(ms(h.timeout)),
		})
		if err != nil {
			continue
		}
		// An already-mounted container returns immediately. Only a real
		// wait marks the page as client-rendered.
		if time.Since(start) > 250*time.Millisecond {
			sess.MarkPattern(domain.PatternJSDynamic)
		}
		return Continue, nil
	}
	return Continue, nil
}
