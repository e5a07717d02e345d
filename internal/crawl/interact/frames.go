package interact

import (
	"context"

	"leadscout-engine/internal/domain"
)

// frameHandler pulls embedded job-board documents out of iframes. Plenty of
// small companies host no job content of their own and just embed a
// third-party board.
type frameHandler struct {
	max int
}

func (h *frameHandler) Tag() domain.PatternTag { return domain.PatternIframe }

func (h *frameHandler) Apply(_ context.Context, sess *Session) (Effect, error) {
	page := sess.Page()
	main := page.MainFrame()
	captured := 0
	for _, f := range page.Frames() {
		if captured >= h.max {
			break
		}
		if f == main {
			continue
		}
		u := f.URL()
		if u == "" || u == "about:blank" {
			continue
		}
		html, err := f.Content()
		if err != nil {
			continue
		}
		// Tracking pixels and ad slots render as near-empty documents.
		if len(html) < 200 {
			continue
		}
		sess.AddDoc(u, html)
		captured++
	}
	if captured > 0 {
		sess.MarkPattern(domain.PatternIframe)
	}
	return Continue, nil
}
