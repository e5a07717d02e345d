package interact

import (
	"context"

	"leadscout-engine/internal/crawl/util"
	"leadscout-engine/internal/domain"
)

// redirectHandler pins down the post-navigation URL so every later step and
// the classifier resolve relative links against the page the browser
// actually landed on.
type redirectHandler struct{}

func (redirectHandler) Tag() domain.PatternTag { return domain.PatternRedirect }

func (redirectHandler) Apply(_ context.Context, sess *Session) (Effect, error) {
	u := sess.Page().URL()
	if u == "" || u == "about:blank" {
		return Continue, nil
	}
	if util.CanonicalizeURL(u) != util.CanonicalizeURL(sess.RequestedURL) {
		sess.MarkPattern(domain.PatternRedirect)
	}
	sess.FinalURL = u
	return Continue, nil
}
